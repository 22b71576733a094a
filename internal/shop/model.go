package shop

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trolleyhq/trolley-backend/internal/item"
	"github.com/trolleyhq/trolley-backend/pkg/enums"
)

// ShopItem is the immutable snapshot of one purchased item, captured
// at completion time.
type ShopItem struct {
	Owner          string          `json:"owner"`
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Emoji          string          `json:"emoji"`
	Quantity       int             `json:"quantity"`
	Category       enums.Category  `json:"category"`
	EstimatedPrice decimal.Decimal `json:"estimatedPrice"`
}

// ShopRecord is the append-only archive of one completed shop. Once
// written it is never mutated; history management deletes whole records
// only.
type ShopRecord struct {
	ShopID     uuid.UUID       `json:"shopId"`
	ShopDate   time.Time       `json:"shopDate"`
	Owner      string          `json:"owner,omitempty"`
	Items      []ShopItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// FailedDelete reports one purchased item that could not be removed
// from the active list after retries. The record keeps it archived
// regardless.
type FailedDelete struct {
	ItemID uuid.UUID `json:"itemId"`
	Owner  string    `json:"owner"`
	Reason string    `json:"reason"`
}

// CompletionResult is the caller-visible outcome of one complete-shop
// call. ItemsDeleted < Record.TotalItems signals a partial completion.
type CompletionResult struct {
	Record       ShopRecord     `json:"record"`
	ItemsDeleted int            `json:"itemsDeleted"`
	Failed       []FailedDelete `json:"failed,omitempty"`
	Partial      bool           `json:"partial"`
}

func snapshot(it item.Item) ShopItem {
	return ShopItem{
		Owner:          it.Owner,
		ID:             it.ID,
		Name:           it.Name,
		Emoji:          it.Emoji,
		Quantity:       it.Quantity,
		Category:       it.Category,
		EstimatedPrice: it.EstimatedPrice,
	}
}

// LineTotal is the snapshot's contribution to the shop total.
func (s ShopItem) LineTotal() decimal.Decimal {
	qty := s.Quantity
	if qty < 1 {
		qty = 1
	}
	return s.EstimatedPrice.Mul(decimal.NewFromInt(int64(qty)))
}
