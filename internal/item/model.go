package item

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trolleyhq/trolley-backend/pkg/enums"
)

// Item is one entry on an owner's active shopping list. The composite
// (Owner, ID) key is globally unique; an item is either active here or
// archived inside exactly one shop record, never both.
type Item struct {
	Owner          string          `json:"owner"`
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Emoji          string          `json:"emoji,omitempty"`
	Quantity       int             `json:"quantity"`
	Category       enums.Category  `json:"category"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
	Purchased      bool            `json:"purchased"`
	Deferred       bool            `json:"deferred"`
	CreatedAt      time.Time       `json:"created_at"`
	PurchasedAt    *time.Time      `json:"purchased_at,omitempty"`
}

// LineTotal is the item's contribution to a shop total.
func (i Item) LineTotal() decimal.Decimal {
	quantity := i.Quantity
	if quantity < 1 {
		quantity = 1
	}
	return i.EstimatedPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
