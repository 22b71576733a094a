package shop

import (
	"context"

	"github.com/google/uuid"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

const defaultHistoryLimit = 50

// HistoryReader is the read/delete surface over archived records.
type HistoryReader interface {
	Get(ctx context.Context, shopID uuid.UUID) (ShopRecord, error)
	Delete(ctx context.Context, shopID uuid.UUID) error
	List(ctx context.Context, limit int) ([]ShopRecord, error)
}

// HistoryParams groups dependencies for the history query service.
type HistoryParams struct {
	Store  HistoryReader
	Logger *logger.Logger
}

// HistoryService answers queries over completed shops. Records are
// immutable; the only mutation is whole-record deletion.
type HistoryService interface {
	ListShops(ctx context.Context, limit int) ([]ShopRecord, error)
	GetShop(ctx context.Context, shopID uuid.UUID) (ShopRecord, error)
	DeleteShop(ctx context.Context, shopID uuid.UUID) error
}

type historyService struct {
	store HistoryReader
	logg  *logger.Logger
}

// NewHistoryService builds the history query service.
func NewHistoryService(params HistoryParams) (HistoryService, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "history store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &historyService{store: params.Store, logg: params.Logger}, nil
}

// ListShops returns past shops newest-first, capped at limit.
func (h *historyService) ListShops(ctx context.Context, limit int) ([]ShopRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return h.store.List(ctx, limit)
}

// GetShop loads one archived shop.
func (h *historyService) GetShop(ctx context.Context, shopID uuid.UUID) (ShopRecord, error) {
	if shopID == uuid.Nil {
		return ShopRecord{}, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	return h.store.Get(ctx, shopID)
}

// DeleteShop removes a whole archived record.
func (h *historyService) DeleteShop(ctx context.Context, shopID uuid.UUID) error {
	if shopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	if err := h.store.Delete(ctx, shopID); err != nil {
		return err
	}
	h.logg.Info(h.logg.WithField(ctx, "shop_id", shopID.String()), "shop record deleted")
	return nil
}
