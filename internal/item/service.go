package item

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trolleyhq/trolley-backend/internal/enrich"
	"github.com/trolleyhq/trolley-backend/pkg/enums"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

// Store is the persistence surface the item service needs.
type Store interface {
	Put(ctx context.Context, it Item) error
	Get(ctx context.Context, owner string, id uuid.UUID) (Item, error)
	Delete(ctx context.Context, owner string, id uuid.UUID) error
	ListByOwner(ctx context.Context, owner string) ([]Item, error)
}

// Enricher is the single-item enrichment surface. It never fails; a
// degraded result is still a result.
type Enricher interface {
	Enrich(ctx context.Context, rawName string) enrich.Result
}

// CreateInput carries the caller-supplied fields for a new item.
type CreateInput struct {
	Owner    string
	Name     string
	Quantity int
	Category string
}

// UpdateInput patches an existing item; nil fields are left untouched.
type UpdateInput struct {
	Name           *string
	Quantity       *int
	Category       *string
	EstimatedPrice *decimal.Decimal
	Purchased      *bool
	Deferred       *bool
}

// ServiceParams groups dependencies for the item service.
type ServiceParams struct {
	Store    Store
	Enricher Enricher
	Logger   *logger.Logger
}

// Service exposes the active-item lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (Item, error)
	Update(ctx context.Context, owner string, id uuid.UUID, input UpdateInput) (Item, error)
	Delete(ctx context.Context, owner string, id uuid.UUID) error
	Get(ctx context.Context, owner string, id uuid.UUID) (Item, error)
}

type service struct {
	store    Store
	enricher Enricher
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds an item service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		store:    params.Store,
		enricher: params.Enricher,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// Create validates input, enriches the raw name best-effort, and stores
// the new item. Enrichment failure is invisible here: the pipeline
// degrades to its deterministic fallback.
func (s *service) Create(ctx context.Context, input CreateInput) (Item, error) {
	owner := strings.TrimSpace(input.Owner)
	if owner == "" {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "owner is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.Quantity <= 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive number")
	}

	it := Item{
		Owner:          owner,
		ID:             uuid.New(),
		Name:           name,
		Emoji:          "🛒",
		Quantity:       input.Quantity,
		Category:       enums.CategoryUncategorized,
		EstimatedPrice: decimal.Zero,
		CreatedAt:      s.now().UTC(),
	}

	if explicit := strings.TrimSpace(input.Category); explicit != "" {
		it.Category = enums.ParseCategory(explicit)
	}

	if s.enricher != nil {
		enriched := s.enricher.Enrich(ctx, name)
		it.Name = enriched.CorrectedName
		it.Emoji = enriched.Emoji
		it.EstimatedPrice = enriched.EstimatedPrice
		// A caller-chosen category wins over the model's suggestion.
		if strings.TrimSpace(input.Category) == "" {
			it.Category = enriched.Category
		}
	}

	if err := s.store.Put(ctx, it); err != nil {
		return Item{}, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"item_id": it.ID.String(), "item_name": it.Name})
	s.logg.Info(logCtx, "item created")
	return it, nil
}

// Update patches the supplied fields. Setting purchased stamps or
// clears the purchase timestamp.
func (s *service) Update(ctx context.Context, owner string, id uuid.UUID, input UpdateInput) (Item, error) {
	if owner == "" || id == uuid.Nil {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "owner and item id are required")
	}

	it, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return Item{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "item name must not be empty")
		}
		it.Name = name
	}
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive number")
		}
		it.Quantity = *input.Quantity
	}
	if input.Category != nil {
		it.Category = enums.ParseCategory(*input.Category)
	}
	if input.EstimatedPrice != nil {
		if input.EstimatedPrice.IsNegative() {
			return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "estimated price must not be negative")
		}
		it.EstimatedPrice = *input.EstimatedPrice
	}
	if input.Purchased != nil && *input.Purchased != it.Purchased {
		it.Purchased = *input.Purchased
		if it.Purchased {
			at := s.now().UTC()
			it.PurchasedAt = &at
		} else {
			it.PurchasedAt = nil
		}
	}
	if input.Deferred != nil {
		it.Deferred = *input.Deferred
	}

	if err := s.store.Put(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

// Delete removes one active item.
func (s *service) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	if owner == "" || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner and item id are required")
	}
	return s.store.Delete(ctx, owner, id)
}

// Get loads one active item.
func (s *service) Get(ctx context.Context, owner string, id uuid.UUID) (Item, error) {
	if owner == "" || id == uuid.Nil {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "owner and item id are required")
	}
	return s.store.Get(ctx, owner, id)
}
