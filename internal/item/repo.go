package item

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trolleyhq/trolley-backend/internal/enrich"
	"github.com/trolleyhq/trolley-backend/pkg/enums"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	pkgredis "github.com/trolleyhq/trolley-backend/pkg/redis"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	GetMany(ctx context.Context, keys ...string) ([]string, error)
	ItemKey(owner, itemID string) string
	ItemScanPattern(owner string) string
}

// Repository encapsulates active-item persistence on the key-value
// store. Items live under trolley:item:<owner>:<id>.
type Repository struct {
	kv kvStore
}

// NewRepository constructs an item repository bound to the key-value store.
func NewRepository(kv kvStore) *Repository {
	return &Repository{kv: kv}
}

// Put writes the item under its composite key, creating or replacing it.
func (r *Repository) Put(ctx context.Context, it Item) error {
	if it.Owner == "" || it.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item owner and id are required")
	}
	encoded, err := json.Marshal(it)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode item")
	}
	if err := r.kv.Set(ctx, r.kv.ItemKey(it.Owner, it.ID.String()), string(encoded), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store item")
	}
	return nil
}

// Get loads one item by its composite key.
func (r *Repository) Get(ctx context.Context, owner string, id uuid.UUID) (Item, error) {
	raw, err := r.kv.Get(ctx, r.kv.ItemKey(owner, id.String()))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return Item{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	var it Item
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		return Item{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode item")
	}
	return it, nil
}

// Delete removes one item; a missing key reports NotFound.
func (r *Repository) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	removed, err := r.kv.Del(ctx, r.kv.ItemKey(owner, id.String()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return nil
}

// ListByOwner returns every active item for one owner. An empty owner
// is the explicit household-wide query and returns all owners' items.
// No items is success with an empty slice.
func (r *Repository) ListByOwner(ctx context.Context, owner string) ([]Item, error) {
	keys, err := r.kv.ScanKeys(ctx, r.kv.ItemScanPattern(owner))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan items")
	}
	if len(keys) == 0 {
		return []Item{}, nil
	}
	values, err := r.kv.GetMany(ctx, keys...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch items")
	}
	items := make([]Item, 0, len(values))
	for _, raw := range values {
		if raw == "" {
			// Key vanished between scan and fetch.
			continue
		}
		var it Item
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// ListTargets implements the enrichment bulk-flow view of the active set.
func (r *Repository) ListTargets(ctx context.Context, owner string) ([]enrich.TargetItem, error) {
	items, err := r.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	targets := make([]enrich.TargetItem, 0, len(items))
	for _, it := range items {
		targets = append(targets, enrich.TargetItem{
			Owner:          it.Owner,
			ID:             it.ID,
			Name:           it.Name,
			Category:       it.Category,
			EstimatedPrice: it.EstimatedPrice,
		})
	}
	return targets, nil
}

// ApplyCategory stores a new category on an existing item.
func (r *Repository) ApplyCategory(ctx context.Context, owner string, id uuid.UUID, category enums.Category) error {
	it, err := r.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	it.Category = category
	return r.Put(ctx, it)
}

// ApplyPrice stores a new price estimate on an existing item.
func (r *Repository) ApplyPrice(ctx context.Context, owner string, id uuid.UUID, price decimal.Decimal) error {
	it, err := r.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	it.EstimatedPrice = price
	return r.Put(ctx, it)
}
