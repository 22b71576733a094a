package shop

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	pkgredis "github.com/trolleyhq/trolley-backend/pkg/redis"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	GetMany(ctx context.Context, keys ...string) ([]string, error)
	ShopKey(shopID string) string
	ShopScanPattern() string
}

// Repository encapsulates archived-shop persistence on the key-value
// store. Records live under trolley:shop:<shopId>.
type Repository struct {
	kv kvStore
}

// NewRepository constructs a shop-history repository.
func NewRepository(kv kvStore) *Repository {
	return &Repository{kv: kv}
}

// Put writes the record under its shop id. Writing the same id twice
// replaces the value wholesale, which keeps the operation idempotent
// for completion retries.
func (r *Repository) Put(ctx context.Context, record ShopRecord) error {
	if record.ShopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode shop record")
	}
	if err := r.kv.Set(ctx, r.kv.ShopKey(record.ShopID.String()), string(encoded), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store shop record")
	}
	return nil
}

// Get loads one archived shop record.
func (r *Repository) Get(ctx context.Context, shopID uuid.UUID) (ShopRecord, error) {
	raw, err := r.kv.Get(ctx, r.kv.ShopKey(shopID.String()))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return ShopRecord{}, pkgerrors.New(pkgerrors.CodeNotFound, "shop record not found")
		}
		return ShopRecord{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop record")
	}
	var record ShopRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return ShopRecord{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode shop record")
	}
	return record, nil
}

// Delete removes a whole record; a missing id reports NotFound.
func (r *Repository) Delete(ctx context.Context, shopID uuid.UUID) error {
	removed, err := r.kv.Del(ctx, r.kv.ShopKey(shopID.String()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shop record")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop record not found")
	}
	return nil
}

// List returns archived records ordered newest-first. A limit of zero
// or less returns everything.
func (r *Repository) List(ctx context.Context, limit int) ([]ShopRecord, error) {
	keys, err := r.kv.ScanKeys(ctx, r.kv.ShopScanPattern())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan shop records")
	}
	if len(keys) == 0 {
		return []ShopRecord{}, nil
	}
	values, err := r.kv.GetMany(ctx, keys...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch shop records")
	}

	records := make([]ShopRecord, 0, len(values))
	for _, raw := range values {
		if raw == "" {
			continue
		}
		var record ShopRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].ShopDate.Equal(records[j].ShopDate) {
			return records[i].ShopDate.After(records[j].ShopDate)
		}
		return records[i].ShopID.String() < records[j].ShopID.String()
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
