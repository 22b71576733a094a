package item

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trolleyhq/trolley-backend/pkg/enums"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	pkgredis "github.com/trolleyhq/trolley-backend/pkg/redis"
)

type stubKV struct {
	values map[string]string
}

func newStubKV() *stubKV {
	return &stubKV{values: map[string]string{}}
}

func (s *stubKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (s *stubKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubKV) Del(ctx context.Context, keys ...string) (int64, error) {
	var removed int64
	for _, key := range keys {
		if _, ok := s.values[key]; ok {
			delete(s.values, key)
			removed++
		}
	}
	return removed, nil
}

func (s *stubKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *stubKV) GetMany(ctx context.Context, keys ...string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.values[key])
	}
	return out, nil
}

func (s *stubKV) ItemKey(owner, itemID string) string {
	return "trolley:item:" + owner + ":" + itemID
}

func (s *stubKV) ItemScanPattern(owner string) string {
	if owner == "" {
		return "trolley:item:*"
	}
	return "trolley:item:" + owner + ":*"
}

func testItem(owner, name string) Item {
	return Item{
		Owner:          owner,
		ID:             uuid.New(),
		Name:           name,
		Emoji:          "🛒",
		Quantity:       1,
		Category:       enums.CategoryUncategorized,
		EstimatedPrice: decimal.Zero,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewRepository(newStubKV())
	it := testItem("Nicole", "Milk")

	if err := repo.Put(context.Background(), it); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.Get(context.Background(), "Nicole", it.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Milk" || got.Owner != "Nicole" {
		t.Fatalf("unexpected item %+v", got)
	}
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := NewRepository(newStubKV())
	_, err := repo.Get(context.Background(), "Nicole", uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRepositoryDeleteMissing(t *testing.T) {
	repo := NewRepository(newStubKV())
	err := repo.Delete(context.Background(), "Nicole", uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListByOwnerScopesToOwner(t *testing.T) {
	repo := NewRepository(newStubKV())
	nicole := testItem("Nicole", "Milk")
	david := testItem("David", "Bread")
	for _, it := range []Item{nicole, david} {
		if err := repo.Put(context.Background(), it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	items, err := repo.ListByOwner(context.Background(), "Nicole")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Milk" {
		t.Fatalf("expected only Nicole's item, got %+v", items)
	}

	all, err := repo.ListByOwner(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("household query should cover every owner, got %d items", len(all))
	}
}

func TestListByOwnerEmptyIsSuccess(t *testing.T) {
	repo := NewRepository(newStubKV())
	items, err := repo.ListByOwner(context.Background(), "Nicole")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty slice, got %#v", items)
	}
}

func TestListByOwnerSkipsCorruptValues(t *testing.T) {
	kv := newStubKV()
	repo := NewRepository(kv)
	it := testItem("Nicole", "Milk")
	if err := repo.Put(context.Background(), it); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kv.values["trolley:item:Nicole:bogus"] = "{not json"

	items, err := repo.ListByOwner(context.Background(), "Nicole")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("corrupt values should be skipped, got %+v", items)
	}
}

func TestApplyCategoryAndPrice(t *testing.T) {
	repo := NewRepository(newStubKV())
	it := testItem("Nicole", "Milk")
	if err := repo.Put(context.Background(), it); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.ApplyCategory(context.Background(), "Nicole", it.ID, enums.CategoryDairyEggs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	price := decimal.RequireFromString("1.20")
	if err := repo.ApplyPrice(context.Background(), "Nicole", it.ID, price); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.Get(context.Background(), "Nicole", it.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Category != enums.CategoryDairyEggs || !got.EstimatedPrice.Equal(price) {
		t.Fatalf("updates not persisted: %+v", got)
	}
}
