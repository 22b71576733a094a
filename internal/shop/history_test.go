package shop

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

type stubHistoryReader struct {
	records map[uuid.UUID]ShopRecord
	lastLim int
}

func newStubHistoryReader(records ...ShopRecord) *stubHistoryReader {
	s := &stubHistoryReader{records: map[uuid.UUID]ShopRecord{}}
	for _, record := range records {
		s.records[record.ShopID] = record
	}
	return s
}

func (s *stubHistoryReader) Get(ctx context.Context, shopID uuid.UUID) (ShopRecord, error) {
	record, ok := s.records[shopID]
	if !ok {
		return ShopRecord{}, pkgerrors.New(pkgerrors.CodeNotFound, "shop record not found")
	}
	return record, nil
}

func (s *stubHistoryReader) Delete(ctx context.Context, shopID uuid.UUID) error {
	if _, ok := s.records[shopID]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shop record not found")
	}
	delete(s.records, shopID)
	return nil
}

func (s *stubHistoryReader) List(ctx context.Context, limit int) ([]ShopRecord, error) {
	s.lastLim = limit
	out := make([]ShopRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}

func newHistory(t *testing.T, store HistoryReader) HistoryService {
	t.Helper()
	svc, err := NewHistoryService(HistoryParams{
		Store:  store,
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func TestListShopsDefaultsLimit(t *testing.T) {
	store := newStubHistoryReader(recordFixture(time.Now()))
	svc := newHistory(t, store)

	if _, err := svc.ListShops(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastLim != defaultHistoryLimit {
		t.Fatalf("expected default limit, got %d", store.lastLim)
	}
}

func TestGetShopUnknown(t *testing.T) {
	svc := newHistory(t, newStubHistoryReader())
	_, err := svc.GetShop(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteShop(t *testing.T) {
	record := recordFixture(time.Now())
	store := newStubHistoryReader(record)
	svc := newHistory(t, store)

	if err := svc.DeleteShop(context.Background(), record.ShopID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteShop(context.Background(), record.ShopID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeleteShopRequiresID(t *testing.T) {
	svc := newHistory(t, newStubHistoryReader())
	if err := svc.DeleteShop(context.Background(), uuid.Nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
