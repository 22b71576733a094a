package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trolleyhq/trolley-backend/pkg/enums"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
	pkgredis "github.com/trolleyhq/trolley-backend/pkg/redis"
)

type stubCompleter struct {
	responses map[string]string
	err       error
	calls     int
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	for needle, response := range s.responses {
		if strings.Contains(prompt, needle) {
			return response, nil
		}
	}
	return "", errors.New("no stubbed response")
}

type stubUpdater struct {
	targets    []TargetItem
	listErr    error
	applyErr   error
	categories map[uuid.UUID]enums.Category
	prices     map[uuid.UUID]decimal.Decimal
}

func (s *stubUpdater) ListTargets(ctx context.Context, owner string) ([]TargetItem, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.targets, nil
}

func (s *stubUpdater) ApplyCategory(ctx context.Context, owner string, id uuid.UUID, category enums.Category) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	if s.categories == nil {
		s.categories = map[uuid.UUID]enums.Category{}
	}
	s.categories[id] = category
	return nil
}

func (s *stubUpdater) ApplyPrice(ctx context.Context, owner string, id uuid.UUID, price decimal.Decimal) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	if s.prices == nil {
		s.prices = map[uuid.UUID]decimal.Decimal{}
	}
	s.prices[id] = price
	return nil
}

type stubCacheKV struct {
	data map[string]string
}

func (s *stubCacheKV) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return "", pkgredis.Nil
}

func (s *stubCacheKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.data == nil {
		s.data = map[string]string{}
	}
	s.data[key] = value.(string)
	return nil
}

func (s *stubCacheKV) CacheKey(hash string) string { return "trolley:aicache:" + hash }

func newTestService(t *testing.T, completer Completer, items ItemUpdater, cache *Cache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Completer: completer,
		Items:     items,
		Cache:     cache,
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Options:   PromptOptions{UseUKEnglish: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func TestEnrichCorrectsSpelling(t *testing.T) {
	completer := &stubCompleter{responses: map[string]string{
		"tomatoe": `{"correctedName":"Tomato","emoji":"🍅","estimatedPrice":0.45,"category":"Fresh Produce - Vegetables"}`,
	}}
	svc := newTestService(t, completer, &stubUpdater{}, nil)

	result := svc.Enrich(context.Background(), "tomatoe")
	if result.CorrectedName != "Tomato" {
		t.Fatalf("unexpected name %q", result.CorrectedName)
	}
	if result.Category != enums.CategoryVegetables {
		t.Fatalf("unexpected category %q", result.Category)
	}
}

func TestEnrichFallsBackOnMalformedResponse(t *testing.T) {
	completer := &stubCompleter{responses: map[string]string{
		"tomatoe": `this is not json`,
	}}
	svc := newTestService(t, completer, &stubUpdater{}, nil)

	result := svc.Enrich(context.Background(), "tomatoe")
	if result.CorrectedName != "tomatoe" {
		t.Fatalf("fallback must keep raw name, got %q", result.CorrectedName)
	}
	if result.Category != enums.CategoryUncategorized {
		t.Fatalf("unexpected category %q", result.Category)
	}
	if !result.EstimatedPrice.IsZero() {
		t.Fatalf("unexpected price %s", result.EstimatedPrice)
	}
}

func TestEnrichFallsBackOnServiceError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("connection refused")}
	svc := newTestService(t, completer, &stubUpdater{}, nil)

	result := svc.Enrich(context.Background(), "milk")
	if result.CorrectedName != "milk" || result.Category != enums.CategoryUncategorized {
		t.Fatalf("unexpected fallback %+v", result)
	}
}

func TestEnrichUsesCache(t *testing.T) {
	completer := &stubCompleter{responses: map[string]string{
		"milk": `{"correctedName":"Milk","emoji":"🥛","estimatedPrice":1.25,"category":"Dairy & Eggs"}`,
	}}
	cache := NewCache(&stubCacheKV{})
	svc := newTestService(t, completer, &stubUpdater{}, cache)

	first := svc.Enrich(context.Background(), "milk")
	second := svc.Enrich(context.Background(), " MILK ")

	if completer.calls != 1 {
		t.Fatalf("expected a single model call, got %d", completer.calls)
	}
	if first.CorrectedName != second.CorrectedName {
		t.Fatalf("cached result should match: %q vs %q", first.CorrectedName, second.CorrectedName)
	}
}

func TestBulkRecategorizeIsolatesFailures(t *testing.T) {
	milkID, mysteryID := uuid.New(), uuid.New()
	updater := &stubUpdater{targets: []TargetItem{
		{Owner: "Nicole", ID: milkID, Name: "Milk", Category: enums.CategoryUncategorized},
		{Owner: "Nicole", ID: mysteryID, Name: "Mystery", Category: enums.CategoryUncategorized},
	}}
	completer := &stubCompleter{responses: map[string]string{
		"Milk":    `{"category":"Dairy & Eggs"}`,
		"Mystery": `not json at all`,
	}}
	svc := newTestService(t, completer, updater, nil)

	result, err := svc.BulkRecategorize(context.Background(), "Nicole")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Completed {
		t.Fatal("a failed item must clear the completed flag")
	}
	if result.UpdatedCount != 1 {
		t.Fatalf("expected 1 update, got %d", result.UpdatedCount)
	}
	if len(result.FailedItems) != 1 || result.FailedItems[0] != "Mystery" {
		t.Fatalf("unexpected failures %v", result.FailedItems)
	}
	if updater.categories[milkID] != enums.CategoryDairyEggs {
		t.Fatalf("milk category not applied: %v", updater.categories)
	}
	if len(result.Changes) != 1 || result.Changes[0].NewCategory != enums.CategoryDairyEggs {
		t.Fatalf("unexpected change report %+v", result.Changes)
	}
}

func TestBulkRecategorizeReportsTotalOutage(t *testing.T) {
	updater := &stubUpdater{targets: []TargetItem{
		{Owner: "Nicole", ID: uuid.New(), Name: "Milk"},
		{Owner: "Nicole", ID: uuid.New(), Name: "Eggs"},
	}}
	completer := &stubCompleter{err: errors.New("connection refused")}
	svc := newTestService(t, completer, updater, nil)

	result, err := svc.BulkRecategorize(context.Background(), "Nicole")
	if !pkgerrors.IsCode(err, pkgerrors.CodeEnrichment) {
		t.Fatalf("every call failing must surface an enrichment error, got %v", err)
	}
	if result.Completed || len(result.FailedItems) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestBulkRecategorizeSkipsUnchanged(t *testing.T) {
	updater := &stubUpdater{targets: []TargetItem{
		{Owner: "Nicole", ID: uuid.New(), Name: "Milk", Category: enums.CategoryDairyEggs},
	}}
	completer := &stubCompleter{responses: map[string]string{
		"Milk": `{"category":"Dairy & Eggs"}`,
	}}
	svc := newTestService(t, completer, updater, nil)

	result, err := svc.BulkRecategorize(context.Background(), "Nicole")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Completed || result.UpdatedCount != 0 {
		t.Fatalf("unchanged item should not count as update: %+v", result)
	}
	if len(result.SuccessfulItems) != 1 {
		t.Fatalf("unchanged item is still successful: %+v", result)
	}
}

func TestBulkRepriceUpdates(t *testing.T) {
	id := uuid.New()
	updater := &stubUpdater{targets: []TargetItem{
		{Owner: "Gianluca", ID: id, Name: "Bread", EstimatedPrice: decimal.Zero},
	}}
	completer := &stubCompleter{responses: map[string]string{
		"Bread": `{"estimatedPrice":1.10}`,
	}}
	svc := newTestService(t, completer, updater, nil)

	result, err := svc.BulkReprice(context.Background(), "Gianluca")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Completed || result.UpdatedCount != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !updater.prices[id].Equal(decimal.RequireFromString("1.1")) {
		t.Fatalf("price not applied: %v", updater.prices)
	}
}

// cancelingCompleter cancels the run after serving its first call, so
// the batch is cut off between items.
type cancelingCompleter struct {
	inner  *stubCompleter
	cancel context.CancelFunc
}

func (c *cancelingCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	defer c.cancel()
	return c.inner.Complete(ctx, prompt)
}

func TestBulkRespectsCancellation(t *testing.T) {
	updater := &stubUpdater{targets: []TargetItem{
		{Owner: "Nicole", ID: uuid.New(), Name: "Milk"},
		{Owner: "Nicole", ID: uuid.New(), Name: "Eggs"},
	}}
	inner := &stubCompleter{responses: map[string]string{
		"Milk": `{"category":"Dairy & Eggs"}`,
		"Eggs": `{"category":"Dairy & Eggs"}`,
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := newTestService(t, &cancelingCompleter{inner: inner, cancel: cancel}, updater, nil)

	result, err := svc.BulkRecategorize(ctx, "Nicole")
	if err != nil {
		t.Fatalf("cancellation must be reported as data, got %v", err)
	}
	if result.Completed {
		t.Fatal("canceled run must not report completed")
	}
	if len(result.SuccessfulItems) != 1 || result.SuccessfulItems[0] != "Milk" {
		t.Fatalf("items finished before the cutoff must be reported, got %v", result.SuccessfulItems)
	}
	if inner.calls != 1 {
		t.Fatalf("canceled run must stop between items, got %d calls", inner.calls)
	}
}

func TestBulkCanceledBeforeStartCallsNothing(t *testing.T) {
	updater := &stubUpdater{targets: []TargetItem{
		{Owner: "Nicole", ID: uuid.New(), Name: "Milk"},
	}}
	completer := &stubCompleter{responses: map[string]string{
		"Milk": `{"category":"Dairy & Eggs"}`,
	}}
	svc := newTestService(t, completer, updater, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.BulkRecategorize(ctx, "Nicole")
	if err != nil {
		t.Fatalf("cancellation must be reported as data, got %v", err)
	}
	if result.Completed || len(result.SuccessfulItems) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if completer.calls != 0 {
		t.Fatalf("canceled run should not call the model, got %d calls", completer.calls)
	}
}
