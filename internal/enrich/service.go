package enrich

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trolleyhq/trolley-backend/pkg/enums"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
	"github.com/trolleyhq/trolley-backend/pkg/metrics"
)

// TargetItem is the projection of an active item the bulk flows need.
type TargetItem struct {
	Owner          string
	ID             uuid.UUID
	Name           string
	Category       enums.Category
	EstimatedPrice decimal.Decimal
}

// ItemUpdater is implemented by the item store adapter; the bulk flows
// read targets and write back one field at a time so a failure on one
// item never touches another.
type ItemUpdater interface {
	ListTargets(ctx context.Context, owner string) ([]TargetItem, error)
	ApplyCategory(ctx context.Context, owner string, id uuid.UUID, category enums.Category) error
	ApplyPrice(ctx context.Context, owner string, id uuid.UUID, price decimal.Decimal) error
}

// CategoryChange records one recategorization for the bulk report.
type CategoryChange struct {
	ItemName    string         `json:"item_name"`
	OldCategory enums.Category `json:"old_category"`
	NewCategory enums.Category `json:"new_category"`
}

// BulkResult reports the outcome of a bulk flow. Completed is false
// whenever any item failed, so callers can tell "fully done" from
// "partially done".
type BulkResult struct {
	UpdatedCount    int              `json:"updated_count"`
	SuccessfulItems []string         `json:"successful_items"`
	FailedItems     []string         `json:"failed_items"`
	Completed       bool             `json:"completed"`
	Changes         []CategoryChange `json:"changes,omitempty"`
}

// ServiceParams groups dependencies for the enrichment pipeline.
type ServiceParams struct {
	Completer Completer
	Items     ItemUpdater
	Cache     *Cache
	Logger    *logger.Logger
	Metrics   *metrics.EnrichmentMetrics
	Options   PromptOptions
}

// Service is the enrichment pipeline: single-item enrichment on
// creation plus the administrative bulk flows.
type Service interface {
	Enrich(ctx context.Context, rawName string) Result
	BulkRecategorize(ctx context.Context, owner string) (BulkResult, error)
	BulkReprice(ctx context.Context, owner string) (BulkResult, error)
}

type service struct {
	completer Completer
	items     ItemUpdater
	cache     *Cache
	logg      *logger.Logger
	metrics   *metrics.EnrichmentMetrics
	opts      PromptOptions
}

// NewService builds the enrichment pipeline.
func NewService(params ServiceParams) (Service, error) {
	if params.Completer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "completer is required")
	}
	if params.Items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item updater is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		completer: params.Completer,
		items:     params.Items,
		cache:     params.Cache,
		logg:      params.Logger,
		metrics:   params.Metrics,
		opts:      params.Options,
	}, nil
}

// Enrich corrects, prices, and categorizes a raw item name. It never
// fails: any model or decode problem degrades to the deterministic
// fallback so item creation is never blocked on the AI service.
func (s *service) Enrich(ctx context.Context, rawName string) Result {
	if cached, ok := s.cache.Lookup(ctx, rawName); ok {
		s.metrics.IncCacheHit()
		return cached
	}

	start := time.Now()
	text, err := s.completer.Complete(ctx, buildItemPrompt(rawName, s.opts))
	s.metrics.ObserveCall(time.Since(start))
	if err != nil {
		logCtx := s.logg.WithField(ctx, "item_name", rawName)
		s.logg.Warn(logCtx, "enrichment call failed, using fallback")
		s.metrics.IncOutcome("error")
		return Fallback(rawName)
	}

	result, ok := decodeResult(rawName, text)
	if !ok {
		logCtx := s.logg.WithField(ctx, "item_name", rawName)
		s.logg.Warn(logCtx, "enrichment response malformed, using fallback")
		s.metrics.IncOutcome("fallback")
		return Fallback(rawName)
	}

	s.metrics.IncOutcome("enriched")
	s.cache.Store(ctx, rawName, result)
	return result
}

// BulkRecategorize re-derives the aisle category for every active item
// in scope. Items are processed sequentially; one item's failure is
// recorded and the batch continues. A canceled context stops the run
// between items.
func (s *service) BulkRecategorize(ctx context.Context, owner string) (BulkResult, error) {
	targets, err := s.items.ListTargets(ctx, owner)
	if err != nil {
		return BulkResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items for recategorization")
	}

	result := BulkResult{Completed: true}
	callFailures := 0
	for _, target := range targets {
		// Cancellation is reported as data so callers still see the
		// items finished before the cutoff.
		if ctx.Err() != nil {
			result.Completed = false
			s.logg.Warn(ctx, "bulk recategorize canceled, returning partial result")
			return result, nil
		}

		category, err := s.categorize(ctx, target.Name)
		if err != nil {
			result.FailedItems = append(result.FailedItems, target.Name)
			result.Completed = false
			if pkgerrors.IsCode(err, pkgerrors.CodeEnrichment) {
				callFailures++
			}
			continue
		}

		if category != target.Category {
			if err := s.items.ApplyCategory(ctx, target.Owner, target.ID, category); err != nil {
				logCtx := s.logg.WithField(ctx, "item_name", target.Name)
				s.logg.Error(logCtx, "failed to store new category", err)
				result.FailedItems = append(result.FailedItems, target.Name)
				result.Completed = false
				continue
			}
			result.Changes = append(result.Changes, CategoryChange{
				ItemName:    target.Name,
				OldCategory: target.Category,
				NewCategory: category,
			})
			result.UpdatedCount++
		}
		result.SuccessfulItems = append(result.SuccessfulItems, target.Name)
	}
	if len(targets) > 0 && callFailures == len(targets) {
		return result, pkgerrors.New(pkgerrors.CodeEnrichment, "model call failed for every item").
			WithDetails(map[string]any{"failed_items": len(result.FailedItems)})
	}
	return result, nil
}

// BulkReprice refreshes the price estimate for every active item in
// scope, with the same sequential, per-item failure isolation as
// BulkRecategorize.
func (s *service) BulkReprice(ctx context.Context, owner string) (BulkResult, error) {
	targets, err := s.items.ListTargets(ctx, owner)
	if err != nil {
		return BulkResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items for repricing")
	}

	result := BulkResult{Completed: true}
	callFailures := 0
	for _, target := range targets {
		if ctx.Err() != nil {
			result.Completed = false
			s.logg.Warn(ctx, "bulk reprice canceled, returning partial result")
			return result, nil
		}

		price, err := s.price(ctx, target.Name)
		if err != nil {
			result.FailedItems = append(result.FailedItems, target.Name)
			result.Completed = false
			if pkgerrors.IsCode(err, pkgerrors.CodeEnrichment) {
				callFailures++
			}
			continue
		}

		if !price.Equal(target.EstimatedPrice) {
			if err := s.items.ApplyPrice(ctx, target.Owner, target.ID, price); err != nil {
				logCtx := s.logg.WithField(ctx, "item_name", target.Name)
				s.logg.Error(logCtx, "failed to store new price", err)
				result.FailedItems = append(result.FailedItems, target.Name)
				result.Completed = false
				continue
			}
			result.UpdatedCount++
		}
		result.SuccessfulItems = append(result.SuccessfulItems, target.Name)
	}
	if len(targets) > 0 && callFailures == len(targets) {
		return result, pkgerrors.New(pkgerrors.CodeEnrichment, "model call failed for every item").
			WithDetails(map[string]any{"failed_items": len(result.FailedItems)})
	}
	return result, nil
}

// errMalformedResponse marks a model reply that did not decode; it is
// kept distinct from call failures so an all-failed batch can tell a
// model outage from a misbehaving one.
var errMalformedResponse = errors.New("malformed model response")

func (s *service) categorize(ctx context.Context, itemName string) (enums.Category, error) {
	start := time.Now()
	text, err := s.completer.Complete(ctx, buildCategoryPrompt(itemName))
	s.metrics.ObserveCall(time.Since(start))
	if err != nil {
		s.metrics.IncOutcome("error")
		return "", pkgerrors.Wrap(pkgerrors.CodeEnrichment, err, "category call failed")
	}
	category, ok := decodeCategory(text)
	if !ok {
		s.metrics.IncOutcome("fallback")
		return "", errMalformedResponse
	}
	s.metrics.IncOutcome("enriched")
	return category, nil
}

func (s *service) price(ctx context.Context, itemName string) (decimal.Decimal, error) {
	start := time.Now()
	text, err := s.completer.Complete(ctx, buildPricePrompt(itemName))
	s.metrics.ObserveCall(time.Since(start))
	if err != nil {
		s.metrics.IncOutcome("error")
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeEnrichment, err, "price call failed")
	}
	price, ok := decodePrice(text)
	if !ok {
		s.metrics.IncOutcome("fallback")
		return decimal.Zero, errMalformedResponse
	}
	s.metrics.IncOutcome("enriched")
	return price, nil
}
