package shop

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"github.com/trolleyhq/trolley-backend/internal/item"
	"github.com/trolleyhq/trolley-backend/pkg/config"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

// ItemStore is the active-list surface the completion flow needs.
type ItemStore interface {
	ListByOwner(ctx context.Context, owner string) ([]item.Item, error)
	Delete(ctx context.Context, owner string, id uuid.UUID) error
}

// HistoryStore persists shop records. The record write comes before any
// delete so it doubles as the durable log of what must be removed.
type HistoryStore interface {
	Put(ctx context.Context, record ShopRecord) error
}

// Leaser guards one completion run at a time. The lease is shared by
// every scope because a household-wide run reads every owner's items
// and must not interleave with an owner-scoped run.
type Leaser interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	CompletionLockKey() string
}

// CompletionParams groups dependencies for the completion service.
type CompletionParams struct {
	Items   ItemStore
	History HistoryStore
	Leaser  Leaser
	Logger  *logger.Logger
	Config  config.CompletionConfig
}

// CompletionService runs the archive-and-reset transition. Complete is
// safe to retry: the shop record is written before any item is removed,
// so a crash mid-delete leaves a durable log the reconcile pass can
// finish from.
type CompletionService interface {
	Complete(ctx context.Context, owner string) (CompletionResult, error)
}

type completionService struct {
	items   ItemStore
	history HistoryStore
	leaser  Leaser
	logg    *logger.Logger
	cfg     config.CompletionConfig
	now     func() time.Time
	newID   func() uuid.UUID
}

// NewCompletionService builds the completion service.
func NewCompletionService(params CompletionParams) (CompletionService, error) {
	if params.Items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item store is required")
	}
	if params.History == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "history store is required")
	}
	if params.Leaser == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "completion leaser is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	cfg := params.Config
	if cfg.DeleteRetries <= 0 {
		cfg.DeleteRetries = 3
	}
	if cfg.DeleteBackoff <= 0 {
		cfg.DeleteBackoff = 100 * time.Millisecond
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 30 * time.Second
	}
	return &completionService{
		items:   params.Items,
		history: params.History,
		leaser:  params.Leaser,
		logg:    params.Logger,
		cfg:     cfg,
		now:     time.Now,
		newID:   uuid.New,
	}, nil
}

// Complete archives every purchased item for the scope into a fresh
// shop record, then clears those items from the active list. Deferred
// and pending items are left untouched. An empty owner completes the
// whole household's list.
func (s *completionService) Complete(ctx context.Context, owner string) (CompletionResult, error) {
	owner = strings.TrimSpace(owner)

	lockKey := s.leaser.CompletionLockKey()
	acquired, err := s.leaser.SetNX(ctx, lockKey, s.newID().String(), s.cfg.LeaseTTL)
	if err != nil {
		return CompletionResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire completion lease")
	}
	if !acquired {
		return CompletionResult{}, pkgerrors.New(pkgerrors.CodeConflict, "a shop completion is already in progress")
	}
	defer func() {
		if _, err := s.leaser.Del(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logg.Error(ctx, "failed to release completion lease", err)
		}
	}()

	items, err := s.items.ListByOwner(ctx, owner)
	if err != nil {
		return CompletionResult{}, err
	}

	purchased := make([]ShopItem, 0, len(items))
	for _, it := range items {
		if it.Purchased {
			purchased = append(purchased, snapshot(it))
		}
	}
	sort.Slice(purchased, func(i, j int) bool {
		if purchased[i].Owner != purchased[j].Owner {
			return purchased[i].Owner < purchased[j].Owner
		}
		return purchased[i].Name < purchased[j].Name
	})

	total := decimal.Zero
	for _, snap := range purchased {
		total = total.Add(snap.LineTotal())
	}

	record := ShopRecord{
		ShopID:     s.newID(),
		ShopDate:   s.now().UTC(),
		Owner:      owner,
		Items:      purchased,
		TotalItems: len(purchased),
		TotalPrice: total,
	}

	// The record is the durable delete log. Nothing is removed from
	// the active list until it is safely stored.
	if err := s.history.Put(ctx, record); err != nil {
		return CompletionResult{}, err
	}

	result := CompletionResult{Record: record}
	for _, snap := range purchased {
		if err := s.deleteWithRetry(ctx, snap.Owner, snap.ID); err != nil {
			result.Failed = append(result.Failed, FailedDelete{
				ItemID: snap.ID,
				Owner:  snap.Owner,
				Reason: err.Error(),
			})
			continue
		}
		result.ItemsDeleted++
	}
	result.Partial = result.ItemsDeleted < record.TotalItems

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"shop_id":       record.ShopID.String(),
		"total_items":   record.TotalItems,
		"items_deleted": result.ItemsDeleted,
	})
	if result.Partial {
		s.logg.Warn(logCtx, "shop completed with undeleted items; reconcile will finish")
	} else {
		s.logg.Info(logCtx, "shop completed")
	}
	return result, nil
}

// deleteWithRetry removes one archived item from the active list. A
// missing item counts as deleted; the record may be replayed after a
// partial run.
func (s *completionService) deleteWithRetry(ctx context.Context, owner string, id uuid.UUID) error {
	backoff := retry.WithMaxRetries(uint64(s.cfg.DeleteRetries), retry.NewConstant(s.cfg.DeleteBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.items.Delete(ctx, owner, id)
		if err == nil || pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil
		}
		return retry.RetryableError(err)
	})
}
