package shop

import (
	"context"
	"time"

	"github.com/trolleyhq/trolley-backend/pkg/config"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
	"go.uber.org/multierr"
)

// ReconcileJob finishes interrupted completions. A shop record is the
// durable log of items that must leave the active list; this job
// re-runs the deletes for recent records so a crash between archive and
// delete never strands an item in both places.
type ReconcileJob struct {
	items   ItemStore
	history HistoryReader
	logg    *logger.Logger
	window  time.Duration
	now     func() time.Time
}

// ReconcileParams groups dependencies for the reconcile job.
type ReconcileParams struct {
	Items   ItemStore
	History HistoryReader
	Logger  *logger.Logger
	Config  config.ReconcileConfig
}

// NewReconcileJob builds the reconcile job.
func NewReconcileJob(params ReconcileParams) (*ReconcileJob, error) {
	if params.Items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item store is required")
	}
	if params.History == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "history store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	window := params.Config.Window
	if window <= 0 {
		window = 48 * time.Hour
	}
	return &ReconcileJob{
		items:   params.Items,
		history: params.History,
		logg:    params.Logger,
		window:  window,
		now:     time.Now,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *ReconcileJob) Name() string { return "shop-reconcile" }

// Run re-deletes archive leftovers from recent shop records.
func (j *ReconcileJob) Run(ctx context.Context) error {
	records, err := j.history.List(ctx, 0)
	if err != nil {
		return err
	}

	cutoff := j.now().UTC().Add(-j.window)
	var errs error
	var removed int
	for _, record := range records {
		if record.ShopDate.Before(cutoff) {
			continue
		}
		for _, snap := range record.Items {
			err := j.items.Delete(ctx, snap.Owner, snap.ID)
			if err == nil {
				removed++
				continue
			}
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				continue
			}
			errs = multierr.Append(errs, err)
		}
	}

	if removed > 0 {
		j.logg.Info(j.logg.WithField(ctx, "removed", removed), "reconciled archive leftovers")
	}
	return errs
}
