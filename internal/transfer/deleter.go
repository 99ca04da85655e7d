package transfer

import (
	"context"
	"log/slog"
	"time"

	"s3sync/internal/models"
	"s3sync/internal/reconcile"
	"s3sync/pkg/utils"
)

type ObjectDeleter interface {
	DeleteObjects(ctx context.Context, keys []string) ([]string, []models.DeleteFailure, error)
}

// Deleter removes the ToDelete keys of a plan from the remote store.
type Deleter struct {
	client ObjectDeleter
}

func NewDeleter(client ObjectDeleter) *Deleter {
	return &Deleter{client: client}
}

func (d *Deleter) Execute(ctx context.Context, plan *reconcile.Plan) (*models.DeleteResult, error) {
	if plan.Mode != reconcile.ModeDelete {
		return nil, ErrWrongMode
	}

	result := newDeleteResult(plan)
	if len(plan.ToDelete) > 0 {
		deleted, failures, err := d.client.DeleteObjects(ctx, plan.ToDelete)
		result.DeletedFiles = append(result.DeletedFiles, deleted...)
		result.Failures = append(result.Failures, failures...)
		if err != nil {
			slog.Warn("delete stopped early", "deleted", len(deleted), "error", err)
			result.count()
			return result.DeleteResult, err
		}
	}

	result.count()
	return result.DeleteResult, nil
}

// DeleteReport describes what executing plan would delete.
func DeleteReport(plan *reconcile.Plan) *models.DeleteResult {
	result := newDeleteResult(plan)
	result.DryRun = true
	result.DeletedFiles = append(result.DeletedFiles, plan.ToDelete...)
	result.count()
	return result.DeleteResult
}

type deleteResult struct {
	*models.DeleteResult
}

func newDeleteResult(plan *reconcile.Plan) deleteResult {
	r := deleteResult{&models.DeleteResult{
		DeletedFiles:  []string{},
		OperationTime: utils.FormatTime(time.Now()),
	}}
	for _, failure := range plan.Failures {
		r.Failures = append(r.Failures, models.DeleteFailure{
			Key:     failure.Key,
			Message: failure.Err.Error(),
		})
	}
	return r
}

func (r deleteResult) count() {
	r.DeletedCount = len(r.DeletedFiles)
	r.FailedCount = len(r.Failures)
}
