package tracking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kodit-ai/kodit/domain/task"
)

// Reporter receives status updates from trackers.
type Reporter interface {
	OnChange(ctx context.Context, status task.Status) error
}

// DBReporter persists status updates so progress survives restarts and
// can be queried over the API.
type DBReporter struct {
	statusStore task.StatusStore
	log         *slog.Logger
}

// NewDBReporter creates a reporter that writes statuses to the store.
func NewDBReporter(statusStore task.StatusStore, log *slog.Logger) *DBReporter {
	return &DBReporter{
		statusStore: statusStore,
		log:         log,
	}
}

// OnChange upserts the status row keyed by its derived ID.
func (r *DBReporter) OnChange(ctx context.Context, status task.Status) error {
	if _, err := r.statusStore.Save(ctx, status); err != nil {
		r.log.Warn("failed to persist status",
			slog.String("status_id", status.ID()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("persist status: %w", err)
	}
	return nil
}

var _ Reporter = (*DBReporter)(nil)
