package service

import (
	"context"
	"fmt"

	"github.com/kodit-ai/kodit/domain/task"
	"github.com/kodit-ai/kodit/domain/tracking"
)

// Tracking exposes task progress for repositories.
type Tracking struct {
	statusStore task.StatusStore
	taskStore   task.TaskStore
}

// NewTracking creates a new Tracking service.
func NewTracking(statusStore task.StatusStore, taskStore task.TaskStore) *Tracking {
	return &Tracking{statusStore: statusStore, taskStore: taskStore}
}

// Statuses returns all task statuses recorded for a repository.
func (s *Tracking) Statuses(ctx context.Context, repoID int64) ([]task.Status, error) {
	statuses, err := s.statusStore.FindByTrackable(ctx, task.TrackableTypeRepository, repoID)
	if err != nil {
		return nil, fmt.Errorf("find statuses: %w", err)
	}
	return statuses, nil
}

// Summary aggregates a repository's statuses into a single state.
// Queued tasks count as in-progress work even when every recorded
// status is terminal.
func (s *Tracking) Summary(ctx context.Context, repoID int64) (tracking.RepositoryStatusSummary, error) {
	statuses, err := s.Statuses(ctx, repoID)
	if err != nil {
		return tracking.RepositoryStatusSummary{}, err
	}

	pending, err := s.pendingTaskCount(ctx)
	if err != nil {
		return tracking.RepositoryStatusSummary{}, err
	}

	return tracking.StatusSummaryFromTasks(statuses, pending), nil
}

func (s *Tracking) pendingTaskCount(ctx context.Context) (int, error) {
	if s.taskStore == nil {
		return 0, nil
	}

	count, err := s.taskStore.CountPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("count pending tasks: %w", err)
	}
	return int(count), nil
}
