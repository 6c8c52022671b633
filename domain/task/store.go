package task

import (
	"context"

	"github.com/kodit-ai/kodit/domain/repository"
)

// TaskStore defines persistence operations for queued tasks.
//
// Save upserts by dedup key while a task is pending: enqueueing a task
// whose dedup key matches an existing pending row updates that row
// instead of inserting a duplicate. Saving a task with an ID updates
// the row in place, which is how terminal states are recorded.
type TaskStore interface {
	// Get returns the task with the given ID.
	Get(ctx context.Context, id int64) (Task, error)

	// FindAll returns all pending tasks.
	FindAll(ctx context.Context) ([]Task, error)

	// FindPending returns pending tasks ordered by priority, oldest first
	// within a priority.
	FindPending(ctx context.Context, options ...repository.Option) ([]Task, error)

	// Save persists a task, upserting on dedup key for pending rows.
	Save(ctx context.Context, t Task) (Task, error)

	// SaveBulk persists a batch of tasks in one transaction.
	SaveBulk(ctx context.Context, tasks []Task) ([]Task, error)

	// Delete removes a task.
	Delete(ctx context.Context, t Task) error

	// DeleteAll removes all tasks.
	DeleteAll(ctx context.Context) error

	// CountPending returns the number of pending tasks.
	CountPending(ctx context.Context, options ...repository.Option) (int64, error)

	// Exists reports whether a task with the given ID exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// Dequeue atomically claims the most urgent pending task and moves
	// it to in_flight. The second return value is false when the queue
	// is empty. At most one caller may claim a given task.
	Dequeue(ctx context.Context) (Task, bool, error)

	// DequeueByOperation claims the most urgent pending task with the
	// given operation.
	DequeueByOperation(ctx context.Context, operation Operation) (Task, bool, error)
}

// StatusStore defines persistence operations for task progress statuses.
type StatusStore interface {
	// Save persists a status, upserting on the status ID.
	Save(ctx context.Context, status Status) (Status, error)

	// Find returns statuses matching the given options.
	Find(ctx context.Context, options ...repository.Option) ([]Status, error)

	// FindByTrackable returns statuses for a trackable entity.
	FindByTrackable(ctx context.Context, trackableType TrackableType, trackableID int64) ([]Status, error)

	// Count returns the number of statuses matching the given options.
	Count(ctx context.Context, options ...repository.Option) (int64, error)

	// DeleteBy removes statuses matching the given options.
	DeleteBy(ctx context.Context, options ...repository.Option) error
}
