package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/task"
	"github.com/kodit-ai/kodit/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// taskUpsertColumns are the columns refreshed when an enqueue collides with
// an existing row on dedup_key. Resetting state re-activates a retained
// done/failed row for the new run.
var taskUpsertColumns = []string{
	"priority", "payload", "state", "taken_at", "attempts", "last_error", "updated_at",
}

// taskUpsertClause builds the dedup_key conflict clause. A row that is
// currently in flight is left untouched: resetting it to pending would
// race the worker that claimed it.
func taskUpsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoUpdates: clause.AssignmentColumns(taskUpsertColumns),
		Where: clause.Where{
			Exprs: []clause.Expression{gorm.Expr("tasks.state <> ?", string(task.StateInFlight))},
		},
	}
}

// TaskStore implements task.TaskStore using GORM.
type TaskStore struct {
	db     database.Database
	mapper TaskMapper
}

// NewTaskStore creates a new TaskStore.
func NewTaskStore(db database.Database) TaskStore {
	return TaskStore{
		db:     db,
		mapper: TaskMapper{},
	}
}

// Get retrieves a task by ID.
func (s TaskStore) Get(ctx context.Context, id int64) (task.Task, error) {
	var model TaskModel
	result := s.db.Session(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return task.Task{}, fmt.Errorf("%w: task id %d", database.ErrNotFound, id)
		}
		return task.Task{}, fmt.Errorf("get task: %w", result.Error)
	}
	return s.mapper.ToDomain(model)
}

// FindAll retrieves all pending tasks in queue order.
func (s TaskStore) FindAll(ctx context.Context) ([]task.Task, error) {
	var models []TaskModel
	result := s.db.Session(ctx).
		Where("state = ?", string(task.StatePending)).
		Order("priority ASC, created_at ASC, id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("find all tasks: %w", result.Error)
	}
	return s.toDomainSlice(models)
}

// FindPending retrieves pending tasks ordered by priority, oldest first
// within a priority.
func (s TaskStore) FindPending(ctx context.Context, options ...repository.Option) ([]task.Task, error) {
	var models []TaskModel
	db := s.db.Session(ctx).
		Where("state = ?", string(task.StatePending)).
		Order("priority ASC, created_at ASC, id ASC")
	db = database.ApplyOptions(db, options...)
	result := db.Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("find pending tasks: %w", result.Error)
	}
	return s.toDomainSlice(models)
}

// Save persists a task. New tasks upsert on dedup_key so re-enqueueing
// identical work updates the existing row instead of duplicating it.
// Tasks with an ID update in place, which records state transitions.
func (s TaskStore) Save(ctx context.Context, t task.Task) (task.Task, error) {
	model, err := s.mapper.ToModel(t)
	if err != nil {
		return task.Task{}, err
	}

	var result *gorm.DB
	if model.ID != 0 {
		result = s.db.Session(ctx).Save(&model)
	} else {
		result = s.db.Session(ctx).Clauses(taskUpsertClause()).Create(&model)
	}
	if result.Error != nil {
		return task.Task{}, fmt.Errorf("save task: %w", result.Error)
	}

	return s.mapper.ToDomain(model)
}

// SaveBulk persists a batch of tasks in one transaction, upserting each
// on dedup_key.
func (s TaskStore) SaveBulk(ctx context.Context, tasks []task.Task) ([]task.Task, error) {
	if len(tasks) == 0 {
		return []task.Task{}, nil
	}

	models := make([]TaskModel, len(tasks))
	for i, t := range tasks {
		model, err := s.mapper.ToModel(t)
		if err != nil {
			return nil, err
		}
		models[i] = model
	}

	err := s.db.Session(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(taskUpsertClause()).Create(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save tasks bulk: %w", err)
	}

	return s.toDomainSlice(models)
}

// Delete removes a task.
func (s TaskStore) Delete(ctx context.Context, t task.Task) error {
	result := s.db.Session(ctx).Delete(&TaskModel{}, t.ID())
	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	return nil
}

// DeleteAll removes all tasks.
func (s TaskStore) DeleteAll(ctx context.Context) error {
	result := s.db.Session(ctx).Where("1 = 1").Delete(&TaskModel{})
	if result.Error != nil {
		return fmt.Errorf("delete all tasks: %w", result.Error)
	}
	return nil
}

// CountPending returns the number of pending tasks.
func (s TaskStore) CountPending(ctx context.Context, options ...repository.Option) (int64, error) {
	var count int64
	db := s.db.Session(ctx).Model(&TaskModel{}).
		Where("state = ?", string(task.StatePending))
	db = database.ApplyConditions(db, options...)
	result := db.Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count pending tasks: %w", result.Error)
	}
	return count, nil
}

// Exists checks if a task with the given ID exists.
func (s TaskStore) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	result := s.db.Session(ctx).Model(&TaskModel{}).Where("id = ?", id).Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("check task exists: %w", result.Error)
	}
	return count > 0, nil
}

// Dequeue atomically claims the most urgent pending task and moves it to
// in_flight. The claim happens inside a transaction: on Postgres the
// candidate row is locked with SKIP LOCKED so concurrent workers never
// claim the same task; on SQLite the write transaction serializes claims.
func (s TaskStore) Dequeue(ctx context.Context) (task.Task, bool, error) {
	return s.dequeue(ctx, nil)
}

// DequeueByOperation claims the most urgent pending task with the given
// operation.
func (s TaskStore) DequeueByOperation(ctx context.Context, operation task.Operation) (task.Task, bool, error) {
	return s.dequeue(ctx, &operation)
}

func (s TaskStore) dequeue(ctx context.Context, operation *task.Operation) (task.Task, bool, error) {
	var claimed TaskModel
	found := false

	err := s.db.Session(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("state = ?", string(task.StatePending)).
			Order("priority ASC, created_at ASC, id ASC")
		if operation != nil {
			query = query.Where("type = ?", operation.String())
		}
		if s.db.IsPostgres() {
			query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}

		var model TaskModel
		if err := query.First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		now := time.Now().UTC()
		update := tx.Model(&TaskModel{}).
			Where("id = ? AND state = ?", model.ID, string(task.StatePending)).
			Updates(map[string]any{
				"state":      string(task.StateInFlight),
				"taken_at":   now,
				"attempts":   gorm.Expr("attempts + 1"),
				"updated_at": now,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			// Another worker won the race; report empty and let the
			// caller poll again.
			return nil
		}

		model.State = string(task.StateInFlight)
		model.TakenAt = &now
		model.Attempts++
		model.UpdatedAt = now
		claimed = model
		found = true
		return nil
	})
	if err != nil {
		return task.Task{}, false, fmt.Errorf("dequeue task: %w", err)
	}
	if !found {
		return task.Task{}, false, nil
	}

	t, err := s.mapper.ToDomain(claimed)
	if err != nil {
		return task.Task{}, false, err
	}
	return t, true, nil
}

func (s TaskStore) toDomainSlice(models []TaskModel) ([]task.Task, error) {
	tasks := make([]task.Task, len(models))
	for i, model := range models {
		t, err := s.mapper.ToDomain(model)
		if err != nil {
			return nil, err
		}
		tasks[i] = t
	}
	return tasks, nil
}
