package persistence

import (
	"context"
	"fmt"

	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/task"
	"github.com/kodit-ai/kodit/internal/database"
)

// StatusStore implements task.StatusStore using GORM.
type StatusStore struct {
	db     database.Database
	mapper TaskStatusMapper
}

// NewStatusStore creates a new StatusStore.
func NewStatusStore(db database.Database) StatusStore {
	return StatusStore{
		db:     db,
		mapper: TaskStatusMapper{},
	}
}

// Save creates a new task status or updates an existing one. The status
// ID is derived from the trackable and operation, so repeated progress
// updates land on the same row.
func (s StatusStore) Save(ctx context.Context, status task.Status) (task.Status, error) {
	model := s.mapper.ToModel(status)

	result := s.db.Session(ctx).Save(&model)
	if result.Error != nil {
		return task.Status{}, fmt.Errorf("save status: %w", result.Error)
	}

	return s.mapper.ToDomain(model), nil
}

// Find retrieves task statuses matching the given options.
func (s StatusStore) Find(ctx context.Context, options ...repository.Option) ([]task.Status, error) {
	var models []TaskStatusModel
	db := database.ApplyOptions(s.db.Session(ctx).Model(&TaskStatusModel{}), options...)
	result := db.Order("created_at ASC").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("find statuses: %w", result.Error)
	}
	return s.toDomainSlice(models), nil
}

// FindByTrackable retrieves task statuses for a trackable entity.
func (s StatusStore) FindByTrackable(ctx context.Context, trackableType task.TrackableType, trackableID int64) ([]task.Status, error) {
	return s.Find(ctx, task.WithTrackable(trackableType, trackableID)...)
}

// Count returns the number of task statuses matching the given options.
func (s StatusStore) Count(ctx context.Context, options ...repository.Option) (int64, error) {
	var count int64
	db := database.ApplyConditions(s.db.Session(ctx).Model(&TaskStatusModel{}), options...)
	result := db.Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count statuses: %w", result.Error)
	}
	return count, nil
}

// DeleteBy removes task statuses matching the given options.
func (s StatusStore) DeleteBy(ctx context.Context, options ...repository.Option) error {
	db := database.ApplyConditions(s.db.Session(ctx), options...)
	result := db.Delete(&TaskStatusModel{})
	if result.Error != nil {
		return fmt.Errorf("delete statuses: %w", result.Error)
	}
	return nil
}

func (s StatusStore) toDomainSlice(models []TaskStatusModel) []task.Status {
	statuses := make([]task.Status, len(models))
	for i, model := range models {
		statuses[i] = s.mapper.ToDomain(model)
	}
	return statuses
}
