package persistence

import (
	"context"
	"testing"

	"github.com/kodit-ai/kodit/domain/task"
	"github.com/kodit-ai/kodit/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskTestDB(t *testing.T) database.Database {
	t.Helper()
	db := newTestDB(t)
	require.NoError(t, AutoMigrate(db))
	return db
}

func taskRowByDedupKey(t *testing.T, db database.Database, key string) TaskModel {
	t.Helper()
	var model TaskModel
	require.NoError(t, db.GORM().Where("dedup_key = ?", key).First(&model).Error)
	return model
}

func TestTaskStore_UpsertRefreshesPendingRow(t *testing.T) {
	ctx := context.Background()
	db := newTaskTestDB(t)
	store := NewTaskStore(db)

	payload := map[string]any{"repository_id": int64(1), "commit_sha": "abc123"}

	first := task.NewTask(task.OperationScanCommit, int(task.PriorityBackground), payload)
	_, err := store.Save(ctx, first)
	require.NoError(t, err)

	// Enqueueing the same work at a higher urgency updates the pending
	// row instead of duplicating it.
	second := task.NewTask(task.OperationScanCommit, int(task.PriorityUserInitiated), payload)
	_, err = store.Save(ctx, second)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.GORM().Model(&TaskModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	row := taskRowByDedupKey(t, db, first.DedupKey())
	assert.Equal(t, int(task.PriorityUserInitiated), row.Priority)
	assert.Equal(t, string(task.StatePending), row.State)
}

func TestTaskStore_UpsertReactivatesDoneRow(t *testing.T) {
	ctx := context.Background()
	db := newTaskTestDB(t)
	store := NewTaskStore(db)

	payload := map[string]any{"repository_id": int64(1), "commit_sha": "abc123"}

	first := task.NewTask(task.OperationScanCommit, int(task.PriorityBackground), payload)
	_, err := store.Save(ctx, first)
	require.NoError(t, err)

	claimed, found, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, found)
	_, err = store.Save(ctx, claimed.Completed())
	require.NoError(t, err)

	// A fresh enqueue of the same work (e.g. a rescan) revives the
	// retained done row for a new run.
	_, err = store.Save(ctx, task.NewTask(task.OperationScanCommit, int(task.PriorityUserInitiated), payload))
	require.NoError(t, err)

	row := taskRowByDedupKey(t, db, first.DedupKey())
	assert.Equal(t, string(task.StatePending), row.State)
	assert.Equal(t, int(task.PriorityUserInitiated), row.Priority)
	assert.Nil(t, row.TakenAt)
}

func TestTaskStore_UpsertLeavesInFlightRowAlone(t *testing.T) {
	ctx := context.Background()
	db := newTaskTestDB(t)
	store := NewTaskStore(db)

	payload := map[string]any{"repository_id": int64(1), "commit_sha": "abc123"}

	first := task.NewTask(task.OperationScanCommit, int(task.PriorityBackground), payload)
	_, err := store.Save(ctx, first)
	require.NoError(t, err)

	_, found, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, found)

	// A colliding enqueue while the task is being worked must not reset
	// it to pending under the worker.
	_, err = store.Save(ctx, task.NewTask(task.OperationScanCommit, int(task.PriorityUserInitiated), payload))
	require.NoError(t, err)

	row := taskRowByDedupKey(t, db, first.DedupKey())
	assert.Equal(t, string(task.StateInFlight), row.State)
	assert.Equal(t, int(task.PriorityBackground), row.Priority)
	assert.Equal(t, 1, row.Attempts)
}
