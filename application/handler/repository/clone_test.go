package repository

import (
	"context"
	"testing"

	"github.com/kodit-ai/kodit/application/service"
	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/task"
	"github.com/kodit-ai/kodit/infrastructure/persistence"
	"github.com/kodit-ai/kodit/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCloneHandler(t *testing.T, db database.Database, scanner *fakeScanner) (*Clone, persistence.TaskStore) {
	t.Helper()
	logger := testLogger()
	taskStore := persistence.NewTaskStore(db)
	return NewClone(
		persistence.NewRepositoryStore(db),
		persistence.NewBranchStore(db),
		persistence.NewTagStore(db),
		persistence.NewCommitStore(db),
		&fakeCloner{clonePath: t.TempDir()},
		scanner,
		service.NewQueue(taskStore, logger),
		task.NewPrescribedOperations(false, false),
		&fakeTrackerFactory{},
		logger,
	), taskStore
}

func TestClone_QueuesIndexingAtUserPriority(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	repo, err := repository.NewRepository("https://github.com/test/repo")
	require.NoError(t, err)
	saved, err := persistence.NewRepositoryStore(db).Save(ctx, repo)
	require.NoError(t, err)

	scanner := &fakeScanner{branches: []repository.Branch{
		repository.NewBranch(saved.ID(), "feature", "feat-head", false),
		repository.NewBranch(saved.ID(), "main", "main-head", true),
	}}
	h, taskStore := newCloneHandler(t, db, scanner)

	require.NoError(t, h.Execute(ctx, map[string]any{"repository_id": saved.ID()}))

	// The working copy and the defaulted tracking config are persisted.
	updated, err := persistence.NewRepositoryStore(db).FindOne(ctx, repository.WithID(saved.ID()))
	require.NoError(t, err)
	assert.True(t, updated.HasWorkingCopy())
	require.True(t, updated.HasTrackingConfig())
	assert.Equal(t, "main", updated.TrackingConfig().Branch())

	// The full pipeline for the tracked head runs at user priority.
	tasks, err := taskStore.FindAll(ctx)
	require.NoError(t, err)
	wantOps := task.NewPrescribedOperations(false, false).ScanAndIndexCommit()
	require.Len(t, tasks, len(wantOps))
	for i, tk := range tasks {
		assert.Equal(t, wantOps[i], tk.Operation())
		assert.Equal(t, int(task.PriorityUserInitiated)+i, tk.Priority())
		assert.Equal(t, "main-head", tk.Payload()["commit_sha"])
	}

	// No commit rows exist yet, so no branch records may be created.
	branches, err := persistence.NewBranchStore(db).Find(ctx, repository.WithRepoID(saved.ID()))
	require.NoError(t, err)
	assert.Empty(t, branches, "branch rows must only reference persisted commits")
}

func TestClone_SkipsWhenAlreadyCloned(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	repo := seedClonedRepo(t, db, "main")

	h, taskStore := newCloneHandler(t, db, &fakeScanner{})

	require.NoError(t, h.Execute(ctx, map[string]any{"repository_id": repo.ID()}))

	tasks, err := taskStore.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
