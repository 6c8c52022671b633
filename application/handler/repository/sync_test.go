package repository

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kodit-ai/kodit/application/handler"
	"github.com/kodit-ai/kodit/application/service"
	"github.com/kodit-ai/kodit/domain/repository"
	domainservice "github.com/kodit-ai/kodit/domain/service"
	"github.com/kodit-ai/kodit/domain/task"
	"github.com/kodit-ai/kodit/infrastructure/persistence"
	"github.com/kodit-ai/kodit/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTracker struct{}

func (f *fakeTracker) SetTotal(_ context.Context, _ int)             {}
func (f *fakeTracker) SetCurrent(_ context.Context, _ int, _ string) {}
func (f *fakeTracker) Skip(_ context.Context, _ string)              {}
func (f *fakeTracker) Fail(_ context.Context, _ string)              {}
func (f *fakeTracker) Complete(_ context.Context)                    {}

type fakeTrackerFactory struct{}

func (f *fakeTrackerFactory) ForOperation(_ task.Operation, _ task.TrackableType, _ int64) handler.Tracker {
	return &fakeTracker{}
}

// fakeCloner pretends every clone and update succeeds, returning a
// fixed local path.
type fakeCloner struct {
	clonePath string
}

func (f *fakeCloner) ClonePathFromURI(_ string) string { return f.clonePath }

func (f *fakeCloner) Clone(_ context.Context, _ string) (string, error) {
	return f.clonePath, nil
}

func (f *fakeCloner) CloneToPath(_ context.Context, _ string, _ string) error { return nil }

func (f *fakeCloner) Update(_ context.Context, repo repository.Repository) (string, error) {
	if repo.HasWorkingCopy() {
		return repo.WorkingCopy().Path(), nil
	}
	return f.clonePath, nil
}

func (f *fakeCloner) Ensure(_ context.Context, _ string) (string, error) {
	return f.clonePath, nil
}

// fakeScanner serves canned branch and tag metadata.
type fakeScanner struct {
	branches []repository.Branch
	tags     []repository.Tag
}

func (f *fakeScanner) ScanCommit(_ context.Context, _ string, _ string, _ int64) (domainservice.ScanCommitResult, error) {
	return domainservice.ScanCommitResult{}, nil
}

func (f *fakeScanner) ScanBranch(_ context.Context, _ string, _ string, _ int64) ([]repository.Commit, error) {
	return nil, nil
}

func (f *fakeScanner) ScanAllBranches(_ context.Context, _ string, _ int64) ([]repository.Branch, error) {
	return f.branches, nil
}

func (f *fakeScanner) ScanAllTags(_ context.Context, _ string, _ int64) ([]repository.Tag, error) {
	return f.tags, nil
}

func (f *fakeScanner) FilesForCommitsBatch(_ context.Context, _ string, _ []string) ([]repository.File, error) {
	return nil, nil
}

func openTestDB(t *testing.T) database.Database {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///"+dbPath)
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seedClonedRepo(t *testing.T, db database.Database, branch string) repository.Repository {
	t.Helper()
	ctx := context.Background()
	repo, err := repository.NewRepository("https://github.com/test/repo")
	require.NoError(t, err)
	repo = repo.WithWorkingCopy(repository.NewWorkingCopy(t.TempDir(), "https://github.com/test/repo"))
	if branch != "" {
		repo = repo.WithTrackingConfig(repository.NewTrackingConfigForBranch(branch))
	}
	saved, err := persistence.NewRepositoryStore(db).Save(ctx, repo)
	require.NoError(t, err)
	return saved
}

func seedCommit(t *testing.T, db database.Database, repoID int64, sha string) {
	t.Helper()
	ctx := context.Background()
	author := repository.NewAuthor("Dev", "dev@example.com")
	c := repository.NewCommit(sha, repoID, "message", author, author, time.Now(), time.Now())
	_, err := persistence.NewCommitStore(db).Save(ctx, c)
	require.NoError(t, err)
}

func newSyncHandler(db database.Database, scanner *fakeScanner) (*Sync, persistence.TaskStore) {
	logger := testLogger()
	taskStore := persistence.NewTaskStore(db)
	return NewSync(
		persistence.NewRepositoryStore(db),
		persistence.NewBranchStore(db),
		persistence.NewTagStore(db),
		persistence.NewCommitStore(db),
		&fakeCloner{},
		scanner,
		service.NewQueue(taskStore, logger),
		task.NewPrescribedOperations(false, false),
		&fakeTrackerFactory{},
		logger,
	), taskStore
}

func TestSync_ExistingHeadEnqueuesNothing(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	repo := seedClonedRepo(t, db, "main")
	seedCommit(t, db, repo.ID(), "head1")

	scanner := &fakeScanner{branches: []repository.Branch{
		repository.NewBranch(repo.ID(), "main", "head1", true),
	}}
	h, taskStore := newSyncHandler(db, scanner)

	require.NoError(t, h.Execute(ctx, map[string]any{"repository_id": repo.ID()}))

	tasks, err := taskStore.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks, "an already-scanned head must not re-enqueue the pipeline")

	// last_scanned_at still advances.
	updated, err := persistence.NewRepositoryStore(db).FindOne(ctx, repository.WithID(repo.ID()))
	require.NoError(t, err)
	assert.False(t, updated.LastScannedAt().IsZero())
}

func TestSync_NewHeadEnqueuesPipeline(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	repo := seedClonedRepo(t, db, "main")

	scanner := &fakeScanner{branches: []repository.Branch{
		repository.NewBranch(repo.ID(), "main", "head2", true),
	}}
	h, taskStore := newSyncHandler(db, scanner)

	require.NoError(t, h.Execute(ctx, map[string]any{"repository_id": repo.ID()}))

	tasks, err := taskStore.FindAll(ctx)
	require.NoError(t, err)
	wantOps := task.NewPrescribedOperations(false, false).ScanAndIndexCommit()
	require.Len(t, tasks, len(wantOps))
	for i, tk := range tasks {
		assert.Equal(t, wantOps[i], tk.Operation())
		assert.Equal(t, int(task.PriorityBackground)+i, tk.Priority())
		assert.Equal(t, "head2", tk.Payload()["commit_sha"])
	}
}

func TestSync_TwoPhaseBranchAndTagSync(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	repo := seedClonedRepo(t, db, "dev")
	seedCommit(t, db, repo.ID(), "sha-old")

	branchStore := persistence.NewBranchStore(db)
	tagStore := persistence.NewTagStore(db)

	// Pre-existing refs that are gone from the remote.
	_, err := branchStore.SaveAll(ctx, []repository.Branch{
		repository.NewBranch(repo.ID(), "gone", "sha-old", false),
	})
	require.NoError(t, err)
	_, err = tagStore.SaveAll(ctx, []repository.Tag{
		repository.NewTag(repo.ID(), "v0", "sha-old"),
	})
	require.NoError(t, err)

	scanner := &fakeScanner{
		branches: []repository.Branch{
			// Head not scanned yet: phase 1 must skip it.
			repository.NewBranch(repo.ID(), "main", "sha-new", true),
			repository.NewBranch(repo.ID(), "dev", "sha-old", false),
		},
		tags: []repository.Tag{
			repository.NewTag(repo.ID(), "v1", "sha-old"),
		},
	}
	h, _ := newSyncHandler(db, scanner)

	require.NoError(t, h.Execute(ctx, map[string]any{"repository_id": repo.ID()}))

	branches, err := branchStore.Find(ctx, repository.WithRepoID(repo.ID()))
	require.NoError(t, err)
	require.Len(t, branches, 1, "unscanned heads skipped, stale branches pruned")
	assert.Equal(t, "dev", branches[0].Name())

	tags, err := tagStore.Find(ctx, repository.WithRepoID(repo.ID()))
	require.NoError(t, err)
	require.Len(t, tags, 1, "stale tags pruned, persisted targets kept")
	assert.Equal(t, "v1", tags[0].Name())

	// The denormalized totals follow the reconciled refs.
	updated, err := persistence.NewRepositoryStore(db).FindOne(ctx, repository.WithID(repo.ID()))
	require.NoError(t, err)
	assert.Equal(t, repository.Counts{Commits: 1, Branches: 1, Tags: 1}, updated.Counts())
}

func TestSync_TagPatternResolvesLatestMatch(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	repo, err := repository.NewRepository("https://github.com/test/repo")
	require.NoError(t, err)
	repo = repo.
		WithWorkingCopy(repository.NewWorkingCopy(t.TempDir(), "https://github.com/test/repo")).
		WithTrackingConfig(repository.NewTrackingConfigForTag("v*"))
	saved, err := persistence.NewRepositoryStore(db).Save(ctx, repo)
	require.NoError(t, err)

	author := repository.NewAuthor("Dev", "dev@example.com")
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	scanner := &fakeScanner{
		tags: []repository.Tag{
			repository.NewAnnotatedTag(saved.ID(), "v1.0.0", "sha-a", "first", author, older),
			repository.NewAnnotatedTag(saved.ID(), "v1.1.0", "sha-b", "second", author, newer),
			repository.NewAnnotatedTag(saved.ID(), "rel-1", "sha-c", "other", author, newer),
		},
	}
	h, taskStore := newSyncHandler(db, scanner)

	require.NoError(t, h.Execute(ctx, map[string]any{"repository_id": saved.ID()}))

	tasks, err := taskStore.FindAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, tasks, "the matching tag's target commit should be queued")
	for _, tk := range tasks {
		assert.Equal(t, "sha-b", tk.Payload()["commit_sha"],
			"the most recently tagged match wins")
	}
}
