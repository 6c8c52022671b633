package commit

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/kodit-ai/kodit/application/handler"
	"github.com/kodit-ai/kodit/application/service"
	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/search"
	"github.com/kodit-ai/kodit/domain/snippet"
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

type rescanFixture struct {
	enrichmentStore persistence.EnrichmentStore
	snippetStore    persistence.SnippetStore
	fileStore       persistence.FileStore
	statusStore     persistence.StatusStore
	taskStore       persistence.TaskStore
	bm25Store       search.BM25Store
	handler         *Rescan
}

func newRescanFixture(t *testing.T, db database.Database, logger *slog.Logger) rescanFixture {
	t.Helper()

	enrichmentStore := persistence.NewEnrichmentStore(db)
	associationStore := persistence.NewAssociationStore(db)
	lineRangeStore := persistence.NewChunkLineRangeStore(db)
	snippetStore := persistence.NewSnippetStore(db)
	fileStore := persistence.NewFileStore(db)
	statusStore := persistence.NewStatusStore(db)
	taskStore := persistence.NewTaskStore(db)

	bm25Store, err := persistence.NewSQLiteBM25Store(db, logger)
	require.NoError(t, err)

	enrichSvc := service.NewEnrichment(enrichmentStore, associationStore, nil, lineRangeStore)
	snippetSvc := service.NewSnippet(snippetStore, bm25Store, nil, logger)
	queue := service.NewQueue(taskStore, logger)

	h := NewRescan(
		enrichSvc, snippetSvc, fileStore, statusStore,
		queue, task.NewPrescribedOperations(false, false),
		&fakeTrackerFactory{}, logger,
	)

	return rescanFixture{
		enrichmentStore: enrichmentStore,
		snippetStore:    snippetStore,
		fileStore:       fileStore,
		statusStore:     statusStore,
		taskStore:       taskStore,
		bm25Store:       bm25Store,
		handler:         h,
	}
}

func TestRescan_ClearsDerivedDataAndRequeues(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db := openTestDB(t)
	fx := newRescanFixture(t, db, logger)

	repoID := int64(7)
	commitSHA := "abc123def456"

	// Seed a content-addressed snippet with a BM25 document keyed by its sha.
	snip := snippet.NewSnippet("func hello() {}", ".go", nil)
	require.NoError(t, fx.snippetStore.SaveForCommit(ctx, commitSHA, []snippet.Snippet{snip}))
	doc := search.NewDocument(snip.SHA(), snip.Content())
	require.NoError(t, fx.bm25Store.Index(ctx, search.NewIndexRequest([]search.Document{doc})))

	// Seed a summary enrichment attached to the commit.
	summary, err := fx.enrichmentStore.Save(ctx, enrichment.NewSnippetSummary("greets the caller"))
	require.NoError(t, err)
	associationStore := persistence.NewAssociationStore(db)
	_, err = associationStore.Save(ctx, enrichment.CommitAssociation(summary.ID(), commitSHA))
	require.NoError(t, err)

	// Seed a commit file record and a stale status.
	f := repository.NewFileWithDetails(commitSHA, "main.go", "blob1", "text/x-go", ".go", 15)
	_, err = fx.fileStore.Save(ctx, f)
	require.NoError(t, err)

	status := task.NewStatus(task.OperationScanCommit, nil, task.TrackableTypeRepository, repoID)
	_, err = fx.statusStore.Save(ctx, status.Fail("broken run"))
	require.NoError(t, err)

	payload := map[string]any{
		"repository_id": repoID,
		"commit_sha":    commitSHA,
	}
	require.NoError(t, fx.handler.Execute(ctx, payload))

	// Enrichments for the commit are gone.
	enrichments, err := fx.enrichmentStore.Find(ctx, enrichment.WithCommitSHA(commitSHA))
	require.NoError(t, err)
	assert.Empty(t, enrichments)

	// The sha-keyed BM25 document is gone.
	results, err := fx.bm25Store.Find(ctx, search.WithQuery("hello"))
	require.NoError(t, err)
	assert.Empty(t, results, "BM25 documents for the commit's snippets should be removed")

	// The snippet body survives but is no longer linked to the commit.
	bodies, err := fx.snippetStore.FindBySHAs(ctx, []string{snip.SHA()})
	require.NoError(t, err)
	assert.Len(t, bodies, 1, "content-addressed snippet bodies are kept for reuse")
	linked, err := fx.snippetStore.FindByCommitSHA(ctx, commitSHA)
	require.NoError(t, err)
	assert.Empty(t, linked)

	// Commit file records are gone.
	files, err := fx.fileStore.Find(ctx, repository.WithCommitSHA(commitSHA))
	require.NoError(t, err)
	assert.Empty(t, files)

	// Stale statuses are gone.
	statuses, err := fx.statusStore.FindByTrackable(ctx, task.TrackableTypeRepository, repoID)
	require.NoError(t, err)
	assert.Empty(t, statuses)

	// The scan-and-index pipeline is re-enqueued at user priority.
	tasks, err := fx.taskStore.FindAll(ctx)
	require.NoError(t, err)
	wantOps := task.NewPrescribedOperations(false, false).ScanAndIndexCommit()
	require.Len(t, tasks, len(wantOps))
	for i, tk := range tasks {
		assert.Equal(t, wantOps[i], tk.Operation())
		assert.Equal(t, int(task.PriorityUserInitiated)+i, tk.Priority())
		assert.Equal(t, commitSHA, tk.Payload()["commit_sha"])
	}
}

func TestRescan_DeletesOldStatuses(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db := openTestDB(t)
	fx := newRescanFixture(t, db, logger)

	repoID := int64(42)

	// Seed a failed status for this repository.
	failedStatus := task.NewStatus(
		task.OperationScanCommit,
		nil,
		task.TrackableTypeRepository,
		repoID,
	)
	failedStatus = failedStatus.Fail("something went wrong")
	_, err := fx.statusStore.Save(ctx, failedStatus)
	require.NoError(t, err)

	// Verify the status exists.
	statuses, err := fx.statusStore.FindByTrackable(ctx, task.TrackableTypeRepository, repoID)
	require.NoError(t, err)
	assert.Len(t, statuses, 1)

	payload := map[string]any{
		"repository_id": repoID,
		"commit_sha":    "abc123def456",
	}

	err = fx.handler.Execute(ctx, payload)
	require.NoError(t, err)

	// Old statuses should be gone.
	statuses, err = fx.statusStore.FindByTrackable(ctx, task.TrackableTypeRepository, repoID)
	require.NoError(t, err)
	assert.Empty(t, statuses)

	// Statuses for other repositories should be unaffected.
	otherStatus := task.NewStatus(
		task.OperationScanCommit,
		nil,
		task.TrackableTypeRepository,
		int64(99),
	)
	_, err = fx.statusStore.Save(ctx, otherStatus)
	require.NoError(t, err)

	count, err := fx.statusStore.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
