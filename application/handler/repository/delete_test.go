package repository

import (
	"context"
	"os"
	"strconv"
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

// fakeBM25Store keeps indexed document ids in memory so tests can
// observe deletions without an FTS backend.
type fakeBM25Store struct {
	docs map[string]bool
}

func newFakeBM25Store() *fakeBM25Store {
	return &fakeBM25Store{docs: map[string]bool{}}
}

func (f *fakeBM25Store) Index(_ context.Context, request search.IndexRequest) error {
	for _, d := range request.Documents() {
		f.docs[d.SnippetID()] = true
	}
	return nil
}

func (f *fakeBM25Store) Find(_ context.Context, _ ...repository.Option) ([]search.Result, error) {
	return nil, nil
}

func (f *fakeBM25Store) DeleteBy(_ context.Context, options ...repository.Option) error {
	q := repository.Build(options...)
	for _, id := range search.SnippetIDsFrom(q) {
		delete(f.docs, id)
	}
	return nil
}

type deleteFixture struct {
	handler    *Delete
	taskStore  persistence.TaskStore
	textStore  search.EmbeddingStore
	codeStore  search.EmbeddingStore
	bm25       *fakeBM25Store
	repoStores handler.RepositoryStores
}

func newDeleteFixture(t *testing.T, db database.Database) deleteFixture {
	t.Helper()
	logger := testLogger()

	textStore, err := persistence.NewSQLiteEmbeddingStore(db, persistence.TaskNameText, logger)
	require.NoError(t, err)
	codeStore, err := persistence.NewSQLiteEmbeddingStore(db, persistence.TaskNameCode, logger)
	require.NoError(t, err)
	bm25 := newFakeBM25Store()

	enrichments := service.NewEnrichment(
		persistence.NewEnrichmentStore(db),
		persistence.NewAssociationStore(db),
		textStore,
		persistence.NewChunkLineRangeStore(db),
	)
	snippets := service.NewSnippet(persistence.NewSnippetStore(db), bm25, codeStore, logger)

	taskStore := persistence.NewTaskStore(db)
	repoStores := handler.RepositoryStores{
		Repositories: persistence.NewRepositoryStore(db),
		Commits:      persistence.NewCommitStore(db),
		Branches:     persistence.NewBranchStore(db),
		Tags:         persistence.NewTagStore(db),
		Files:        persistence.NewFileStore(db),
	}

	h := NewDelete(
		repoStores,
		enrichments,
		snippets,
		service.NewQueue(taskStore, logger),
		&fakeTrackerFactory{},
		logger,
	)
	return deleteFixture{
		handler:    h,
		taskStore:  taskStore,
		textStore:  textStore,
		codeStore:  codeStore,
		bm25:       bm25,
		repoStores: repoStores,
	}
}

func TestDelete_RemovesAllDerivedData(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	fx := newDeleteFixture(t, db)

	repo := seedClonedRepo(t, db, "main")
	workDir := repo.WorkingCopy().Path()
	seedCommit(t, db, repo.ID(), "c1")

	_, err := fx.repoStores.Branches.SaveAll(ctx, []repository.Branch{
		repository.NewBranch(repo.ID(), "main", "c1", true),
	})
	require.NoError(t, err)
	_, err = fx.repoStores.Tags.SaveAll(ctx, []repository.Tag{
		repository.NewTag(repo.ID(), "v1", "c1"),
	})
	require.NoError(t, err)
	_, err = fx.repoStores.Files.SaveAll(ctx, []repository.File{
		repository.NewFile("c1", "main.go", "go", 42),
	})
	require.NoError(t, err)

	sn := snippet.NewSnippet("func main() {}", ".go", nil)
	snippetStore := persistence.NewSnippetStore(db)
	require.NoError(t, snippetStore.SaveForCommit(ctx, "c1", []snippet.Snippet{sn}))
	require.NoError(t, fx.bm25.Index(ctx, search.NewIndexRequest([]search.Document{
		search.NewDocument(sn.SHA(), sn.Content()),
	})))
	require.NoError(t, fx.codeStore.SaveAll(ctx, []search.Embedding{
		search.NewEmbedding(sn.SHA(), []float64{1, 0, 0}),
	}))

	enrichmentStore := persistence.NewEnrichmentStore(db)
	associationStore := persistence.NewAssociationStore(db)

	commitSummary, err := enrichmentStore.Save(ctx, enrichment.NewSnippetSummary("summary"))
	require.NoError(t, err)
	_, err = associationStore.Save(ctx, enrichment.CommitAssociation(commitSummary.ID(), "c1"))
	require.NoError(t, err)

	structure, err := enrichmentStore.Save(ctx, enrichment.NewEnrichment(
		enrichment.TypeArchitecture, enrichment.SubtypeStructure, enrichment.EntityTypeRepository, "layout",
	))
	require.NoError(t, err)
	_, err = associationStore.Save(ctx, enrichment.RepositoryAssociation(
		structure.ID(), strconv.FormatInt(repo.ID(), 10),
	))
	require.NoError(t, err)

	enrichmentIDs := []string{
		strconv.FormatInt(commitSummary.ID(), 10),
		strconv.FormatInt(structure.ID(), 10),
	}
	require.NoError(t, fx.textStore.SaveAll(ctx, []search.Embedding{
		search.NewEmbedding(enrichmentIDs[0], []float64{0, 1, 0}),
		search.NewEmbedding(enrichmentIDs[1], []float64{0, 0, 1}),
	}))

	// A leftover pending task must not survive the repository.
	queue := service.NewQueue(fx.taskStore, testLogger())
	require.NoError(t, queue.EnqueueOperations(ctx,
		[]task.Operation{task.OperationSyncRepository},
		task.PriorityBackground,
		map[string]any{"repository_id": repo.ID()},
	))

	require.NoError(t, fx.handler.Execute(ctx, map[string]any{"repository_id": repo.ID()}))

	textLeft, err := fx.textStore.Find(ctx, search.WithSnippetIDs(enrichmentIDs))
	require.NoError(t, err)
	assert.Empty(t, textLeft, "text embeddings for the repository's enrichments must be gone")

	codeLeft, err := fx.codeStore.Find(ctx, search.WithSnippetIDs([]string{sn.SHA()}))
	require.NoError(t, err)
	assert.Empty(t, codeLeft, "code embeddings for the repository's snippets must be gone")
	assert.Empty(t, fx.bm25.docs, "keyword documents for the repository's snippets must be gone")

	rows, err := enrichmentStore.Find(ctx, repository.WithIDIn([]int64{commitSummary.ID(), structure.ID()}))
	require.NoError(t, err)
	assert.Empty(t, rows, "commit-scoped and repo-scoped enrichment rows must be gone")

	bodies, err := snippetStore.FindBySHAs(ctx, []string{sn.SHA()})
	require.NoError(t, err)
	assert.Empty(t, bodies, "unreferenced snippet bodies must be garbage collected")

	branches, err := fx.repoStores.Branches.Find(ctx, repository.WithRepoID(repo.ID()))
	require.NoError(t, err)
	assert.Empty(t, branches)
	tags, err := fx.repoStores.Tags.Find(ctx, repository.WithRepoID(repo.ID()))
	require.NoError(t, err)
	assert.Empty(t, tags)
	files, err := fx.repoStores.Files.Find(ctx, repository.WithCommitSHAIn([]string{"c1"}))
	require.NoError(t, err)
	assert.Empty(t, files)
	commits, err := fx.repoStores.Commits.Find(ctx, repository.WithRepoID(repo.ID()))
	require.NoError(t, err)
	assert.Empty(t, commits)

	exists, err := fx.repoStores.Repositories.Exists(ctx, repository.WithID(repo.ID()))
	require.NoError(t, err)
	assert.False(t, exists, "the repository row must be gone")

	_, err = os.Stat(workDir)
	assert.True(t, os.IsNotExist(err), "the clone directory must be removed")

	tasks, err := fx.taskStore.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks, "pending tasks for the repository must be drained")
}

func TestDelete_KeepsSnippetsSharedWithOtherRepositories(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	fx := newDeleteFixture(t, db)

	doomed := seedClonedRepo(t, db, "main")
	seedCommit(t, db, doomed.ID(), "c1")

	survivor, err := repository.NewRepository("https://github.com/test/other")
	require.NoError(t, err)
	survivor, err = fx.repoStores.Repositories.Save(ctx, survivor)
	require.NoError(t, err)
	seedCommit(t, db, survivor.ID(), "c2")

	// The same content extracted from both repositories shares one body.
	sn := snippet.NewSnippet("func shared() {}", ".go", nil)
	snippetStore := persistence.NewSnippetStore(db)
	require.NoError(t, snippetStore.SaveForCommit(ctx, "c1", []snippet.Snippet{sn}))
	require.NoError(t, snippetStore.SaveForCommit(ctx, "c2", []snippet.Snippet{sn}))

	require.NoError(t, fx.handler.Execute(ctx, map[string]any{"repository_id": doomed.ID()}))

	bodies, err := snippetStore.FindBySHAs(ctx, []string{sn.SHA()})
	require.NoError(t, err)
	require.Len(t, bodies, 1, "bodies still referenced by other commits survive")

	remaining, err := snippetStore.SHAsForCommits(ctx, []string{"c2"})
	require.NoError(t, err)
	assert.Equal(t, []string{sn.SHA()}, remaining)
}
