package persistence

import (
	"context"
	"testing"

	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/snippet"
	"github.com/kodit-ai/kodit/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnippetTestDB(t *testing.T) database.Database {
	t.Helper()
	db := newTestDB(t)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestSnippetStore_SaveForCommit_SharesBodiesAcrossCommits(t *testing.T) {
	ctx := context.Background()
	db := newSnippetTestDB(t)
	store := NewSnippetStore(db)

	content := "func Add(a, b int) int {\n\treturn a + b\n}"
	first := snippet.NewSnippet(content, ".go", []repository.File{
		repository.NewFileWithDetails("commit-1", "math/add.go", "blob-1", "text/x-go", ".go", 42),
	})
	second := snippet.NewSnippet(content, ".go", []repository.File{
		repository.NewFileWithDetails("commit-2", "math/add.go", "blob-1", "text/x-go", ".go", 42),
	})

	require.NoError(t, store.SaveForCommit(ctx, "commit-1", []snippet.Snippet{first}))
	require.NoError(t, store.SaveForCommit(ctx, "commit-2", []snippet.Snippet{second}))

	// One body row, shared by both commits.
	var bodies int64
	require.NoError(t, db.GORM().Model(&SnippetModel{}).Count(&bodies).Error)
	assert.Equal(t, int64(1), bodies)

	var associations int64
	require.NoError(t, db.GORM().Model(&SnippetCommitModel{}).Count(&associations).Error)
	assert.Equal(t, int64(2), associations)

	found, err := store.FindBySHAs(ctx, []string{first.SHA()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, content, found[0].Content())
}

func TestSnippetStore_SaveForCommit_Converges(t *testing.T) {
	ctx := context.Background()
	db := newSnippetTestDB(t)
	store := NewSnippetStore(db)

	snippets := []snippet.Snippet{
		snippet.NewSnippet("package main", ".go", nil),
		snippet.NewSnippet("package other", ".go", nil),
	}

	require.NoError(t, store.SaveForCommit(ctx, "commit-1", snippets))
	require.NoError(t, store.SaveForCommit(ctx, "commit-1", snippets))

	count, err := store.CountByCommitSHA(ctx, "commit-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSnippetStore_FindByCommitSHA_HydratesSourceFiles(t *testing.T) {
	ctx := context.Background()
	db := newSnippetTestDB(t)
	store := NewSnippetStore(db)
	fileStore := NewFileStore(db)

	file := repository.NewFileWithDetails("commit-1", "pkg/server.go", "blob-9", "text/x-go", ".go", 120)
	_, err := fileStore.Save(ctx, file)
	require.NoError(t, err)

	s := snippet.NewSnippet("func Serve() {}", ".go", []repository.File{file})
	require.NoError(t, store.SaveForCommit(ctx, "commit-1", []snippet.Snippet{s}))

	found, err := store.FindByCommitSHA(ctx, "commit-1")
	require.NoError(t, err)
	require.Len(t, found, 1)

	derived := found[0].DerivesFrom()
	require.Len(t, derived, 1)
	assert.Equal(t, "pkg/server.go", derived[0].Path())
	assert.Equal(t, "blob-9", derived[0].BlobSHA())
}

func TestSnippetStore_SHAsForCommits(t *testing.T) {
	ctx := context.Background()
	db := newSnippetTestDB(t)
	store := NewSnippetStore(db)

	a := snippet.NewSnippet("snippet a", ".go", nil)
	b := snippet.NewSnippet("snippet b", ".go", nil)
	require.NoError(t, store.SaveForCommit(ctx, "commit-1", []snippet.Snippet{a}))
	require.NoError(t, store.SaveForCommit(ctx, "commit-2", []snippet.Snippet{a, b}))

	shas, err := store.SHAsForCommits(ctx, []string{"commit-1", "commit-2"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.SHA(), b.SHA()}, shas)

	shas, err = store.SHAsForCommits(ctx, []string{"commit-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.SHA()}, shas)
}

func TestSnippetStore_DeleteAssociations_KeepsSharedBodies(t *testing.T) {
	ctx := context.Background()
	db := newSnippetTestDB(t)
	store := NewSnippetStore(db)

	shared := snippet.NewSnippet("shared across commits", ".go", nil)
	only := snippet.NewSnippet("only in commit-1", ".go", nil)
	require.NoError(t, store.SaveForCommit(ctx, "commit-1", []snippet.Snippet{shared, only}))
	require.NoError(t, store.SaveForCommit(ctx, "commit-2", []snippet.Snippet{shared}))

	require.NoError(t, store.DeleteAssociationsForCommits(ctx, []string{"commit-1"}))

	// Bodies survive association deletion until orphan collection runs.
	var bodies int64
	require.NoError(t, db.GORM().Model(&SnippetModel{}).Count(&bodies).Error)
	assert.Equal(t, int64(2), bodies)

	deleted, err := store.DeleteOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := store.FindBySHAs(ctx, []string{shared.SHA(), only.SHA()})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, shared.SHA(), remaining[0].SHA())
}
