package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryStore_RefreshCounts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, AutoMigrate(db))

	store := NewRepositoryStore(db)

	repo, err := repository.NewRepository("https://github.com/test/repo")
	require.NoError(t, err)
	saved, err := store.Save(ctx, repo)
	require.NoError(t, err)

	author := repository.NewAuthor("Dev", "dev@example.com")
	commitStore := NewCommitStore(db)
	for _, sha := range []string{"sha1", "sha2"} {
		_, err := commitStore.Save(ctx, repository.NewCommit(sha, saved.ID(), "msg", author, author, time.Now(), time.Now()))
		require.NoError(t, err)
	}

	_, err = NewBranchStore(db).SaveAll(ctx, []repository.Branch{
		repository.NewBranch(saved.ID(), "main", "sha2", true),
	})
	require.NoError(t, err)

	_, err = NewTagStore(db).SaveAll(ctx, []repository.Tag{
		repository.NewTag(saved.ID(), "v1", "sha1"),
		repository.NewTag(saved.ID(), "v2", "sha2"),
	})
	require.NoError(t, err)

	require.NoError(t, store.RefreshCounts(ctx, saved.ID()))

	reloaded, err := store.FindOne(ctx, repository.WithID(saved.ID()))
	require.NoError(t, err)
	assert.Equal(t, repository.Counts{Commits: 2, Branches: 1, Tags: 2}, reloaded.Counts())
}

func TestRepositoryStore_RefreshCountsScopedToRepo(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, AutoMigrate(db))

	store := NewRepositoryStore(db)

	first, err := repository.NewRepository("https://github.com/test/one")
	require.NoError(t, err)
	first, err = store.Save(ctx, first)
	require.NoError(t, err)

	second, err := repository.NewRepository("https://github.com/test/two")
	require.NoError(t, err)
	second, err = store.Save(ctx, second)
	require.NoError(t, err)

	author := repository.NewAuthor("Dev", "dev@example.com")
	_, err = NewCommitStore(db).Save(ctx, repository.NewCommit("sha1", first.ID(), "msg", author, author, time.Now(), time.Now()))
	require.NoError(t, err)

	require.NoError(t, store.RefreshCounts(ctx, first.ID()))
	require.NoError(t, store.RefreshCounts(ctx, second.ID()))

	firstReloaded, err := store.FindOne(ctx, repository.WithID(first.ID()))
	require.NoError(t, err)
	assert.Equal(t, 1, firstReloaded.Counts().Commits)

	secondReloaded, err := store.FindOne(ctx, repository.WithID(second.ID()))
	require.NoError(t, err)
	assert.Equal(t, 0, secondReloaded.Counts().Commits)
}
