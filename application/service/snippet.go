package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/search"
	"github.com/kodit-ai/kodit/domain/snippet"
)

// Snippet provides queries over content-addressed snippets and owns the
// cleanup of the sha-keyed search indexes (BM25 documents and code
// embeddings).
type Snippet struct {
	store              snippet.Store
	bm25Store          search.BM25Store
	codeEmbeddingStore search.EmbeddingStore
	logger             *slog.Logger
}

// NewSnippet creates a new Snippet service.
func NewSnippet(
	store snippet.Store,
	bm25Store search.BM25Store,
	codeEmbeddingStore search.EmbeddingStore,
	logger *slog.Logger,
) *Snippet {
	if logger == nil {
		logger = slog.Default()
	}
	return &Snippet{
		store:              store,
		bm25Store:          bm25Store,
		codeEmbeddingStore: codeEmbeddingStore,
		logger:             logger,
	}
}

// ListForCommit returns the snippets extracted from a commit, ordered by sha.
func (s *Snippet) ListForCommit(ctx context.Context, commitSHA string) ([]snippet.Snippet, error) {
	return s.store.FindByCommitSHA(ctx, commitSHA)
}

// FindBySHAs returns the snippets with the given shas.
func (s *Snippet) FindBySHAs(ctx context.Context, shas []string) ([]snippet.Snippet, error) {
	return s.store.FindBySHAs(ctx, shas)
}

// CountForCommit returns the number of snippets extracted from a commit.
func (s *Snippet) CountForCommit(ctx context.Context, commitSHA string) (int64, error) {
	return s.store.CountByCommitSHA(ctx, commitSHA)
}

// SHAsForCommits returns the distinct snippet shas referenced by the
// given commits.
func (s *Snippet) SHAsForCommits(ctx context.Context, commitSHAs []string) ([]string, error) {
	return s.store.SHAsForCommits(ctx, commitSHAs)
}

// DeleteIndexes removes the BM25 documents and code embedding vectors
// for the given snippet shas. Snippet bodies are left in place.
func (s *Snippet) DeleteIndexes(ctx context.Context, shas []string) error {
	if len(shas) == 0 {
		return nil
	}
	opts := []repository.Option{search.WithSnippetIDs(shas)}
	if s.bm25Store != nil {
		if err := s.bm25Store.DeleteBy(ctx, opts...); err != nil {
			return fmt.Errorf("delete bm25 documents: %w", err)
		}
	}
	if s.codeEmbeddingStore != nil {
		if err := s.codeEmbeddingStore.DeleteBy(ctx, opts...); err != nil {
			return fmt.Errorf("delete code embeddings: %w", err)
		}
	}
	return nil
}

// DeleteCommitAssociations removes the snippet-to-commit and
// snippet-to-file links for the given commits. Snippet bodies survive so
// other commits sharing the same content keep their snippets.
func (s *Snippet) DeleteCommitAssociations(ctx context.Context, commitSHAs []string) error {
	if len(commitSHAs) == 0 {
		return nil
	}
	if err := s.store.DeleteAssociationsForCommits(ctx, commitSHAs); err != nil {
		return fmt.Errorf("delete snippet associations: %w", err)
	}
	return nil
}

// DeleteOrphans removes snippet bodies no commit references anymore and
// returns how many were removed.
func (s *Snippet) DeleteOrphans(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteOrphans(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete orphan snippets: %w", err)
	}
	if deleted > 0 {
		s.logger.Debug("removed orphan snippets", slog.Int64("count", deleted))
	}
	return deleted, nil
}
