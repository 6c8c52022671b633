package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/search"
)

// Embedding provides domain logic for embedding operations.
type Embedding interface {
	// Index indexes documents using domain business rules.
	Index(ctx context.Context, request search.IndexRequest, opts ...search.IndexOption) error

	// Find embeds the query text and performs vector similarity search.
	Find(ctx context.Context, query string, options ...repository.Option) ([]search.Result, error)

	// Exists checks whether any row matches the given options.
	Exists(ctx context.Context, options ...repository.Option) (bool, error)
}

// EmbeddingService implements domain logic for embedding operations.
type EmbeddingService struct {
	store       search.EmbeddingStore
	embedder    search.Embedder
	budget      search.TokenBudget
	parallelism int
}

// NewEmbedding creates a new embedding service.
// The budget controls text truncation and adaptive batching.
func NewEmbedding(store search.EmbeddingStore, embedder search.Embedder, budget search.TokenBudget) (*EmbeddingService, error) {
	if store == nil {
		return nil, fmt.Errorf("NewEmbedding: nil store")
	}
	return &EmbeddingService{
		store:       store,
		embedder:    embedder,
		budget:      budget,
		parallelism: 1,
	}, nil
}

// WithParallelism sets how many batches are embedded concurrently.
func (s *EmbeddingService) WithParallelism(n int) *EmbeddingService {
	if n < 1 {
		n = 1
	}
	s.parallelism = n
	return s
}

// Index indexes documents using domain business rules:
// validate → deduplicate against store → batch embed → batch save.
func (s *EmbeddingService) Index(ctx context.Context, request search.IndexRequest, opts ...search.IndexOption) error {
	cfg := search.NewIndexConfig(opts...)

	documents := request.Documents()

	// Skip if empty
	if len(documents) == 0 {
		return nil
	}

	// Filter out invalid documents
	valid := make([]search.Document, 0, len(documents))
	for _, doc := range documents {
		if doc.SnippetID() != "" && strings.TrimSpace(doc.Text()) != "" {
			valid = append(valid, doc)
		}
	}

	if len(valid) == 0 {
		return nil
	}

	// Deduplicate: find which snippet IDs already exist
	ids := make([]string, len(valid))
	for i, doc := range valid {
		ids[i] = doc.SnippetID()
	}

	found, err := s.store.Find(ctx, search.WithSnippetIDs(ids))
	if err != nil {
		return fmt.Errorf("check existing: %w", err)
	}

	existing := make(map[string]struct{}, len(found))
	for _, emb := range found {
		existing[emb.SnippetID()] = struct{}{}
	}

	var toEmbed []search.Document
	for _, doc := range valid {
		if _, ok := existing[doc.SnippetID()]; !ok {
			toEmbed = append(toEmbed, doc)
		}
	}

	if len(toEmbed) == 0 {
		return nil
	}

	// Embed
	if s.embedder == nil {
		return fmt.Errorf("Index: nil embedder")
	}

	batches := s.budget.Batches(toEmbed)
	total := len(toEmbed)

	type batchRange struct {
		docs       []search.Document
		start, end int
	}
	ranges := make([]batchRange, len(batches))
	offset := 0
	for i, batch := range batches {
		ranges[i] = batchRange{docs: batch, start: offset, end: offset + len(batch)}
		offset += len(batch)
	}

	var mu sync.Mutex
	completed := 0
	var batchErrors []error

	report := func(r batchRange, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			batchErrors = append(batchErrors, fmt.Errorf("batch [%d:%d]: %w", r.start, r.end, err))
			if cfg.BatchError() != nil {
				cfg.BatchError()(r.start, r.end, err)
			}
			return
		}
		completed += len(r.docs)
		if cfg.Progress() != nil {
			cfg.Progress()(completed, total)
		}
	}

	if s.parallelism <= 1 {
		for _, r := range ranges {
			if err := ctx.Err(); err != nil {
				return err
			}
			report(r, s.indexBatch(ctx, r.docs))
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.parallelism)
		for _, r := range ranges {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				report(r, s.indexBatch(gctx, r.docs))
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if len(batchErrors) > 0 {
		return fmt.Errorf("%d of %d embedding batches failed: %w", len(batchErrors), len(batches), errors.Join(batchErrors...))
	}

	return nil
}

// indexBatch embeds one batch of documents and saves the vectors.
func (s *EmbeddingService) indexBatch(ctx context.Context, batch []search.Document) error {
	texts := make([]string, len(batch))
	for j, doc := range batch {
		texts[j] = s.budget.Truncate(doc.Text())
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	if len(vectors) != len(batch) {
		return fmt.Errorf("count mismatch: got %d, expected %d", len(vectors), len(batch))
	}

	embeddings := make([]search.Embedding, len(batch))
	for j, doc := range batch {
		embeddings[j] = search.NewEmbedding(doc.SnippetID(), vectors[j])
	}

	if err := s.store.SaveAll(ctx, embeddings); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	return nil
}

// Find embeds the query text and performs vector similarity search.
func (s *EmbeddingService) Find(ctx context.Context, query string, options ...repository.Option) ([]search.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if s.embedder == nil {
		return nil, fmt.Errorf("Find: nil embedder")
	}

	embeddings, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return []search.Result{}, nil
	}

	combined := make([]repository.Option, 0, len(options)+1)
	combined = append(combined, search.WithEmbedding(embeddings[0]))
	combined = append(combined, options...)

	return s.store.Search(ctx, combined...)
}

// Exists checks whether any row matches the given options.
func (s *EmbeddingService) Exists(ctx context.Context, options ...repository.Option) (bool, error) {
	return s.store.Exists(ctx, options...)
}
