// Package service provides application layer services that orchestrate domain operations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/search"
	"github.com/kodit-ai/kodit/domain/snippet"
	"github.com/kodit-ai/kodit/internal/config"
)

// SearchOption configures a search request.
type SearchOption func(*searchConfig)

// searchConfig holds search parameters.
type searchConfig struct {
	limit     int
	offset    int
	languages []string
	keywords  []string
}

// newSearchConfig creates a searchConfig with defaults.
func newSearchConfig() *searchConfig {
	return &searchConfig{
		limit: config.DefaultSearchLimit,
	}
}

// WithLimit sets the maximum number of results.
func WithLimit(n int) SearchOption {
	return func(c *searchConfig) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithOffset sets the offset for pagination.
func WithOffset(n int) SearchOption {
	return func(c *searchConfig) {
		if n >= 0 {
			c.offset = n
		}
	}
}

// WithLanguages filters results by programming languages.
func WithLanguages(langs ...string) SearchOption {
	return func(c *searchConfig) {
		c.languages = langs
	}
}

// WithKeywords adds BM25 keywords to the search.
func WithKeywords(keywords ...string) SearchOption {
	return func(c *searchConfig) {
		c.keywords = keywords
	}
}

// SearchResult represents the result of a simple hybrid search.
type SearchResult struct {
	snippets []snippet.Snippet
	scores   map[string]float64
}

// Snippets returns the matched snippets, best first.
func (r SearchResult) Snippets() []snippet.Snippet {
	result := make([]snippet.Snippet, len(r.snippets))
	copy(result, r.snippets)
	return result
}

// Scores returns a map of snippet sha to fused search score.
func (r SearchResult) Scores() map[string]float64 {
	result := make(map[string]float64, len(r.scores))
	maps.Copy(result, r.scores)
	return result
}

// Count returns the number of results.
func (r SearchResult) Count() int {
	return len(r.snippets)
}

// MultiSearchResult represents the result of a multi-modal search.
// Documents are snippets; scores are keyed by snippet sha, the shared
// ID space all modes are mapped into before fusion.
type MultiSearchResult struct {
	snippets       []snippet.Snippet
	fusedScores    map[string]float64
	originalScores map[string][]float64
}

// NewMultiSearchResult creates a new MultiSearchResult.
func NewMultiSearchResult(
	snippets []snippet.Snippet,
	fusedScores map[string]float64,
	originalScores map[string][]float64,
) MultiSearchResult {
	snips := make([]snippet.Snippet, len(snippets))
	copy(snips, snippets)

	scores := make(map[string]float64, len(fusedScores))
	maps.Copy(scores, fusedScores)

	original := make(map[string][]float64, len(originalScores))
	maps.Copy(original, originalScores)

	return MultiSearchResult{
		snippets:       snips,
		fusedScores:    scores,
		originalScores: original,
	}
}

// Snippets returns the matched snippets, best first.
func (r MultiSearchResult) Snippets() []snippet.Snippet {
	result := make([]snippet.Snippet, len(r.snippets))
	copy(result, r.snippets)
	return result
}

// FusedScores returns a map of snippet sha to fused score.
func (r MultiSearchResult) FusedScores() map[string]float64 {
	result := make(map[string]float64, len(r.fusedScores))
	maps.Copy(result, r.fusedScores)
	return result
}

// OriginalScores returns the per-mode scores that went into the fusion,
// keyed by snippet sha.
func (r MultiSearchResult) OriginalScores() map[string][]float64 {
	result := make(map[string][]float64, len(r.originalScores))
	maps.Copy(result, r.originalScores)
	return result
}

// Count returns the number of results.
func (r MultiSearchResult) Count() int {
	return len(r.snippets)
}

// Search orchestrates hybrid code search: BM25 keyword search plus text
// and code vector search, fused with reciprocal rank fusion.
//
// BM25 and code vectors are keyed by snippet sha. Text vectors are keyed
// by the id of the summary enrichment they embed, so text results are
// mapped back to snippet shas through the snippet association before
// fusion; fusion then operates on a single id space.
type Search struct {
	embedder         search.Embedder
	textStore        search.EmbeddingStore
	codeStore        search.EmbeddingStore
	bm25Store        search.BM25Store
	snippetStore     snippet.Store
	associationStore enrichment.AssociationStore
	fusion           search.Fusion
	closed           *atomic.Bool
	logger           *slog.Logger
}

// NewSearch creates a new Search service. Stores that are nil disable
// the corresponding search mode.
func NewSearch(
	embedder search.Embedder,
	textStore search.EmbeddingStore,
	codeStore search.EmbeddingStore,
	bm25Store search.BM25Store,
	snippetStore snippet.Store,
	associationStore enrichment.AssociationStore,
	closed *atomic.Bool,
	logger *slog.Logger,
) *Search {
	if logger == nil {
		logger = slog.Default()
	}
	return &Search{
		embedder:         embedder,
		textStore:        textStore,
		codeStore:        codeStore,
		bm25Store:        bm25Store,
		snippetStore:     snippetStore,
		associationStore: associationStore,
		fusion:           search.NewFusion(),
		closed:           closed,
		logger:           logger,
	}
}

// Available reports whether any search mode is configured.
func (s *Search) Available() bool {
	return s.textStore != nil || s.codeStore != nil || s.bm25Store != nil
}

// Query performs a simple hybrid code search with options. The query text
// is used for all configured modes.
func (s *Search) Query(ctx context.Context, query string, opts ...SearchOption) (SearchResult, error) {
	if s.closed != nil && s.closed.Load() {
		return SearchResult{}, ErrClientClosed
	}

	searchCfg := newSearchConfig()
	for _, opt := range opts {
		opt(searchCfg)
	}

	var filterOpts []search.FiltersOption
	if len(searchCfg.languages) > 0 {
		filterOpts = append(filterOpts, search.WithLanguage(searchCfg.languages[0]))
	}
	filters := search.NewFilters(filterOpts...)

	keywords := searchCfg.keywords
	if len(keywords) == 0 {
		keywords = []string{query}
	}

	request := search.NewMultiRequest(searchCfg.limit, query, query, keywords, filters)

	result, err := s.Search(ctx, request)
	if err != nil {
		return SearchResult{}, err
	}

	return SearchResult{
		snippets: result.Snippets(),
		scores:   result.FusedScores(),
	}, nil
}

// Search performs a multi-modal search and fuses the per-mode rankings.
// Each BM25 keyword contributes its own ranked list, so documents that
// match several keywords are boosted. Lists are fused in snippet-sha
// space; text-mode results are translated from enrichment ids first.
func (s *Search) Search(ctx context.Context, request search.MultiRequest) (MultiSearchResult, error) {
	topK := request.TopK()
	if topK <= 0 {
		topK = 10
	}
	filters := request.Filters()

	var fusionLists [][]search.FusionRequest

	if keywords := request.Keywords(); len(keywords) > 0 && s.bm25Store != nil {
		for _, keyword := range keywords {
			results, err := s.bm25Store.Find(ctx,
				search.WithQuery(keyword),
				search.WithFilters(filters),
				repository.WithLimit(topK*2),
			)
			if err != nil {
				return MultiSearchResult{}, fmt.Errorf("bm25 search %q: %w", keyword, err)
			}
			if len(results) > 0 {
				fusionLists = append(fusionLists, toFusionRequests(results))
			}
		}
	}

	if codeQuery := request.CodeQuery(); codeQuery != "" && s.codeStore != nil && s.embedder != nil {
		results, err := s.vectorSearch(ctx, s.codeStore, codeQuery, topK*2, filters)
		if err != nil {
			return MultiSearchResult{}, fmt.Errorf("code vector search: %w", err)
		}
		if len(results) > 0 {
			fusionLists = append(fusionLists, toFusionRequests(results))
		}
	}

	if textQuery := request.TextQuery(); textQuery != "" && s.textStore != nil && s.embedder != nil {
		results, err := s.vectorSearch(ctx, s.textStore, textQuery, topK*2, filters)
		if err != nil {
			return MultiSearchResult{}, fmt.Errorf("text vector search: %w", err)
		}
		mapped, err := s.mapEnrichmentResultsToSnippets(ctx, results)
		if err != nil {
			return MultiSearchResult{}, fmt.Errorf("map text results: %w", err)
		}
		if len(mapped) > 0 {
			fusionLists = append(fusionLists, mapped)
		}
	}

	if len(fusionLists) == 0 {
		return NewMultiSearchResult(nil, nil, nil), nil
	}

	fusedResults := s.fusion.FuseTopK(topK, fusionLists...)

	shas := make([]string, 0, len(fusedResults))
	fusedScores := make(map[string]float64, len(fusedResults))
	originalScores := make(map[string][]float64, len(fusedResults))
	for _, result := range fusedResults {
		fusedScores[result.ID()] = result.Score()
		originalScores[result.ID()] = result.OriginalScores()
		shas = append(shas, result.ID())
	}

	if len(shas) == 0 {
		return NewMultiSearchResult(nil, fusedScores, originalScores), nil
	}

	snippets, err := s.snippetStore.FindBySHAs(ctx, shas)
	if err != nil {
		return MultiSearchResult{}, fmt.Errorf("load result snippets: %w", err)
	}

	return NewMultiSearchResult(orderByScore(snippets, fusedScores), fusedScores, originalScores), nil
}

// vectorSearch embeds the query and runs similarity search against a store.
func (s *Search) vectorSearch(
	ctx context.Context,
	store search.EmbeddingStore,
	query string,
	limit int,
	filters search.Filters,
) ([]search.Result, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, nil
	}

	return store.Search(ctx,
		search.WithEmbedding(vectors[0]),
		search.WithFilters(filters),
		repository.WithLimit(limit),
	)
}

// mapEnrichmentResultsToSnippets translates text-mode results, keyed by
// summary enrichment id, into snippet-sha fusion requests. Order and
// scores are preserved; results whose enrichment has no snippet
// association are dropped.
func (s *Search) mapEnrichmentResultsToSnippets(ctx context.Context, results []search.Result) ([]search.FusionRequest, error) {
	if len(results) == 0 || s.associationStore == nil {
		return nil, nil
	}

	ids := make([]int64, 0, len(results))
	for _, r := range results {
		id, err := strconv.ParseInt(r.SnippetID(), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	associations, err := s.associationStore.Find(ctx,
		enrichment.WithEnrichmentIDIn(ids),
		enrichment.WithEntityType(enrichment.EntityTypeSnippet),
	)
	if err != nil {
		return nil, fmt.Errorf("find snippet associations: %w", err)
	}

	shaByEnrichment := make(map[string]string, len(associations))
	for _, a := range associations {
		shaByEnrichment[strconv.FormatInt(a.EnrichmentID(), 10)] = a.EntityID()
	}

	requests := make([]search.FusionRequest, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		sha, ok := shaByEnrichment[r.SnippetID()]
		if !ok || seen[sha] {
			continue
		}
		seen[sha] = true
		requests = append(requests, search.NewFusionRequest(sha, r.Score()))
	}

	return requests, nil
}

// toFusionRequests converts search results to fusion requests.
func toFusionRequests(results []search.Result) []search.FusionRequest {
	requests := make([]search.FusionRequest, len(results))
	for i, r := range results {
		requests[i] = search.NewFusionRequest(r.SnippetID(), r.Score())
	}
	return requests
}

// orderByScore orders snippets by their fused scores, best first.
func orderByScore(snippets []snippet.Snippet, scores map[string]float64) []snippet.Snippet {
	ordered := make([]snippet.Snippet, len(snippets))
	copy(ordered, snippets)

	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i].SHA()] > scores[ordered[j].SHA()]
	})

	return ordered
}
