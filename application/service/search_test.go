package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/search"
	"github.com/kodit-ai/kodit/domain/snippet"
)

// fakeEmbedder implements search.Embedder for testing.
type fakeEmbedder struct {
	vectors [][]float64
	err     error
}

func (f fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make([][]float64, len(texts))
	for i := range texts {
		if i < len(f.vectors) {
			result[i] = f.vectors[i]
		} else {
			result[i] = f.vectors[0]
		}
	}
	return result, nil
}

// fakeEmbeddingStore implements search.EmbeddingStore for testing.
type fakeEmbeddingStore struct {
	results []search.Result
	err     error
}

func (f fakeEmbeddingStore) SaveAll(_ context.Context, _ []search.Embedding) error { return nil }
func (f fakeEmbeddingStore) Find(_ context.Context, _ ...repository.Option) ([]search.Embedding, error) {
	return nil, nil
}
func (f fakeEmbeddingStore) Search(_ context.Context, _ ...repository.Option) ([]search.Result, error) {
	return f.results, f.err
}
func (f fakeEmbeddingStore) Exists(_ context.Context, _ ...repository.Option) (bool, error) {
	return false, nil
}
func (f fakeEmbeddingStore) DeleteBy(_ context.Context, _ ...repository.Option) error { return nil }

// fakeBM25Store implements search.BM25Store for testing.
type fakeBM25Store struct {
	resultsByKeyword map[string][]search.Result
	err              error
}

func (f fakeBM25Store) Index(_ context.Context, _ search.IndexRequest) error { return nil }
func (f fakeBM25Store) Find(_ context.Context, opts ...repository.Option) ([]search.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	q := repository.Build(opts...)
	query, _ := search.QueryFrom(q)
	return f.resultsByKeyword[query], nil
}
func (f fakeBM25Store) DeleteBy(_ context.Context, _ ...repository.Option) error { return nil }

// fakeSnippetStore implements snippet.Store for testing. FindBySHAs
// returns the stored snippets whose sha is requested.
type fakeSnippetStore struct {
	snippets []snippet.Snippet
}

func (f fakeSnippetStore) SaveForCommit(_ context.Context, _ string, _ []snippet.Snippet) error {
	return nil
}
func (f fakeSnippetStore) FindByCommitSHA(_ context.Context, _ string) ([]snippet.Snippet, error) {
	return f.snippets, nil
}
func (f fakeSnippetStore) FindBySHAs(_ context.Context, shas []string) ([]snippet.Snippet, error) {
	want := make(map[string]bool, len(shas))
	for _, sha := range shas {
		want[sha] = true
	}
	var result []snippet.Snippet
	for _, s := range f.snippets {
		if want[s.SHA()] {
			result = append(result, s)
		}
	}
	return result, nil
}
func (f fakeSnippetStore) CountByCommitSHA(_ context.Context, _ string) (int64, error) {
	return int64(len(f.snippets)), nil
}
func (f fakeSnippetStore) SHAsForCommits(_ context.Context, _ []string) ([]string, error) {
	shas := make([]string, len(f.snippets))
	for i, s := range f.snippets {
		shas[i] = s.SHA()
	}
	return shas, nil
}
func (f fakeSnippetStore) DeleteAssociationsForCommits(_ context.Context, _ []string) error {
	return nil
}
func (f fakeSnippetStore) DeleteOrphans(_ context.Context) (int64, error) { return 0, nil }

// fakeAssociationStore implements enrichment.AssociationStore for testing.
type fakeAssociationStore struct {
	associations []enrichment.Association
}

func (f fakeAssociationStore) Find(_ context.Context, _ ...repository.Option) ([]enrichment.Association, error) {
	return f.associations, nil
}
func (f fakeAssociationStore) FindOne(_ context.Context, _ ...repository.Option) (enrichment.Association, error) {
	if len(f.associations) > 0 {
		return f.associations[0], nil
	}
	return enrichment.Association{}, nil
}
func (f fakeAssociationStore) Count(_ context.Context, _ ...repository.Option) (int64, error) {
	return int64(len(f.associations)), nil
}
func (f fakeAssociationStore) Save(_ context.Context, a enrichment.Association) (enrichment.Association, error) {
	return a, nil
}
func (f fakeAssociationStore) Delete(_ context.Context, _ enrichment.Association) error  { return nil }
func (f fakeAssociationStore) DeleteBy(_ context.Context, _ ...repository.Option) error { return nil }

func TestSearch_EmbeddingFailure_ReturnsError(t *testing.T) {
	embedErr := errors.New("model unavailable")
	svc := NewSearch(
		fakeEmbedder{err: embedErr},
		fakeEmbeddingStore{},
		nil,
		nil,
		fakeSnippetStore{},
		fakeAssociationStore{},
		nil,
		nil,
	)

	req := search.NewMultiRequest(10, "test query", "test query", nil, search.NewFilters())
	_, err := svc.Search(context.Background(), req)

	if err == nil {
		t.Fatal("expected error when embedding fails, got nil")
	}
	if !errors.Is(err, embedErr) {
		t.Errorf("expected error to wrap %v, got %v", embedErr, err)
	}
}

func TestSearch_KeywordsProduceSeparateFusionLists(t *testing.T) {
	// Two keywords each returning different results. If they're separate
	// fusion lists, a snippet appearing in both gets boosted by RRF.
	// If flattened into one list, the second occurrence gets a worse rank.
	snipA := snippet.NewSnippet("code a", ".go", nil)
	snipB := snippet.NewSnippet("code b", ".go", nil)
	snipC := snippet.NewSnippet("code c", ".go", nil)

	bm25 := fakeBM25Store{
		resultsByKeyword: map[string][]search.Result{
			"auth": {
				search.NewResult(snipA.SHA(), 5.0),
				search.NewResult(snipB.SHA(), 3.0),
			},
			"login": {
				search.NewResult(snipB.SHA(), 4.0),
				search.NewResult(snipC.SHA(), 2.0),
			},
		},
	}

	store := fakeSnippetStore{snippets: []snippet.Snippet{snipA, snipB, snipC}}
	svc := NewSearch(nil, nil, nil, bm25, store, fakeAssociationStore{}, nil, nil)

	req := search.NewMultiRequest(10, "", "", []string{"auth", "login"}, search.NewFilters())
	result, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scores := result.FusedScores()

	// Snippet B appears in both keyword lists, so it should have the highest
	// fused score (sum of RRF scores from two lists)
	if scores[snipB.SHA()] <= scores[snipA.SHA()] {
		t.Errorf("snippet in both lists should score higher than one in a single list: got B=%f, A=%f", scores[snipB.SHA()], scores[snipA.SHA()])
	}
	if scores[snipB.SHA()] <= scores[snipC.SHA()] {
		t.Errorf("snippet in both lists should score higher than one in a single list: got B=%f, C=%f", scores[snipB.SHA()], scores[snipC.SHA()])
	}
}

func TestSearch_TextResultsMappedToSnippetSHAs(t *testing.T) {
	// Text vectors are keyed by summary enrichment id. The service must
	// translate them into snippet shas before fusing, so that a snippet
	// found by both the code index and its summary is boosted rather than
	// listed twice under different ids.
	snip := snippet.NewSnippet("func Handle() {}", ".go", nil)
	other := snippet.NewSnippet("def handle():", ".py", nil)

	textStore := fakeEmbeddingStore{results: []search.Result{
		search.NewResult("42", 0.9),  // summary enrichment for snip
		search.NewResult("777", 0.5), // enrichment without a snippet association
	}}
	codeStore := fakeEmbeddingStore{results: []search.Result{
		search.NewResult(snip.SHA(), 0.8),
		search.NewResult(other.SHA(), 0.7),
	}}

	associations := fakeAssociationStore{associations: []enrichment.Association{
		enrichment.SnippetAssociation(42, snip.SHA()),
	}}
	store := fakeSnippetStore{snippets: []snippet.Snippet{snip, other}}

	svc := NewSearch(
		fakeEmbedder{vectors: [][]float64{{0.1, 0.2, 0.3}}},
		textStore,
		codeStore,
		nil,
		store,
		associations,
		nil,
		nil,
	)

	req := search.NewMultiRequest(10, "handle requests", "handle requests", nil, search.NewFilters())
	result, err := svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scores := result.FusedScores()
	if _, ok := scores["42"]; ok {
		t.Error("raw enrichment id leaked into fused scores")
	}
	if _, ok := scores["777"]; ok {
		t.Error("unassociated enrichment id leaked into fused scores")
	}
	if scores[snip.SHA()] <= scores[other.SHA()] {
		t.Errorf("snippet matched by code and summary should outrank code-only match: got %f vs %f", scores[snip.SHA()], scores[other.SHA()])
	}

	snippets := result.Snippets()
	if len(snippets) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(snippets))
	}
	if snippets[0].SHA() != snip.SHA() {
		t.Errorf("expected best result %s, got %s", snip.SHA(), snippets[0].SHA())
	}
}

func TestSearch_TextVectorFailure_ReturnsError(t *testing.T) {
	searchErr := errors.New("vector store down")
	svc := NewSearch(
		fakeEmbedder{vectors: [][]float64{{0.1, 0.2, 0.3}}},
		fakeEmbeddingStore{err: searchErr},
		nil,
		nil,
		fakeSnippetStore{},
		fakeAssociationStore{},
		nil,
		nil,
	)

	req := search.NewMultiRequest(10, "test", "test", nil, search.NewFilters())
	_, err := svc.Search(context.Background(), req)

	if err == nil {
		t.Fatal("expected error when text vector search fails, got nil")
	}
	if !errors.Is(err, searchErr) {
		t.Errorf("expected error to wrap %v, got %v", searchErr, err)
	}
}

func TestSearch_BM25Failure_ReturnsError(t *testing.T) {
	bm25Err := errors.New("bm25 connection lost")
	svc := NewSearch(
		nil,
		nil,
		nil,
		fakeBM25Store{err: bm25Err},
		fakeSnippetStore{},
		fakeAssociationStore{},
		nil,
		nil,
	)

	req := search.NewMultiRequest(10, "", "", []string{"test"}, search.NewFilters())
	_, err := svc.Search(context.Background(), req)

	if err == nil {
		t.Fatal("expected error when bm25 search fails, got nil")
	}
	if !errors.Is(err, bm25Err) {
		t.Errorf("expected error to wrap %v, got %v", bm25Err, err)
	}
}

func TestSearch_NoStoresConfigured_ReturnsEmpty(t *testing.T) {
	svc := NewSearch(nil, nil, nil, nil, fakeSnippetStore{}, fakeAssociationStore{}, nil, nil)

	req := search.NewMultiRequest(10, "test", "test", []string{"keyword"}, search.NewFilters())
	result, err := svc.Search(context.Background(), req)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count() != 0 {
		t.Errorf("expected 0 results, got %d", result.Count())
	}
}

func TestOrderByScore(t *testing.T) {
	low := snippet.NewSnippet("low", ".go", nil)
	high := snippet.NewSnippet("high", ".go", nil)
	mid := snippet.NewSnippet("mid", ".go", nil)

	scores := map[string]float64{
		low.SHA():  0.1,
		high.SHA(): 0.9,
		mid.SHA():  0.5,
	}

	ordered := orderByScore([]snippet.Snippet{low, high, mid}, scores)

	if len(ordered) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ordered))
	}
	if ordered[0].SHA() != high.SHA() {
		t.Errorf("expected first result %s, got %s", high.SHA(), ordered[0].SHA())
	}
	if ordered[1].SHA() != mid.SHA() {
		t.Errorf("expected second result %s, got %s", mid.SHA(), ordered[1].SHA())
	}
	if ordered[2].SHA() != low.SHA() {
		t.Errorf("expected third result %s, got %s", low.SHA(), ordered[2].SHA())
	}
}
