package search

import "slices"

// Result is one scored hit from a single retrieval method.
type Result struct {
	snippetID string
	score     float64
}

// NewResult creates a new Result.
func NewResult(snippetID string, score float64) Result {
	return Result{snippetID: snippetID, score: score}
}

func (r Result) SnippetID() string { return r.snippetID }
func (r Result) Score() float64    { return r.score }

// FusionRequest is one ranked input handed to the fusion step.
type FusionRequest struct {
	id    string
	score float64
}

// NewFusionRequest creates a new FusionRequest.
func NewFusionRequest(id string, score float64) FusionRequest {
	return FusionRequest{id: id, score: score}
}

func (f FusionRequest) ID() string     { return f.id }
func (f FusionRequest) Score() float64 { return f.score }

// FusionResult carries the fused score alongside the per-method
// scores it was combined from.
type FusionResult struct {
	id             string
	score          float64
	originalScores []float64
}

// NewFusionResult creates a new FusionResult.
func NewFusionResult(id string, score float64, originalScores []float64) FusionResult {
	return FusionResult{
		id:             id,
		score:          score,
		originalScores: slices.Clone(originalScores),
	}
}

func (f FusionResult) ID() string     { return f.id }
func (f FusionResult) Score() float64 { return f.score }

// OriginalScores returns the per-method scores that produced the fused score.
func (f FusionResult) OriginalScores() []float64 { return slices.Clone(f.originalScores) }

// Document pairs a snippet ID with the text to index for it.
type Document struct {
	snippetID string
	text      string
}

// NewDocument creates a new Document.
func NewDocument(snippetID, text string) Document {
	return Document{snippetID: snippetID, text: text}
}

func (d Document) SnippetID() string { return d.snippetID }
func (d Document) Text() string      { return d.text }

// IndexRequest is a batch of documents to index.
type IndexRequest struct {
	documents []Document
}

// NewIndexRequest creates a new IndexRequest.
func NewIndexRequest(documents []Document) IndexRequest {
	return IndexRequest{documents: slices.Clone(documents)}
}

// Documents returns the documents to index.
func (i IndexRequest) Documents() []Document { return slices.Clone(i.documents) }
