package search

import "context"

// Embedder converts text into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// EmbeddingType distinguishes which representation of a snippet a
// vector was computed from.
type EmbeddingType string

const (
	EmbeddingTypeCode    EmbeddingType = "code"
	EmbeddingTypeSummary EmbeddingType = "summary"
)
