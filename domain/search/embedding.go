package search

// Embedding pairs a document ID with its embedding vector.
type Embedding struct {
	snippetID string
	vector    []float64
}

// NewEmbedding creates a new Embedding.
func NewEmbedding(snippetID string, vector []float64) Embedding {
	v := make([]float64, len(vector))
	copy(v, vector)
	return Embedding{
		snippetID: snippetID,
		vector:    v,
	}
}

// SnippetID returns the document ID the embedding belongs to.
func (e Embedding) SnippetID() string { return e.snippetID }

// Vector returns the embedding vector (copy).
func (e Embedding) Vector() []float64 {
	result := make([]float64, len(e.vector))
	copy(result, e.vector)
	return result
}

// Dimension returns the vector dimension.
func (e Embedding) Dimension() int { return len(e.vector) }
