// Package search provides search domain types for hybrid code retrieval.
package search

import "slices"

// Type selects the retrieval method for a query.
type Type string

const (
	TypeBM25   Type = "bm25"
	TypeVector Type = "vector"
	TypeHybrid Type = "hybrid"
)

// Query is a single-method snippet search.
type Query struct {
	text       string
	searchType Type
	filters    Filters
	topK       int
}

// NewQuery creates a new Query.
func NewQuery(text string, searchType Type, filters Filters, topK int) Query {
	return Query{
		text:       text,
		searchType: searchType,
		filters:    filters,
		topK:       topK,
	}
}

func (q Query) Text() string     { return q.text }
func (q Query) SearchType() Type { return q.searchType }
func (q Query) Filters() Filters { return q.filters }
func (q Query) TopK() int        { return q.topK }

// MultiRequest is a hybrid search request carrying separate text, code,
// and keyword queries that are fused into one result list.
type MultiRequest struct {
	topK      int
	textQuery string
	codeQuery string
	keywords  []string
	filters   Filters
}

// NewMultiRequest creates a new MultiRequest.
func NewMultiRequest(topK int, textQuery, codeQuery string, keywords []string, filters Filters) MultiRequest {
	return MultiRequest{
		topK:      topK,
		textQuery: textQuery,
		codeQuery: codeQuery,
		keywords:  slices.Clone(keywords),
		filters:   filters,
	}
}

func (m MultiRequest) TopK() int          { return m.topK }
func (m MultiRequest) TextQuery() string  { return m.textQuery }
func (m MultiRequest) CodeQuery() string  { return m.codeQuery }
func (m MultiRequest) Keywords() []string { return slices.Clone(m.keywords) }
func (m MultiRequest) Filters() Filters   { return m.filters }
