package service

import "context"

// Enricher generates text enrichments through an AI provider.
type Enricher interface {
	// Enrich processes requests and returns a response for each request
	// that succeeded, matched by ID.
	Enrich(ctx context.Context, requests []EnrichmentRequest, opts ...EnrichOption) ([]EnrichmentResponse, error)
}

// EnrichmentRequest is one unit of work for an Enricher: the text to
// process plus the system prompt steering the model.
type EnrichmentRequest struct {
	id           string
	text         string
	systemPrompt string
}

// NewEnrichmentRequest creates a new enrichment request.
func NewEnrichmentRequest(id, text, systemPrompt string) EnrichmentRequest {
	return EnrichmentRequest{id: id, text: text, systemPrompt: systemPrompt}
}

// ID returns the request identifier.
func (r EnrichmentRequest) ID() string { return r.id }

// Text returns the text to be enriched.
func (r EnrichmentRequest) Text() string { return r.text }

// SystemPrompt returns the custom system prompt.
func (r EnrichmentRequest) SystemPrompt() string { return r.systemPrompt }

// EnrichmentResponse carries the model output for one request.
type EnrichmentResponse struct {
	id   string
	text string
}

// NewEnrichmentResponse creates a new enrichment response.
func NewEnrichmentResponse(id, text string) EnrichmentResponse {
	return EnrichmentResponse{id: id, text: text}
}

// ID returns the response identifier, matching the request ID.
func (r EnrichmentResponse) ID() string { return r.id }

// Text returns the enriched text.
func (r EnrichmentResponse) Text() string { return r.text }
