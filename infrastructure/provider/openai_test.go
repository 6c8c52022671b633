package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// decodeEmbeddingInput pulls the list of input texts out of an
// embeddings request body; the API accepts a single string or a list.
func decodeEmbeddingInput(r *http.Request) ([]string, string, error) {
	var body struct {
		Input any    `json:"input"`
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, "", err
	}

	var texts []string
	switch v := body.Input.(type) {
	case string:
		texts = []string{v}
	case []any:
		for _, item := range v {
			texts = append(texts, item.(string))
		}
	}
	return texts, body.Model, nil
}

func embeddingVectors(n int) []map[string]any {
	data := make([]map[string]any, n)
	for i := range data {
		data[i] = map[string]any{
			"object":    "embedding",
			"index":     i,
			"embedding": []float64{0.1, 0.2, 0.3},
		}
	}
	return data
}

// newEmbeddingServer mimics the OpenAI embeddings endpoint with
// deterministic 3-dimensional vectors, counting requests as they arrive.
func newEmbeddingServer(t *testing.T, counter *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.Add(1)

		texts, model, err := decodeEmbeddingInput(r)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   embeddingVectors(len(texts)),
			"model":  model,
			"usage": map[string]int{
				"prompt_tokens": len(texts) * 4,
				"total_tokens":  len(texts) * 4,
			},
		})
	}))
}

// newFlakyEmbeddingServer responds with an empty data array (the shape
// OpenRouter produces when it returns 200 without vectors) for the first
// failCount requests, then recovers.
func newFlakyEmbeddingServer(t *testing.T, counter *atomic.Int64, failCount int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := counter.Add(1)

		texts, model, err := decodeEmbeddingInput(r)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var data []map[string]any
		if n > failCount {
			data = embeddingVectors(len(texts))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  model,
			"usage":  map[string]int{"prompt_tokens": 0, "total_tokens": 0},
		})
	}))
}

func embeddingProvider(srvURL string, maxRetries int, delay time.Duration) *OpenAIProvider {
	return NewOpenAIProviderFromConfig(OpenAIConfig{
		APIKey:         "test-key",
		BaseURL:        srvURL,
		EmbeddingModel: "test-model",
		MaxRetries:     maxRetries,
		InitialDelay:   delay,
	})
}

func TestOpenAIProvider_EmbedEmptyInput(t *testing.T) {
	var counter atomic.Int64
	srv := newEmbeddingServer(t, &counter)
	defer srv.Close()

	p := embeddingProvider(srv.URL, 0, 0)

	resp, err := p.Embed(context.Background(), NewEmbeddingRequest([]string{}))
	require.NoError(t, err)
	require.Empty(t, resp.Embeddings())
	require.Equal(t, int64(0), counter.Load(), "empty input must not hit the API")
}

func TestOpenAIProvider_EmbedSingle(t *testing.T) {
	var counter atomic.Int64
	srv := newEmbeddingServer(t, &counter)
	defer srv.Close()

	p := embeddingProvider(srv.URL, 0, 0)

	resp, err := p.Embed(context.Background(), NewEmbeddingRequest([]string{"hello"}))
	require.NoError(t, err)
	require.Len(t, resp.Embeddings(), 1)
	require.Len(t, resp.Embeddings()[0], 3)
	require.InDelta(t, 0.1, resp.Embeddings()[0][0], 1e-6)
	require.Equal(t, int64(1), counter.Load())
}

func TestOpenAIProvider_EmbedBatchIsOneRequest(t *testing.T) {
	var counter atomic.Int64
	srv := newEmbeddingServer(t, &counter)
	defer srv.Close()

	p := embeddingProvider(srv.URL, 0, 0)

	texts := make([]string, 10)
	for i := range texts {
		texts[i] = "text"
	}

	resp, err := p.Embed(context.Background(), NewEmbeddingRequest(texts))
	require.NoError(t, err)
	require.Len(t, resp.Embeddings(), 10)
	require.Equal(t, int64(1), counter.Load(), "a batch of texts goes out as one call")

	require.Equal(t, 40, resp.Usage().PromptTokens())
	require.Equal(t, 40, resp.Usage().TotalTokens())
}

func TestOpenAIProvider_EmbedCancelledContext(t *testing.T) {
	var counter atomic.Int64
	srv := newEmbeddingServer(t, &counter)
	defer srv.Close()

	p := embeddingProvider(srv.URL, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Embed(ctx, NewEmbeddingRequest([]string{"a", "b", "c"}))
	require.Error(t, err)
}

func TestOpenAIProvider_EmbedUnsupported(t *testing.T) {
	p := NewOpenAIProvider("test-key")
	p.supportsEmbedding = false

	_, err := p.Embed(context.Background(), NewEmbeddingRequest([]string{"hello"}))
	require.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestOpenAIProvider_EmbedEmptyResponseReturnsError(t *testing.T) {
	var counter atomic.Int64
	srv := newFlakyEmbeddingServer(t, &counter, 999) // never recovers
	defer srv.Close()

	p := embeddingProvider(srv.URL, 0, time.Millisecond)

	_, err := p.Embed(context.Background(), NewEmbeddingRequest([]string{"hello", "world"}))
	require.ErrorIs(t, err, errEmbeddingCountMismatch)
}

func TestOpenAIProvider_EmbedEmptyResponseRetries(t *testing.T) {
	var counter atomic.Int64
	srv := newFlakyEmbeddingServer(t, &counter, 2) // two failures, then vectors
	defer srv.Close()

	p := embeddingProvider(srv.URL, 3, time.Millisecond)

	resp, err := p.Embed(context.Background(), NewEmbeddingRequest([]string{"hello", "world"}))
	require.NoError(t, err)
	require.Len(t, resp.Embeddings(), 2)
	require.Equal(t, int64(3), counter.Load(), "two retries before the response came back full")
}
