package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

// writeModelDir creates a model subdirectory with a tokenizer.json under
// cacheDir, the minimal layout diskModelPath accepts.
func writeModelDir(t *testing.T, cacheDir, name string) string {
	t.Helper()
	subdir := filepath.Join(cacheDir, name)
	require.NoError(t, os.MkdirAll(subdir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(subdir, "tokenizer.json"), []byte(`{}`), 0o644))
	return subdir
}

func TestHugotEmbedding_Embed(t *testing.T) {
	if !hasEmbeddedModel {
		t.Skip("skipping: requires -tags embed_model")
	}

	emb := NewHugotEmbedding(t.TempDir())
	defer func() { require.NoError(t, emb.Close()) }()

	resp, err := emb.Embed(context.Background(), NewEmbeddingRequest([]string{"hello world"}))
	require.NoError(t, err)

	vectors := resp.Embeddings()
	require.Len(t, vectors, 1)
	require.Len(t, vectors[0], 768, "st-codesearch-distilroberta-base produces 768 dimensions")
}

func TestHugotEmbedding_EmbedFullBatch(t *testing.T) {
	if !hasEmbeddedModel {
		t.Skip("skipping: requires -tags embed_model")
	}

	emb := NewHugotEmbedding(t.TempDir())
	defer func() { require.NoError(t, emb.Close()) }()

	texts := make([]string, emb.Capacity())
	for i := range texts {
		texts[i] = "test sentence number"
	}

	resp, err := emb.Embed(context.Background(), NewEmbeddingRequest(texts))
	require.NoError(t, err)

	vectors := resp.Embeddings()
	require.Len(t, vectors, emb.Capacity())
	for i, vec := range vectors {
		require.Len(t, vec, 768, "embedding %d has wrong dimension", i)
	}
}

func TestHugotEmbedding_EmbedOverCapacity(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir())
	defer func() { require.NoError(t, emb.Close()) }()

	texts := make([]string, emb.Capacity()+1)
	for i := range texts {
		texts[i] = "too many"
	}

	_, err := emb.Embed(context.Background(), NewEmbeddingRequest(texts))
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds capacity")
}

func TestHugotEmbedding_EmbedEmpty(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir())
	defer func() { require.NoError(t, emb.Close()) }()

	resp, err := emb.Embed(context.Background(), NewEmbeddingRequest([]string{}))
	require.NoError(t, err)
	require.Empty(t, resp.Embeddings())
}

func TestHugotEmbedding_CloseIsIdempotent(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir())

	require.NoError(t, emb.Close())
	require.NoError(t, emb.Close())
}

func TestHugotEmbedding_CancelledContext(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir())
	defer func() { require.NoError(t, emb.Close()) }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := emb.Embed(ctx, NewEmbeddingRequest([]string{"hello"}))
	require.Error(t, err)
}

func TestHugotEmbedding_DiskModelPath(t *testing.T) {
	cacheDir := t.TempDir()
	emb := NewHugotEmbedding(cacheDir)

	_, err := emb.diskModelPath()
	require.Error(t, err, "empty cache dir has no model")

	subdir := writeModelDir(t, cacheDir, "my-model")

	got, err := emb.diskModelPath()
	require.NoError(t, err)
	require.Equal(t, subdir, got)
}

func TestHugotEmbedding_DiskModelPathIgnoresNonModels(t *testing.T) {
	t.Run("plain file", func(t *testing.T) {
		cacheDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "README.md"), []byte("readme"), 0o644))

		_, err := NewHugotEmbedding(cacheDir).diskModelPath()
		require.Error(t, err)
	})

	t.Run("directory without tokenizer", func(t *testing.T) {
		cacheDir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(cacheDir, "incomplete-model"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "incomplete-model", "config.json"), []byte(`{}`), 0o644))

		_, err := NewHugotEmbedding(cacheDir).diskModelPath()
		require.Error(t, err)
	})
}

func TestHugotEmbedding_AvailableWithDiskModel(t *testing.T) {
	cacheDir := t.TempDir()
	emb := NewHugotEmbedding(cacheDir)

	if !hasEmbeddedModel {
		require.False(t, emb.Available(), "no model anywhere yet")
	}

	writeModelDir(t, cacheDir, "test-model")
	require.True(t, emb.Available())
}

func TestExtractEmbeddedModel(t *testing.T) {
	fakeFS := fstest.MapFS{
		"models/test-model/tokenizer.json":  {Data: []byte(`{"test": true}`)},
		"models/test-model/config.json":     {Data: []byte(`{"hidden_size": 768}`)},
		"models/test-model/onnx/model.onnx": {Data: []byte("fake-onnx-data")},
	}

	targetDir := t.TempDir()
	modelPath, err := extractEmbeddedModel(fakeFS, targetDir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(targetDir, "test-model"), modelPath)

	data, err := os.ReadFile(filepath.Join(modelPath, "tokenizer.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"test": true}`, string(data))

	data, err = os.ReadFile(filepath.Join(modelPath, "onnx", "model.onnx"))
	require.NoError(t, err)
	require.Equal(t, "fake-onnx-data", string(data))

	// Unpacking again finds the tokenizer and leaves the files alone.
	modelPath2, err := extractEmbeddedModel(fakeFS, targetDir)
	require.NoError(t, err)
	require.Equal(t, modelPath, modelPath2)
}

func TestExtractEmbeddedModel_NoModelDir(t *testing.T) {
	emptyFS := fstest.MapFS{
		"models/.gitkeep": {Data: []byte("")},
	}

	_, err := extractEmbeddedModel(emptyFS, t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no model directory found")
}
