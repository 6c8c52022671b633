package provider

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const hugotCapacity = 10

// localRuntime holds the process-wide ONNX Runtime session and the
// feature-extraction pipeline built on top of it. ORT allows a single
// active session per process and is not thread-safe, so one mutex
// guards both setup and inference for every HugotEmbedding instance.
type localRuntime struct {
	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
}

var runtime localRuntime

// setup builds the shared session and pipeline on first use.
// Callers must hold runtime.mu.
func (r *localRuntime) setup(modelPath string) error {
	if r.pipeline != nil {
		return nil
	}

	session, err := newHugotSession()
	if err != nil {
		return fmt.Errorf("create hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "builtin-embeddings",
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	})
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("create feature extraction pipeline: %w", err)
	}

	r.session = session
	r.pipeline = pipeline
	return nil
}

// HugotEmbedding generates embeddings locally with the
// st-codesearch-distilroberta-base model through hugot, needing no API
// key and no network.
//
// The model is located in this order:
//  1. On disk, as a subdirectory of cacheDir containing tokenizer.json.
//  2. Compiled into the binary (build tag embed_model), unpacked into
//     cacheDir on first use.
type HugotEmbedding struct {
	cacheDir string
}

// NewHugotEmbedding creates a HugotEmbedding backed by model files under
// cacheDir.
func NewHugotEmbedding(cacheDir string) *HugotEmbedding {
	return &HugotEmbedding{cacheDir: cacheDir}
}

// Available reports whether a usable model exists, compiled in or on disk.
func (h *HugotEmbedding) Available() bool {
	if hasEmbeddedModel {
		return true
	}
	_, err := h.diskModelPath()
	return err == nil
}

// Capacity returns the maximum number of texts per Embed call.
func (h *HugotEmbedding) Capacity() int { return hugotCapacity }

// Embed generates embeddings for the given texts using the local model.
// The number of texts must not exceed Capacity().
func (h *HugotEmbedding) Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error) {
	texts := req.Texts()
	if len(texts) == 0 {
		return NewEmbeddingResponse([][]float64{}, NewUsage(0, 0, 0)), nil
	}
	if len(texts) > hugotCapacity {
		return EmbeddingResponse{}, fmt.Errorf("embed: %d texts exceeds capacity %d", len(texts), hugotCapacity)
	}
	if err := ctx.Err(); err != nil {
		return EmbeddingResponse{}, err
	}

	// The mutex covers inference too, not just setup: ORT is not
	// thread-safe.
	runtime.mu.Lock()
	defer runtime.mu.Unlock()

	modelPath, err := h.resolveModelPath()
	if err != nil {
		return EmbeddingResponse{}, err
	}
	if err := runtime.setup(modelPath); err != nil {
		return EmbeddingResponse{}, fmt.Errorf("initialize hugot: %w", err)
	}

	result, err := runtime.pipeline.RunPipeline(texts)
	if err != nil {
		return EmbeddingResponse{}, fmt.Errorf("run embedding pipeline: %w", err)
	}

	vectors := make([][]float64, len(result.Embeddings))
	for i, vec32 := range result.Embeddings {
		vectors[i] = make([]float64, len(vec32))
		for j, v := range vec32 {
			vectors[i][j] = float64(v)
		}
	}

	return NewEmbeddingResponse(vectors, NewUsage(0, 0, 0)), nil
}

// Close is a no-op. The ONNX Runtime session is process-global and shared
// across instances; it lives until the process exits.
func (h *HugotEmbedding) Close() error { return nil }

// resolveModelPath returns a usable model directory, preferring files
// already on disk over unpacking the compiled-in model.
func (h *HugotEmbedding) resolveModelPath() (string, error) {
	if diskPath, err := h.diskModelPath(); err == nil {
		return diskPath, nil
	}

	if !hasEmbeddedModel {
		return "", fmt.Errorf("no model found in %s and no embedded model compiled in (build with -tags embed_model)", h.cacheDir)
	}

	if err := os.MkdirAll(h.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}

	return extractEmbeddedModel(embeddedModelFS, h.cacheDir)
}

// diskModelPath scans cacheDir for a subdirectory containing
// tokenizer.json and returns the first match.
func (h *HugotEmbedding) diskModelPath() (string, error) {
	entries, err := os.ReadDir(h.cacheDir)
	if err != nil {
		return "", fmt.Errorf("read model directory %s: %w", h.cacheDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(h.cacheDir, entry.Name())
		if _, statErr := os.Stat(filepath.Join(candidate, "tokenizer.json")); statErr == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no model subdirectory with tokenizer.json found in %s", h.cacheDir)
}

// extractEmbeddedModel writes the compiled-in model files under targetDir
// and returns the resulting model directory. Extraction is skipped when
// the target already holds a tokenizer.
func extractEmbeddedModel(embedded fs.FS, targetDir string) (string, error) {
	modelsFS, err := fs.Sub(embedded, "models")
	if err != nil {
		return "", fmt.Errorf("access embedded models: %w", err)
	}

	subdir, err := embeddedModelName(modelsFS)
	if err != nil {
		return "", err
	}

	modelPath := filepath.Join(targetDir, subdir)
	if _, statErr := os.Stat(filepath.Join(modelPath, "tokenizer.json")); statErr == nil {
		return modelPath, nil
	}

	modelFS, err := fs.Sub(modelsFS, subdir)
	if err != nil {
		return "", fmt.Errorf("access model subdirectory: %w", err)
	}
	if err := copyFS(modelFS, modelPath); err != nil {
		return "", fmt.Errorf("extract embedded model: %w", err)
	}

	return modelPath, nil
}

// embeddedModelName returns the single model directory name under the
// embedded models tree.
func embeddedModelName(modelsFS fs.FS) (string, error) {
	entries, err := fs.ReadDir(modelsFS, ".")
	if err != nil {
		return "", fmt.Errorf("read embedded models: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return entry.Name(), nil
		}
	}
	return "", fmt.Errorf("no model directory found in embedded models")
}

func copyFS(src fs.FS, dst string) error {
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		target := filepath.Join(dst, path)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(src, path)
		if err != nil {
			return fmt.Errorf("read embedded file %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
		return os.WriteFile(target, data, 0o644)
	})
}

var _ Embedder = (*HugotEmbedding)(nil)
