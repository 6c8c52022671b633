package indexing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kodit-ai/kodit/application/handler"
	"github.com/kodit-ai/kodit/domain/search"
	"github.com/kodit-ai/kodit/domain/snippet"
	"github.com/kodit-ai/kodit/domain/task"
)

// CreateCodeEmbeddings creates vector embeddings for commit snippets.
// Vectors are keyed by snippet sha; shas that already carry a vector
// are skipped, so shared content is embedded once.
type CreateCodeEmbeddings struct {
	codeIndex      handler.VectorIndex
	snippetStore   snippet.Store
	trackerFactory handler.TrackerFactory
	logger         *slog.Logger
}

// NewCreateCodeEmbeddings creates a new CreateCodeEmbeddings handler.
func NewCreateCodeEmbeddings(
	codeIndex handler.VectorIndex,
	snippetStore snippet.Store,
	trackerFactory handler.TrackerFactory,
	logger *slog.Logger,
) (*CreateCodeEmbeddings, error) {
	if codeIndex.Embedding == nil {
		return nil, fmt.Errorf("NewCreateCodeEmbeddings: nil Embedding")
	}
	if codeIndex.Store == nil {
		return nil, fmt.Errorf("NewCreateCodeEmbeddings: nil Store")
	}
	if snippetStore == nil {
		return nil, fmt.Errorf("NewCreateCodeEmbeddings: nil snippetStore")
	}
	if trackerFactory == nil {
		return nil, fmt.Errorf("NewCreateCodeEmbeddings: nil trackerFactory")
	}
	return &CreateCodeEmbeddings{
		codeIndex:      codeIndex,
		snippetStore:   snippetStore,
		trackerFactory: trackerFactory,
		logger:         logger,
	}, nil
}

// Execute processes the CREATE_CODE_EMBEDDINGS_FOR_COMMIT task.
func (h *CreateCodeEmbeddings) Execute(ctx context.Context, payload map[string]any) error {
	cp, err := handler.ExtractCommitPayload(payload)
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(
		task.OperationCreateCodeEmbeddingsForCommit,
		task.TrackableTypeRepository,
		cp.RepoID(),
	)

	snippets, err := h.snippetStore.FindByCommitSHA(ctx, cp.CommitSHA())
	if err != nil {
		h.logger.Error("failed to get snippets for commit", slog.String("error", err.Error()))
		return err
	}

	if len(snippets) == 0 {
		tracker.Skip(ctx, "No snippets to create embeddings for")
		return nil
	}

	newSnippets, err := h.filterNewSnippets(ctx, snippets)
	if err != nil {
		h.logger.Error("failed to filter new snippets", slog.String("error", err.Error()))
		return err
	}

	if len(newSnippets) == 0 {
		tracker.Skip(ctx, "All snippets already have code embeddings")
		return nil
	}

	documents := make([]search.Document, 0, len(newSnippets))
	for _, s := range newSnippets {
		if s.Content() != "" {
			documents = append(documents, search.NewDocument(s.SHA(), s.Content()))
		}
	}

	if len(documents) == 0 {
		tracker.Skip(ctx, "No valid documents to embed")
		return nil
	}

	tracker.SetTotal(ctx, len(documents))

	request := search.NewIndexRequest(documents)
	if err := h.codeIndex.Embedding.Index(ctx, request, search.WithProgress(func(completed, total int) {
		tracker.SetCurrent(ctx, completed, "Creating code embeddings")
	})); err != nil {
		h.logger.Error("failed to create code embeddings", slog.String("error", err.Error()))
		tracker.Fail(ctx, err.Error())
		return err
	}

	tracker.Complete(ctx)

	h.logger.Info("code embeddings created",
		slog.Int("documents", len(documents)),
		slog.String("commit", handler.ShortSHA(cp.CommitSHA())),
	)

	return nil
}

// filterNewSnippets drops snippets that already have a code embedding,
// preserving the input order.
func (h *CreateCodeEmbeddings) filterNewSnippets(ctx context.Context, snippets []snippet.Snippet) ([]snippet.Snippet, error) {
	shas := make([]string, len(snippets))
	for i, s := range snippets {
		shas[i] = s.SHA()
	}

	found, err := h.codeIndex.Store.Find(ctx, search.WithSnippetIDs(shas))
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(found))
	for _, emb := range found {
		existing[emb.SnippetID()] = true
	}

	result := make([]snippet.Snippet, 0, len(snippets))
	for _, s := range snippets {
		if !existing[s.SHA()] {
			result = append(result, s)
		}
	}

	return result, nil
}

// Ensure CreateCodeEmbeddings implements handler.Handler.
var _ handler.Handler = (*CreateCodeEmbeddings)(nil)
