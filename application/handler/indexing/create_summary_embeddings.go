package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/kodit-ai/kodit/application/handler"
	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/search"
	"github.com/kodit-ai/kodit/domain/task"
)

// CreateSummaryEmbeddings creates vector embeddings for snippet summary
// enrichments. Vectors are keyed by enrichment id; search maps them back
// to snippet shas through the snippet association afterwards.
type CreateSummaryEmbeddings struct {
	textIndex       handler.VectorIndex
	enrichmentStore enrichment.EnrichmentStore
	trackerFactory  handler.TrackerFactory
	logger          *slog.Logger
}

// NewCreateSummaryEmbeddings creates a new CreateSummaryEmbeddings handler.
func NewCreateSummaryEmbeddings(
	textIndex handler.VectorIndex,
	enrichmentStore enrichment.EnrichmentStore,
	trackerFactory handler.TrackerFactory,
	logger *slog.Logger,
) (*CreateSummaryEmbeddings, error) {
	if textIndex.Embedding == nil {
		return nil, fmt.Errorf("NewCreateSummaryEmbeddings: nil Embedding")
	}
	if textIndex.Store == nil {
		return nil, fmt.Errorf("NewCreateSummaryEmbeddings: nil Store")
	}
	if enrichmentStore == nil {
		return nil, fmt.Errorf("NewCreateSummaryEmbeddings: nil enrichmentStore")
	}
	if trackerFactory == nil {
		return nil, fmt.Errorf("NewCreateSummaryEmbeddings: nil trackerFactory")
	}
	return &CreateSummaryEmbeddings{
		textIndex:       textIndex,
		enrichmentStore: enrichmentStore,
		trackerFactory:  trackerFactory,
		logger:          logger,
	}, nil
}

// Execute processes the CREATE_SUMMARY_EMBEDDINGS_FOR_COMMIT task.
func (h *CreateSummaryEmbeddings) Execute(ctx context.Context, payload map[string]any) error {
	cp, err := handler.ExtractCommitPayload(payload)
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(
		task.OperationCreateSummaryEmbeddingsForCommit,
		task.TrackableTypeRepository,
		cp.RepoID(),
	)

	enrichments, err := h.enrichmentStore.Find(ctx, enrichment.WithCommitSHA(cp.CommitSHA()), enrichment.WithType(enrichment.TypeDevelopment), enrichment.WithSubtype(enrichment.SubtypeSnippetSummary))
	if err != nil {
		h.logger.Error("failed to get summary enrichments", slog.String("error", err.Error()))
		return err
	}

	if len(enrichments) == 0 {
		tracker.Skip(ctx, "No summary enrichments to embed")
		return nil
	}

	newEnrichments, err := h.filterNewEnrichments(ctx, enrichments)
	if err != nil {
		h.logger.Error("failed to filter new enrichments", slog.String("error", err.Error()))
		return err
	}

	if len(newEnrichments) == 0 {
		tracker.Skip(ctx, "All summary enrichments already have embeddings")
		return nil
	}

	documents := make([]search.Document, 0, len(newEnrichments))
	for _, e := range newEnrichments {
		if e.Content() == "" {
			continue
		}
		documents = append(documents, search.NewDocument(strconv.FormatInt(e.ID(), 10), e.Content()))
	}

	if len(documents) == 0 {
		tracker.Skip(ctx, "No valid documents to embed")
		return nil
	}

	tracker.SetTotal(ctx, len(documents))

	request := search.NewIndexRequest(documents)
	if err := h.textIndex.Embedding.Index(ctx, request, search.WithProgress(func(completed, total int) {
		tracker.SetCurrent(ctx, completed, "Creating summary embeddings")
	})); err != nil {
		h.logger.Error("failed to create summary embeddings", slog.String("error", err.Error()))
		return err
	}

	h.logger.Info("summary embeddings created",
		slog.Int("documents", len(documents)),
		slog.String("commit", handler.ShortSHA(cp.CommitSHA())),
	)

	return nil
}

// filterNewEnrichments drops enrichments that already have a text
// embedding, preserving ascending enrichment id order.
func (h *CreateSummaryEmbeddings) filterNewEnrichments(ctx context.Context, enrichments []enrichment.Enrichment) ([]enrichment.Enrichment, error) {
	ids := make([]string, len(enrichments))
	for i, e := range enrichments {
		ids[i] = strconv.FormatInt(e.ID(), 10)
	}

	found, err := h.textIndex.Store.Find(ctx, search.WithSnippetIDs(ids))
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(found))
	for _, emb := range found {
		existing[emb.SnippetID()] = true
	}

	result := make([]enrichment.Enrichment, 0, len(enrichments))
	for _, e := range enrichments {
		if !existing[strconv.FormatInt(e.ID(), 10)] {
			result = append(result, e)
		}
	}

	return result, nil
}

// Ensure CreateSummaryEmbeddings implements handler.Handler.
var _ handler.Handler = (*CreateSummaryEmbeddings)(nil)
