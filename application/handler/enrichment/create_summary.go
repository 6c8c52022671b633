package enrichment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kodit-ai/kodit/application/handler"
	"github.com/kodit-ai/kodit/domain/enrichment"
	domainservice "github.com/kodit-ai/kodit/domain/service"
	"github.com/kodit-ai/kodit/domain/task"
)

const summarizationSystemPrompt = `
You are a professional software developer. You will be given a snippet of code.
Please provide a concise explanation of the code.
`

// CreateSummary handles the CREATE_SUMMARY_ENRICHMENT_FOR_COMMIT operation.
type CreateSummary struct {
	enrichCtx handler.EnrichmentContext
}

// NewCreateSummary creates a new CreateSummary handler.
func NewCreateSummary(
	enrichCtx handler.EnrichmentContext,
) (*CreateSummary, error) {
	if enrichCtx.Enricher == nil {
		return nil, fmt.Errorf("NewCreateSummary: nil Enricher")
	}
	if enrichCtx.Snippets == nil {
		return nil, fmt.Errorf("NewCreateSummary: nil Snippets")
	}
	return &CreateSummary{
		enrichCtx: enrichCtx,
	}, nil
}

// Execute processes the CREATE_SUMMARY_ENRICHMENT_FOR_COMMIT task.
func (h *CreateSummary) Execute(ctx context.Context, payload map[string]any) error {
	cp, err := handler.ExtractCommitPayload(payload)
	if err != nil {
		return err
	}

	tracker := h.enrichCtx.Tracker.ForOperation(
		task.OperationCreateSummaryEnrichmentForCommit,
		task.TrackableTypeRepository,
		cp.RepoID(),
	)

	count, err := h.enrichCtx.Enrichments.CountByCommitSHA(ctx, cp.CommitSHA(), enrichment.WithType(enrichment.TypeDevelopment), enrichment.WithSubtype(enrichment.SubtypeSnippetSummary))
	if err != nil {
		h.enrichCtx.Logger.Error("failed to check existing summaries", slog.String("error", err.Error()))
		return err
	}

	if count > 0 {
		tracker.Skip(ctx, "Summary enrichments already exist for commit")
		return nil
	}

	snippets, err := h.enrichCtx.Snippets.FindByCommitSHA(ctx, cp.CommitSHA())
	if err != nil {
		return fmt.Errorf("get snippets: %w", err)
	}

	if len(snippets) == 0 {
		tracker.Skip(ctx, "No snippets to enrich")
		return nil
	}

	tracker.SetTotal(ctx, len(snippets))

	// Requests are keyed by snippet sha so responses can be associated
	// back without positional coupling.
	known := make(map[string]bool, len(snippets))
	requests := make([]domainservice.EnrichmentRequest, 0, len(snippets))

	for _, s := range snippets {
		known[s.SHA()] = true
		requests = append(requests, domainservice.NewEnrichmentRequest(s.SHA(), s.Content(), summarizationSystemPrompt))
	}

	responses, err := h.enrichCtx.Enricher.Enrich(ctx, requests)
	if err != nil {
		return fmt.Errorf("enrich snippets: %w", err)
	}

	for i, resp := range responses {
		tracker.SetCurrent(ctx, i, "Enriching snippets for commit")

		if !known[resp.ID()] {
			continue
		}

		if resp.Text() == "" {
			h.enrichCtx.Logger.Warn("empty summary from enricher, skipping snippet",
				slog.String("snippet_sha", resp.ID()),
			)
			continue
		}

		summaryEnrichment := enrichment.NewEnrichment(
			enrichment.TypeDevelopment,
			enrichment.SubtypeSnippetSummary,
			enrichment.EntityTypeCommit,
			resp.Text(),
		)
		saved, err := h.enrichCtx.Enrichments.Save(ctx, summaryEnrichment)
		if err != nil {
			return fmt.Errorf("save summary enrichment: %w", err)
		}

		snippetAssoc := enrichment.SnippetAssociation(saved.ID(), resp.ID())
		if _, err := h.enrichCtx.Associations.Save(ctx, snippetAssoc); err != nil {
			return fmt.Errorf("save snippet association: %w", err)
		}

		commitAssoc := enrichment.CommitAssociation(saved.ID(), cp.CommitSHA())
		if _, err := h.enrichCtx.Associations.Save(ctx, commitAssoc); err != nil {
			return fmt.Errorf("save commit association: %w", err)
		}
	}

	return nil
}

// Ensure CreateSummary implements handler.Handler.
var _ handler.Handler = (*CreateSummary)(nil)
