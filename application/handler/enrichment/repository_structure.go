package enrichment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kodit-ai/kodit/application/handler"
	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/repository"
	domainservice "github.com/kodit-ai/kodit/domain/service"
	"github.com/kodit-ai/kodit/domain/task"
)

const structureSystemPrompt = `
You are a software engineer onboarding a colleague to a codebase.
You will be given the directory tree of a repository. Explain how the
repository is organized: what lives where, which directories hold the
core logic, and where a reader should start.
`

const structureTaskPrompt = `
Please describe the organization of this repository based on its directory tree:

<directory_tree>
%s
</directory_tree>
`

// StructureDiscoverer renders a repository's directory layout.
type StructureDiscoverer interface {
	Discover(ctx context.Context, repoPath string) (string, error)
}

// RepositoryStructure handles the CREATE_REPOSITORY_STRUCTURE_FOR_COMMIT operation.
type RepositoryStructure struct {
	repoStore  repository.RepositoryStore
	enrichCtx  handler.EnrichmentContext
	discoverer StructureDiscoverer
}

// NewRepositoryStructure creates a new RepositoryStructure handler.
func NewRepositoryStructure(
	repoStore repository.RepositoryStore,
	enrichCtx handler.EnrichmentContext,
	discoverer StructureDiscoverer,
) (*RepositoryStructure, error) {
	if repoStore == nil {
		return nil, fmt.Errorf("NewRepositoryStructure: nil repoStore")
	}
	if enrichCtx.Enricher == nil {
		return nil, fmt.Errorf("NewRepositoryStructure: nil Enricher")
	}
	if discoverer == nil {
		return nil, fmt.Errorf("NewRepositoryStructure: nil discoverer")
	}
	return &RepositoryStructure{
		repoStore:  repoStore,
		enrichCtx:  enrichCtx,
		discoverer: discoverer,
	}, nil
}

// Execute processes the CREATE_REPOSITORY_STRUCTURE_FOR_COMMIT task.
func (h *RepositoryStructure) Execute(ctx context.Context, payload map[string]any) error {
	cp, err := handler.ExtractCommitPayload(payload)
	if err != nil {
		return err
	}

	tracker := h.enrichCtx.Tracker.ForOperation(
		task.OperationCreateRepositoryStructureForCommit,
		task.TrackableTypeRepository,
		cp.RepoID(),
	)
	tracker.SetTotal(ctx, 3)

	count, err := h.enrichCtx.Enrichments.CountByCommitSHA(ctx, cp.CommitSHA(), enrichment.WithType(enrichment.TypeArchitecture), enrichment.WithSubtype(enrichment.SubtypeStructure))
	if err != nil {
		h.enrichCtx.Logger.Error("failed to check existing structure", slog.String("error", err.Error()))
		return err
	}

	if count > 0 {
		tracker.Skip(ctx, "Structure enrichment already exists for commit")
		return nil
	}

	repo, err := h.repoStore.FindOne(ctx, repository.WithID(cp.RepoID()))
	if err != nil {
		return fmt.Errorf("get repository: %w", err)
	}

	clonedPath := repo.WorkingCopy().Path()
	if clonedPath == "" {
		return fmt.Errorf("repository %d has never been cloned", cp.RepoID())
	}

	tracker.SetCurrent(ctx, 1, "Walking repository directory tree")

	tree, err := h.discoverer.Discover(ctx, clonedPath)
	if err != nil {
		return fmt.Errorf("discover structure: %w", err)
	}

	tracker.SetCurrent(ctx, 2, "Describing repository structure with LLM")

	taskPrompt := fmt.Sprintf(structureTaskPrompt, tree)
	requests := []domainservice.EnrichmentRequest{
		domainservice.NewEnrichmentRequest(cp.CommitSHA(), taskPrompt, structureSystemPrompt),
	}

	responses, err := h.enrichCtx.Enricher.Enrich(ctx, requests)
	if err != nil {
		return fmt.Errorf("enrich structure: %w", err)
	}

	if len(responses) == 0 {
		return fmt.Errorf("no enrichment response for commit %s", cp.CommitSHA())
	}

	structEnrichment := enrichment.NewEnrichment(
		enrichment.TypeArchitecture,
		enrichment.SubtypeStructure,
		enrichment.EntityTypeCommit,
		responses[0].Text(),
	)
	saved, err := h.enrichCtx.Enrichments.Save(ctx, structEnrichment)
	if err != nil {
		return fmt.Errorf("save structure enrichment: %w", err)
	}

	commitAssoc := enrichment.CommitAssociation(saved.ID(), cp.CommitSHA())
	if _, err := h.enrichCtx.Associations.Save(ctx, commitAssoc); err != nil {
		return fmt.Errorf("save commit association: %w", err)
	}

	tracker.SetCurrent(ctx, 3, "Structure enrichment completed")
	tracker.Complete(ctx)

	return nil
}

// Ensure RepositoryStructure implements handler.Handler.
var _ handler.Handler = (*RepositoryStructure)(nil)
