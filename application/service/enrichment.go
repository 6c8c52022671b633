package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kodit-ai/kodit/domain/chunk"
	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/search"
)

// EnrichmentListParams configures enrichment listing.
type EnrichmentListParams struct {
	Type       *enrichment.Type
	Subtype    *enrichment.Subtype
	CommitSHA  string
	CommitSHAs []string
	Limit      int
	Offset     int
}

// Enrichment provides queries for enrichments and their associations.
// Embeds Collection for Find/Get/Count; bespoke methods handle complex queries.
//
// Of the search indexes, only text embeddings are keyed by enrichment id,
// so they are the only index this service cascades into. BM25 documents
// and code embeddings are keyed by snippet sha and belong to the Snippet
// service.
type Enrichment struct {
	repository.Collection[enrichment.Enrichment]
	enrichmentStore    enrichment.EnrichmentStore
	associationStore   enrichment.AssociationStore
	textEmbeddingStore search.EmbeddingStore
	lineRangeStore     chunk.LineRangeStore
}

// NewEnrichment creates a new Enrichment service.
func NewEnrichment(
	enrichmentStore enrichment.EnrichmentStore,
	associationStore enrichment.AssociationStore,
	textEmbeddingStore search.EmbeddingStore,
	lineRangeStore chunk.LineRangeStore,
) *Enrichment {
	return &Enrichment{
		Collection:         repository.NewCollection[enrichment.Enrichment](enrichmentStore),
		enrichmentStore:    enrichmentStore,
		associationStore:   associationStore,
		textEmbeddingStore: textEmbeddingStore,
		lineRangeStore:     lineRangeStore,
	}
}

// List returns enrichments matching the given params.
// Commit SHA filtering is handled via enrichment.WithCommitSHA / WithCommitSHAs
// options, which the store resolves to association JOINs transparently.
func (s *Enrichment) List(ctx context.Context, params *EnrichmentListParams) ([]enrichment.Enrichment, error) {
	if params == nil {
		return []enrichment.Enrichment{}, nil
	}

	opts := s.filterOptions(params)
	opts = append(opts, s.commitOptions(params)...)
	opts = append(opts, s.paginationOptions(params)...)
	return s.enrichmentStore.Find(ctx, opts...)
}

// Count returns the total count of enrichments matching the given params (without pagination).
func (s *Enrichment) Count(ctx context.Context, params *EnrichmentListParams) (int64, error) {
	if params == nil {
		return 0, nil
	}

	opts := s.filterOptions(params)
	opts = append(opts, s.commitOptions(params)...)
	return s.enrichmentStore.Count(ctx, opts...)
}

func (s *Enrichment) filterOptions(params *EnrichmentListParams) []repository.Option {
	var opts []repository.Option
	if params.Type != nil {
		opts = append(opts, enrichment.WithType(*params.Type))
	}
	if params.Subtype != nil {
		opts = append(opts, enrichment.WithSubtype(*params.Subtype))
	}
	return opts
}

func (s *Enrichment) commitOptions(params *EnrichmentListParams) []repository.Option {
	if params.CommitSHA != "" {
		return []repository.Option{enrichment.WithCommitSHA(params.CommitSHA)}
	}
	if len(params.CommitSHAs) > 0 {
		return []repository.Option{enrichment.WithCommitSHAs(params.CommitSHAs)}
	}
	return nil
}

func (s *Enrichment) paginationOptions(params *EnrichmentListParams) []repository.Option {
	if params.Limit > 0 {
		return repository.WithPagination(params.Limit, params.Offset)
	}
	return nil
}

// EnrichmentDeleteParams selects enrichments for deletion, either a
// single enrichment by ID or every enrichment of a commit.
type EnrichmentDeleteParams struct {
	ID        *int64
	CommitSHA string
}

// Delete removes enrichments selected by params, including their search
// index entries.
func (s *Enrichment) Delete(ctx context.Context, params *EnrichmentDeleteParams) error {
	if params == nil {
		return nil
	}
	if params.ID != nil {
		return s.DeleteBy(ctx, repository.WithID(*params.ID))
	}
	if params.CommitSHA != "" {
		return s.DeleteBy(ctx, enrichment.WithCommitSHA(params.CommitSHA))
	}
	return nil
}

// Save persists an enrichment (create or update).
// Associations cascade-delete via GORM constraints when an enrichment is removed.
func (s *Enrichment) Save(ctx context.Context, e enrichment.Enrichment) (enrichment.Enrichment, error) {
	return s.enrichmentStore.Save(ctx, e)
}

// DeleteBy removes enrichments matching the given options, together
// with the text embeddings keyed by their ids.
// Associations cascade-delete via the GORM OnDelete:CASCADE constraint on EnrichmentAssociationModel.
func (s *Enrichment) DeleteBy(ctx context.Context, opts ...repository.Option) error {
	// Find enrichments to be deleted so we can clean up the text index
	enrichments, err := s.enrichmentStore.Find(ctx, opts...)
	if err != nil {
		return fmt.Errorf("find enrichments for deletion: %w", err)
	}

	if len(enrichments) > 0 && s.textEmbeddingStore != nil {
		ids := make([]string, len(enrichments))
		for i, e := range enrichments {
			ids[i] = strconv.FormatInt(e.ID(), 10)
		}
		if err := s.textEmbeddingStore.DeleteBy(ctx, search.WithSnippetIDs(ids)); err != nil {
			return fmt.Errorf("delete text embeddings: %w", err)
		}
	}

	return s.enrichmentStore.DeleteBy(ctx, opts...)
}

// DeleteTextEmbeddings removes the text embeddings for the given
// enrichments without touching the enrichment rows. Used when callers
// sequence index cleanup separately from row deletion.
func (s *Enrichment) DeleteTextEmbeddings(ctx context.Context, enrichmentIDs []int64) error {
	if len(enrichmentIDs) == 0 || s.textEmbeddingStore == nil {
		return nil
	}
	ids := make([]string, len(enrichmentIDs))
	for i, id := range enrichmentIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	if err := s.textEmbeddingStore.DeleteBy(ctx, search.WithSnippetIDs(ids)); err != nil {
		return fmt.Errorf("delete text embeddings: %w", err)
	}
	return nil
}

// ForRepository returns enrichments attached directly to a repository
// (architecture, structure, and cookbook artifacts) rather than to one
// of its commits.
func (s *Enrichment) ForRepository(ctx context.Context, repoID int64) ([]enrichment.Enrichment, error) {
	associations, err := s.associationStore.Find(ctx,
		enrichment.WithEntityType(enrichment.EntityTypeRepository),
		enrichment.WithEntityID(strconv.FormatInt(repoID, 10)),
	)
	if err != nil {
		return nil, fmt.Errorf("find repository associations: %w", err)
	}
	if len(associations) == 0 {
		return []enrichment.Enrichment{}, nil
	}

	ids := make([]int64, len(associations))
	for i, a := range associations {
		ids[i] = a.EnrichmentID()
	}
	return s.enrichmentStore.Find(ctx, repository.WithIDIn(ids))
}

// RelatedEnrichments returns enrichments associated with the given
// snippet shas (e.g. snippet_summary enrichments describing a snippet).
// Returns a map of snippet sha to its related enrichments.
func (s *Enrichment) RelatedEnrichments(ctx context.Context, snippetSHAs []string) (map[string][]enrichment.Enrichment, error) {
	if len(snippetSHAs) == 0 {
		return map[string][]enrichment.Enrichment{}, nil
	}

	associations, err := s.associationStore.Find(ctx,
		enrichment.WithEntityIDIn(snippetSHAs),
		enrichment.WithEntityType(enrichment.EntityTypeSnippet),
	)
	if err != nil {
		return nil, fmt.Errorf("find related associations: %w", err)
	}

	if len(associations) == 0 {
		return map[string][]enrichment.Enrichment{}, nil
	}

	// Group association enrichment IDs by sha, and collect all IDs to fetch
	shaToEnrichmentIDs := make(map[string][]int64)
	var allIDs []int64
	for _, a := range associations {
		shaToEnrichmentIDs[a.EntityID()] = append(shaToEnrichmentIDs[a.EntityID()], a.EnrichmentID())
		allIDs = append(allIDs, a.EnrichmentID())
	}

	related, err := s.enrichmentStore.Find(ctx, repository.WithIDIn(allIDs))
	if err != nil {
		return nil, fmt.Errorf("fetch related enrichments: %w", err)
	}

	byID := make(map[int64]enrichment.Enrichment, len(related))
	for _, e := range related {
		byID[e.ID()] = e
	}

	result := make(map[string][]enrichment.Enrichment, len(shaToEnrichmentIDs))
	for sha, ids := range shaToEnrichmentIDs {
		for _, id := range ids {
			if e, ok := byID[id]; ok {
				result[sha] = append(result[sha], e)
			}
		}
	}

	return result, nil
}

// SourceFiles returns file IDs grouped by enrichment ID string.
// It queries associations where enrichment_id IN (ids) and entity_type = "git_commit_files".
func (s *Enrichment) SourceFiles(ctx context.Context, enrichmentIDs []int64) (map[string][]int64, error) {
	if len(enrichmentIDs) == 0 {
		return map[string][]int64{}, nil
	}

	associations, err := s.associationStore.Find(ctx,
		enrichment.WithEnrichmentIDIn(enrichmentIDs),
		enrichment.WithEntityType(enrichment.EntityTypeFile),
	)
	if err != nil {
		return nil, fmt.Errorf("find file associations: %w", err)
	}

	result := make(map[string][]int64)
	for _, a := range associations {
		key := strconv.FormatInt(a.EnrichmentID(), 10)
		fileID, err := strconv.ParseInt(a.EntityID(), 10, 64)
		if err != nil {
			continue
		}
		result[key] = append(result[key], fileID)
	}

	return result, nil
}

// LineRanges returns chunk line ranges keyed by enrichment ID string.
func (s *Enrichment) LineRanges(ctx context.Context, enrichmentIDs []int64) (map[string]chunk.LineRange, error) {
	if len(enrichmentIDs) == 0 {
		return map[string]chunk.LineRange{}, nil
	}

	ranges, err := s.lineRangeStore.Find(ctx, repository.WithConditionIn("enrichment_id", enrichmentIDs))
	if err != nil {
		return nil, fmt.Errorf("find line ranges: %w", err)
	}

	result := make(map[string]chunk.LineRange, len(ranges))
	for _, r := range ranges {
		result[strconv.FormatInt(r.EnrichmentID(), 10)] = r
	}

	return result, nil
}
