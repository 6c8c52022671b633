package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kodit-ai/kodit"
	"github.com/kodit-ai/kodit/application/service"
	"github.com/kodit-ai/kodit/domain/chunk"
	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/search"
	"github.com/kodit-ai/kodit/domain/snippet"
	"github.com/kodit-ai/kodit/infrastructure/api/middleware"
	"github.com/kodit-ai/kodit/infrastructure/api/v1/dto"
)

// SearchRouter handles search API endpoints.
type SearchRouter struct {
	client *kodit.Client
	logger *slog.Logger
}

// NewSearchRouter creates a new SearchRouter.
func NewSearchRouter(client *kodit.Client) *SearchRouter {
	return &SearchRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for search endpoints.
func (r *SearchRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Search)

	return router
}

// Search handles POST /api/v1/search.
//
//	@Summary		Search code
//	@Description	Hybrid search across code snippets and enrichments
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.SearchRequest	true	"Search request"
//	@Success		200		{object}	dto.SearchResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		500		{object}	map[string]string
//	@Security		APIKeyAuth
//	@Router			/search [post]
func (r *SearchRouter) Search(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.SearchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	searchReq := r.buildSearchRequest(ctx, body)
	result, err := r.client.Search.Search(ctx, searchReq)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	// Fetch related enrichments (e.g., summaries) for the result snippets
	snippets := result.Snippets()
	shas := make([]string, len(snippets))
	for i, s := range snippets {
		shas[i] = s.SHA()
	}
	related, err := r.client.Enrichments.RelatedEnrichments(ctx, shas)
	if err != nil {
		r.logger.Warn("failed to fetch related enrichments", "error", err)
		related = map[string][]enrichment.Enrichment{}
	}

	// Chunk-derived snippets carry their line range on the chunk
	// enrichment that produced them.
	chunkIDBySHA := make(map[string]int64)
	var chunkIDs []int64
	for sha, es := range related {
		for _, e := range es {
			if e.Subtype() == enrichment.SubtypeChunk {
				chunkIDBySHA[sha] = e.ID()
				chunkIDs = append(chunkIDs, e.ID())
			}
		}
	}
	lineRanges := map[string]chunk.LineRange{}
	if len(chunkIDs) > 0 {
		lineRanges, err = r.client.Enrichments.LineRanges(ctx, chunkIDs)
		if err != nil {
			r.logger.Warn("failed to fetch line ranges", "error", err)
			lineRanges = map[string]chunk.LineRange{}
		}
	}

	response := buildSearchResponse(result, related, chunkIDBySHA, lineRanges)
	middleware.WriteJSON(w, http.StatusOK, response)
}

func (r *SearchRouter) buildSearchRequest(ctx context.Context, body dto.SearchRequest) search.MultiRequest {
	attrs := body.Data.Attributes

	// Determine limit (default 10)
	topK := 10
	if attrs.Limit != nil && *attrs.Limit > 0 {
		topK = *attrs.Limit
	}

	// Determine text and code queries
	var textQuery, codeQuery string
	if attrs.Text != nil {
		textQuery = *attrs.Text
	}
	if attrs.Code != nil {
		codeQuery = *attrs.Code
	}

	// Build filters
	var opts []search.FiltersOption
	if attrs.Filters != nil {
		f := attrs.Filters
		if len(f.Languages) > 0 {
			opts = append(opts, search.WithLanguage(f.Languages[0]))
		}
		if len(f.Authors) > 0 {
			opts = append(opts, search.WithAuthor(f.Authors[0]))
		}
		if f.StartDate != nil {
			opts = append(opts, search.WithCreatedAfter(*f.StartDate))
		}
		if f.EndDate != nil {
			opts = append(opts, search.WithCreatedBefore(*f.EndDate))
		}
		if len(f.Sources) > 0 {
			if repoID := r.resolveSourceRepo(ctx, f.Sources[0]); repoID != 0 {
				opts = append(opts, search.WithSourceRepo(repoID))
			}
		}
		if len(f.FilePatterns) > 0 {
			opts = append(opts, search.WithFilePath(f.FilePatterns[0]))
		}
		if len(f.EnrichmentTypes) > 0 {
			opts = append(opts, search.WithEnrichmentTypes(f.EnrichmentTypes))
		}
		if len(f.EnrichmentSubtypes) > 0 {
			opts = append(opts, search.WithEnrichmentSubtypes(f.EnrichmentSubtypes))
		}
		if len(f.CommitSHA) > 0 {
			opts = append(opts, search.WithCommitSHAs(f.CommitSHA))
		}
	}

	filters := search.NewFilters(opts...)

	return search.NewMultiRequest(topK, textQuery, codeQuery, attrs.Keywords, filters)
}

func buildSearchResponse(
	result service.MultiSearchResult,
	related map[string][]enrichment.Enrichment,
	chunkIDBySHA map[string]int64,
	lineRanges map[string]chunk.LineRange,
) dto.SearchResponse {
	snippets := result.Snippets()
	scores := result.FusedScores()
	originalScores := result.OriginalScores()

	data := make([]dto.SnippetData, len(snippets))
	for i, s := range snippets {
		original := originalScores[s.SHA()]
		if len(original) == 0 {
			original = []float64{scores[s.SHA()]}
		}
		data[i] = snippetToSearchResult(s, original, related[s.SHA()])
		if chunkID, ok := chunkIDBySHA[s.SHA()]; ok {
			if lr, ok := lineRanges[strconv.FormatInt(chunkID, 10)]; ok {
				start, end := lr.StartLine(), lr.EndLine()
				data[i].Attributes.Content.StartLine = &start
				data[i].Attributes.Content.EndLine = &end
			}
		}
	}

	return dto.SearchResponse{
		Data: data,
	}
}

func snippetToSearchResult(s snippet.Snippet, originalScores []float64, related []enrichment.Enrichment) dto.SnippetData {
	createdAt := s.CreatedAt()
	updatedAt := s.UpdatedAt()

	enrichmentSchemas := make([]dto.EnrichmentSchema, 0, len(related))
	for _, r := range related {
		// Chunk enrichments duplicate the snippet body; they only anchor
		// line ranges.
		if r.Subtype() == enrichment.SubtypeChunk {
			continue
		}
		enrichmentSchemas = append(enrichmentSchemas, dto.EnrichmentSchema{
			Type:    string(r.Subtype()),
			Content: r.Content(),
		})
	}

	files := s.DerivesFrom()
	derivesFrom := make([]dto.GitFileSchema, len(files))
	for i, f := range files {
		derivesFrom[i] = dto.GitFileSchema{
			BlobSHA:  f.BlobSHA(),
			Path:     f.Path(),
			MimeType: f.MimeType(),
			Size:     f.Size(),
		}
	}

	language, err := snippet.Language{}.LanguageForExtension(s.Extension())
	if err != nil {
		language = ""
	}

	return dto.SnippetData{
		Type: "snippet",
		ID:   s.SHA(),
		Attributes: dto.SnippetAttributes{
			CreatedAt:   &createdAt,
			UpdatedAt:   &updatedAt,
			DerivesFrom: derivesFrom,
			Content: dto.SnippetContentSchema{
				Value:    s.Content(),
				Language: language,
			},
			Enrichments:    enrichmentSchemas,
			OriginalScores: originalScores,
		},
	}
}

// resolveSourceRepo maps a source filter value to a repository ID. The
// value may be a numeric ID or a remote URL; unknown sources resolve to 0.
func (r *SearchRouter) resolveSourceRepo(ctx context.Context, source string) int64 {
	if id, err := strconv.ParseInt(source, 10, 64); err == nil {
		return id
	}

	repo, err := r.client.Repositories.FindOne(ctx, repository.WithRemoteURL(source))
	if err != nil {
		r.logger.Warn("failed to resolve source repository", "source", source, "error", err)
		return 0
	}
	return repo.ID()
}
