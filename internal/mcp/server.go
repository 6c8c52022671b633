// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kodit-ai/kodit/application/service"
	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/search"
	"github.com/kodit-ai/kodit/domain/snippet"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Searcher provides code search operations for MCP tools.
type Searcher interface {
	Search(ctx context.Context, request search.MultiRequest) (service.MultiSearchResult, error)
}

// HybridSearcher marks search services that run multiple search modes.
// Servers wired with one additionally expose the single-mode
// semantic_search and keyword_search tools.
type HybridSearcher interface {
	Searcher
	Available() bool
}

// RepositoryLister lists indexed repositories.
type RepositoryLister interface {
	Find(ctx context.Context, options ...repository.Option) ([]repository.Repository, error)
}

// CommitFinder lists indexed commits.
type CommitFinder interface {
	Find(ctx context.Context, options ...repository.Option) ([]repository.Commit, error)
}

// EnrichmentQuery lists enrichments by type and commit.
type EnrichmentQuery interface {
	List(ctx context.Context, params *service.EnrichmentListParams) ([]enrichment.Enrichment, error)
}

// Server wraps the MCP server with kodit-specific tools.
type Server struct {
	mcpServer     *server.MCPServer
	searchService Searcher
	repositories  RepositoryLister
	commits       CommitFinder
	enrichments   EnrichmentQuery
	version       string
	logger        *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(
	searchService Searcher,
	repositories RepositoryLister,
	commits CommitFinder,
	enrichments EnrichmentQuery,
	version string,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		searchService: searchService,
		repositories:  repositories,
		commits:       commits,
		enrichments:   enrichments,
		version:       version,
		logger:        logger,
	}

	// Create MCP server with server info
	mcpServer := server.NewMCPServer(
		"kodit",
		bareVersion(version),
		server.WithToolCapabilities(true),
	)

	// Register tools
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

// registerTools registers all kodit tools with the MCP server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	searchTool := mcp.NewTool("search",
		mcp.WithDescription("Search indexed code snippets using hybrid BM25 and vector search"),
		mcp.WithString("user_intent",
			mcp.Required(),
			mcp.Description("Description of what the user is trying to achieve"),
		),
		mcp.WithArray("keywords",
			mcp.Required(),
			mcp.Description("Keywords extracted from the user's question"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("related_file_paths",
			mcp.Description("Paths of files relevant to the question"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("related_file_contents",
			mcp.Description("Contents of files relevant to the question"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of results to return (default: 10)"),
		),
		mcp.WithString("language",
			mcp.Description("Filter by programming language"),
		),
	)
	mcpServer.AddTool(searchTool, s.handleSearch)

	versionTool := mcp.NewTool("get_version",
		mcp.WithDescription("Get the kodit server version"),
	)
	mcpServer.AddTool(versionTool, s.handleGetVersion)

	listTool := mcp.NewTool("list_repositories",
		mcp.WithDescription("List indexed repositories with their tracking configuration and latest commit"),
	)
	mcpServer.AddTool(listTool, s.handleListRepositories)

	docTools := []struct {
		name        string
		description string
		docType     enrichment.Type
		subtype     enrichment.Subtype
	}{
		{
			name:        "get_architecture_docs",
			description: "Get the architecture documentation generated for a repository",
			docType:     enrichment.TypeArchitecture,
			subtype:     enrichment.SubtypePhysical,
		},
		{
			name:        "get_api_docs",
			description: "Get the public API documentation generated for a repository",
			docType:     enrichment.TypeUsage,
			subtype:     enrichment.SubtypeAPIDocs,
		},
		{
			name:        "get_commit_description",
			description: "Get the description of the latest indexed commit of a repository",
			docType:     enrichment.TypeHistory,
			subtype:     enrichment.SubtypeCommitDescription,
		},
		{
			name:        "get_database_schema",
			description: "Get the database schema documentation generated for a repository",
			docType:     enrichment.TypeArchitecture,
			subtype:     enrichment.SubtypeDatabaseSchema,
		},
		{
			name:        "get_cookbook",
			description: "Get the usage cookbook generated for a repository",
			docType:     enrichment.TypeUsage,
			subtype:     enrichment.SubtypeCookbook,
		},
	}
	for _, dt := range docTools {
		tool := mcp.NewTool(dt.name,
			mcp.WithDescription(dt.description),
			mcp.WithString("repo_url",
				mcp.Required(),
				mcp.Description("Remote URL of the repository"),
			),
		)
		mcpServer.AddTool(tool, s.docHandler(dt.name, dt.docType, dt.subtype))
	}

	// Single-mode tools need the full hybrid search service behind them.
	if _, ok := s.searchService.(HybridSearcher); ok {
		semanticTool := mcp.NewTool("semantic_search",
			mcp.WithDescription("Search indexed code snippets by meaning using vector embeddings"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Natural language description of the code to find"),
			),
			mcp.WithNumber("top_k",
				mcp.Description("Number of results to return (default: 10)"),
			),
			mcp.WithString("language",
				mcp.Description("Filter by programming language"),
			),
		)
		mcpServer.AddTool(semanticTool, s.handleSemanticSearch)

		keywordTool := mcp.NewTool("keyword_search",
			mcp.WithDescription("Search indexed code snippets by keyword using the BM25 index"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Keywords to search for, separated by spaces"),
			),
			mcp.WithNumber("top_k",
				mcp.Description("Number of results to return (default: 10)"),
			),
			mcp.WithString("language",
				mcp.Description("Filter by programming language"),
			),
		)
		mcpServer.AddTool(keywordTool, s.handleKeywordSearch)
	}
}

// bareVersion strips any pre-release suffix so server info carries the
// plain semver while get_version keeps the full build string.
func bareVersion(version string) string {
	if i := strings.IndexByte(version, '-'); i > 0 {
		version = version[:i]
	}
	if version == "" {
		return "0.1.0"
	}
	return version
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userIntent, err := request.RequireString("user_intent")
	if err != nil {
		return mcp.NewToolResultError("user_intent is required"), nil
	}

	keywords := request.GetStringSlice("keywords", nil)
	if len(keywords) == 0 {
		return mcp.NewToolResultError("keywords is required"), nil
	}

	topK := request.GetInt("top_k", 10)

	var opts []search.FiltersOption
	if lang := request.GetString("language", ""); lang != "" {
		opts = append(opts, search.WithLanguage(lang))
	}
	if paths := request.GetStringSlice("related_file_paths", nil); len(paths) > 0 {
		opts = append(opts, search.WithFilePath(paths[0]))
	}
	filters := search.NewFilters(opts...)

	// Related file contents stand in for a code query so vector search
	// can match snippets structurally similar to what the user is editing.
	codeQuery := userIntent
	if contents := request.GetStringSlice("related_file_contents", nil); len(contents) > 0 {
		codeQuery = strings.Join(contents, "\n")
	}

	searchReq := search.NewMultiRequest(topK, userIntent, codeQuery, keywords, filters)

	result, err := s.searchService.Search(ctx, searchReq)
	if err != nil {
		s.logger.Error("search failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return searchResultsText(result)
}

// handleSemanticSearch handles the semantic_search tool invocation.
func (s *Server) handleSemanticSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}

	topK := request.GetInt("top_k", 10)
	filters := languageFilters(request)

	searchReq := search.NewMultiRequest(topK, query, query, nil, filters)

	result, err := s.searchService.Search(ctx, searchReq)
	if err != nil {
		s.logger.Error("semantic search failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return searchResultsText(result)
}

// handleKeywordSearch handles the keyword_search tool invocation.
func (s *Server) handleKeywordSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}

	keywords := strings.Fields(query)
	if len(keywords) == 0 {
		return mcp.NewToolResultError("query is required"), nil
	}

	topK := request.GetInt("top_k", 10)
	filters := languageFilters(request)

	searchReq := search.NewMultiRequest(topK, "", "", keywords, filters)

	result, err := s.searchService.Search(ctx, searchReq)
	if err != nil {
		s.logger.Error("keyword search failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	return searchResultsText(result)
}

// languageFilters builds search filters from an optional language argument.
func languageFilters(request mcp.CallToolRequest) search.Filters {
	var opts []search.FiltersOption
	if lang := request.GetString("language", ""); lang != "" {
		opts = append(opts, search.WithLanguage(lang))
	}
	return search.NewFilters(opts...)
}

// searchResultsText renders search results as a JSON array of snippets.
// Per-mode scores are preferred over the fused rank score because they
// carry the raw relevance the index reported.
func searchResultsText(result service.MultiSearchResult) (*mcp.CallToolResult, error) {
	snippets := result.Snippets()
	fusedScores := result.FusedScores()
	originalScores := result.OriginalScores()

	type searchResult struct {
		ID       string  `json:"id"`
		Content  string  `json:"content"`
		Language string  `json:"language"`
		Score    float64 `json:"score"`
	}

	results := make([]searchResult, len(snippets))
	for i, sn := range snippets {
		score := fusedScores[sn.SHA()]
		if original := originalScores[sn.SHA()]; len(original) > 0 {
			score = original[0]
		}
		language, err := snippet.Language{}.LanguageForExtension(sn.Extension())
		if err != nil {
			language = ""
		}
		results[i] = searchResult{
			ID:       sn.SHA(),
			Content:  sn.Content(),
			Language: language,
			Score:    score,
		}
	}

	jsonBytes, err := json.Marshal(results)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleGetVersion handles the get_version tool invocation.
func (s *Server) handleGetVersion(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.version), nil
}

// handleListRepositories handles the list_repositories tool invocation.
func (s *Server) handleListRepositories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repos, err := s.repositories.Find(ctx)
	if err != nil {
		s.logger.Error("list repositories failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("list repositories failed: %v", err)), nil
	}

	if len(repos) == 0 {
		return mcp.NewToolResultText("No repositories indexed."), nil
	}

	var b strings.Builder
	for _, repo := range repos {
		b.WriteString(repo.RemoteURL())
		b.WriteString(" (")
		b.WriteString(trackingLabel(repo.TrackingConfig()))
		if sha := s.latestCommitSHA(ctx, repo.ID()); sha != "" {
			b.WriteString(", latest commit: ")
			b.WriteString(sha)
		}
		b.WriteString(")\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

// trackingLabel renders a TrackingConfig as a short human-readable phrase.
func trackingLabel(tc repository.TrackingConfig) string {
	switch {
	case tc.IsBranch():
		return "tracking branch: " + tc.Branch()
	case tc.IsTag():
		return "tracking tag: " + tc.Tag()
	case tc.IsCommit():
		return "tracking commit: " + tc.Commit()
	default:
		return "no tracking configured"
	}
}

// latestCommitSHA returns the short SHA of the most recent indexed commit,
// or empty when none exists.
func (s *Server) latestCommitSHA(ctx context.Context, repoID int64) string {
	commits, err := s.commits.Find(ctx,
		repository.WithRepoID(repoID),
		repository.WithOrderDesc("date"),
		repository.WithLimit(1),
	)
	if err != nil {
		s.logger.Warn("find latest commit failed",
			slog.Int64("repository_id", repoID),
			slog.Any("error", err),
		)
		return ""
	}
	if len(commits) == 0 {
		return ""
	}
	return commits[0].ShortSHA()
}

// docHandler returns a tool handler serving one enrichment document type
// for the repository identified by repo_url.
func (s *Server) docHandler(name string, docType enrichment.Type, subtype enrichment.Subtype) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		repoURL, err := request.RequireString("repo_url")
		if err != nil {
			return mcp.NewToolResultError("repo_url is required"), nil
		}

		repos, err := s.repositories.Find(ctx, repository.WithRemoteURL(repoURL))
		if err != nil {
			s.logger.Error("find repository failed",
				slog.String("tool", name),
				slog.Any("error", err),
			)
			return mcp.NewToolResultError(fmt.Sprintf("find repository failed: %v", err)), nil
		}
		if len(repos) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("repository not found: %s", repoURL)), nil
		}

		commits, err := s.commits.Find(ctx,
			repository.WithRepoID(repos[0].ID()),
			repository.WithOrderDesc("date"),
		)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("find commits failed: %v", err)), nil
		}
		if len(commits) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("no commits found for %s", repoURL)), nil
		}

		shas := make([]string, len(commits))
		for i, c := range commits {
			shas[i] = c.SHA()
		}

		params := &service.EnrichmentListParams{
			Type:       &docType,
			Subtype:    &subtype,
			CommitSHAs: shas,
		}
		docs, err := s.enrichments.List(ctx, params)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list enrichments failed: %v", err)), nil
		}
		if len(docs) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("no %s document found for %s", subtype, repoURL)), nil
		}

		return mcp.NewToolResultText(docs[0].Content()), nil
	}
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
