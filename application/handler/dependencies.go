package handler

import (
	"log/slog"

	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/search"
	domainservice "github.com/kodit-ai/kodit/domain/service"
	"github.com/kodit-ai/kodit/domain/snippet"
	"github.com/kodit-ai/kodit/infrastructure/git"
)

// RepositoryStores groups the stores for the repository aggregate so
// handlers that touch several of them take one dependency.
type RepositoryStores struct {
	Repositories repository.RepositoryStore
	Commits      repository.CommitStore
	Branches     repository.BranchStore
	Tags         repository.TagStore
	Files        repository.FileStore
}

// VectorIndex pairs an embedding service with the store it writes to.
// Handlers use the service for indexing and the store for dedup checks.
type VectorIndex struct {
	Embedding domainservice.Embedding
	Store     search.EmbeddingStore
}

// GitInfrastructure groups the git-facing dependencies.
type GitInfrastructure struct {
	Adapter git.Adapter
	Cloner  domainservice.Cloner
	Scanner domainservice.Scanner
}

// EnrichmentContext groups the dependencies shared by all enrichment
// handlers.
type EnrichmentContext struct {
	Enrichments  enrichment.EnrichmentStore
	Associations enrichment.AssociationStore
	Snippets     snippet.Store
	Enricher     domainservice.Enricher
	Tracker      TrackerFactory
	Logger       *slog.Logger
}
