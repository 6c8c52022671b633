package kodit

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/kodit-ai/kodit/application/handler"
	commithandler "github.com/kodit-ai/kodit/application/handler/commit"
	enrichmenthandler "github.com/kodit-ai/kodit/application/handler/enrichment"
	indexinghandler "github.com/kodit-ai/kodit/application/handler/indexing"
	repohandler "github.com/kodit-ai/kodit/application/handler/repository"
	"github.com/kodit-ai/kodit/application/service"
	"github.com/kodit-ai/kodit/domain/task"
	"github.com/kodit-ai/kodit/infrastructure/tracking"
)

// registerHandlers registers all task handlers with the worker registry.
func (c *Client) registerHandlers() error {
	// Repository lifecycle handlers (always registered)
	c.registry.Register(task.OperationCreateRepository, repohandler.NewCreate(
		c.repoStores.Repositories, c.enrichCtx.Tracker, c.logger,
	))
	c.registry.Register(task.OperationCloneRepository, repohandler.NewClone(
		c.repoStores.Repositories, c.repoStores.Branches, c.repoStores.Tags, c.repoStores.Commits,
		c.gitInfra.Cloner, c.gitInfra.Scanner, c.queue, c.prescribedOps, c.enrichCtx.Tracker, c.logger,
	))
	c.registry.Register(task.OperationSyncRepository, repohandler.NewSync(
		c.repoStores.Repositories, c.repoStores.Branches, c.repoStores.Tags, c.repoStores.Commits,
		c.gitInfra.Cloner, c.gitInfra.Scanner, c.queue, c.prescribedOps, c.enrichCtx.Tracker, c.logger,
	))
	c.registry.Register(task.OperationDeleteRepository, repohandler.NewDelete(
		c.repoStores, c.Enrichments, c.Snippets, c.queue, c.enrichCtx.Tracker, c.logger,
	))
	c.registry.Register(task.OperationScanCommit, commithandler.NewScan(
		c.repoStores.Repositories, c.repoStores.Commits, c.repoStores.Files, c.gitInfra.Scanner, c.enrichCtx.Tracker, c.logger,
	))
	c.registry.Register(task.OperationRescanCommit, commithandler.NewRescan(
		c.Enrichments, c.Snippets, c.repoStores.Files, c.statusStore, c.queue, c.prescribedOps, c.enrichCtx.Tracker, c.logger,
	))

	// Snippet extraction: AST slicing by default, line-based chunking when
	// simple chunking is requested.
	if c.simpleChunking {
		c.registry.Register(task.OperationExtractSnippetsForCommit, indexinghandler.NewChunkFiles(
			c.repoStores.Repositories, c.enrichCtx.Enrichments, c.enrichCtx.Associations, c.enrichCtx.Snippets,
			c.lineRangeStore, c.repoStores.Files, c.gitInfra.Adapter, c.chunkParams, c.enrichCtx.Tracker, c.logger,
		))
	} else {
		c.registry.Register(task.OperationExtractSnippetsForCommit, indexinghandler.NewExtractSnippets(
			c.repoStores.Repositories, c.enrichCtx.Snippets, c.repoStores.Files,
			c.slicer, c.enrichCtx.Tracker, c.logger,
		))
	}

	// BM25 index handler
	c.registry.Register(task.OperationCreateBM25IndexForCommit, indexinghandler.NewCreateBM25Index(
		c.bm25Service, c.enrichCtx.Snippets, c.enrichCtx.Tracker, c.logger,
	))

	// Code embedding handler — only if embedding provider configured
	if c.codeIndex.Store != nil {
		h, err := indexinghandler.NewCreateCodeEmbeddings(c.codeIndex, c.enrichCtx.Snippets, c.enrichCtx.Tracker, c.logger)
		if err != nil {
			return fmt.Errorf("create code embeddings handler: %w", err)
		}
		c.registry.Register(task.OperationCreateCodeEmbeddingsForCommit, h)
	}

	// Text embedding handler — only if text embedding provider configured
	if c.textIndex.Store != nil {
		h, err := indexinghandler.NewCreateSummaryEmbeddings(c.textIndex, c.enrichCtx.Enrichments, c.enrichCtx.Tracker, c.logger)
		if err != nil {
			return fmt.Errorf("create summary embeddings handler: %w", err)
		}
		c.registry.Register(task.OperationCreateSummaryEmbeddingsForCommit, h)
	}

	// Enrichment handlers that call Enricher — only if text provider configured
	if c.enrichCtx.Enricher != nil {
		h, err := enrichmenthandler.NewCreateSummary(c.enrichCtx)
		if err != nil {
			return fmt.Errorf("create summary handler: %w", err)
		}
		c.registry.Register(task.OperationCreateSummaryEnrichmentForCommit, h)

		h2, err := enrichmenthandler.NewCommitDescription(c.repoStores.Repositories, c.enrichCtx, c.gitInfra.Adapter)
		if err != nil {
			return fmt.Errorf("commit description handler: %w", err)
		}
		c.registry.Register(task.OperationCreateCommitDescriptionForCommit, h2)

		h3, err := enrichmenthandler.NewArchitectureDiscovery(c.repoStores.Repositories, c.enrichCtx, c.archDiscoverer)
		if err != nil {
			return fmt.Errorf("architecture discovery handler: %w", err)
		}
		c.registry.Register(task.OperationCreateArchitectureEnrichmentForCommit, h3)

		h4, err := enrichmenthandler.NewDatabaseSchema(c.repoStores.Repositories, c.enrichCtx, c.schemaDiscoverer)
		if err != nil {
			return fmt.Errorf("database schema handler: %w", err)
		}
		c.registry.Register(task.OperationCreateDatabaseSchemaForCommit, h4)

		h5, err := enrichmenthandler.NewCookbook(c.repoStores.Repositories, c.repoStores.Files, c.enrichCtx, c.cookbookContext)
		if err != nil {
			return fmt.Errorf("cookbook handler: %w", err)
		}
		c.registry.Register(task.OperationCreateCookbookForCommit, h5)

		h6, err := enrichmenthandler.NewRepositoryStructure(c.repoStores.Repositories, c.enrichCtx, c.structDiscoverer)
		if err != nil {
			return fmt.Errorf("repository structure handler: %w", err)
		}
		c.registry.Register(task.OperationCreateRepositoryStructureForCommit, h6)
	}

	// API docs enrichment (AST-based, no LLM dependency)
	c.registry.Register(task.OperationCreatePublicAPIDocsForCommit, enrichmenthandler.NewAPIDocs(
		c.repoStores.Files, c.enrichCtx, c.apiDocService,
	))

	c.logger.Info("registered task handlers", slog.Int("count", len(c.registry.Operations())))
	return nil
}

// validateHandlers checks that every prescribed operation has a registered handler.
// Returns an error listing missing operations and which provider to configure.
func (c *Client) validateHandlers() error {
	var missing []string
	for _, op := range c.prescribedOps.All() {
		if !c.registry.HasHandler(op) {
			missing = append(missing, op.String())
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf(
		"missing handlers for operations: [%s] — configure a text provider (WithOpenAI, WithAnthropic) and an embedding provider (WithOpenAI, WithOllama) or set SKIP_PROVIDER_VALIDATION=true to start without them",
		strings.Join(missing, ", "),
	)
}

// buildDatabaseURL constructs the database URL from configuration.
func buildDatabaseURL(cfg *clientConfig) (string, error) {
	switch cfg.database {
	case databaseSQLite:
		return "sqlite:///" + cfg.dbPath, nil
	case databasePostgres, databasePostgresPgvector:
		return cfg.dbDSN, nil
	case databasePostgresVectorchord:
		return vectorchordDSN(cfg.dbDSN)
	default:
		return "", ErrNoDatabase
	}
}

// vectorchordDSN makes sure the connection search path includes the
// VectorChord catalogs. A search_path the user already set, either as a
// query parameter or inside options, is left untouched.
func vectorchordDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse postgres DSN: %w", err)
	}

	q := u.Query()
	if q.Get("search_path") != "" || strings.Contains(q.Get("options"), "search_path") {
		return dsn, nil
	}

	q.Set("search_path", "public,bm25_catalog,tokenizer_catalog")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// trackerFactoryImpl implements handler.TrackerFactory for progress reporting.
type trackerFactoryImpl struct {
	reporters []tracking.Reporter
	logger    *slog.Logger
}

// ForOperation creates a Tracker for the given operation.
func (f *trackerFactoryImpl) ForOperation(operation task.Operation, trackableType task.TrackableType, trackableID int64) handler.Tracker {
	tracker := tracking.TrackerForOperation(operation, f.logger, trackableType, trackableID)
	for _, reporter := range f.reporters {
		tracker.Subscribe(reporter)
	}
	return tracker
}

// workerTrackerAdapter adapts trackerFactoryImpl to service.WorkerTrackerFactory.
type workerTrackerAdapter struct {
	factory *trackerFactoryImpl
}

// ForOperation creates a WorkerTracker for the given operation.
func (a *workerTrackerAdapter) ForOperation(operation task.Operation, trackableType task.TrackableType, trackableID int64) service.WorkerTracker {
	return a.factory.ForOperation(operation, trackableType, trackableID)
}
