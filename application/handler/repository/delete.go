package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kodit-ai/kodit/application/handler"
	"github.com/kodit-ai/kodit/application/service"
	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/task"
)

// Delete handles the DELETE_REPOSITORY task operation.
// It tears down a repository and everything derived from it, working
// from the search indexes inward: index entries first, then enrichments,
// then snippet associations and orphaned bodies, then refs and commits,
// and the repository row last. Any step failing fails the task, leaving
// the remaining rows for a retry.
type Delete struct {
	repoStores     handler.RepositoryStores
	enrichments    *service.Enrichment
	snippets       *service.Snippet
	queue          *service.Queue
	trackerFactory handler.TrackerFactory
	logger         *slog.Logger
}

// NewDelete creates a new Delete handler.
func NewDelete(
	repoStores handler.RepositoryStores,
	enrichments *service.Enrichment,
	snippets *service.Snippet,
	queue *service.Queue,
	trackerFactory handler.TrackerFactory,
	logger *slog.Logger,
) *Delete {
	return &Delete{
		repoStores:     repoStores,
		enrichments:    enrichments,
		snippets:       snippets,
		queue:          queue,
		trackerFactory: trackerFactory,
		logger:         logger,
	}
}

// Execute processes the DELETE_REPOSITORY task.
func (h *Delete) Execute(ctx context.Context, payload map[string]any) error {
	repoID, err := handler.ExtractInt64(payload, "repository_id")
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(
		task.OperationDeleteRepository,
		task.TrackableTypeRepository,
		repoID,
	)

	repo, err := h.repoStores.Repositories.FindOne(ctx, repository.WithID(repoID))
	if err != nil {
		return fmt.Errorf("get repository: %w", err)
	}

	// Drain any pending tasks for this repository (e.g. leftover rescan/indexing tasks)
	// so they don't block the worker after the repository data is gone.
	drained, err := h.queue.DrainForRepository(ctx, repoID)
	if err != nil {
		h.logger.Warn("failed to drain pending tasks", slog.String("error", err.Error()))
	}
	if drained > 0 {
		h.logger.Info("drained pending tasks for repository",
			slog.Int64("repo_id", repoID),
			slog.Int("drained", drained),
		)
	}

	commits, err := h.repoStores.Commits.Find(ctx, repository.WithRepoID(repoID))
	if err != nil {
		return fmt.Errorf("find commits: %w", err)
	}
	commitSHAs := make([]string, len(commits))
	for i, c := range commits {
		commitSHAs[i] = c.SHA()
	}

	tracker.SetTotal(ctx, 9)
	tracker.SetCurrent(ctx, 0, "Removing text embeddings")

	enrichmentIDs, err := h.collectEnrichmentIDs(ctx, repoID, commitSHAs)
	if err != nil {
		return err
	}
	if err := h.enrichments.DeleteTextEmbeddings(ctx, enrichmentIDs); err != nil {
		return err
	}

	tracker.SetCurrent(ctx, 1, "Removing snippet indexes")

	snippetSHAs, err := h.snippets.SHAsForCommits(ctx, commitSHAs)
	if err != nil {
		return fmt.Errorf("collect snippet shas: %w", err)
	}
	// Covers both the BM25 documents and the code embedding vectors.
	if err := h.snippets.DeleteIndexes(ctx, snippetSHAs); err != nil {
		return err
	}

	tracker.SetCurrent(ctx, 2, "Removing enrichments")

	if len(enrichmentIDs) > 0 {
		if err := h.enrichments.DeleteBy(ctx, repository.WithIDIn(enrichmentIDs)); err != nil {
			return err
		}
	}

	tracker.SetCurrent(ctx, 3, "Removing snippet associations")

	if err := h.snippets.DeleteCommitAssociations(ctx, commitSHAs); err != nil {
		return err
	}

	tracker.SetCurrent(ctx, 4, "Removing orphaned snippets")

	orphans, err := h.snippets.DeleteOrphans(ctx)
	if err != nil {
		return err
	}

	tracker.SetCurrent(ctx, 5, "Removing branches and tags")

	if err := h.deleteRefs(ctx, repoID); err != nil {
		return err
	}

	tracker.SetCurrent(ctx, 6, "Removing commit files")

	if len(commitSHAs) > 0 {
		if err := h.repoStores.Files.DeleteBy(ctx, repository.WithCommitSHAIn(commitSHAs)); err != nil {
			return fmt.Errorf("delete commit files: %w", err)
		}
	}

	tracker.SetCurrent(ctx, 7, "Removing commits")

	for _, c := range commits {
		if err := h.repoStores.Commits.Delete(ctx, c); err != nil {
			return fmt.Errorf("delete commit %s: %w", handler.ShortSHA(c.SHA()), err)
		}
	}

	tracker.SetCurrent(ctx, 8, "Deleting repository record")

	if err := h.repoStores.Repositories.Delete(ctx, repo); err != nil {
		return fmt.Errorf("delete repository: %w", err)
	}

	// Disk cleanup comes after the row is gone: a failed removal leaves a
	// stray directory, not a half-deleted repository.
	if repo.HasWorkingCopy() {
		clonedPath := repo.WorkingCopy().Path()
		if err := os.RemoveAll(clonedPath); err != nil {
			h.logger.Warn("failed to remove working copy",
				slog.String("path", clonedPath),
				slog.String("error", err.Error()),
			)
		}
	}

	h.logger.Info("repository deleted successfully",
		slog.Int64("repo_id", repoID),
		slog.Int("commits", len(commits)),
		slog.Int("enrichments", len(enrichmentIDs)),
		slog.Int64("orphan_snippets", orphans),
	)

	return nil
}

// collectEnrichmentIDs gathers every enrichment tied to the repository:
// commit-scoped ones (summaries, chunks, snippet summaries reached via
// the commit association) and repo-scoped artifacts such as architecture
// digests.
func (h *Delete) collectEnrichmentIDs(ctx context.Context, repoID int64, commitSHAs []string) ([]int64, error) {
	var ids []int64
	seen := map[int64]bool{}

	if len(commitSHAs) > 0 {
		found, err := h.enrichments.Find(ctx, enrichment.WithCommitSHAs(commitSHAs))
		if err != nil {
			return nil, fmt.Errorf("find commit enrichments: %w", err)
		}
		for _, e := range found {
			if !seen[e.ID()] {
				seen[e.ID()] = true
				ids = append(ids, e.ID())
			}
		}
	}

	repoScoped, err := h.enrichments.ForRepository(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("find repository enrichments: %w", err)
	}
	for _, e := range repoScoped {
		if !seen[e.ID()] {
			seen[e.ID()] = true
			ids = append(ids, e.ID())
		}
	}

	return ids, nil
}

func (h *Delete) deleteRefs(ctx context.Context, repoID int64) error {
	branches, err := h.repoStores.Branches.Find(ctx, repository.WithRepoID(repoID))
	if err != nil {
		return fmt.Errorf("find branches: %w", err)
	}
	for _, b := range branches {
		if err := h.repoStores.Branches.Delete(ctx, b); err != nil {
			return fmt.Errorf("delete branch %s: %w", b.Name(), err)
		}
	}

	tags, err := h.repoStores.Tags.Find(ctx, repository.WithRepoID(repoID))
	if err != nil {
		return fmt.Errorf("find tags: %w", err)
	}
	for _, t := range tags {
		if err := h.repoStores.Tags.Delete(ctx, t); err != nil {
			return fmt.Errorf("delete tag %s: %w", t.Name(), err)
		}
	}

	return nil
}
