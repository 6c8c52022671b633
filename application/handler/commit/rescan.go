package commit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kodit-ai/kodit/application/handler"
	"github.com/kodit-ai/kodit/application/service"
	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/task"
)

// Rescan handles the kodit.rescan_commit task operation. It clears every
// derived artifact of a commit (enrichments with their text embeddings,
// BM25 documents and code vectors keyed by snippet sha, the snippet and
// file associations, and stale progress statuses) while keeping the
// commit row and the content-addressed snippet bodies, then re-enqueues
// the scan-and-index pipeline at user priority.
type Rescan struct {
	enrichments    *service.Enrichment
	snippets       *service.Snippet
	fileStore      repository.FileStore
	statusStore    task.StatusStore
	queue          *service.Queue
	prescribedOps  task.PrescribedOperations
	trackerFactory handler.TrackerFactory
	logger         *slog.Logger
}

// NewRescan creates a new Rescan handler.
func NewRescan(
	enrichments *service.Enrichment,
	snippets *service.Snippet,
	fileStore repository.FileStore,
	statusStore task.StatusStore,
	queue *service.Queue,
	prescribedOps task.PrescribedOperations,
	trackerFactory handler.TrackerFactory,
	logger *slog.Logger,
) *Rescan {
	return &Rescan{
		enrichments:    enrichments,
		snippets:       snippets,
		fileStore:      fileStore,
		statusStore:    statusStore,
		queue:          queue,
		prescribedOps:  prescribedOps,
		trackerFactory: trackerFactory,
		logger:         logger,
	}
}

// Execute processes the rescan task.
func (h *Rescan) Execute(ctx context.Context, payload map[string]any) error {
	repoID, err := handler.ExtractInt64(payload, "repository_id")
	if err != nil {
		return err
	}

	commitSHA, err := handler.ExtractString(payload, "commit_sha")
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(
		task.OperationRescanCommit,
		task.TrackableTypeRepository,
		repoID,
	)
	tracker.SetTotal(ctx, 6)
	tracker.SetCurrent(ctx, 0, "Deleting snippet index entries")

	// BM25 documents and code vectors are keyed by snippet sha. Drop
	// them before the associations so the shas are still resolvable.
	shas, err := h.snippets.SHAsForCommits(ctx, []string{commitSHA})
	if err != nil {
		tracker.Fail(ctx, err.Error())
		return fmt.Errorf("find snippet shas for commit: %w", err)
	}
	if err := h.snippets.DeleteIndexes(ctx, shas); err != nil {
		tracker.Fail(ctx, err.Error())
		return fmt.Errorf("delete snippet index entries: %w", err)
	}

	tracker.SetCurrent(ctx, 1, "Deleting enrichments for commit")

	// Cascades into the enrichment-id keyed text embeddings; the
	// association rows go with the enrichments.
	if err := h.enrichments.DeleteBy(ctx, enrichment.WithCommitSHA(commitSHA)); err != nil {
		tracker.Fail(ctx, err.Error())
		return fmt.Errorf("delete enrichments: %w", err)
	}

	tracker.SetCurrent(ctx, 2, "Unlinking snippets from commit")

	// Snippet bodies stay: they are content-addressed, so the fresh
	// extraction pass reuses identical content instead of re-inserting.
	if err := h.snippets.DeleteCommitAssociations(ctx, []string{commitSHA}); err != nil {
		tracker.Fail(ctx, err.Error())
		return fmt.Errorf("delete snippet associations: %w", err)
	}

	tracker.SetCurrent(ctx, 3, "Deleting commit file records")

	if err := h.fileStore.DeleteBy(ctx, repository.WithCommitSHA(commitSHA)); err != nil {
		tracker.Fail(ctx, err.Error())
		return fmt.Errorf("delete commit files: %w", err)
	}

	tracker.SetCurrent(ctx, 4, "Clearing stale progress statuses")

	// Old statuses (including failed runs) would otherwise shadow the
	// progress of the fresh pass.
	if err := h.statusStore.DeleteBy(ctx, task.WithTrackable(task.TrackableTypeRepository, repoID)...); err != nil {
		tracker.Fail(ctx, err.Error())
		return fmt.Errorf("delete stale statuses: %w", err)
	}

	tracker.SetCurrent(ctx, 5, "Queueing fresh indexing pass")

	// A rescan is an explicit user request, so the pipeline runs ahead
	// of background syncs.
	pipelinePayload := map[string]any{
		"repository_id": repoID,
		"commit_sha":    commitSHA,
	}
	if err := h.queue.EnqueueOperations(ctx, h.prescribedOps.ScanAndIndexCommit(), task.PriorityUserInitiated, pipelinePayload); err != nil {
		tracker.Fail(ctx, err.Error())
		return fmt.Errorf("enqueue indexing pipeline: %w", err)
	}

	h.logger.Info("commit data cleared for rescan",
		slog.Int64("repo_id", repoID),
		slog.String("commit", handler.ShortSHA(commitSHA)),
		slog.Int("snippets_unlinked", len(shas)),
	)

	tracker.Complete(ctx)
	return nil
}
