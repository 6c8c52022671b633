package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kodit-ai/kodit/application/handler"
	"github.com/kodit-ai/kodit/application/service"
	"github.com/kodit-ai/kodit/domain/repository"
	domainservice "github.com/kodit-ai/kodit/domain/service"
	"github.com/kodit-ai/kodit/domain/task"
)

// Sync handles the SYNC_REPOSITORY task operation.
// It fetches the latest changes from the remote repository, reconciles
// branch and tag records, and queues the indexing pipeline when the
// tracked head moved to a commit that has not been scanned yet.
type Sync struct {
	repoStore      repository.RepositoryStore
	commitStore    repository.CommitStore
	refs           refSync
	cloner         domainservice.Cloner
	scanner        domainservice.Scanner
	queue          *service.Queue
	prescribedOps  task.PrescribedOperations
	trackerFactory handler.TrackerFactory
	logger         *slog.Logger
}

// NewSync creates a new Sync handler.
func NewSync(
	repoStore repository.RepositoryStore,
	branchStore repository.BranchStore,
	tagStore repository.TagStore,
	commitStore repository.CommitStore,
	cloner domainservice.Cloner,
	scanner domainservice.Scanner,
	queue *service.Queue,
	prescribedOps task.PrescribedOperations,
	trackerFactory handler.TrackerFactory,
	logger *slog.Logger,
) *Sync {
	return &Sync{
		repoStore:      repoStore,
		commitStore:    commitStore,
		refs:           newRefSync(branchStore, tagStore, commitStore, logger),
		cloner:         cloner,
		scanner:        scanner,
		queue:          queue,
		prescribedOps:  prescribedOps,
		trackerFactory: trackerFactory,
		logger:         logger,
	}
}

// Execute processes the SYNC_REPOSITORY task.
func (h *Sync) Execute(ctx context.Context, payload map[string]any) error {
	repoID, err := handler.ExtractInt64(payload, "repository_id")
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(
		task.OperationSyncRepository,
		task.TrackableTypeRepository,
		repoID,
	)

	repo, err := h.repoStore.FindOne(ctx, repository.WithID(repoID))
	if err != nil {
		return fmt.Errorf("get repository: %w", err)
	}

	if !repo.HasWorkingCopy() {
		return repository.ErrNotCloned
	}

	tracker.SetTotal(ctx, 3)
	tracker.SetCurrent(ctx, 0, "Fetching latest changes")

	clonedPath, err := h.cloner.Update(ctx, repo)
	if err != nil {
		return fmt.Errorf("update repository: %w", err)
	}

	// The clone may have been relocated (e.g. stale path from a previous
	// container). Persist the new working copy so future syncs use it.
	if clonedPath != repo.WorkingCopy().Path() {
		h.logger.Info("repository clone path changed",
			slog.Int64("repo_id", repoID),
			slog.String("old_path", repo.WorkingCopy().Path()),
			slog.String("new_path", clonedPath),
		)
		repo = repo.WithWorkingCopy(repository.NewWorkingCopy(clonedPath, repo.RemoteURL()))
		if _, err := h.repoStore.Save(ctx, repo); err != nil {
			return fmt.Errorf("save relocated repository: %w", err)
		}
	}

	tracker.SetCurrent(ctx, 1, "Syncing branches and tags")

	branches, tags := h.syncRefs(ctx, clonedPath, repoID)

	tracker.SetCurrent(ctx, 2, "Queueing commit scans")

	if err := h.enqueueCommitScans(ctx, repo, branches, tags); err != nil {
		h.logger.Warn("failed to enqueue commit scans", slog.String("error", err.Error()))
	}

	repo = repo.WithLastScannedAt(time.Now())
	if _, err := h.repoStore.Save(ctx, repo); err != nil {
		return fmt.Errorf("save last synced at: %w", err)
	}

	// After the save: Save writes the whole row, so refreshing first would
	// be clobbered by the stale counts loaded at the start of the sync.
	if err := h.repoStore.RefreshCounts(ctx, repoID); err != nil {
		h.logger.Warn("failed to refresh repository counts", slog.String("error", err.Error()))
	}

	h.logger.Info("repository synced successfully",
		slog.Int64("repo_id", repoID),
		slog.Int("branches", len(branches)),
		slog.Int("tags", len(tags)),
	)

	return nil
}

// syncRefs scans the remote refs and reconciles the persisted branch
// and tag records. Failures are logged, not fatal: indexing can still
// proceed from whatever refs did resolve.
func (h *Sync) syncRefs(ctx context.Context, clonedPath string, repoID int64) ([]repository.Branch, []repository.Tag) {
	branches, err := h.scanner.ScanAllBranches(ctx, clonedPath, repoID)
	if err != nil {
		h.logger.Warn("failed to scan branches", slog.String("error", err.Error()))
	} else if err := h.refs.SyncBranches(ctx, repoID, branches); err != nil {
		h.logger.Warn("failed to sync branches", slog.String("error", err.Error()))
	}

	tags, err := h.scanner.ScanAllTags(ctx, clonedPath, repoID)
	if err != nil {
		h.logger.Warn("failed to scan tags", slog.String("error", err.Error()))
	} else if err := h.refs.SyncTags(ctx, repoID, tags); err != nil {
		h.logger.Warn("failed to sync tags", slog.String("error", err.Error()))
	}

	return branches, tags
}

func (h *Sync) enqueueCommitScans(ctx context.Context, repo repository.Repository, branches []repository.Branch, tags []repository.Tag) error {
	commitSHA, err := resolveTrackedHead(repo, branches, tags)
	if err != nil {
		return fmt.Errorf("resolve tracked head: %w", err)
	}

	if commitSHA == "" {
		h.logger.Debug("no commit to scan", slog.Int64("repo_id", repo.ID()))
		return nil
	}

	// An already-persisted head means nothing changed since the last
	// sync; re-enqueueing would churn the whole pipeline for nothing.
	exists, err := h.commitStore.Exists(ctx, repository.WithRepoID(repo.ID()), repository.WithSHA(commitSHA))
	if err != nil {
		return fmt.Errorf("check tracked head commit: %w", err)
	}
	if exists {
		h.logger.Debug("tracked head already indexed",
			slog.Int64("repo_id", repo.ID()),
			slog.String("commit", handler.ShortSHA(commitSHA)),
		)
		return nil
	}

	payload := map[string]any{
		"repository_id": repo.ID(),
		"commit_sha":    commitSHA,
	}

	operations := h.prescribedOps.ScanAndIndexCommit()
	return h.queue.EnqueueOperations(ctx, operations, task.PriorityBackground, payload)
}
