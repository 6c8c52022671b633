package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kodit-ai/kodit/application/handler"
	"github.com/kodit-ai/kodit/application/service"
	"github.com/kodit-ai/kodit/domain/repository"
	domainservice "github.com/kodit-ai/kodit/domain/service"
	"github.com/kodit-ai/kodit/domain/task"
)

// Clone handles the CLONE_REPOSITORY task operation.
// It clones a Git repository to the local filesystem, records the
// working copy, defaults the tracking config to the default branch,
// syncs refs, and queues the indexing pipeline for the tracked head at
// user priority (cloning only happens on explicit user request).
type Clone struct {
	repoStore      repository.RepositoryStore
	refs           refSync
	cloner         domainservice.Cloner
	scanner        domainservice.Scanner
	queue          *service.Queue
	prescribedOps  task.PrescribedOperations
	trackerFactory handler.TrackerFactory
	logger         *slog.Logger
}

// NewClone creates a new Clone handler.
func NewClone(
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
) *Clone {
	return &Clone{
		repoStore:      repoStore,
		refs:           newRefSync(branchStore, tagStore, commitStore, logger),
		cloner:         cloner,
		scanner:        scanner,
		queue:          queue,
		prescribedOps:  prescribedOps,
		trackerFactory: trackerFactory,
		logger:         logger,
	}
}

// Execute processes the CLONE_REPOSITORY task.
func (h *Clone) Execute(ctx context.Context, payload map[string]any) error {
	repoID, err := handler.ExtractInt64(payload, "repository_id")
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(
		task.OperationCloneRepository,
		task.TrackableTypeRepository,
		repoID,
	)

	repo, err := h.repoStore.FindOne(ctx, repository.WithID(repoID))
	if err != nil {
		tracker.Fail(ctx, err.Error())
		return fmt.Errorf("get repository: %w", err)
	}

	if repo.HasWorkingCopy() {
		h.logger.Info("repository already cloned",
			slog.Int64("repo_id", repoID),
			slog.String("path", repo.WorkingCopy().Path()),
		)
		tracker.Skip(ctx, "Repository already cloned")
		return nil
	}

	tracker.SetTotal(ctx, 3)
	tracker.SetCurrent(ctx, 0, "Cloning repository")

	clonedPath, err := h.cloner.Clone(ctx, repo.RemoteURL())
	if err != nil {
		tracker.Fail(ctx, err.Error())
		return fmt.Errorf("clone repository: %w", err)
	}

	wc := repository.NewWorkingCopy(clonedPath, repo.RemoteURL())
	repo = repo.WithWorkingCopy(wc)

	tracker.SetCurrent(ctx, 1, "Syncing branches and tags")

	branches, err := h.scanner.ScanAllBranches(ctx, clonedPath, repoID)
	if err != nil {
		h.logger.Warn("failed to scan branches", slog.String("error", err.Error()))
	}

	// A repository added without an explicit tracking config follows
	// its default branch from now on.
	if !repo.HasTrackingConfig() {
		if name := defaultBranchName(branches); name != "" {
			repo = repo.WithTrackingConfig(repository.NewTrackingConfigForBranch(name))
		}
	}

	if repo, err = h.repoStore.Save(ctx, repo); err != nil {
		tracker.Fail(ctx, err.Error())
		return fmt.Errorf("save repository: %w", err)
	}

	tags, err := h.scanner.ScanAllTags(ctx, clonedPath, repoID)
	if err != nil {
		h.logger.Warn("failed to scan tags", slog.String("error", err.Error()))
	}

	// Phase 1 skips every ref at this point (no commits are persisted
	// until SCAN_COMMIT runs); the next sync picks them up.
	if err := h.refs.SyncBranches(ctx, repoID, branches); err != nil {
		h.logger.Warn("failed to sync branches", slog.String("error", err.Error()))
	}
	if err := h.refs.SyncTags(ctx, repoID, tags); err != nil {
		h.logger.Warn("failed to sync tags", slog.String("error", err.Error()))
	}

	h.logger.Info("repository cloned successfully",
		slog.Int64("repo_id", repoID),
		slog.String("path", clonedPath),
	)

	tracker.SetCurrent(ctx, 2, "Queueing indexing pipeline")

	if err := h.enqueueIndexing(ctx, repo, branches, tags); err != nil {
		h.logger.Warn("failed to enqueue indexing pipeline", slog.String("error", err.Error()))
	}

	return nil
}

// enqueueIndexing queues the scan-and-index pipeline for the tracked
// head at user priority.
func (h *Clone) enqueueIndexing(ctx context.Context, repo repository.Repository, branches []repository.Branch, tags []repository.Tag) error {
	commitSHA, err := resolveTrackedHead(repo, branches, tags)
	if err != nil {
		return fmt.Errorf("resolve tracked head: %w", err)
	}
	if commitSHA == "" {
		h.logger.Debug("no commit to index after clone", slog.Int64("repo_id", repo.ID()))
		return nil
	}

	payload := map[string]any{
		"repository_id": repo.ID(),
		"commit_sha":    commitSHA,
	}
	return h.queue.EnqueueOperations(
		ctx,
		h.prescribedOps.ScanAndIndexCommit(),
		task.PriorityUserInitiated,
		payload,
	)
}

// defaultBranchName returns the name of the default branch, falling
// back to the first branch when none is flagged.
func defaultBranchName(branches []repository.Branch) string {
	for _, b := range branches {
		if b.IsDefault() {
			return b.Name()
		}
	}
	if len(branches) > 0 {
		return branches[0].Name()
	}
	return ""
}
