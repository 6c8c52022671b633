package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kodit-ai/kodit/application/handler"
	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/task"
)

// Create handles the CREATE_REPOSITORY task operation.
// It verifies the persisted repository record before the clone runs.
type Create struct {
	repoStore      repository.RepositoryStore
	trackerFactory handler.TrackerFactory
	logger         *slog.Logger
}

// NewCreate creates a new Create handler.
func NewCreate(
	repoStore repository.RepositoryStore,
	trackerFactory handler.TrackerFactory,
	logger *slog.Logger,
) *Create {
	return &Create{
		repoStore:      repoStore,
		trackerFactory: trackerFactory,
		logger:         logger,
	}
}

// Execute processes the CREATE_REPOSITORY task.
func (h *Create) Execute(ctx context.Context, payload map[string]any) error {
	repoID, err := handler.ExtractInt64(payload, "repository_id")
	if err != nil {
		return err
	}

	tracker := h.trackerFactory.ForOperation(
		task.OperationCreateRepository,
		task.TrackableTypeRepository,
		repoID,
	)
	tracker.SetTotal(ctx, 1)
	tracker.SetCurrent(ctx, 0, "Validating repository record")

	repo, err := h.repoStore.FindOne(ctx, repository.WithID(repoID))
	if err != nil {
		tracker.Fail(ctx, err.Error())
		return fmt.Errorf("get repository: %w", err)
	}

	if repo.RemoteURL() == "" {
		tracker.Fail(ctx, "repository has no remote URL")
		return fmt.Errorf("repository %d has no remote URL", repoID)
	}

	h.logger.Info("repository record validated",
		slog.Int64("repo_id", repoID),
		slog.String("url", repo.RemoteURL()),
	)

	tracker.Complete(ctx)
	return nil
}
