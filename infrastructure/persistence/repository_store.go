package persistence

import (
	"context"
	"fmt"

	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/internal/database"
	"gorm.io/gorm"
)

// RepositoryStore implements repository.RepositoryStore using GORM.
type RepositoryStore struct {
	database.Repository[repository.Repository, RepositoryModel]
}

// NewRepositoryStore creates a new RepositoryStore.
func NewRepositoryStore(db database.Database) RepositoryStore {
	return RepositoryStore{
		Repository: database.NewRepository[repository.Repository, RepositoryModel](db, RepositoryMapper{}, "repository"),
	}
}

// Save creates or updates a repository.
func (s RepositoryStore) Save(ctx context.Context, repo repository.Repository) (repository.Repository, error) {
	model := s.Mapper().ToModel(repo)

	var result *gorm.DB
	if repo.ID() == 0 {
		result = s.DB(ctx).Create(&model)
	} else {
		result = s.DB(ctx).Save(&model)
	}

	if result.Error != nil {
		return repository.Repository{}, fmt.Errorf("save repository: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// RefreshCounts recomputes the denormalized commit, branch, and tag totals
// for a repository from the git_commits, git_branches, and git_tags tables.
func (s RepositoryStore) RefreshCounts(ctx context.Context, repoID int64) error {
	result := s.DB(ctx).Model(&RepositoryModel{}).
		Where("id = ?", repoID).
		Updates(map[string]any{
			"num_commits":  gorm.Expr("(SELECT COUNT(*) FROM git_commits WHERE repo_id = ?)", repoID),
			"num_branches": gorm.Expr("(SELECT COUNT(*) FROM git_branches WHERE repo_id = ?)", repoID),
			"num_tags":     gorm.Expr("(SELECT COUNT(*) FROM git_tags WHERE repo_id = ?)", repoID),
		})
	if result.Error != nil {
		return fmt.Errorf("refresh repository counts: %w", result.Error)
	}
	return nil
}

// Delete removes a repository.
func (s RepositoryStore) Delete(ctx context.Context, repo repository.Repository) error {
	model := s.Mapper().ToModel(repo)
	result := s.DB(ctx).Delete(&model)
	if result.Error != nil {
		return fmt.Errorf("delete repository: %w", result.Error)
	}
	return nil
}
