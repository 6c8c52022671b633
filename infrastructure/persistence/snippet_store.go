package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/kodit-ai/kodit/domain/repository"
	"github.com/kodit-ai/kodit/domain/snippet"
	"github.com/kodit-ai/kodit/internal/database"
	"gorm.io/gorm/clause"
)

// SnippetStore implements snippet.Store using GORM. Snippet bodies are
// content-addressed by sha; commit and file associations live in
// snippet_commits and snippet_files.
type SnippetStore struct {
	database.Repository[snippet.Snippet, SnippetModel]
}

// NewSnippetStore creates a new SnippetStore.
func NewSnippetStore(db database.Database) SnippetStore {
	return SnippetStore{
		Repository: database.NewRepository[snippet.Snippet, SnippetModel](db, SnippetMapper{}, "snippet"),
	}
}

// SaveForCommit upserts snippet bodies by sha and records the commit
// and source-file associations. Bodies that already exist (from any
// commit) are left untouched, so identical content is stored once.
func (s SnippetStore) SaveForCommit(ctx context.Context, commitSHA string, snippets []snippet.Snippet) error {
	if len(snippets) == 0 {
		return nil
	}

	now := time.Now()
	db := s.DB(ctx)

	models := make([]SnippetModel, len(snippets))
	for i, sn := range snippets {
		models[i] = s.Mapper().ToModel(sn)
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sha"}},
		DoNothing: true,
	}).Create(&models)
	if result.Error != nil {
		return fmt.Errorf("save snippets: %w", result.Error)
	}

	commits := make([]SnippetCommitModel, len(snippets))
	for i, sn := range snippets {
		commits[i] = SnippetCommitModel{
			SnippetSHA: sn.SHA(),
			CommitSHA:  commitSHA,
			CreatedAt:  now,
		}
	}
	result = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&commits)
	if result.Error != nil {
		return fmt.Errorf("save snippet commit associations: %w", result.Error)
	}

	var files []SnippetFileModel
	for _, sn := range snippets {
		for _, f := range sn.DerivesFrom() {
			files = append(files, SnippetFileModel{
				SnippetSHA: sn.SHA(),
				CommitSHA:  commitSHA,
				Path:       f.Path(),
				CreatedAt:  now,
			})
		}
	}
	if len(files) > 0 {
		result = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&files)
		if result.Error != nil {
			return fmt.Errorf("save snippet file associations: %w", result.Error)
		}
	}

	return nil
}

// FindByCommitSHA returns the snippets associated with a commit, with
// source-file provenance hydrated.
func (s SnippetStore) FindByCommitSHA(ctx context.Context, commitSHA string) ([]snippet.Snippet, error) {
	var models []SnippetModel
	err := s.DB(ctx).
		Joins("JOIN snippet_commits sc ON sc.snippet_sha = snippets.sha").
		Where("sc.commit_sha = ?", commitSHA).
		Order("snippets.sha").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("find snippets for commit: %w", err)
	}
	if len(models) == 0 {
		return []snippet.Snippet{}, nil
	}

	shas := make([]string, len(models))
	for i, m := range models {
		shas[i] = m.SHA
	}
	filesBySHA, err := s.sourceFiles(ctx, shas)
	if err != nil {
		return nil, err
	}

	return s.toDomain(models, filesBySHA), nil
}

// FindBySHAs returns snippet bodies for the given shas, with
// source-file provenance hydrated. Unknown shas are skipped.
func (s SnippetStore) FindBySHAs(ctx context.Context, shas []string) ([]snippet.Snippet, error) {
	if len(shas) == 0 {
		return []snippet.Snippet{}, nil
	}

	var models []SnippetModel
	if err := s.DB(ctx).Where("sha IN ?", shas).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("find snippets by sha: %w", err)
	}
	if len(models) == 0 {
		return []snippet.Snippet{}, nil
	}

	found := make([]string, len(models))
	for i, m := range models {
		found[i] = m.SHA
	}
	filesBySHA, err := s.sourceFiles(ctx, found)
	if err != nil {
		return nil, err
	}

	return s.toDomain(models, filesBySHA), nil
}

// CountByCommitSHA returns the number of snippets associated with a commit.
func (s SnippetStore) CountByCommitSHA(ctx context.Context, commitSHA string) (int64, error) {
	var count int64
	err := s.DB(ctx).Model(&SnippetCommitModel{}).
		Where("commit_sha = ?", commitSHA).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count snippets for commit: %w", err)
	}
	return count, nil
}

// SHAsForCommits returns the distinct snippet shas associated with any
// of the given commits.
func (s SnippetStore) SHAsForCommits(ctx context.Context, commitSHAs []string) ([]string, error) {
	if len(commitSHAs) == 0 {
		return []string{}, nil
	}

	var shas []string
	err := s.DB(ctx).Model(&SnippetCommitModel{}).
		Distinct("snippet_sha").
		Where("commit_sha IN ?", commitSHAs).
		Order("snippet_sha").
		Pluck("snippet_sha", &shas).Error
	if err != nil {
		return nil, fmt.Errorf("find snippet shas for commits: %w", err)
	}
	return shas, nil
}

// DeleteAssociationsForCommits removes the commit and file associations
// for the given commits, keeping the snippet bodies.
func (s SnippetStore) DeleteAssociationsForCommits(ctx context.Context, commitSHAs []string) error {
	if len(commitSHAs) == 0 {
		return nil
	}

	db := s.DB(ctx)
	if err := db.Where("commit_sha IN ?", commitSHAs).Delete(&SnippetFileModel{}).Error; err != nil {
		return fmt.Errorf("delete snippet file associations: %w", err)
	}
	if err := db.Where("commit_sha IN ?", commitSHAs).Delete(&SnippetCommitModel{}).Error; err != nil {
		return fmt.Errorf("delete snippet commit associations: %w", err)
	}
	return nil
}

// DeleteOrphans removes snippet bodies that no commit references anymore.
func (s SnippetStore) DeleteOrphans(ctx context.Context) (int64, error) {
	result := s.DB(ctx).
		Where("sha NOT IN (SELECT snippet_sha FROM snippet_commits)").
		Delete(&SnippetModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete orphan snippets: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// sourceFiles loads the snippet_files rows for the given shas and
// resolves them against git_commit_files, grouped by snippet sha.
func (s SnippetStore) sourceFiles(ctx context.Context, shas []string) (map[string][]repository.File, error) {
	type fileRow struct {
		FileModel
		SnippetSHA string `gorm:"column:snippet_sha"`
	}

	var rows []fileRow
	err := s.DB(ctx).Table("git_commit_files").
		Select("git_commit_files.*, sf.snippet_sha AS snippet_sha").
		Joins("JOIN snippet_files sf ON sf.commit_sha = git_commit_files.commit_sha AND sf.path = git_commit_files.path").
		Where("sf.snippet_sha IN ?", shas).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find snippet source files: %w", err)
	}

	mapper := FileMapper{}
	result := make(map[string][]repository.File, len(shas))
	for _, row := range rows {
		result[row.SnippetSHA] = append(result[row.SnippetSHA], mapper.ToDomain(row.FileModel))
	}
	return result, nil
}

func (s SnippetStore) toDomain(models []SnippetModel, filesBySHA map[string][]repository.File) []snippet.Snippet {
	snippets := make([]snippet.Snippet, len(models))
	for i, m := range models {
		snippets[i] = snippet.ReconstructSnippet(
			m.SHA,
			m.Content,
			m.Extension,
			filesBySHA[m.SHA],
			nil,
			m.CreatedAt,
			m.UpdatedAt,
		)
	}
	return snippets
}
