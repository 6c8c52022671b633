package database

import (
	"github.com/kodit-ai/kodit/domain/enrichment"
	"github.com/kodit-ai/kodit/domain/search"
	"gorm.io/gorm"
)

// ApplySearchFilters narrows a search query to documents whose enrichment
// matches the given filters. Search tables key documents by snippet_id,
// which holds the enrichment ID as a string, so every filter resolves to
// a snippet_id IN (...) subquery against the enrichment tables. Works on
// both SQLite and Postgres (CAST ... AS TEXT is portable).
func ApplySearchFilters(db *gorm.DB, filters search.Filters) *gorm.DB {
	if filters.IsEmpty() {
		return db
	}

	session := db.Session(&gorm.Session{NewDB: true})

	enrich := session.Table("enrichments_v2").Select("CAST(enrichments_v2.id AS TEXT)")
	enrichUsed := false

	if lang := filters.Language(); lang != "" {
		enrich = enrich.Where("enrichments_v2.language = ?", lang)
		enrichUsed = true
	}
	if types := filters.EnrichmentTypes(); len(types) > 0 {
		enrich = enrich.Where("enrichments_v2.type IN ?", types)
		enrichUsed = true
	}
	if subtypes := filters.EnrichmentSubtypes(); len(subtypes) > 0 {
		enrich = enrich.Where("enrichments_v2.subtype IN ?", subtypes)
		enrichUsed = true
	}
	if after := filters.CreatedAfter(); !after.IsZero() {
		enrich = enrich.Where("enrichments_v2.created_at >= ?", after)
		enrichUsed = true
	}
	if before := filters.CreatedBefore(); !before.IsZero() {
		enrich = enrich.Where("enrichments_v2.created_at <= ?", before)
		enrichUsed = true
	}
	if enrichUsed {
		db = db.Where("snippet_id IN (?)", enrich)
	}

	// Commit-scoped filters go through the association table, restricting
	// to enrichments attached to matching commits.
	commitAssoc := session.Table("enrichment_associations").
		Select("CAST(enrichment_associations.enrichment_id AS TEXT)").
		Where("enrichment_associations.entity_type = ?", string(enrichment.EntityTypeCommit))
	commitUsed := false

	if shas := filters.CommitSHAs(); len(shas) > 0 {
		commitAssoc = commitAssoc.Where("enrichment_associations.entity_id IN ?", shas)
		commitUsed = true
	}
	if repoID := filters.SourceRepo(); repoID != 0 {
		commits := session.Table("git_commits").
			Select("git_commits.commit_sha").
			Where("git_commits.repo_id = ?", repoID)
		commitAssoc = commitAssoc.Where("enrichment_associations.entity_id IN (?)", commits)
		commitUsed = true
	}
	if author := filters.Author(); author != "" {
		commits := session.Table("git_commits").
			Select("git_commits.commit_sha").
			Where("git_commits.author LIKE ?", "%"+author+"%")
		commitAssoc = commitAssoc.Where("enrichment_associations.entity_id IN (?)", commits)
		commitUsed = true
	}
	if commitUsed {
		db = db.Where("snippet_id IN (?)", commitAssoc)
	}

	if path := filters.FilePath(); path != "" {
		files := session.Table("git_commit_files").
			Select("CAST(git_commit_files.id AS TEXT)").
			Where("git_commit_files.path LIKE ?", "%"+path+"%")
		fileAssoc := session.Table("enrichment_associations").
			Select("CAST(enrichment_associations.enrichment_id AS TEXT)").
			Where("enrichment_associations.entity_type = ?", string(enrichment.EntityTypeFile)).
			Where("enrichment_associations.entity_id IN (?)", files)
		db = db.Where("snippet_id IN (?)", fileAssoc)
	}

	return db
}
