package search

import (
	"slices"
	"time"
)

// Filters narrows a snippet search to matching metadata.
type Filters struct {
	language           string
	author             string
	createdAfter       time.Time
	createdBefore      time.Time
	sourceRepo         int64
	filePath           string
	enrichmentTypes    []string
	enrichmentSubtypes []string
	commitSHAs         []string
}

// FiltersOption is a functional option for Filters.
type FiltersOption func(*Filters)

// WithLanguage sets the language filter.
func WithLanguage(language string) FiltersOption {
	return func(f *Filters) { f.language = language }
}

// WithAuthor sets the author filter.
func WithAuthor(author string) FiltersOption {
	return func(f *Filters) { f.author = author }
}

// WithCreatedAfter sets the created after filter.
func WithCreatedAfter(t time.Time) FiltersOption {
	return func(f *Filters) { f.createdAfter = t }
}

// WithCreatedBefore sets the created before filter.
func WithCreatedBefore(t time.Time) FiltersOption {
	return func(f *Filters) { f.createdBefore = t }
}

// WithSourceRepo sets the source repository filter.
func WithSourceRepo(repo int64) FiltersOption {
	return func(f *Filters) { f.sourceRepo = repo }
}

// WithFilePath sets the file path filter.
func WithFilePath(path string) FiltersOption {
	return func(f *Filters) { f.filePath = path }
}

// WithEnrichmentTypes sets the enrichment types filter.
func WithEnrichmentTypes(types []string) FiltersOption {
	return func(f *Filters) {
		if types != nil {
			f.enrichmentTypes = slices.Clone(types)
		}
	}
}

// WithEnrichmentSubtypes sets the enrichment subtypes filter.
func WithEnrichmentSubtypes(subtypes []string) FiltersOption {
	return func(f *Filters) {
		if subtypes != nil {
			f.enrichmentSubtypes = slices.Clone(subtypes)
		}
	}
}

// WithCommitSHAs sets the commit SHA filter.
func WithCommitSHAs(shas []string) FiltersOption {
	return func(f *Filters) {
		if shas != nil {
			f.commitSHAs = slices.Clone(shas)
		}
	}
}

// NewFilters creates a new Filters with options.
func NewFilters(opts ...FiltersOption) Filters {
	var f Filters
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

func (f Filters) Language() string          { return f.language }
func (f Filters) Author() string            { return f.author }
func (f Filters) CreatedAfter() time.Time   { return f.createdAfter }
func (f Filters) CreatedBefore() time.Time  { return f.createdBefore }
func (f Filters) SourceRepo() int64         { return f.sourceRepo }
func (f Filters) FilePath() string          { return f.filePath }
func (f Filters) EnrichmentTypes() []string { return slices.Clone(f.enrichmentTypes) }

func (f Filters) EnrichmentSubtypes() []string { return slices.Clone(f.enrichmentSubtypes) }

func (f Filters) CommitSHAs() []string { return slices.Clone(f.commitSHAs) }

// IsEmpty reports whether no filter fields are set.
func (f Filters) IsEmpty() bool {
	return f.language == "" &&
		f.author == "" &&
		f.createdAfter.IsZero() &&
		f.createdBefore.IsZero() &&
		f.sourceRepo == 0 &&
		f.filePath == "" &&
		len(f.enrichmentTypes) == 0 &&
		len(f.enrichmentSubtypes) == 0 &&
		len(f.commitSHAs) == 0
}
