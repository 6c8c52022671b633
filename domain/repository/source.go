package repository

// Source is the external view of a tracked repository, returned by
// lifecycle operations instead of the raw aggregate.
type Source struct {
	repo Repository
}

// NewSource creates a Source for a repository.
func NewSource(repo Repository) Source {
	return Source{repo: repo}
}

// Repo returns the underlying repository.
func (s Source) Repo() Repository { return s.repo }

// ID returns the underlying repository's ID.
func (s Source) ID() int64 { return s.repo.ID() }

// IsZero reports whether the source wraps no repository.
func (s Source) IsZero() bool { return s.repo.ID() == 0 && s.repo.RemoteURL() == "" }
