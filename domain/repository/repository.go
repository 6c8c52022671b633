// Package repository provides Git repository domain types: the repository
// aggregate and its commits, branches, tags, and files.
package repository

import (
	"errors"
	"net/url"
	"time"
)

// ErrEmptyRemoteURL indicates a repo was created with an empty remote URL.
var ErrEmptyRemoteURL = errors.New("remote URL cannot be empty")

// ErrNotCloned indicates an operation that requires a local working copy
// was attempted on a repository that has never been cloned.
var ErrNotCloned = errors.New("repository has not been cloned")

// SanitizeRemoteURL strips embedded credentials from a remote URL. The
// result is the repository's identity key: two URLs that differ only in
// credentials name the same repository. Non-URL remotes (such as local
// paths) pass through unchanged.
func SanitizeRemoteURL(remoteURL string) string {
	parsed, err := url.Parse(remoteURL)
	if err != nil || parsed.Scheme == "" {
		return remoteURL
	}
	parsed.User = nil
	return parsed.String()
}

// Counts holds denormalized totals for a repository, recomputed from the
// commit, branch, and tag tables after scans and syncs.
type Counts struct {
	Commits  int
	Branches int
	Tags     int
}

// Repository represents a tracked Git repository (aggregate root).
type Repository struct {
	id             int64
	remoteURL      string
	workingCopy    WorkingCopy
	trackingConfig TrackingConfig
	counts         Counts
	createdAt      time.Time
	updatedAt      time.Time
	lastScannedAt  time.Time
}

// NewRepository creates a new Repository with a remote URL.
func NewRepository(remoteURL string) (Repository, error) {
	if remoteURL == "" {
		return Repository{}, ErrEmptyRemoteURL
	}
	now := time.Now()
	return Repository{
		remoteURL: remoteURL,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructRepository reconstructs a Repository from persistence.
func ReconstructRepository(
	id int64,
	remoteURL string,
	workingCopy WorkingCopy,
	trackingConfig TrackingConfig,
	createdAt, updatedAt time.Time,
	lastScannedAt time.Time,
) Repository {
	return Repository{
		id:             id,
		remoteURL:      remoteURL,
		workingCopy:    workingCopy,
		trackingConfig: trackingConfig,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		lastScannedAt:  lastScannedAt,
	}
}

// ID returns the repository ID.
func (r Repository) ID() int64 { return r.id }

// RemoteURL returns the remote URL as configured, credentials included.
// Persistence derives the sanitized identity key from this.
func (r Repository) RemoteURL() string { return r.remoteURL }

// WorkingCopy returns the local working copy.
func (r Repository) WorkingCopy() WorkingCopy { return r.workingCopy }

// TrackingConfig returns the tracking configuration.
func (r Repository) TrackingConfig() TrackingConfig { return r.trackingConfig }

// Counts returns the denormalized commit, branch, and tag totals.
func (r Repository) Counts() Counts { return r.counts }

// CreatedAt returns the creation timestamp.
func (r Repository) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last update timestamp.
func (r Repository) UpdatedAt() time.Time { return r.updatedAt }

// LastScannedAt returns when the repository was last synced (zero if never).
func (r Repository) LastScannedAt() time.Time { return r.lastScannedAt }

// HasWorkingCopy returns true if a working copy exists.
func (r Repository) HasWorkingCopy() bool { return !r.workingCopy.IsEmpty() }

// HasTrackingConfig returns true if tracking is configured.
func (r Repository) HasTrackingConfig() bool { return !r.trackingConfig.IsEmpty() }

// WithWorkingCopy returns a new Repository with the specified working copy.
func (r Repository) WithWorkingCopy(wc WorkingCopy) Repository {
	r.workingCopy = wc
	r.updatedAt = time.Now()
	return r
}

// WithTrackingConfig returns a new Repository with the specified tracking config.
func (r Repository) WithTrackingConfig(tc TrackingConfig) Repository {
	r.trackingConfig = tc
	r.updatedAt = time.Now()
	return r
}

// WithRemoteURL returns a new Repository with a replacement remote URL.
// Used for credential rotation: the sanitized identity must not change.
func (r Repository) WithRemoteURL(remoteURL string) Repository {
	r.remoteURL = remoteURL
	r.updatedAt = time.Now()
	return r
}

// WithCounts returns a new Repository carrying the given totals. Counts
// are derived data, so this does not bump updatedAt.
func (r Repository) WithCounts(c Counts) Repository {
	r.counts = c
	return r
}

// WithLastScannedAt returns a new Repository stamped with a sync time.
func (r Repository) WithLastScannedAt(t time.Time) Repository {
	r.lastScannedAt = t
	r.updatedAt = time.Now()
	return r
}

// WithID returns a new Repository with the specified ID (used after persistence).
func (r Repository) WithID(id int64) Repository {
	r.id = id
	return r
}
