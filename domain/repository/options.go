package repository

import "time"

// Column-filter options shared by the repository, commit, branch, tag and
// file stores. Each one narrows a query to rows matching the named column.

// WithSHA filters commits by SHA.
func WithSHA(sha string) Option { return WithCondition("commit_sha", sha) }

// WithCommitSHA filters file rows by the commit they belong to.
func WithCommitSHA(sha string) Option { return WithCondition("commit_sha", sha) }

// WithCommitSHAIn filters by any of the given commit SHAs.
func WithCommitSHAIn(shas []string) Option { return WithConditionIn("commit_sha", shas) }

// WithBlobSHA filters files by blob SHA.
func WithBlobSHA(sha string) Option { return WithCondition("blob_sha", sha) }

// WithName filters branches and tags by name.
func WithName(name string) Option { return WithCondition("name", name) }

// WithPath filters files by path.
func WithPath(path string) Option { return WithCondition("path", path) }

// WithRemoteURL filters repositories by sanitized remote URL.
func WithRemoteURL(url string) Option { return WithCondition("sanitized_remote_uri", url) }

// WithDefault filters for the default branch.
func WithDefault() Option { return WithCondition("is_default", true) }

// WithScanDueBefore filters repositories last scanned before the given
// time, including those never scanned at all.
func WithScanDueBefore(t time.Time) Option {
	return WithWhere("last_scanned_at IS NULL OR last_scanned_at < ?", t)
}
