package snippet

import "context"

// Store persists content-addressed snippets and their commit/file
// associations. Snippet bodies are shared across commits: saving the
// same content for a second commit adds an association, never a second
// body row.
type Store interface {
	// SaveForCommit upserts snippet bodies by sha and records the
	// commit and source-file associations. Re-running for the same
	// commit converges to the same set.
	SaveForCommit(ctx context.Context, commitSHA string, snippets []Snippet) error

	// FindByCommitSHA returns the snippets associated with a commit,
	// with source-file provenance hydrated.
	FindByCommitSHA(ctx context.Context, commitSHA string) ([]Snippet, error)

	// FindBySHAs returns snippet bodies for the given shas, with
	// source-file provenance hydrated. Unknown shas are skipped.
	FindBySHAs(ctx context.Context, shas []string) ([]Snippet, error)

	// CountByCommitSHA returns the number of snippets associated with
	// a commit.
	CountByCommitSHA(ctx context.Context, commitSHA string) (int64, error)

	// SHAsForCommits returns the distinct snippet shas associated with
	// any of the given commits.
	SHAsForCommits(ctx context.Context, commitSHAs []string) ([]string, error)

	// DeleteAssociationsForCommits removes the commit and file
	// associations for the given commits, keeping the snippet bodies.
	DeleteAssociationsForCommits(ctx context.Context, commitSHAs []string) error

	// DeleteOrphans removes snippet bodies that no commit references
	// anymore, returning the number of rows deleted.
	DeleteOrphans(ctx context.Context) (int64, error)
}
