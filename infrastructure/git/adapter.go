package git

import (
	"context"
	"errors"
	"mime"
	"path/filepath"
	"time"
)

// ErrBranchNotFound indicates the requested branch was not found.
var ErrBranchNotFound = errors.New("branch not found")

// ErrFileNotFound indicates the requested file was not found at the commit.
var ErrFileNotFound = errors.New("file not found")

// Adapter abstracts git repository access so the scanning pipeline does not
// depend on a particular git library. Two implementations exist: GiteaAdapter
// drives the native git binary, GoGitAdapter is pure Go and needs no git
// install. All paths are local working-copy paths.
type Adapter interface {
	// CloneRepository clones remoteURI into localPath.
	CloneRepository(ctx context.Context, remoteURI string, localPath string) error

	// EnsureRepository clones when localPath has no repository, otherwise fetches.
	EnsureRepository(ctx context.Context, remoteURI string, localPath string) error

	// RepositoryExists reports whether a repository exists at localPath.
	RepositoryExists(ctx context.Context, localPath string) (bool, error)

	// FetchRepository fetches the latest changes from the remote.
	FetchRepository(ctx context.Context, localPath string) error

	// PullRepository pulls the latest changes from the remote.
	PullRepository(ctx context.Context, localPath string) error

	// CheckoutCommit checks out a specific commit.
	CheckoutCommit(ctx context.Context, localPath string, commitSHA string) error

	// CheckoutBranch checks out a specific branch.
	CheckoutBranch(ctx context.Context, localPath string, branchName string) error

	// DefaultBranch resolves the default branch name.
	DefaultBranch(ctx context.Context, localPath string) (string, error)

	// AllBranches lists every branch with its head SHA.
	AllBranches(ctx context.Context, localPath string) ([]BranchInfo, error)

	// AllBranchHeadSHAs returns head SHAs for the named branches in one pass.
	AllBranchHeadSHAs(ctx context.Context, localPath string, branchNames []string) (map[string]string, error)

	// LatestCommitSHA returns the head commit SHA of a branch.
	// Returns ErrBranchNotFound when the branch does not exist.
	LatestCommitSHA(ctx context.Context, localPath string, branchName string) (string, error)

	// BranchCommits returns the commit history of a branch, newest first.
	BranchCommits(ctx context.Context, localPath string, branchName string) ([]CommitInfo, error)

	// BranchCommitSHAs returns only the commit SHAs of a branch, newest first.
	BranchCommitSHAs(ctx context.Context, localPath string, branchName string) ([]string, error)

	// AllCommitsBulk returns every commit reachable from any branch, keyed by
	// SHA. A non-nil since limits the walk to commits after that time.
	AllCommitsBulk(ctx context.Context, localPath string, since *time.Time) (map[string]CommitInfo, error)

	// CommitDetails returns metadata for one commit.
	CommitDetails(ctx context.Context, localPath string, commitSHA string) (CommitInfo, error)

	// CommitFiles lists the files in a commit's tree.
	CommitFiles(ctx context.Context, localPath string, commitSHA string) ([]FileInfo, error)

	// FileContent returns a file's content at a specific commit.
	FileContent(ctx context.Context, localPath string, commitSHA string, filePath string) ([]byte, error)

	// CommitDiff returns the unified diff introduced by a commit.
	CommitDiff(ctx context.Context, localPath string, commitSHA string) (string, error)

	// AllTags lists every tag with its target commit.
	AllTags(ctx context.Context, localPath string) ([]TagInfo, error)
}

// CommitInfo is commit metadata as read from a working copy.
type CommitInfo struct {
	SHA            string
	Message        string
	AuthorName     string
	AuthorEmail    string
	CommitterName  string
	CommitterEmail string
	AuthoredAt     time.Time
	CommittedAt    time.Time
	ParentSHA      string
}

// BranchInfo is branch metadata as read from a working copy.
type BranchInfo struct {
	Name      string
	HeadSHA   string
	IsDefault bool
}

// FileInfo is file metadata for one entry of a commit tree.
type FileInfo struct {
	Path     string
	BlobSHA  string
	Size     int64
	MimeType string
}

// TagInfo is tag metadata as read from a working copy. Lightweight tags
// carry only Name and TargetCommitSHA.
type TagInfo struct {
	Name            string
	TargetCommitSHA string
	Message         string
	TaggerName      string
	TaggerEmail     string
	TaggedAt        time.Time
}

// guessMimeType maps a file path to a mime type by extension.
func guessMimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
