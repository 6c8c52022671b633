package repository

import (
	"strings"
	"time"
)

// Commit represents a Git commit within a repository.
type Commit struct {
	id              int64
	sha             string
	repoID          int64
	message         string
	author          Author
	committer       Author
	authoredAt      time.Time
	committedAt     time.Time
	createdAt       time.Time
	parentCommitSHA string
}

// NewCommit creates a new Commit.
func NewCommit(
	sha string,
	repoID int64,
	message string,
	author, committer Author,
	authoredAt, committedAt time.Time,
) Commit {
	return Commit{
		sha:         sha,
		repoID:      repoID,
		message:     message,
		author:      author,
		committer:   committer,
		authoredAt:  authoredAt,
		committedAt: committedAt,
		createdAt:   time.Now(),
	}
}

// NewCommitWithParent creates a new Commit with a parent SHA.
func NewCommitWithParent(
	sha string,
	repoID int64,
	message string,
	author, committer Author,
	authoredAt, committedAt time.Time,
	parentSHA string,
) Commit {
	c := NewCommit(sha, repoID, message, author, committer, authoredAt, committedAt)
	c.parentCommitSHA = parentSHA
	return c
}

// ReconstructCommit reconstructs a Commit from persistence.
func ReconstructCommit(
	id int64,
	sha string,
	repoID int64,
	message string,
	author, committer Author,
	authoredAt, committedAt time.Time,
	createdAt time.Time,
	parentSHA string,
) Commit {
	return Commit{
		id:              id,
		sha:             sha,
		repoID:          repoID,
		message:         message,
		author:          author,
		committer:       committer,
		authoredAt:      authoredAt,
		committedAt:     committedAt,
		createdAt:       createdAt,
		parentCommitSHA: parentSHA,
	}
}

// ID returns the commit ID.
func (c Commit) ID() int64 { return c.id }

// SHA returns the full commit SHA.
func (c Commit) SHA() string { return c.sha }

// RepoID returns the owning repository ID.
func (c Commit) RepoID() int64 { return c.repoID }

// Message returns the full commit message.
func (c Commit) Message() string { return c.message }

// Author returns the commit author.
func (c Commit) Author() Author { return c.author }

// Committer returns the committer.
func (c Commit) Committer() Author { return c.committer }

// AuthoredAt returns when the commit was authored.
func (c Commit) AuthoredAt() time.Time { return c.authoredAt }

// CommittedAt returns when the commit was committed.
func (c Commit) CommittedAt() time.Time { return c.committedAt }

// CreatedAt returns when the commit row was created.
func (c Commit) CreatedAt() time.Time { return c.createdAt }

// ParentCommitSHA returns the first parent SHA (empty for root commits).
func (c Commit) ParentCommitSHA() string { return c.parentCommitSHA }

// ShortSHA returns the first seven characters of the SHA.
func (c Commit) ShortSHA() string {
	if len(c.sha) <= 7 {
		return c.sha
	}
	return c.sha[:7]
}

// ShortMessage returns the first line of the commit message.
func (c Commit) ShortMessage() string {
	if idx := strings.IndexByte(c.message, '\n'); idx >= 0 {
		return c.message[:idx]
	}
	return c.message
}

// WithID returns a copy of the commit with the given ID.
func (c Commit) WithID(id int64) Commit {
	c.id = id
	return c
}
