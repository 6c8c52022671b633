package repository

import "time"

// Tag represents a Git tag within a repository. A tag is annotated when it
// carries a message or a tagger identity.
type Tag struct {
	id        int64
	repoID    int64
	name      string
	commitSHA string
	message   string
	tagger    Author
	taggedAt  time.Time
	createdAt time.Time
}

// NewTag creates a new lightweight Tag.
func NewTag(repoID int64, name, commitSHA string) Tag {
	return Tag{
		repoID:    repoID,
		name:      name,
		commitSHA: commitSHA,
		createdAt: time.Now(),
	}
}

// NewAnnotatedTag creates a new annotated Tag.
func NewAnnotatedTag(
	repoID int64,
	name, commitSHA, message string,
	tagger Author,
	taggedAt time.Time,
) Tag {
	t := NewTag(repoID, name, commitSHA)
	t.message = message
	t.tagger = tagger
	t.taggedAt = taggedAt
	return t
}

// ReconstructTag reconstructs a Tag from persistence.
func ReconstructTag(
	id int64,
	repoID int64,
	name, commitSHA, message string,
	tagger Author,
	taggedAt time.Time,
	createdAt time.Time,
) Tag {
	return Tag{
		id:        id,
		repoID:    repoID,
		name:      name,
		commitSHA: commitSHA,
		message:   message,
		tagger:    tagger,
		taggedAt:  taggedAt,
		createdAt: createdAt,
	}
}

// ID returns the tag ID.
func (t Tag) ID() int64 { return t.id }

// RepoID returns the owning repository ID.
func (t Tag) RepoID() int64 { return t.repoID }

// Name returns the tag name.
func (t Tag) Name() string { return t.name }

// CommitSHA returns the SHA the tag targets.
func (t Tag) CommitSHA() string { return t.commitSHA }

// Message returns the tag message (empty for lightweight tags).
func (t Tag) Message() string { return t.message }

// Tagger returns the tagger identity (empty for lightweight tags).
func (t Tag) Tagger() Author { return t.tagger }

// TaggedAt returns when the tag was created (zero for lightweight tags).
func (t Tag) TaggedAt() time.Time { return t.taggedAt }

// CreatedAt returns when the tag row was created.
func (t Tag) CreatedAt() time.Time { return t.createdAt }

// IsAnnotated returns true when the tag carries a message or tagger.
func (t Tag) IsAnnotated() bool {
	return t.message != "" || !t.tagger.IsEmpty()
}

// WithID returns a copy of the tag with the given ID.
func (t Tag) WithID(id int64) Tag {
	t.id = id
	return t
}
