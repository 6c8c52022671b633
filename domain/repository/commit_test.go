package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommit(sha, message string) Commit {
	return NewCommit(sha, 1, message, NewAuthor("n", "e"), NewAuthor("n", "e"), time.Now(), time.Now())
}

func TestCommit_ShortSHA(t *testing.T) {
	tests := []struct {
		name string
		sha  string
		want string
	}{
		{"normal SHA", "abc1234567890", "abc1234"},
		{"exactly 7 chars", "abc1234", "abc1234"},
		{"shorter than 7", "abc", "abc"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testCommit(tt.sha, "msg").ShortSHA())
		})
	}
}

func TestCommit_ShortMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"single line", "fix bug", "fix bug"},
		{"multi-line", "fix bug\n\nDetailed description", "fix bug"},
		{"empty", "", ""},
		{"only newline", "\n", ""},
		{"trailing newline", "fix bug\n", "fix bug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testCommit("abc1234", tt.message).ShortMessage())
		})
	}
}

func TestCommit_Fields(t *testing.T) {
	authored := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	committed := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	c := NewCommit("abc1234", 42, "fix: null pointer",
		NewAuthor("Alice", "alice@example.com"),
		NewAuthor("Bob", "bob@example.com"),
		authored, committed)

	assert.Equal(t, "abc1234", c.SHA())
	assert.Equal(t, int64(42), c.RepoID())
	assert.Equal(t, "fix: null pointer", c.Message())
	assert.Equal(t, "Alice", c.Author().Name())
	assert.Equal(t, "Bob", c.Committer().Name())
	assert.True(t, c.AuthoredAt().Equal(authored))
	assert.True(t, c.CommittedAt().Equal(committed))
	assert.Empty(t, c.ParentCommitSHA())
	assert.Zero(t, c.ID(), "a new commit has no storage ID yet")
}

func TestNewCommitWithParent(t *testing.T) {
	c := NewCommitWithParent(
		"abc1234", 1, "msg",
		NewAuthor("n", "e"), NewAuthor("n", "e"),
		time.Now(), time.Now(),
		"parent123",
	)

	assert.Equal(t, "parent123", c.ParentCommitSHA())
}

func TestCommit_WithID(t *testing.T) {
	c := testCommit("abc1234", "msg")
	c2 := c.WithID(99)

	assert.Equal(t, int64(99), c2.ID())
	assert.Zero(t, c.ID(), "WithID must not mutate the original value")
}

func TestReconstructCommit(t *testing.T) {
	now := time.Now()
	c := ReconstructCommit(
		42, "sha256hash", 7, "message",
		NewAuthor("Alice", "a@b.com"), NewAuthor("Bob", "b@b.com"),
		now, now, now.Add(-time.Hour),
		"parentsha",
	)

	assert.Equal(t, int64(42), c.ID())
	assert.Equal(t, "parentsha", c.ParentCommitSHA())
}

func TestAuthor_String(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"Alice", "alice@example.com", "Alice <alice@example.com>"},
		{"Bob", "", "Bob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewAuthor(tt.name, tt.email).String())
		})
	}
}

func TestAuthor_IsEmpty(t *testing.T) {
	assert.True(t, NewAuthor("", "").IsEmpty())
	assert.False(t, NewAuthor("Alice", "").IsEmpty())
}

func TestAuthor_Equal(t *testing.T) {
	alice := NewAuthor("Alice", "alice@example.com")

	assert.True(t, alice.Equal(NewAuthor("Alice", "alice@example.com")))
	assert.False(t, alice.Equal(NewAuthor("Bob", "alice@example.com")), "name differs")
	assert.False(t, alice.Equal(NewAuthor("Alice", "bob@example.com")), "email differs")
}

func TestTag_IsAnnotated(t *testing.T) {
	assert.False(t, NewTag(1, "v1.0.0", "abc123").IsAnnotated(), "lightweight tag")

	withMessage := NewAnnotatedTag(1, "v1.0.0", "abc123", "release", NewAuthor("", ""), time.Now())
	assert.True(t, withMessage.IsAnnotated())

	withTagger := NewAnnotatedTag(1, "v1.0.0", "abc123", "", NewAuthor("Alice", "a@b.com"), time.Now())
	assert.True(t, withTagger.IsAnnotated())
}

func TestTag_Fields(t *testing.T) {
	tag := NewTag(7, "v2.0.0", "def456")

	assert.Equal(t, int64(7), tag.RepoID())
	assert.Equal(t, "v2.0.0", tag.Name())
	assert.Equal(t, "def456", tag.CommitSHA())
}

func TestTag_WithID(t *testing.T) {
	tag := NewTag(1, "v1.0.0", "abc123")
	tag2 := tag.WithID(55)

	assert.Equal(t, int64(55), tag2.ID())
	assert.Zero(t, tag.ID(), "WithID must not mutate the original value")
}

func TestTrackingConfig_Kinds(t *testing.T) {
	tests := []struct {
		name     string
		tc       TrackingConfig
		isBranch bool
		isTag    bool
		isCommit bool
		ref      string
	}{
		{"branch", NewTrackingConfigForBranch("main"), true, false, false, "main"},
		{"tag", NewTrackingConfigForTag("v1.0.0"), false, true, false, "v1.0.0"},
		{"commit", NewTrackingConfigForCommit("abc1234"), false, false, true, "abc1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isBranch, tt.tc.IsBranch())
			assert.Equal(t, tt.isTag, tt.tc.IsTag())
			assert.Equal(t, tt.isCommit, tt.tc.IsCommit())
			assert.Equal(t, tt.ref, tt.tc.Reference())
		})
	}
}

func TestTrackingConfig_IsEmpty(t *testing.T) {
	require.True(t, NewTrackingConfig("", "", "").IsEmpty())
	require.False(t, NewTrackingConfigForBranch("main").IsEmpty())
}

func TestTrackingConfig_ReferencePriority(t *testing.T) {
	// Branch wins over tag and commit; tag wins over commit.
	assert.Equal(t, "main", NewTrackingConfig("main", "v1.0.0", "abc123").Reference())
	assert.Equal(t, "v1.0.0", NewTrackingConfig("", "v1.0.0", "abc123").Reference())
	assert.Empty(t, NewTrackingConfig("", "", "").Reference())
}

func TestTrackingConfig_Equal(t *testing.T) {
	assert.True(t, NewTrackingConfigForBranch("main").Equal(NewTrackingConfigForBranch("main")))
	assert.False(t, NewTrackingConfigForBranch("main").Equal(NewTrackingConfigForBranch("develop")))
}
