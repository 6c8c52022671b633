package repository

// TrackingConfig names the ref a repository is pinned to: a branch, a tag,
// or an exact commit. At most one of the three is expected to be set.
type TrackingConfig struct {
	branch string
	tag    string
	commit string
}

// NewTrackingConfig creates a new TrackingConfig.
func NewTrackingConfig(branch, tag, commit string) TrackingConfig {
	return TrackingConfig{branch: branch, tag: tag, commit: commit}
}

// NewTrackingConfigForBranch creates a TrackingConfig tracking a branch.
func NewTrackingConfigForBranch(branch string) TrackingConfig {
	return NewTrackingConfig(branch, "", "")
}

// NewTrackingConfigForTag creates a TrackingConfig tracking a tag.
func NewTrackingConfigForTag(tag string) TrackingConfig {
	return NewTrackingConfig("", tag, "")
}

// NewTrackingConfigForCommit creates a TrackingConfig tracking a commit.
func NewTrackingConfigForCommit(commit string) TrackingConfig {
	return NewTrackingConfig("", "", commit)
}

// Branch returns the tracked branch name.
func (t TrackingConfig) Branch() string { return t.branch }

// Tag returns the tracked tag name.
func (t TrackingConfig) Tag() string { return t.tag }

// Commit returns the tracked commit SHA.
func (t TrackingConfig) Commit() string { return t.commit }

// IsBranch reports whether a branch is tracked.
func (t TrackingConfig) IsBranch() bool { return t.branch != "" }

// IsTag reports whether a tag is tracked.
func (t TrackingConfig) IsTag() bool { return t.tag != "" }

// IsCommit reports whether an exact commit is tracked.
func (t TrackingConfig) IsCommit() bool { return t.commit != "" }

// IsEmpty reports whether no tracking is configured.
func (t TrackingConfig) IsEmpty() bool { return t == TrackingConfig{} }

// Reference returns whichever ref is configured, preferring branch over
// tag over commit.
func (t TrackingConfig) Reference() string {
	switch {
	case t.branch != "":
		return t.branch
	case t.tag != "":
		return t.tag
	default:
		return t.commit
	}
}

// Equal reports whether two TrackingConfig values are equal.
func (t TrackingConfig) Equal(other TrackingConfig) bool { return t == other }
