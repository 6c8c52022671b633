// Package repository provides Git repository domain types.
package repository

// WorkingCopy is a local filesystem clone of a repository, paired with
// the URI it was cloned from.
type WorkingCopy struct {
	path string
	uri  string
}

// NewWorkingCopy creates a new WorkingCopy.
func NewWorkingCopy(path, uri string) WorkingCopy {
	return WorkingCopy{path: path, uri: uri}
}

// Path returns the local filesystem path.
func (w WorkingCopy) Path() string { return w.path }

// URI returns the repository URI (remote URL or local path).
func (w WorkingCopy) URI() string { return w.uri }

// IsEmpty reports whether the working copy has no path.
func (w WorkingCopy) IsEmpty() bool { return w.path == "" }

// Equal reports whether two WorkingCopy values are equal.
func (w WorkingCopy) Equal(other WorkingCopy) bool { return w == other }
