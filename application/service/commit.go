package service

import (
	"github.com/kodit-ai/kodit/domain/repository"
)

// Commit provides read access to scanned commits.
type Commit struct {
	repository.Collection[repository.Commit]
}

// NewCommit creates a new Commit service.
func NewCommit(store repository.CommitStore) *Commit {
	return &Commit{Collection: repository.NewCollection[repository.Commit](store)}
}
