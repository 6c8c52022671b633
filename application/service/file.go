package service

import (
	"github.com/kodit-ai/kodit/domain/repository"
)

// File provides read access to commit files.
type File struct {
	repository.Collection[repository.File]
}

// NewFile creates a new File service.
func NewFile(store repository.FileStore) *File {
	return &File{Collection: repository.NewCollection[repository.File](store)}
}
