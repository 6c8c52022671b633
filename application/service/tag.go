package service

import (
	"github.com/kodit-ai/kodit/domain/repository"
)

// Tag provides read access to repository tags.
type Tag struct {
	repository.Collection[repository.Tag]
}

// NewTag creates a new Tag service.
func NewTag(store repository.TagStore) *Tag {
	return &Tag{Collection: repository.NewCollection[repository.Tag](store)}
}
