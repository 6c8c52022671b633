package repository

import (
	"path/filepath"
	"strings"
	"time"
)

// File represents a file at a specific commit, identified by its blob SHA.
type File struct {
	id        int64
	commitSHA string
	path      string
	blobSHA   string
	mimeType  string
	extension string
	language  string
	size      int64
	createdAt time.Time
}

// NewFile creates a new File with a language hint.
func NewFile(commitSHA, path, language string, size int64) File {
	return File{
		commitSHA: commitSHA,
		path:      path,
		extension: filepath.Ext(path),
		language:  language,
		size:      size,
		createdAt: time.Now(),
	}
}

// NewFileWithDetails creates a new File with full blob metadata.
func NewFileWithDetails(commitSHA, path, blobSHA, mimeType, extension string, size int64) File {
	return File{
		commitSHA: commitSHA,
		path:      path,
		blobSHA:   blobSHA,
		mimeType:  mimeType,
		extension: extension,
		language:  strings.TrimPrefix(extension, "."),
		size:      size,
		createdAt: time.Now(),
	}
}

// ReconstructFile reconstructs a File from persistence.
func ReconstructFile(
	id int64,
	commitSHA, path, blobSHA, mimeType, extension, language string,
	size int64,
	createdAt time.Time,
) File {
	return File{
		id:        id,
		commitSHA: commitSHA,
		path:      path,
		blobSHA:   blobSHA,
		mimeType:  mimeType,
		extension: extension,
		language:  language,
		size:      size,
		createdAt: createdAt,
	}
}

// ID returns the file ID.
func (f File) ID() int64 { return f.id }

// CommitSHA returns the commit this file version belongs to.
func (f File) CommitSHA() string { return f.commitSHA }

// Path returns the path relative to the repository root.
func (f File) Path() string { return f.path }

// BlobSHA returns the Git blob SHA of the content.
func (f File) BlobSHA() string { return f.blobSHA }

// MimeType returns the detected MIME type.
func (f File) MimeType() string { return f.mimeType }

// Extension returns the file extension including the dot.
func (f File) Extension() string { return f.extension }

// Language returns the language hint for the file.
func (f File) Language() string { return f.language }

// Size returns the file size in bytes.
func (f File) Size() int64 { return f.size }

// CreatedAt returns when the file row was created.
func (f File) CreatedAt() time.Time { return f.createdAt }

// WithID returns a copy of the file with the given ID.
func (f File) WithID(id int64) File {
	f.id = id
	return f
}
