package chunk

import "github.com/kodit-ai/kodit/domain/repository"

// LineRangeStore defines persistence for chunk line ranges.
type LineRangeStore interface {
	repository.Store[LineRange]
}
