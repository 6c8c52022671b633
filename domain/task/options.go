package task

import "github.com/kodit-ai/kodit/domain/repository"

// WithOperation filters by the "operation" column.
func WithOperation(op Operation) repository.Option {
	return repository.WithCondition("operation", string(op))
}

// WithState filters by the "state" column.
func WithState(state ReportingState) repository.Option {
	return repository.WithCondition("state", string(state))
}

// WithTrackableType filters by the "trackable_type" column.
func WithTrackableType(t TrackableType) repository.Option {
	return repository.WithCondition("trackable_type", string(t))
}

// WithTrackableID filters by the "trackable_id" column.
func WithTrackableID(id int64) repository.Option {
	return repository.WithCondition("trackable_id", id)
}

// WithTrackable filters by trackable type and ID together.
func WithTrackable(t TrackableType, id int64) []repository.Option {
	return []repository.Option{WithTrackableType(t), WithTrackableID(id)}
}
