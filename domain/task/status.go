package task

import (
	"strconv"
	"strings"
	"time"
)

// ReportingState is the lifecycle state of a tracked operation.
type ReportingState string

const (
	ReportingStateStarted    ReportingState = "started"
	ReportingStateInProgress ReportingState = "in_progress"
	ReportingStateCompleted  ReportingState = "completed"
	ReportingStateFailed     ReportingState = "failed"
	ReportingStateSkipped    ReportingState = "skipped"
)

// IsTerminal reports whether no further state transitions are allowed.
func (s ReportingState) IsTerminal() bool {
	switch s {
	case ReportingStateCompleted, ReportingStateFailed, ReportingStateSkipped:
		return true
	}
	return false
}

// TrackableType names the kind of entity a status is attached to.
type TrackableType string

const (
	TrackableTypeIndex      TrackableType = "indexes"
	TrackableTypeRepository TrackableType = "kodit.repository"
	TrackableTypeCommit     TrackableType = "kodit.commit"
)

// Status is an immutable progress record for one operation. Mutators
// return a copy with updatedAt stamped.
type Status struct {
	id            string
	state         ReportingState
	operation     Operation
	message       string
	createdAt     time.Time
	updatedAt     time.Time
	total         int
	current       int
	errorMessage  string
	parent        *Status
	trackableID   int64
	trackableType TrackableType
}

// NewStatus creates a started Status for the given operation.
func NewStatus(operation Operation, parent *Status, trackableType TrackableType, trackableID int64) Status {
	now := time.Now().UTC()
	return Status{
		id:            createStatusID(operation, trackableType, trackableID),
		state:         ReportingStateStarted,
		operation:     operation,
		createdAt:     now,
		updatedAt:     now,
		parent:        parent,
		trackableID:   trackableID,
		trackableType: trackableType,
	}
}

// NewStatusWithDefaults creates a Status without tracking info.
func NewStatusWithDefaults(operation Operation) Status {
	return NewStatus(operation, nil, "", 0)
}

// NewStatusFull reconstructs a Status from stored fields.
func NewStatusFull(
	id string,
	state ReportingState,
	operation Operation,
	message string,
	createdAt, updatedAt time.Time,
	total, current int,
	errorMessage string,
	parent *Status,
	trackableID int64,
	trackableType TrackableType,
) Status {
	return Status{
		id:            id,
		state:         state,
		operation:     operation,
		message:       message,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		total:         total,
		current:       current,
		errorMessage:  errorMessage,
		parent:        parent,
		trackableID:   trackableID,
		trackableType: trackableType,
	}
}

func (s Status) ID() string                   { return s.id }
func (s Status) State() ReportingState        { return s.state }
func (s Status) Operation() Operation         { return s.operation }
func (s Status) Message() string              { return s.message }
func (s Status) CreatedAt() time.Time         { return s.createdAt }
func (s Status) UpdatedAt() time.Time         { return s.updatedAt }
func (s Status) Total() int                   { return s.total }
func (s Status) Current() int                 { return s.current }
func (s Status) Error() string                { return s.errorMessage }
func (s Status) Parent() *Status              { return s.parent }
func (s Status) TrackableID() int64           { return s.trackableID }
func (s Status) TrackableType() TrackableType { return s.trackableType }

// CompletionPercent returns progress clamped to [0, 100]. A zero total
// reads as 0%.
func (s Status) CompletionPercent() float64 {
	if s.total == 0 {
		return 0
	}
	percent := float64(s.current) / float64(s.total) * 100
	return min(max(percent, 0), 100)
}

// Skip marks the task as skipped with the given message.
func (s Status) Skip(message string) Status {
	s.state = ReportingStateSkipped
	s.message = message
	return s.touched()
}

// Fail marks the task as failed with the given error message.
func (s Status) Fail(errorMsg string) Status {
	s.state = ReportingStateFailed
	s.errorMessage = errorMsg
	return s.touched()
}

// SetTotal sets the total count for progress tracking.
func (s Status) SetTotal(total int) Status {
	s.total = total
	return s.touched()
}

// SetCurrent advances progress and moves the status to in_progress.
// An empty message keeps the previous one.
func (s Status) SetCurrent(current int, message string) Status {
	s.state = ReportingStateInProgress
	s.current = current
	if message != "" {
		s.message = message
	}
	return s.touched()
}

// SetTrackingInfo attaches the status to a trackable entity.
func (s Status) SetTrackingInfo(trackableID int64, trackableType TrackableType) Status {
	s.trackableID = trackableID
	s.trackableType = trackableType
	return s.touched()
}

// Complete marks the task as completed and snaps current to total.
// Terminal statuses are returned unchanged.
func (s Status) Complete() Status {
	if s.state.IsTerminal() {
		return s
	}
	s.state = ReportingStateCompleted
	s.current = s.total
	return s.touched()
}

func (s Status) touched() Status {
	s.updatedAt = time.Now().UTC()
	return s
}

// createStatusID derives a stable ID of the form
// "{trackable_type}-{trackable_id}-{operation}", dropping empty parts.
func createStatusID(operation Operation, trackableType TrackableType, trackableID int64) string {
	var parts []string
	if trackableType != "" {
		parts = append(parts, string(trackableType))
	}
	if trackableID != 0 {
		parts = append(parts, strconv.FormatInt(trackableID, 10))
	}
	parts = append(parts, string(operation))
	return strings.Join(parts, "-")
}
