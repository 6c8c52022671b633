// Package task provides task queue domain types for async work processing.
package task

import (
	"encoding/json"
	"fmt"
	"maps"
	"sort"
	"time"
)

// Priority represents task queue priority levels. Lower values are more
// urgent. The two bands are spaced far apart so that batch offsets (up to
// ~12 for a full pipeline) never push a user-initiated task behind a
// background one.
type Priority int

// Priority values.
const (
	PriorityUserInitiated Priority = 100
	PriorityBackground    Priority = 1000
)

// State represents the lifecycle state of a queued task.
type State string

// State values. A task starts pending, is claimed into in_flight by
// exactly one worker, and ends done or failed. Failed is terminal: the
// queue never retries on its own.
const (
	StatePending  State = "pending"
	StateInFlight State = "in_flight"
	StateDone     State = "done"
	StateFailed   State = "failed"
)

// IsTerminal returns true when no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// Task represents an item in the queue. Pending tasks wait to be claimed;
// done and failed rows are retained as an execution record.
type Task struct {
	id        int64
	dedupKey  string
	operation Operation
	priority  int
	payload   map[string]any
	state     State
	takenAt   time.Time
	attempts  int
	lastError string
	createdAt time.Time
	updatedAt time.Time
}

// NewTask creates a new pending Task with the given operation, priority,
// and payload. The dedup key is derived from the operation and payload.
func NewTask(operation Operation, priority int, payload map[string]any) Task {
	p := copyPayload(payload)
	return Task{
		dedupKey:  createDedupKey(operation, p),
		operation: operation,
		priority:  priority,
		payload:   p,
		state:     StatePending,
	}
}

// ReconstructTask creates a Task with all fields (used by the store).
func ReconstructTask(
	id int64,
	dedupKey string,
	operation Operation,
	priority int,
	payload map[string]any,
	state State,
	takenAt time.Time,
	attempts int,
	lastError string,
	createdAt, updatedAt time.Time,
) Task {
	return Task{
		id:        id,
		dedupKey:  dedupKey,
		operation: operation,
		priority:  priority,
		payload:   copyPayload(payload),
		state:     state,
		takenAt:   takenAt,
		attempts:  attempts,
		lastError: lastError,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the task ID.
func (t Task) ID() int64 { return t.id }

// DedupKey returns the deduplication key.
func (t Task) DedupKey() string { return t.dedupKey }

// Operation returns the task operation.
func (t Task) Operation() Operation { return t.operation }

// Priority returns the task priority (lower is more urgent).
func (t Task) Priority() int { return t.priority }

// Payload returns a copy of the task payload.
func (t Task) Payload() map[string]any {
	return copyPayload(t.payload)
}

// State returns the task lifecycle state.
func (t Task) State() State { return t.state }

// TakenAt returns when the task was claimed (zero if never claimed).
func (t Task) TakenAt() time.Time { return t.takenAt }

// Attempts returns how many times the task has been claimed.
func (t Task) Attempts() int { return t.attempts }

// LastError returns the error recorded by the most recent failure.
func (t Task) LastError() string { return t.lastError }

// CreatedAt returns when the task was created.
func (t Task) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns when the task was last updated.
func (t Task) UpdatedAt() time.Time { return t.updatedAt }

// WithID returns a copy of the task with the given ID.
func (t Task) WithID(id int64) Task {
	t.id = id
	return t
}

// WithTimestamps returns a copy of the task with the given timestamps.
func (t Task) WithTimestamps(createdAt, updatedAt time.Time) Task {
	t.createdAt = createdAt
	t.updatedAt = updatedAt
	return t
}

// Taken returns a copy of the task claimed for execution: in_flight,
// taken_at stamped, attempts incremented.
func (t Task) Taken(at time.Time) Task {
	t.state = StateInFlight
	t.takenAt = at
	t.attempts++
	t.updatedAt = at
	return t
}

// Completed returns a copy of the task in the done state.
func (t Task) Completed() Task {
	t.state = StateDone
	t.updatedAt = time.Now().UTC()
	return t
}

// Failed returns a copy of the task in the failed state with the error
// that caused it.
func (t Task) Failed(lastError string) Task {
	t.state = StateFailed
	t.lastError = lastError
	t.updatedAt = time.Now().UTC()
	return t
}

// PayloadJSON returns the payload as JSON bytes.
func (t Task) PayloadJSON() ([]byte, error) {
	return json.Marshal(t.payload)
}

// createDedupKey creates a stable key for deduplicating pending tasks.
// Format: "{operation}:{v1}:{v2}:..." with payload values in key order.
func createDedupKey(operation Operation, payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	key := string(operation)
	for _, k := range keys {
		key += fmt.Sprintf(":%v", payload[k])
	}
	return key
}

// copyPayload creates a shallow copy of the payload map.
func copyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return make(map[string]any)
	}
	result := make(map[string]any, len(payload))
	maps.Copy(result, payload)
	return result
}
