package dto

import "time"

// TaskResponse represents a queued task.
type TaskResponse struct {
	ID        int64          `json:"id"`
	DedupKey  string         `json:"dedup_key"`
	Operation string         `json:"operation"`
	Priority  int            `json:"priority"`
	State     string         `json:"state"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TaskListResponse wraps a list of tasks.
type TaskListResponse struct {
	Data       []TaskResponse `json:"data"`
	TotalCount int            `json:"total_count"`
}

// QueueStatsResponse reports queue-level counters.
type QueueStatsResponse struct {
	PendingCount int `json:"pending_count"`
}
