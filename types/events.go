package types

import "github.com/google/uuid"

type EventType string

const (
	TypeStatus EventType = "status"
	TypeLog    EventType = "log"
	TypeResult EventType = "result"
)

type StatusEvent struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

type LogEvent struct {
	Source  string `json:"source"`
	Phase   Phase  `json:"phase"`
	Message string `json:"message"`
}

type ResultEvent struct {
	Outcome    Outcome `json:"outcome"`
	ExitCode   int     `json:"exit_code"`
	DurationMs int64   `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// StreamingJobEvent is published for every observable step of a launch.
// Exactly one of Status, Log or Result is set, matching Type.
type StreamingJobEvent struct {
	JobUID uuid.UUID    `json:"job_uid"`
	UserID string       `json:"user_id"`
	Type   EventType    `json:"type"`
	Status *StatusEvent `json:"status,omitempty"`
	Log    *LogEvent    `json:"log,omitempty"`
	Result *ResultEvent `json:"result,omitempty"`
}
