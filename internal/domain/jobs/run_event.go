package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RunEventKind string

const (
	RunEventStarted   RunEventKind = "started"
	RunEventSucceeded RunEventKind = "succeeded"
	RunEventFailed    RunEventKind = "failed"
)

// RunEvent is the notification published when a job run changes state. It is never stored.
type RunEvent struct {
	JobID      uuid.UUID       `json:"job_id"`
	JobType    string          `json:"job_type"`
	Kind       RunEventKind    `json:"kind"`
	Attempt    int             `json:"attempt"`
	Error      string          `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
