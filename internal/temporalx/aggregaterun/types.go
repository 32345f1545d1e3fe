package aggregaterun

import "time"

const (
	WorkflowName    = "aggregate_run"
	ActivityExecute = "aggregate_run_execute"
)

// Per-source job retry policy: three tries, a fixed 30s apart.
const (
	MaxAttempts   = 3
	RetryInterval = 30 * time.Second
)

type Result struct {
	JobID   string `json:"job_id"`
	JobType string `json:"job_type"`
	Status  string `json:"status"`
	Attempt int    `json:"attempt"`
}
