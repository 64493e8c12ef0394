package job

import "trendhire/internal/model"

// Job is the internal job record persisted in redis between submission and
// retrieval.
type Job struct {
	JobID    string        `json:"job_id"`
	TaskName string        `json:"task_name,omitempty"`
	Status   Status        `json:"status"`
	Report   *model.Report `json:"report,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Status tracks a job through its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)
