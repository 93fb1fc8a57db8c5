package domain

import "time"

// JobStatus enumerates the terminal and transient states of a job run.
type JobStatus string

const (
	JobRunning JobStatus = "running"
	JobSuccess JobStatus = "success"
	JobPartial JobStatus = "partial"
	JobError   JobStatus = "error"
	JobSkipped JobStatus = "skipped"
)

// JobLog records one execution of a scheduled or manually triggered
// job.
type JobLog struct {
	ID          string     `json:"id" db:"id"`
	Kind        string     `json:"kind" db:"kind"`
	Status      JobStatus  `json:"status" db:"status"`
	Message     string     `json:"message" db:"message"`
	RecordCount int        `json:"record_count" db:"record_count"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	FinishedAt  *time.Time `json:"finished_at" db:"finished_at"`
}
