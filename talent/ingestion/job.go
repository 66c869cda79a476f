package ingestion

import (
	"time"

	"github.com/careerlens/careerlens/pkg/kernel"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

type ProcessingStep string

const (
	StepNormalizing  ProcessingStep = "normalizing"
	StepExtracting   ProcessingStep = "extracting"
	StepOrganizing   ProcessingStep = "organizing"
	StepSynthesizing ProcessingStep = "synthesizing"
	StepSaving       ProcessingStep = "saving"
)

// ImportJob is one queued resume import
type ImportJob struct {
	ID      kernel.ImportID `db:"id" json:"id"`
	OwnerID kernel.UserID   `db:"owner_id" json:"owner_id"`

	Status   JobStatus `db:"status" json:"status"`
	FilePath string    `db:"file_path" json:"file_path"`
	FileName string    `db:"file_name" json:"file_name"`
	MIMEType string    `db:"mime_type" json:"mime_type"`

	AttemptCount int `db:"attempt_count" json:"attempt_count"`
	MaxAttempts  int `db:"max_attempts" json:"max_attempts"`

	ErrorMessage string `db:"error_message" json:"error_message,omitempty"`

	CurrentStep        *ProcessingStep `db:"current_step" json:"current_step,omitempty"`
	ProgressPercentage int             `db:"progress_percentage" json:"progress_percentage"`

	// Result is hydrated from storage once the job completes
	Result *PipelineResult `db:"-" json:"result,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	FailedAt    *time.Time `db:"failed_at" json:"failed_at,omitempty"`
	NextRetryAt *time.Time `db:"next_retry_at" json:"next_retry_at,omitempty"`
}

// CanRetry reports whether the job still has attempts left
func (j *ImportJob) CanRetry() bool {
	return j.AttemptCount < j.MaxAttempts
}
