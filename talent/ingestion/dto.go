package ingestion

import (
	"time"

	"github.com/careerlens/careerlens/pkg/kernel"
)

// ============================================================================
// Request DTOs
// ============================================================================

// ImportRequest - Request to import and process an uploaded resume
type ImportRequest struct {
	OwnerID  kernel.UserID `json:"owner_id" validate:"required"`
	FilePath string        `json:"file_path" validate:"required"`
	FileName string        `json:"file_name" validate:"required"`
	MIMEType string        `json:"mime_type" validate:"required"`
}

// ============================================================================
// Response DTOs
// ============================================================================

// Diagnostics describes one pipeline run for cost and debugging purposes
type Diagnostics struct {
	PageCount      int              `json:"page_count"`
	ExtractedChars int              `json:"extracted_chars"`
	OrganizedChars int              `json:"organized_chars"`
	DraftChars     int              `json:"draft_chars"`
	SectionCount   int              `json:"section_count"`
	PageWarnings   []string         `json:"page_warnings,omitempty"`
	TokenUsage     TokenUsageLedger `json:"token_usage"`
	CostUSD        float64          `json:"cost_usd"`
	CostPHP        float64          `json:"cost_php"`
}

// PipelineResult is what a successful run returns
type PipelineResult struct {
	Document    FlexibleResumeDocument `json:"document"`
	Diagnostics Diagnostics            `json:"diagnostics"`
}

// ImportStatusResponse - Response for import job status queries
type ImportStatusResponse struct {
	ImportID kernel.ImportID `json:"import_id"`
	OwnerID  kernel.UserID   `json:"owner_id"`
	Status   JobStatus       `json:"status"`
	Message  string          `json:"message"`
	Progress int             `json:"progress"`

	CurrentStep *ProcessingStep `json:"current_step,omitempty"`
	Error       string          `json:"error,omitempty"`

	// Result carries the parsed document once the job is completed
	Result *PipelineResult `json:"result,omitempty"`

	AttemptCount int        `json:"attempt_count,omitempty"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
}

// ToImportStatusResponse maps a job record to its API shape
func ToImportStatusResponse(job *ImportJob) *ImportStatusResponse {
	resp := &ImportStatusResponse{
		ImportID:     job.ID,
		OwnerID:      job.OwnerID,
		Status:       job.Status,
		Progress:     job.ProgressPercentage,
		CurrentStep:  job.CurrentStep,
		Error:        job.ErrorMessage,
		Result:       job.Result,
		AttemptCount: job.AttemptCount,
		NextRetryAt:  job.NextRetryAt,
		CreatedAt:    job.CreatedAt,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
		FailedAt:     job.FailedAt,
	}

	switch job.Status {
	case JobStatusPending:
		resp.Message = "Resume queued for processing"
	case JobStatusProcessing:
		resp.Message = "Resume is being processed"
	case JobStatusCompleted:
		resp.Message = "Resume processed successfully"
	case JobStatusFailed:
		resp.Message = job.ErrorMessage
	}
	return resp
}
