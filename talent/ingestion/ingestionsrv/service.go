package ingestionsrv

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careerlens/careerlens/pkg/fsx"
	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/pkg/logx"
	"github.com/careerlens/careerlens/talent/ingestion"
)

const (
	// MaxFileSize caps uploads at 10MB
	MaxFileSize = 10 * 1024 * 1024

	maxJobAttempts = 3
)

// Service orchestrates resume imports: it queues uploads, drives the
// pipeline from the worker, and persists the finished document through
// the result sink.
type Service struct {
	repo       ingestion.ImportRepository
	queue      ingestion.ImportQueue
	pipeline   *Pipeline
	fileReader fsx.FileReader
	sink       ingestion.ImportResultSink
}

func NewService(
	repo ingestion.ImportRepository,
	queue ingestion.ImportQueue,
	pipeline *Pipeline,
	fileReader fsx.FileReader,
	sink ingestion.ImportResultSink,
) *Service {
	return &Service{
		repo:       repo,
		queue:      queue,
		pipeline:   pipeline,
		fileReader: fileReader,
		sink:       sink,
	}
}

// ImportResumeAsync - Queue the uploaded resume for background processing
func (s *Service) ImportResumeAsync(ctx context.Context, req ingestion.ImportRequest) (*ingestion.ImportStatusResponse, error) {
	logx.Infof("Queueing resume for import: Owner=%s, File=%s", req.OwnerID, req.FileName)

	if _, ok := ingestion.DetectFormat(req.MIMEType, req.FileName); !ok {
		return nil, ingestion.ErrUnsupportedFormat().
			WithDetail("mime_type", req.MIMEType).
			WithDetail("file_name", req.FileName)
	}

	job := &ingestion.ImportJob{
		ID:          kernel.NewImportID(uuid.NewString()),
		OwnerID:     req.OwnerID,
		Status:      ingestion.JobStatusPending,
		FilePath:    req.FilePath,
		FileName:    req.FileName,
		MIMEType:    req.MIMEType,
		MaxAttempts: maxJobAttempts,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, ingestion.ErrRegistry.NewWithCause(ingestion.CodeImportCreateFailed, err).
			WithDetail("owner_id", req.OwnerID).
			WithDetail("file_name", req.FileName)
	}

	if err := s.queue.Enqueue(ctx, job.ID, job); err != nil {
		_ = s.repo.MarkAsFailed(ctx, job.ID, "failed to enqueue")

		return nil, ingestion.ErrRegistry.NewWithCause(ingestion.CodeQueueEnqueueFailed, err).
			WithDetail("import_id", job.ID).
			WithDetail("owner_id", req.OwnerID)
	}

	logx.Infof("Import queued: ImportID=%s", job.ID)
	return ingestion.ToImportStatusResponse(job), nil
}

// GetImportStatus retrieves the current state of an import job. Owner
// mismatches report not-found rather than leaking the job's existence.
func (s *Service) GetImportStatus(ctx context.Context, id kernel.ImportID, owner kernel.UserID) (*ingestion.ImportStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ingestion.ErrImportNotFound().
			WithDetail("import_id", id)
	}
	if job.OwnerID != owner {
		return nil, ingestion.ErrImportNotFound().
			WithDetail("import_id", id)
	}
	return ingestion.ToImportStatusResponse(job), nil
}

// ListImports retrieves an owner's import history
func (s *Service) ListImports(ctx context.Context, owner kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[ingestion.ImportJob], error) {
	jobs, err := s.repo.ListByOwner(ctx, owner, pagination)
	if err != nil {
		return nil, ingestion.ErrRegistry.NewWithCause(ingestion.CodeImportNotFound, err).
			WithDetail("owner_id", owner)
	}
	return jobs, nil
}

// ImportResume runs the pipeline synchronously, without touching the
// queue. Used by the synchronous endpoint and by tooling.
func (s *Service) ImportResume(ctx context.Context, req ingestion.ImportRequest) (*ingestion.PipelineResult, error) {
	data, err := s.fileReader.ReadFile(ctx, req.FilePath)
	if err != nil {
		return nil, ingestion.ErrRegistry.NewWithCause(ingestion.CodeFileReadFailed, err).
			WithDetail("file_path", req.FilePath)
	}

	return s.pipeline.Run(ctx, ingestion.UploadedDocument{
		FileName: req.FileName,
		MIMEType: req.MIMEType,
		Data:     data,
	})
}

// ProcessImportJob - Worker function to process one queued import
func (s *Service) ProcessImportJob(ctx context.Context, job *ingestion.ImportJob) error {
	logx.Infof("Processing import: ImportID=%s, Attempt=%d/%d", job.ID, job.AttemptCount+1, job.MaxAttempts)

	if err := s.repo.MarkAsProcessing(ctx, job.ID); err != nil {
		return ingestion.ErrRegistry.NewWithCause(ingestion.CodeImportUpdateFailed, err).
			WithDetail("import_id", job.ID)
	}

	_ = s.repo.UpdateProgress(ctx, job.ID, ingestion.StepNormalizing, 10)

	fileData, err := s.fileReader.ReadFile(ctx, job.FilePath)
	if err != nil {
		return s.handleJobError(ctx, job, "file_read_failed", err)
	}

	_ = s.repo.UpdateProgress(ctx, job.ID, ingestion.StepExtracting, 30)

	result, err := s.pipeline.Run(ctx, ingestion.UploadedDocument{
		FileName: job.FileName,
		MIMEType: job.MIMEType,
		Data:     fileData,
	})
	if err != nil {
		return s.handleJobError(ctx, job, "pipeline_failed", err)
	}

	_ = s.repo.UpdateProgress(ctx, job.ID, ingestion.StepSaving, 80)

	if err := s.sink.SaveImported(ctx, job.OwnerID, job.FileName, result); err != nil {
		return s.handleJobError(ctx, job, "save_failed", err)
	}

	if err := s.repo.MarkAsCompleted(ctx, job.ID, result); err != nil {
		logx.Errorf("Failed to mark import as completed: %v", err)
		// The profile was saved; don't fail the job over a status update
	}
	_ = s.repo.UpdateProgress(ctx, job.ID, ingestion.StepSaving, 100)

	logx.Infof("Import completed: ImportID=%s, Pages=%d, CostUSD=%.4f",
		job.ID, result.Diagnostics.PageCount, result.Diagnostics.CostUSD)
	return nil
}

// handleJobError applies the retry policy: exponential backoff while
// attempts remain, permanent failure after that.
func (s *Service) handleJobError(ctx context.Context, job *ingestion.ImportJob, errorType string, err error) error {
	job.AttemptCount++

	if job.CanRetry() {
		retryDelay := time.Duration(1<<uint(job.AttemptCount)) * time.Minute
		nextRetry := time.Now().Add(retryDelay)
		job.NextRetryAt = &nextRetry

		logx.Warnf("Import failed, will retry: ImportID=%s, Attempt=%d/%d, NextRetry=%v, Error=%v",
			job.ID, job.AttemptCount, job.MaxAttempts, nextRetry, err)

		if queueErr := s.queue.EnqueueDelayed(ctx, job.ID, job, retryDelay); queueErr != nil {
			logx.Errorf("Failed to enqueue import for retry: %v", queueErr)
			_ = s.repo.MarkAsFailed(ctx, job.ID, fmt.Sprintf("%s (retry enqueue failed): %v", errorType, err))

			return ingestion.ErrRegistry.NewWithCause(ingestion.CodeQueueEnqueueFailed, queueErr).
				WithDetail("import_id", job.ID).
				WithDetail("error_type", errorType)
		}

		job.Status = ingestion.JobStatusPending
		job.ErrorMessage = fmt.Sprintf("%s (will retry): %v", errorType, err)
		if updateErr := s.repo.Update(ctx, job); updateErr != nil {
			logx.Errorf("Failed to update import for retry: %v", updateErr)
		}
		return err
	}

	logx.Errorf("Import permanently failed: ImportID=%s, Error=%v, Attempts=%d/%d",
		job.ID, err, job.AttemptCount, job.MaxAttempts)

	_ = s.repo.MarkAsFailed(ctx, job.ID, fmt.Sprintf("%s: %v", errorType, err))
	return err
}
