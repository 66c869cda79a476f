package ingestion

import (
	"context"
	"time"

	"github.com/careerlens/careerlens/pkg/kernel"
)

// PageConverter turns a structured document (PDF/DOC/DOCX) into one image
// per page, preserving page order
type PageConverter interface {
	Convert(ctx context.Context, data []byte, mimeType string) ([][]byte, error)
}

// ExtractionResult is one page's OCR output plus reported token usage
type ExtractionResult struct {
	Text  string
	Usage CallUsage
}

// TextExtractor performs vision OCR on a single page image
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (*ExtractionResult, error)
}

// SynthesisResult is the flexible document plus reported token usage
type SynthesisResult struct {
	Document FlexibleResumeDocument
	Usage    CallUsage
}

// DocumentSynthesizer converts the working draft into a schema-flexible
// JSON document
type DocumentSynthesizer interface {
	Synthesize(ctx context.Context, draft string) (*SynthesisResult, error)
}

// ImportRepository persists import job records
type ImportRepository interface {
	Create(ctx context.Context, job *ImportJob) error
	Update(ctx context.Context, job *ImportJob) error
	GetByID(ctx context.Context, id kernel.ImportID) (*ImportJob, error)
	ListByOwner(ctx context.Context, owner kernel.UserID, pagination kernel.PaginationOptions) (*kernel.Paginated[ImportJob], error)

	MarkAsProcessing(ctx context.Context, id kernel.ImportID) error
	MarkAsCompleted(ctx context.Context, id kernel.ImportID, result *PipelineResult) error
	MarkAsFailed(ctx context.Context, id kernel.ImportID, errorMsg string) error
	UpdateProgress(ctx context.Context, id kernel.ImportID, step ProcessingStep, percentage int) error
}

// ImportResultSink receives the finished document from a completed import.
// The profile domain implements this to create or refresh the owner's
// candidate profile.
type ImportResultSink interface {
	SaveImported(ctx context.Context, owner kernel.UserID, fileName string, result *PipelineResult) error
}

// ImportQueue is the job queue the upload handler feeds and the worker drains
type ImportQueue interface {
	Enqueue(ctx context.Context, id kernel.ImportID, payload any) error
	Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error)
	EnqueueDelayed(ctx context.Context, id kernel.ImportID, payload any, delay time.Duration) error
	MoveDelayedToReady(ctx context.Context) (int, error)
	Size(ctx context.Context) (int64, error)
}
