package ingestioninfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/pkg/logx"
	"github.com/careerlens/careerlens/talent/ingestion"
)

type PostgresImportRepository struct {
	db *sqlx.DB
}

func NewPostgresImportRepository(db *sqlx.DB) ingestion.ImportRepository {
	return &PostgresImportRepository{db: db}
}

// dbImport is the database model. The pipeline result is stored as a
// JSONB blob so the flexible document survives as-is.
type dbImport struct {
	ID      string `db:"id"`
	OwnerID string `db:"owner_id"`

	Status   string `db:"status"`
	FilePath string `db:"file_path"`
	FileName string `db:"file_name"`
	MIMEType string `db:"mime_type"`

	AttemptCount int `db:"attempt_count"`
	MaxAttempts  int `db:"max_attempts"`

	ErrorMessage string `db:"error_message"`

	CurrentStep        *string `db:"current_step"`
	ProgressPercentage int     `db:"progress_percentage"`

	Result sql.NullString `db:"result"`

	CreatedAt   time.Time  `db:"created_at"`
	StartedAt   *time.Time `db:"started_at"`
	CompletedAt *time.Time `db:"completed_at"`
	FailedAt    *time.Time `db:"failed_at"`
	NextRetryAt *time.Time `db:"next_retry_at"`
}

const importColumns = `
	id, owner_id, status, file_path, file_name, mime_type,
	attempt_count, max_attempts, error_message,
	current_step, progress_percentage, result,
	created_at, started_at, completed_at, failed_at, next_retry_at`

func (r *PostgresImportRepository) Create(ctx context.Context, job *ingestion.ImportJob) error {
	query := `
		INSERT INTO import_jobs (
			id, owner_id, status, file_path, file_name, mime_type,
			attempt_count, max_attempts, error_message,
			current_step, progress_percentage,
			created_at, started_at, completed_at, failed_at, next_retry_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11,
			$12, $13, $14, $15, $16
		)
	`

	row := toDBImport(job)
	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.OwnerID, row.Status, row.FilePath, row.FileName, row.MIMEType,
		row.AttemptCount, row.MaxAttempts, row.ErrorMessage,
		row.CurrentStep, row.ProgressPercentage,
		row.CreatedAt, row.StartedAt, row.CompletedAt, row.FailedAt, row.NextRetryAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("import already exists: %w", err)
		}
		return fmt.Errorf("create import: %w", err)
	}

	logx.Infof("Created import: %s", job.ID)
	return nil
}

func (r *PostgresImportRepository) Update(ctx context.Context, job *ingestion.ImportJob) error {
	query := `
		UPDATE import_jobs SET
			status = $2,
			attempt_count = $3,
			error_message = $4,
			current_step = $5,
			progress_percentage = $6,
			started_at = $7,
			completed_at = $8,
			failed_at = $9,
			next_retry_at = $10
		WHERE id = $1
	`

	row := toDBImport(job)
	result, err := r.db.ExecContext(ctx, query,
		row.ID,
		row.Status,
		row.AttemptCount,
		row.ErrorMessage,
		row.CurrentStep,
		row.ProgressPercentage,
		row.StartedAt,
		row.CompletedAt,
		row.FailedAt,
		row.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("update import: %w", err)
	}
	return requireRow(result, job.ID.String())
}

func (r *PostgresImportRepository) GetByID(ctx context.Context, id kernel.ImportID) (*ingestion.ImportJob, error) {
	query := `SELECT ` + importColumns + ` FROM import_jobs WHERE id = $1`

	var row dbImport
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("import not found: %s", id)
		}
		return nil, fmt.Errorf("get import: %w", err)
	}
	return toDomainImport(&row), nil
}

func (r *PostgresImportRepository) ListByOwner(
	ctx context.Context,
	owner kernel.UserID,
	pagination kernel.PaginationOptions,
) (*kernel.Paginated[ingestion.ImportJob], error) {
	pagination = pagination.Normalize()

	countQuery := `SELECT COUNT(*) FROM import_jobs WHERE owner_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, owner.String()); err != nil {
		return nil, fmt.Errorf("count imports: %w", err)
	}

	query := `
		SELECT ` + importColumns + `
		FROM import_jobs
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var rows []dbImport
	if err := r.db.SelectContext(ctx, &rows, query, owner.String(), pagination.PageSize, pagination.Offset()); err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}

	jobs := make([]ingestion.ImportJob, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, *toDomainImport(&rows[i]))
	}

	return &kernel.Paginated[ingestion.ImportJob]{
		Items: jobs,
		Page: kernel.PageInfo{
			Number: pagination.Page,
			Size:   pagination.PageSize,
			Total:  total,
		},
	}, nil
}

func (r *PostgresImportRepository) MarkAsProcessing(ctx context.Context, id kernel.ImportID) error {
	query := `
		UPDATE import_jobs
		SET status = $2, started_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		id.String(),
		string(ingestion.JobStatusProcessing),
		time.Now(),
		string(ingestion.JobStatusPending),
	)
	if err != nil {
		return fmt.Errorf("mark as processing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("import not found or not pending: %s", id)
	}

	logx.Infof("Marked import as processing: %s", id)
	return nil
}

func (r *PostgresImportRepository) MarkAsCompleted(ctx context.Context, id kernel.ImportID, pipelineResult *ingestion.PipelineResult) error {
	resultJSON, err := json.Marshal(pipelineResult)
	if err != nil {
		return fmt.Errorf("marshal pipeline result: %w", err)
	}

	query := `
		UPDATE import_jobs
		SET
			status = $2,
			result = $3,
			completed_at = $4,
			progress_percentage = 100,
			error_message = '',
			next_retry_at = NULL
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		id.String(),
		string(ingestion.JobStatusCompleted),
		string(resultJSON),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("mark as completed: %w", err)
	}
	if err := requireRow(result, id.String()); err != nil {
		return err
	}

	logx.Infof("Marked import as completed: %s", id)
	return nil
}

func (r *PostgresImportRepository) MarkAsFailed(ctx context.Context, id kernel.ImportID, errorMsg string) error {
	query := `
		UPDATE import_jobs
		SET
			status = $2,
			failed_at = $3,
			error_message = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		id.String(),
		string(ingestion.JobStatusFailed),
		time.Now(),
		errorMsg,
	)
	if err != nil {
		return fmt.Errorf("mark as failed: %w", err)
	}
	if err := requireRow(result, id.String()); err != nil {
		return err
	}

	logx.Warnf("Marked import as failed: %s, Error: %s", id, errorMsg)
	return nil
}

func (r *PostgresImportRepository) UpdateProgress(ctx context.Context, id kernel.ImportID, step ingestion.ProcessingStep, percentage int) error {
	query := `
		UPDATE import_jobs
		SET current_step = $2, progress_percentage = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id.String(), string(step), percentage)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return requireRow(result, id.String())
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("import not found: %s", id)
	}
	return nil
}

func toDBImport(job *ingestion.ImportJob) *dbImport {
	var currentStep *string
	if job.CurrentStep != nil {
		step := string(*job.CurrentStep)
		currentStep = &step
	}

	return &dbImport{
		ID:                 job.ID.String(),
		OwnerID:            job.OwnerID.String(),
		Status:             string(job.Status),
		FilePath:           job.FilePath,
		FileName:           job.FileName,
		MIMEType:           job.MIMEType,
		AttemptCount:       job.AttemptCount,
		MaxAttempts:        job.MaxAttempts,
		ErrorMessage:       job.ErrorMessage,
		CurrentStep:        currentStep,
		ProgressPercentage: job.ProgressPercentage,
		CreatedAt:          job.CreatedAt,
		StartedAt:          job.StartedAt,
		CompletedAt:        job.CompletedAt,
		FailedAt:           job.FailedAt,
		NextRetryAt:        job.NextRetryAt,
	}
}

func toDomainImport(row *dbImport) *ingestion.ImportJob {
	var currentStep *ingestion.ProcessingStep
	if row.CurrentStep != nil {
		step := ingestion.ProcessingStep(*row.CurrentStep)
		currentStep = &step
	}

	var result *ingestion.PipelineResult
	if row.Result.Valid {
		result = &ingestion.PipelineResult{}
		if err := json.Unmarshal([]byte(row.Result.String), result); err != nil {
			logx.Errorf("Failed to decode stored pipeline result: Import=%s, Error=%v", row.ID, err)
			result = nil
		}
	}

	return &ingestion.ImportJob{
		ID:                 kernel.ImportID(row.ID),
		OwnerID:            kernel.UserID(row.OwnerID),
		Status:             ingestion.JobStatus(row.Status),
		FilePath:           row.FilePath,
		FileName:           row.FileName,
		MIMEType:           row.MIMEType,
		AttemptCount:       row.AttemptCount,
		MaxAttempts:        row.MaxAttempts,
		ErrorMessage:       row.ErrorMessage,
		CurrentStep:        currentStep,
		ProgressPercentage: row.ProgressPercentage,
		Result:             result,
		CreatedAt:          row.CreatedAt,
		StartedAt:          row.StartedAt,
		CompletedAt:        row.CompletedAt,
		FailedAt:           row.FailedAt,
		NextRetryAt:        row.NextRetryAt,
	}
}
