package ingestioninfra

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens/talent/ingestion"
)

func TestToDomainImportDecodesStoredResult(t *testing.T) {
	now := time.Now()
	row := &dbImport{
		ID:                 "imp-1",
		OwnerID:            "user-1",
		Status:             string(ingestion.JobStatusCompleted),
		FileName:           "resume.pdf",
		MIMEType:           "application/pdf",
		ProgressPercentage: 100,
		CreatedAt:          now,
		CompletedAt:        &now,
		Result: sql.NullString{
			Valid: true,
			String: `{
				"document": {"name": "Maria Santos", "title": "Engineer"},
				"diagnostics": {"page_count": 3, "cost_usd": 0.012}
			}`,
		},
	}

	job := toDomainImport(row)

	require.NotNil(t, job.Result)
	name, ok := job.Result.Document.StringField("name")
	require.True(t, ok)
	assert.Equal(t, "Maria Santos", name)
	assert.Equal(t, 3, job.Result.Diagnostics.PageCount)
	assert.Equal(t, 0.012, job.Result.Diagnostics.CostUSD)
}

func TestToDomainImportToleratesMissingResult(t *testing.T) {
	job := toDomainImport(&dbImport{
		ID:      "imp-2",
		OwnerID: "user-1",
		Status:  string(ingestion.JobStatusPending),
	})
	assert.Nil(t, job.Result)
}

func TestToDomainImportDropsCorruptResult(t *testing.T) {
	job := toDomainImport(&dbImport{
		ID:      "imp-3",
		OwnerID: "user-1",
		Status:  string(ingestion.JobStatusCompleted),
		Result:  sql.NullString{Valid: true, String: "{not json"},
	})
	assert.Nil(t, job.Result)
}
