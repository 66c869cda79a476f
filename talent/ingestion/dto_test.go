package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens/pkg/kernel"
)

func TestToImportStatusResponseCarriesResult(t *testing.T) {
	completedAt := time.Now()
	job := &ImportJob{
		ID:                 kernel.ImportID("imp-1"),
		OwnerID:            kernel.UserID("user-1"),
		Status:             JobStatusCompleted,
		ProgressPercentage: 100,
		CompletedAt:        &completedAt,
		Result: &PipelineResult{
			Document:    FlexibleResumeDocument{"name": "John Smith"},
			Diagnostics: Diagnostics{PageCount: 2, SectionCount: 4},
		},
	}

	resp := ToImportStatusResponse(job)

	require.NotNil(t, resp.Result)
	name, ok := resp.Result.Document.StringField("name")
	require.True(t, ok)
	assert.Equal(t, "John Smith", name)
	assert.Equal(t, 2, resp.Result.Diagnostics.PageCount)
	assert.Equal(t, "Resume processed successfully", resp.Message)
}

func TestToImportStatusResponseOmitsResultUntilCompleted(t *testing.T) {
	job := &ImportJob{
		ID:      kernel.ImportID("imp-2"),
		OwnerID: kernel.UserID("user-1"),
		Status:  JobStatusProcessing,
	}

	resp := ToImportStatusResponse(job)
	assert.Nil(t, resp.Result)
}
