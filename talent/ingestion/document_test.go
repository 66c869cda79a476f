package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		mimeType string
		fileName string
		want     Format
		ok       bool
	}{
		{"application/pdf", "resume.pdf", FormatPDF, true},
		{"application/msword", "resume.doc", FormatDOC, true},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "resume.docx", FormatDOCX, true},
		{"image/jpeg", "scan.jpg", FormatJPEG, true},
		{"image/png", "scan.png", FormatPNG, true},

		// MIME wins over a conflicting extension
		{"application/pdf", "resume.docx", FormatPDF, true},

		// Extension fallback when the MIME type is generic or absent
		{"application/octet-stream", "resume.pdf", FormatPDF, true},
		{"", "SCAN.JPEG", FormatJPEG, true},

		{"text/plain", "resume.txt", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		got, ok := DetectFormat(tt.mimeType, tt.fileName)
		require.Equal(t, tt.ok, ok, "%s/%s", tt.mimeType, tt.fileName)
		assert.Equal(t, tt.want, got, "%s/%s", tt.mimeType, tt.fileName)
	}
}

func TestIsRaster(t *testing.T) {
	assert.True(t, FormatJPEG.IsRaster())
	assert.True(t, FormatPNG.IsRaster())
	assert.False(t, FormatPDF.IsRaster())
	assert.False(t, FormatDOCX.IsRaster())
}

func TestPageImageRelease(t *testing.T) {
	page := PageImage{Index: 0, Data: []byte{1, 2, 3}}
	assert.False(t, page.Released())

	page.Release()
	assert.True(t, page.Released())
	assert.Nil(t, page.Data)
}
