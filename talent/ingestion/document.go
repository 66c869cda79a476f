package ingestion

import (
	"path/filepath"
	"strings"
)

// Format is a supported upload format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOC  Format = "doc"
	FormatDOCX Format = "docx"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// SupportedFormats lists every format the normalizer accepts
var SupportedFormats = []Format{FormatPDF, FormatDOC, FormatDOCX, FormatJPEG, FormatPNG}

// IsRaster reports whether the format is already a page image
func (f Format) IsRaster() bool {
	return f == FormatJPEG || f == FormatPNG
}

// DetectFormat resolves the upload format from the declared MIME type,
// falling back to the filename extension.
func DetectFormat(mimeType, fileName string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "application/pdf":
		return FormatPDF, true
	case "application/msword":
		return FormatDOC, true
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FormatDOCX, true
	case "image/jpeg", "image/jpg":
		return FormatJPEG, true
	case "image/png":
		return FormatPNG, true
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return FormatPDF, true
	case ".doc":
		return FormatDOC, true
	case ".docx":
		return FormatDOCX, true
	case ".jpg", ".jpeg":
		return FormatJPEG, true
	case ".png":
		return FormatPNG, true
	}
	return "", false
}

// UploadedDocument is the raw pipeline input. Immutable once received;
// the core never persists it.
type UploadedDocument struct {
	FileName string
	MIMEType string
	Data     []byte
}

// PageImage is one normalized raster page. The pipeline run that created
// it owns the buffer and must Release it once OCR has consumed it.
type PageImage struct {
	Index int // zero-based source page position
	Data  []byte
}

// Release drops the image buffer so large pages can be collected promptly
func (p *PageImage) Release() {
	p.Data = nil
}

// Released reports whether the buffer has been dropped
func (p *PageImage) Released() bool {
	return p.Data == nil
}
