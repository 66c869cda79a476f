package ingestion

import (
	"net/http"

	"github.com/careerlens/careerlens/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("INGESTION")

// Error codes - Pipeline stages
var (
	CodeUnsupportedFormat  = ErrRegistry.Register("UNSUPPORTED_FORMAT", errx.TypeValidation, http.StatusBadRequest, "Unsupported document format")
	CodeConversionTimeout  = ErrRegistry.Register("CONVERSION_TIMEOUT", errx.TypeTimeout, http.StatusGatewayTimeout, "Document conversion timed out")
	CodeConversionFailed   = ErrRegistry.Register("CONVERSION_FAILED", errx.TypeInternal, http.StatusBadGateway, "Document conversion failed")
	CodeOCRExhausted       = ErrRegistry.Register("OCR_EXHAUSTED", errx.TypeInternal, http.StatusBadGateway, "Text extraction failed for every page")
	CodeMalformedSynthesis = ErrRegistry.Register("MALFORMED_SYNTHESIS", errx.TypeInternal, http.StatusBadGateway, "Synthesis response could not be parsed as JSON")
	CodeMissingCredentials = ErrRegistry.Register("MISSING_CREDENTIALS", errx.TypeValidation, http.StatusInternalServerError, "Required external service credentials are missing")
)

// Error codes - Import job handling
var (
	CodeImportNotFound      = ErrRegistry.Register("IMPORT_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Import job not found")
	CodeImportCreateFailed  = ErrRegistry.Register("IMPORT_CREATE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to create import job")
	CodeImportUpdateFailed  = ErrRegistry.Register("IMPORT_UPDATE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to update import job")
	CodeQueueEnqueueFailed  = ErrRegistry.Register("QUEUE_ENQUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to enqueue import job")
	CodeQueueDequeueFailed  = ErrRegistry.Register("QUEUE_DEQUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to dequeue import job")
	CodeFileReadFailed      = ErrRegistry.Register("FILE_READ_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to read uploaded file")
	CodeFileTooLarge        = ErrRegistry.Register("FILE_TOO_LARGE", errx.TypeValidation, http.StatusBadRequest, "Uploaded file exceeds the size limit")
)

// Helper functions - Pipeline stages
func ErrUnsupportedFormat() *errx.Error {
	return ErrRegistry.New(CodeUnsupportedFormat).
		WithDetail("supported_formats", SupportedFormats)
}

func ErrConversionTimeout() *errx.Error {
	return ErrRegistry.New(CodeConversionTimeout)
}

func ErrConversionFailed() *errx.Error {
	return ErrRegistry.New(CodeConversionFailed)
}

func ErrOCRExhausted() *errx.Error {
	return ErrRegistry.New(CodeOCRExhausted)
}

func ErrMalformedSynthesis() *errx.Error {
	return ErrRegistry.New(CodeMalformedSynthesis)
}

func ErrMissingCredentials() *errx.Error {
	return ErrRegistry.New(CodeMissingCredentials)
}

// Helper functions - Import job handling
func ErrImportNotFound() *errx.Error {
	return ErrRegistry.New(CodeImportNotFound)
}

func ErrImportCreateFailed() *errx.Error {
	return ErrRegistry.New(CodeImportCreateFailed)
}

func ErrImportUpdateFailed() *errx.Error {
	return ErrRegistry.New(CodeImportUpdateFailed)
}

func ErrQueueEnqueueFailed() *errx.Error {
	return ErrRegistry.New(CodeQueueEnqueueFailed)
}

func ErrQueueDequeueFailed() *errx.Error {
	return ErrRegistry.New(CodeQueueDequeueFailed)
}

func ErrFileReadFailed() *errx.Error {
	return ErrRegistry.New(CodeFileReadFailed)
}

func ErrFileTooLarge() *errx.Error {
	return ErrRegistry.New(CodeFileTooLarge)
}
