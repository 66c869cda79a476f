package ingestionsrv

import (
	"context"
	"errors"

	"github.com/careerlens/careerlens/internal/convert"
	"github.com/careerlens/careerlens/internal/pdf"
	"github.com/careerlens/careerlens/talent/ingestion"
)

// Normalizer converts an uploaded document into ordered page images.
//
// JPEG and PNG uploads are wrapped as a single page without re-encoding,
// so the output bytes are identical to the input. Structured formats go
// through the conversion service, or through the local renderer for PDFs
// when renderPDFLocally is set.
type Normalizer struct {
	converter        ingestion.PageConverter
	renderPDFLocally bool
}

// NewNormalizer creates a format normalizer backed by the given converter
func NewNormalizer(converter ingestion.PageConverter, renderPDFLocally bool) *Normalizer {
	return &Normalizer{
		converter:        converter,
		renderPDFLocally: renderPDFLocally,
	}
}

// Normalize produces the ordered, non-empty page image sequence for a
// supported upload, or fails the whole document.
func (n *Normalizer) Normalize(ctx context.Context, doc ingestion.UploadedDocument) ([]ingestion.PageImage, error) {
	format, ok := ingestion.DetectFormat(doc.MIMEType, doc.FileName)
	if !ok {
		return nil, ingestion.ErrUnsupportedFormat().
			WithDetail("mime_type", doc.MIMEType).
			WithDetail("file_name", doc.FileName)
	}

	if format.IsRaster() {
		// Headers lie; make sure the body actually decodes as an image
		if _, err := pdf.DetectImageFormat(doc.Data); err != nil {
			return nil, ingestion.ErrUnsupportedFormat().
				WithDetail("mime_type", doc.MIMEType).
				WithDetail("file_name", doc.FileName).
				WithDetail("reason", "file body is not a decodable image")
		}
		// Identity operation: the single page keeps the exact upload bytes
		return []ingestion.PageImage{{Index: 0, Data: doc.Data}}, nil
	}

	if format == ingestion.FormatPDF && n.renderPDFLocally {
		images, err := pdf.RenderPages(doc.Data)
		if err != nil {
			return nil, ingestion.ErrRegistry.NewWithCause(ingestion.CodeConversionFailed, err).
				WithDetail("file_name", doc.FileName)
		}
		return wrapPages(images), nil
	}

	images, err := n.converter.Convert(ctx, doc.Data, doc.MIMEType)
	if err != nil {
		if errors.Is(err, convert.ErrPollBudgetExhausted) {
			return nil, ingestion.ErrRegistry.NewWithCause(ingestion.CodeConversionTimeout, err).
				WithDetail("file_name", doc.FileName)
		}
		return nil, ingestion.ErrRegistry.NewWithCause(ingestion.CodeConversionFailed, err).
			WithDetail("file_name", doc.FileName)
	}

	if len(images) == 0 {
		return nil, ingestion.ErrConversionFailed().
			WithDetail("file_name", doc.FileName).
			WithDetail("reason", "conversion produced no pages")
	}
	return wrapPages(images), nil
}

func wrapPages(images [][]byte) []ingestion.PageImage {
	pages := make([]ingestion.PageImage, len(images))
	for i, img := range images {
		pages[i] = ingestion.PageImage{Index: i, Data: img}
	}
	return pages
}
