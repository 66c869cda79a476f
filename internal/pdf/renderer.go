// Package pdf renders PDF documents to page images locally, without the
// remote conversion service.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/png" // register PNG for DetectImageFormat

	"github.com/gen2brain/go-fitz"
)

const jpegQuality = 95

// RenderPages rasterizes every PDF page to a JPEG image, in page order
func RenderPages(pdfData []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	images := make([][]byte, 0, pageCount)

	for i := 0; i < pageCount; i++ {
		img, err := doc.Image(i)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}
		images = append(images, buf.Bytes())
	}

	return images, nil
}

// DetectImageFormat reports the raster format of data ("jpeg", "png", ...)
func DetectImageFormat(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return format, nil
}
