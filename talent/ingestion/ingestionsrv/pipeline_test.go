package ingestionsrv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens/pkg/errx"
	"github.com/careerlens/careerlens/talent/ingestion"
)

// pngFixture encodes a tiny valid PNG; raster uploads must decode as images
func pngFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

// fakeConverter returns canned page images
type fakeConverter struct {
	pages [][]byte
	err   error
}

func (f *fakeConverter) Convert(ctx context.Context, data []byte, mimeType string) ([][]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

// fakeExtractor maps page bytes to text, failing pages listed in failOn
type fakeExtractor struct {
	texts  map[string]string
	failOn map[string]error
	usage  ingestion.CallUsage
	calls  int
}

func (f *fakeExtractor) ExtractText(ctx context.Context, image []byte) (*ingestion.ExtractionResult, error) {
	f.calls++
	key := string(image)
	if err, ok := f.failOn[key]; ok {
		return nil, err
	}
	return &ingestion.ExtractionResult{Text: f.texts[key], Usage: f.usage}, nil
}

// fakeSynthesizer echoes the draft into a fixed document
type fakeSynthesizer struct {
	doc       ingestion.FlexibleResumeDocument
	usage     ingestion.CallUsage
	err       error
	lastDraft string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, draft string) (*ingestion.SynthesisResult, error) {
	f.lastDraft = draft
	if f.err != nil {
		return nil, f.err
	}
	return &ingestion.SynthesisResult{Document: f.doc, Usage: f.usage}, nil
}

func testCredentials() Credentials {
	return Credentials{ConversionAPIKey: "conv-key", ModelAPIKey: "model-key"}
}

func pageText(n int) string {
	return fmt.Sprintf("EXPERIENCE\nSoftware Engineer at Initech, page %d content with enough characters to keep", n)
}

func TestRunSinglePagePNG(t *testing.T) {
	img := pngFixture(t)
	extractor := &fakeExtractor{
		texts: map[string]string{string(img): "John Smith\njohn@email.com\n\nEXPERIENCE\nSoftware Engineer at ABC Corp\n2020-2023"},
		usage: ingestion.CallUsage{InputTokens: 1000, OutputTokens: 200},
	}
	synth := &fakeSynthesizer{
		doc:   ingestion.FlexibleResumeDocument{"name": "John Smith", "email": "john@email.com"},
		usage: ingestion.CallUsage{InputTokens: 500, OutputTokens: 300},
	}
	pipeline := NewPipeline(testCredentials(), NewNormalizer(&fakeConverter{}, false), extractor, synth)

	result, err := pipeline.Run(context.Background(), ingestion.UploadedDocument{
		FileName: "resume.png",
		MIMEType: "image/png",
		Data:     img,
	})
	require.NoError(t, err)

	assert.Equal(t, "John Smith", result.Document["name"])
	assert.Equal(t, 1, result.Diagnostics.PageCount)
	assert.Equal(t, 1, extractor.calls)
	assert.Empty(t, result.Diagnostics.PageWarnings)

	// The draft fed to synthesis is section-organized
	assert.Contains(t, synth.lastDraft, "CONTACT INFORMATION")
	assert.Contains(t, synth.lastDraft, "EXPERIENCE")

	// Two model calls: one extraction, one synthesis
	assert.Equal(t, 2, result.Diagnostics.TokenUsage.Calls)
	assert.Equal(t, int64(1500), result.Diagnostics.TokenUsage.InputTokens)
	assert.Equal(t, int64(500), result.Diagnostics.TokenUsage.OutputTokens)
}

func TestRunToleratesFailedPage(t *testing.T) {
	converter := &fakeConverter{pages: [][]byte{[]byte("p1"), []byte("p2"), []byte("p3")}}
	extractor := &fakeExtractor{
		texts: map[string]string{
			"p1": pageText(1),
			"p3": pageText(3),
		},
		failOn: map[string]error{"p2": errors.New("model refused the image")},
		usage:  ingestion.CallUsage{InputTokens: 100, OutputTokens: 10},
	}
	synth := &fakeSynthesizer{doc: ingestion.FlexibleResumeDocument{"name": "x"}}
	pipeline := NewPipeline(testCredentials(), NewNormalizer(converter, false), extractor, synth)

	result, err := pipeline.Run(context.Background(), ingestion.UploadedDocument{
		FileName: "resume.pdf",
		MIMEType: "application/pdf",
		Data:     []byte("%PDF"),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Diagnostics.PageCount)
	require.Len(t, result.Diagnostics.PageWarnings, 1)
	assert.Contains(t, result.Diagnostics.PageWarnings[0], "page 2")

	// Surviving pages keep their order in the draft
	assert.Contains(t, synth.lastDraft, "page 1 content")
	assert.Contains(t, synth.lastDraft, "page 3 content")
	assert.Less(t, strings.Index(synth.lastDraft, "page 1"), strings.Index(synth.lastDraft, "page 3"))
}

func TestRunFailsWhenEveryPageFails(t *testing.T) {
	converter := &fakeConverter{pages: [][]byte{[]byte("p1"), []byte("p2")}}
	extractor := &fakeExtractor{
		failOn: map[string]error{
			"p1": errors.New("boom"),
			"p2": errors.New("boom"),
		},
	}
	pipeline := NewPipeline(testCredentials(), NewNormalizer(converter, false), extractor, &fakeSynthesizer{})

	_, err := pipeline.Run(context.Background(), ingestion.UploadedDocument{
		FileName: "resume.pdf",
		MIMEType: "application/pdf",
		Data:     []byte("%PDF"),
	})
	require.Error(t, err)

	var xerr *errx.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "INGESTION_OCR_EXHAUSTED", xerr.Code)
}

func TestRunDropsShortPages(t *testing.T) {
	converter := &fakeConverter{pages: [][]byte{[]byte("p1"), []byte("p2")}}
	extractor := &fakeExtractor{
		texts: map[string]string{
			"p1": pageText(1),
			"p2": "a b", // under the floor
		},
		usage: ingestion.CallUsage{InputTokens: 100, OutputTokens: 10},
	}
	synth := &fakeSynthesizer{doc: ingestion.FlexibleResumeDocument{}}
	pipeline := NewPipeline(testCredentials(), NewNormalizer(converter, false), extractor, synth)

	result, err := pipeline.Run(context.Background(), ingestion.UploadedDocument{
		FileName: "resume.pdf",
		MIMEType: "application/pdf",
		Data:     []byte("%PDF"),
	})
	require.NoError(t, err)

	require.Len(t, result.Diagnostics.PageWarnings, 1)
	assert.Contains(t, result.Diagnostics.PageWarnings[0], "too short")
	assert.NotContains(t, synth.lastDraft, "a b")

	// The short page's call still cost tokens and is still counted
	assert.Equal(t, int64(200), result.Diagnostics.TokenUsage.InputTokens)
}

func TestRunFailsFastWithoutModelKey(t *testing.T) {
	pipeline := NewPipeline(
		Credentials{ConversionAPIKey: "conv-key"},
		NewNormalizer(&fakeConverter{}, false),
		&fakeExtractor{},
		&fakeSynthesizer{},
	)

	_, err := pipeline.Run(context.Background(), ingestion.UploadedDocument{
		FileName: "resume.png",
		MIMEType: "image/png",
		Data:     []byte("png"),
	})
	require.Error(t, err)

	var xerr *errx.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "INGESTION_MISSING_CREDENTIALS", xerr.Code)
}

func TestRunRequiresConversionKeyOnlyForConvertedFormats(t *testing.T) {
	img := pngFixture(t)
	extractor := &fakeExtractor{
		texts: map[string]string{string(img): pageText(1)},
	}
	pipeline := NewPipeline(
		Credentials{ModelAPIKey: "model-key"},
		NewNormalizer(&fakeConverter{}, false),
		extractor,
		&fakeSynthesizer{doc: ingestion.FlexibleResumeDocument{}},
	)

	// Raster upload never touches the conversion service
	_, err := pipeline.Run(context.Background(), ingestion.UploadedDocument{
		FileName: "resume.png",
		MIMEType: "image/png",
		Data:     img,
	})
	require.NoError(t, err)

	// A PDF does, so the missing key is caught before any work
	_, err = pipeline.Run(context.Background(), ingestion.UploadedDocument{
		FileName: "resume.pdf",
		MIMEType: "application/pdf",
		Data:     []byte("%PDF"),
	})
	require.Error(t, err)

	var xerr *errx.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "INGESTION_MISSING_CREDENTIALS", xerr.Code)
}

func TestRunCostAccounting(t *testing.T) {
	converter := &fakeConverter{pages: [][]byte{[]byte("p1"), []byte("p2")}}
	extractor := &fakeExtractor{
		texts: map[string]string{
			"p1": pageText(1),
			"p2": pageText(2),
		},
		usage: ingestion.CallUsage{InputTokens: 1000, OutputTokens: 500},
	}
	synth := &fakeSynthesizer{
		doc:   ingestion.FlexibleResumeDocument{},
		usage: ingestion.CallUsage{InputTokens: 2000, OutputTokens: 1000},
	}
	pipeline := NewPipeline(testCredentials(), NewNormalizer(converter, false), extractor, synth)

	result, err := pipeline.Run(context.Background(), ingestion.UploadedDocument{
		FileName: "resume.pdf",
		MIMEType: "application/pdf",
		Data:     []byte("%PDF"),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Diagnostics.TokenUsage.Calls)
	assert.Equal(t, int64(4000), result.Diagnostics.TokenUsage.InputTokens)
	assert.Equal(t, int64(2000), result.Diagnostics.TokenUsage.OutputTokens)

	// 4000/1000*0.0025 + 2000/1000*0.0100 = 0.01 + 0.02
	assert.InDelta(t, 0.03, result.Diagnostics.CostUSD, 1e-9)
	assert.InDelta(t, 0.03*ingestion.USDToPHP, result.Diagnostics.CostPHP, 1e-9)
}

func TestRunPropagatesSynthesisFailure(t *testing.T) {
	img := pngFixture(t)
	extractor := &fakeExtractor{texts: map[string]string{string(img): pageText(1)}}
	synth := &fakeSynthesizer{err: ingestion.ErrMalformedSynthesis()}
	pipeline := NewPipeline(testCredentials(), NewNormalizer(&fakeConverter{}, false), extractor, synth)

	_, err := pipeline.Run(context.Background(), ingestion.UploadedDocument{
		FileName: "resume.png",
		MIMEType: "image/png",
		Data:     img,
	})
	require.Error(t, err)

	var xerr *errx.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "INGESTION_MALFORMED_SYNTHESIS", xerr.Code)
}
