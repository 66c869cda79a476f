package ingestionsrv

import (
	"context"
	"errors"

	"github.com/careerlens/careerlens/internal/ai/synthesis"
	"github.com/careerlens/careerlens/internal/ai/vision"
	"github.com/careerlens/careerlens/talent/ingestion"
)

// VisionExtractor adapts the OpenAI vision client to the TextExtractor port
type VisionExtractor struct {
	client *vision.Extractor
}

func NewVisionExtractor(client *vision.Extractor) *VisionExtractor {
	return &VisionExtractor{client: client}
}

func (e *VisionExtractor) ExtractText(ctx context.Context, image []byte) (*ingestion.ExtractionResult, error) {
	res, err := e.client.ExtractText(ctx, image)
	if err != nil {
		return nil, err
	}
	return &ingestion.ExtractionResult{
		Text: res.Text,
		Usage: ingestion.CallUsage{
			InputTokens:  res.InputTokens,
			OutputTokens: res.OutputTokens,
		},
	}, nil
}

// OpenAISynthesizer adapts the OpenAI synthesis client to the
// DocumentSynthesizer port, translating parse failures into the domain
// error so the API layer reports them correctly.
type OpenAISynthesizer struct {
	client *synthesis.Synthesizer
}

func NewOpenAISynthesizer(client *synthesis.Synthesizer) *OpenAISynthesizer {
	return &OpenAISynthesizer{client: client}
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, draft string) (*ingestion.SynthesisResult, error) {
	res, err := s.client.Synthesize(ctx, draft)
	if err != nil {
		if errors.Is(err, synthesis.ErrUnparseable) {
			return nil, ingestion.ErrRegistry.NewWithCause(ingestion.CodeMalformedSynthesis, err)
		}
		return nil, err
	}
	return &ingestion.SynthesisResult{
		Document: ingestion.FlexibleResumeDocument(res.Document),
		Usage: ingestion.CallUsage{
			InputTokens:  res.InputTokens,
			OutputTokens: res.OutputTokens,
		},
	}, nil
}
