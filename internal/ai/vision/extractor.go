// Package vision extracts text from page images with an OpenAI
// vision-capable model.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
)

const (
	extractionModel = "gpt-4o"

	// Extraction is not a generative task: keep decoding near-deterministic
	// so repeated runs on the same image agree.
	extractionTemperature = 0.1

	maxExtractionTokens = 4000
)

const systemPrompt = `You are a precise OCR engine. Extract ALL visible text from the image verbatim. Preserve the reading order and line structure. Omit nothing. Return ONLY the extracted text, no commentary.`

const userPrompt = `Extract every piece of visible text from this resume page exactly as written. Keep headings, bullet characters and line breaks. Do not summarize, translate or correct anything.`

// Result is the extracted text plus the usage the API reported
type Result struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// Extractor performs vision OCR using OpenAI
type Extractor struct {
	client *openai.Client
}

// NewExtractor creates a vision OCR extractor
func NewExtractor(apiKey string) *Extractor {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Extractor{
		client: &client,
	}
}

// ExtractText runs OCR over a single page image (JPEG or PNG bytes)
func (e *Extractor) ExtractText(ctx context.Context, image []byte) (*Result, error) {
	base64Image := base64.StdEncoding.EncodeToString(image)
	dataURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64Image)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						{
							OfText: &openai.ChatCompletionContentPartTextParam{
								Type: constant.Text("text"),
								Text: userPrompt,
							},
						},
						{
							OfImageURL: &openai.ChatCompletionContentPartImageParam{
								Type: constant.ImageURL("image_url"),
								ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
									URL:    dataURL,
									Detail: "high", // High detail for better OCR
								},
							},
						},
					},
				},
			},
		},
	}

	completion, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       extractionModel,
		Temperature: openai.Float(extractionTemperature),
		MaxTokens:   openai.Int(maxExtractionTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("openai vision api error: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, errors.New("no response from openai")
	}

	return &Result{
		Text:         completion.Choices[0].Message.Content,
		InputTokens:  completion.Usage.PromptTokens,
		OutputTokens: completion.Usage.CompletionTokens,
	}, nil
}
