// Package synthesis converts an organized resume draft into a
// schema-flexible JSON document via an OpenAI model.
package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
)

const (
	synthesisModel = "gpt-4o"

	// Same low-temperature setting as OCR for reproducibility. Field naming
	// is content-driven, so only structural fidelity is guaranteed across
	// runs, not byte-identical output.
	synthesisTemperature = 0.1

	maxSynthesisTokens = 6000

	// How much of an unparseable response to keep for diagnosis
	rawPreviewLen = 300
)

// ErrUnparseable marks a response that was not valid JSON after unwrapping
var ErrUnparseable = errors.New("synthesis response is not valid JSON")

const systemPrompt = `You are a resume structuring engine. Convert resume text into a single JSON object. Return ONLY valid JSON.`

const instructionPrompt = `Convert the resume below into a JSON object. Rules:
1. Do NOT force predetermined field names. Derive field names from the resume's actual sections and content.
2. Mirror the resume's structure: group related lines under fields that reflect how the document itself is organized.
3. Preserve ALL information. Nothing may be summarized away; every piece of text must be traceable to some field.
4. For content that does not fit a common category, invent an appropriately named field (snake_case) rather than dropping it.

Return ONLY the JSON object, no explanatory text.

Resume:
`

// Result is the parsed document plus the usage the API reported
type Result struct {
	Document     map[string]any
	InputTokens  int64
	OutputTokens int64
}

// Synthesizer builds flexible resume documents using OpenAI
type Synthesizer struct {
	client *openai.Client
}

// NewSynthesizer creates a document synthesizer
func NewSynthesizer(apiKey string) *Synthesizer {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Synthesizer{
		client: &client,
	}
}

// Synthesize converts the working draft into a flexible JSON document
func (s *Synthesizer) Synthesize(ctx context.Context, draft string) (*Result, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(instructionPrompt + draft),
	}

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    synthesisModel,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		},
		Temperature: openai.Float(synthesisTemperature),
		MaxTokens:   openai.Int(maxSynthesisTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("openai synthesis api error: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, errors.New("no response from openai")
	}

	raw := completion.Choices[0].Message.Content
	document, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}

	return &Result{
		Document:     document,
		InputTokens:  completion.Usage.PromptTokens,
		OutputTokens: completion.Usage.CompletionTokens,
	}, nil
}

// ParseDocument strips an optional fenced code block and decodes the JSON
// object. A parse failure carries a truncated preview of the raw response;
// it is never replaced by an empty document.
func ParseDocument(raw string) (map[string]any, error) {
	cleaned := StripCodeFence(raw)

	var document map[string]any
	if err := json.Unmarshal([]byte(cleaned), &document); err != nil {
		return nil, fmt.Errorf("%w: %v (response preview: %q)", ErrUnparseable, err, preview(raw))
	}
	return document, nil
}

// StripCodeFence unwraps ```json ... ``` (or bare ```) fencing around a
// response, leaving unfenced responses untouched
func StripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// drop the language tag line ("json", "JSON", or empty)
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func preview(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) <= rawPreviewLen {
		return trimmed
	}
	return trimmed[:rawPreviewLen] + "..."
}
