package translate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// implements Translator using Google Gemini
type GeminiTranslator struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiTranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranslator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *GeminiTranslator) Translate(ctx context.Context, items []Item) ([]Item, error) {
	return translateBatches(ctx, items, t.options, t.translateBatch)
}

func (t *GeminiTranslator) translateBatch(ctx context.Context, items []Item) ([]Item, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(BuildPrompt(t.options, items))},
			genai.RoleUser,
		),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	return parseResponse("Gemini", candidateText(result))
}

// text of the first candidate that has any
func candidateText(result *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil {
				text.WriteString(part.Text)
			}
		}
		if text.Len() > 0 {
			break
		}
	}
	return text.String()
}
