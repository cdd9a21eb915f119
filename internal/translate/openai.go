package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Translator using OpenAI Chat Completions
type OpenAITranslator struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAITranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAITranslator{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITranslator) Translate(ctx context.Context, items []Item) ([]Item, error) {
	return translateBatches(ctx, items, t.options, t.translateBatch)
}

func (t *OpenAITranslator) translateBatch(ctx context.Context, items []Item) ([]Item, error) {
	completion, err := t.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(BuildPrompt(t.options, items)),
			},
			Model: t.model,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	return parseResponse("OpenAI", completion.Choices[0].Message.Content)
}
