package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Translator using Anthropic Claude
type AnthropicTranslator struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicTranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicTranslator{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		options: opts,
	}, nil
}

func (t *AnthropicTranslator) Translate(ctx context.Context, items []Item) ([]Item, error) {
	return translateBatches(ctx, items, t.options, t.translateBatch)
}

func (t *AnthropicTranslator) translateBatch(ctx context.Context, items []Item) ([]Item, error) {
	message, err := t.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     t.model,
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(BuildPrompt(t.options, items)),
				),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("empty response from Anthropic")
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return parseResponse("Anthropic", text.String())
}
