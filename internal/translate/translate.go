// Package translate translates caption text with LLM providers.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 3
)

// caption text to translate, or its translation
type Item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// interface for text translation
type Translator interface {
	// Translate returns one translated item per input item, ordered by index.
	Translate(ctx context.Context, items []Item) ([]Item, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BatchSize      int // items per API request (default 50)
	Concurrency    int // requests in flight (default 3)
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return DefaultConcurrency
}

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// translates one batch with a single request
type batchFunc func(ctx context.Context, items []Item) ([]Item, error)

// translateBatches splits items into batches and runs up to opts.concurrency()
// of them at once. The first failing batch cancels the rest.
func translateBatches(ctx context.Context, items []Item, opts Options, fn batchFunc) ([]Item, error) {
	if len(items) == 0 {
		return []Item{}, nil
	}

	size := opts.batchSize()
	var batches [][]Item
	for i := 0; i < len(items); i += size {
		batches = append(batches, items[i:min(i+size, len(items))])
	}

	results := make([][]Item, len(batches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency())
	for i, batch := range batches {
		g.Go(func() error {
			translated, err := fn(ctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			if len(translated) != len(batch) {
				return fmt.Errorf(
					"batch %d: expected %d results, got %d",
					i,
					len(batch),
					len(translated),
				)
			}
			results[i] = translated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Item
	for _, r := range results {
		all = append(all, r...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all, nil
}

// BuildPrompt creates the translation prompt for LLM providers
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		sb.WriteString(fmt.Sprintf(
			"Translate the following %s subtitle texts to %s.\n\n",
			opts.InputLanguage,
			opts.TargetLanguage,
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"Translate the following subtitle texts to %s.\n\n",
			opts.TargetLanguage,
		))
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Translate ONLY the text content, preserving the meaning.\n")
	sb.WriteString("2. Keep a text on two lines if it is on two lines, splitting the translation near the middle.\n")
	sb.WriteString("3. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("4. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("5. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("6. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt))
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}
