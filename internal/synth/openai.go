package synth

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/pdf2video/internal/ssml"
	"github.com/mgpai22/pdf2video/internal/subsync"
)

// implements Engine using the OpenAI speech API. The API takes plain text,
// so the markup's emphasis and pauses are lost.
type OpenAIEngine struct {
	client openai.Client
	model  string
	voice  string
}

func NewOpenAIEngine(apiKey string, opts Options) (*OpenAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini-tts"
	}

	return &OpenAIEngine{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		voice:  opts.Profile.Voice,
	}, nil
}

func (e *OpenAIEngine) Name() string { return string(ProviderOpenAI) }

func (e *OpenAIEngine) Capabilities() subsync.Capabilities { return subsync.Capabilities{} }

func (e *OpenAIEngine) Synthesize(ctx context.Context, doc *ssml.Document, outPath string) error {
	resp, err := e.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          doc.Plain,
		Model:          openai.SpeechModel(e.model),
		Voice:          openai.AudioSpeechNewParamsVoice(e.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return fmt.Errorf("openai speech failed: %w", err)
	}
	defer resp.Body.Close()
	return writeStream(outPath, resp.Body)
}
