package synth

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/mgpai22/pdf2video/internal/ssml"
	"github.com/mgpai22/pdf2video/internal/subsync"
)

// gemini speech is 16-bit mono PCM at this rate
const geminiSampleRate = 24000

// implements Engine using Gemini speech generation
type GeminiEngine struct {
	client  *genai.Client
	model   string
	voice   string
	encoder PCMEncoder
}

func NewGeminiEngine(ctx context.Context, apiKey string, opts Options) (*GeminiEngine, error) {
	if opts.Encoder == nil {
		return nil, fmt.Errorf("gemini speech requires a PCM encoder")
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
		model = "gemini-2.5-flash-preview-tts"
	}

	return &GeminiEngine{
		client:  client,
		model:   model,
		voice:   opts.Profile.Voice,
		encoder: opts.Encoder,
	}, nil
}

func (e *GeminiEngine) Name() string { return string(ProviderGemini) }

func (e *GeminiEngine) Capabilities() subsync.Capabilities { return subsync.Capabilities{} }

func (e *GeminiEngine) Synthesize(ctx context.Context, doc *ssml.Document, outPath string) error {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: e.voice},
			},
		},
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(doc.Plain), config)
	if err != nil {
		return fmt.Errorf("gemini speech failed: %w", err)
	}

	pcm, err := inlineAudio(resp)
	if err != nil {
		return err
	}

	pcmPath := outPath + ".pcm"
	if err := os.WriteFile(pcmPath, pcm, 0644); err != nil {
		return fmt.Errorf("failed to write PCM audio: %w", err)
	}
	defer os.Remove(pcmPath)

	return e.encoder.EncodeMP3(ctx, pcmPath, geminiSampleRate, outPath)
}

// concatenated inline audio of the first candidate
func inlineAudio(resp *genai.GenerateContentResponse) ([]byte, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var pcm []byte
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil {
			pcm = append(pcm, part.InlineData.Data...)
		}
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("no audio in Gemini response")
	}
	return pcm, nil
}
