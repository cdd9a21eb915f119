// Package synth turns compiled page narration into speech audio.
package synth

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mgpai22/pdf2video/internal/ssml"
	"github.com/mgpai22/pdf2video/internal/subsync"
)

// interface for speech engines
type Engine interface {
	// Name is used as the audio cache namespace.
	Name() string
	// Capabilities reports which speech marks the engine can produce.
	Capabilities() subsync.Capabilities
	// Synthesize writes the MP3 audio of doc to outPath.
	Synthesize(ctx context.Context, doc *ssml.Document, outPath string) error
}

// engine that reports speech marks alongside the audio
type MarkEngine interface {
	Engine
	// SpeechMarks writes the speech marks of doc to outPath as JSON lines.
	SpeechMarks(ctx context.Context, doc *ssml.Document, outPath string) error
}

// converts raw PCM to MP3, implemented by media.Assembler
type PCMEncoder interface {
	EncodeMP3(ctx context.Context, pcmPath string, sampleRate int, mp3Path string) error
}

// engine options
type Options struct {
	Profile ssml.Profile
	Model   string

	// polly only
	AWSProfile string
	AWSRegion  string

	// required by engines that return raw PCM
	Encoder PCMEncoder
}

// speech engine name
type Provider string

const (
	ProviderPolly  Provider = "polly"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// creates engine based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Engine, error) {
	switch provider {
	case ProviderPolly:
		return NewPollyEngine(opts)
	case ProviderOpenAI:
		return NewOpenAIEngine(apiKey, opts)
	case ProviderGemini:
		return NewGeminiEngine(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported speech engine: %s", provider)
	}
}

func writeStream(path string, r io.Reader) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
