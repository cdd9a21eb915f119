// Package transcribe recovers word timings from synthesized speech for
// engines that do not report speech marks.
package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/pdf2video/internal/subsync"
)

// represents single spoken word, times in milliseconds
type Word struct {
	Text        string
	StartMillis int64
	EndMillis   int64
}

// transcription result
type Result struct {
	Words    []Word
	Language string
	Duration time.Duration
}

// interface for word-level transcription
type Transcriber interface {
	// Transcribe times the words of audioPath. text is what the audio is
	// known to say and is used as a spelling hint.
	Transcribe(ctx context.Context, audioPath, text string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// transcription options
type Options struct {
	Language string // Source language of audio
	Model    string
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// WordMarks turns transcribed words into word speech marks.
func WordMarks(words []Word) []subsync.Mark {
	marks := make([]subsync.Mark, 0, len(words))
	for _, w := range words {
		marks = append(marks, subsync.Mark{
			Type:       subsync.MarkWord,
			Value:      w.Text,
			TimeMillis: w.StartMillis,
		})
	}
	return marks
}

func secondsToMillis(s float64) int64 {
	return int64(s*1000 + 0.5)
}
