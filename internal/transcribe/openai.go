package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
)

// whisper prompts are cut by the API after this many characters
const maxPromptChars = 800

// implements Transcriber using the OpenAI audio API with word timestamps
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath, text string,
) (*Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word"},
	}
	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}
	if prompt := promptHint(text); prompt != "" {
		params.Prompt = openai.String(prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai transcription failed: %w", err)
	}

	result, err := parseVerboseJSONWords(resp.RawJSON())
	if err != nil {
		return nil, err
	}
	if result.Language == "" {
		result.Language = t.options.Language
	}
	return result, nil
}

// parses the words of a verbose_json transcription
func parseVerboseJSONWords(rawJSON string) (*Result, error) {
	if strings.TrimSpace(rawJSON) == "" {
		return nil, fmt.Errorf("empty response")
	}
	if !gjson.Valid(rawJSON) {
		return nil, fmt.Errorf("failed to parse verbose_json response")
	}

	resp := gjson.Parse(rawJSON)
	result := &Result{
		Language: resp.Get("language").String(),
		Duration: time.Duration(resp.Get("duration").Float() * float64(time.Second)),
	}
	resp.Get("words").ForEach(func(_, w gjson.Result) bool {
		text := strings.TrimSpace(w.Get("word").String())
		if text != "" {
			result.Words = append(result.Words, Word{
				Text:        text,
				StartMillis: secondsToMillis(w.Get("start").Float()),
				EndMillis:   secondsToMillis(w.Get("end").Float()),
			})
		}
		return true
	})

	if len(result.Words) == 0 {
		return nil, fmt.Errorf("no word timestamps in response")
	}
	return result, nil
}

// the tail of the narration, which is what whisper keeps of a long prompt
func promptHint(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxPromptChars {
		text = string(runes[len(runes)-maxPromptChars:])
	}
	return text
}
