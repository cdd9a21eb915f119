package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

// implements Transcriber using Google Gemini
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
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

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath, text string) (*Result, error) {
	uploadedFile, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}
	defer func() {
		_, _ = t.client.Files.Delete(ctx, uploadedFile.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildPrompt(text)),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini transcription failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			reply.WriteString(part.Text)
		}
	}

	words, err := extractWords(cleanJSONResponse(reply.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}
	return &Result{Words: words, Language: t.options.Language}, nil
}

// creates the prompt for word alignment
func (t *GeminiTranscriber) buildPrompt(text string) string {
	var sb strings.Builder

	sb.WriteString("Align this speech recording with its words. ")
	sb.WriteString("For every spoken word, in order, give the word and the times in seconds (as numbers) at which it starts and ends. ")
	sb.WriteString("Format your response as a JSON array of objects with 'word', 'start' and 'end' fields. ")
	sb.WriteString("Write numbers the way they are spoken, one object per spoken word. ")

	if t.options.Language != "" {
		sb.WriteString(fmt.Sprintf("The audio is in %s. ", t.options.Language))
	}
	if text = strings.TrimSpace(text); text != "" {
		sb.WriteString("The recording reads this text:\n")
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")
	return sb.String()
}

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractWords finds the first JSON array of word objects in a model reply.
// The array may be surrounded by prose or nested in a wrapper object.
func extractWords(s string) ([]Word, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != '[' && s[i] != '{' {
			continue
		}
		value, ok := leadingJSON(s[i:])
		if !ok {
			continue
		}
		if words, ok := findWordArray(value); ok {
			return words, nil
		}
	}
	return nil, fmt.Errorf("no word list found in response: %s", truncateString(s, 200))
}

func findWordArray(value gjson.Result) ([]Word, bool) {
	if value.IsArray() {
		items := value.Array()
		words := make([]Word, 0, len(items))
		for _, item := range items {
			if !item.IsObject() {
				return nil, false
			}
			text := item.Get("word")
			if !text.Exists() {
				text = item.Get("text")
			}
			words = append(words, Word{
				Text:        strings.TrimSpace(text.String()),
				StartMillis: secondsToMillis(item.Get("start").Float()),
				EndMillis:   secondsToMillis(item.Get("end").Float()),
			})
		}
		return words, validateWords(words)
	}

	if value.IsObject() {
		var found []Word
		ok := false
		value.ForEach(func(_, child gjson.Result) bool {
			found, ok = findWordArray(child)
			return !ok
		})
		return found, ok
	}
	return nil, false
}

// at least one word carries text or a timestamp
func validateWords(words []Word) bool {
	for _, w := range words {
		if w.Text != "" || w.StartMillis != 0 || w.EndMillis != 0 {
			return true
		}
	}
	return false
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// leadingJSON parses the JSON value at the start of s, ignoring whatever
// follows it
func leadingJSON(s string) (gjson.Result, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&raw); err != nil {
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(raw), true
}
