package transcribe

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractWords(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name: "plain valid array",
			input: `[
				{"word": "Hello", "start": 0.0, "end": 0.4},
				{"word": "world", "start": 0.4, "end": 0.9}
			]`,
			wantCount: 2,
		},
		{
			name: "preamble with valid array",
			input: `Here are the word timings:
			[
				{"word": "Hello", "start": 0.0, "end": 0.4},
				{"word": "world", "start": 0.4, "end": 0.9}
			]`,
			wantCount: 2,
		},
		{
			name: "valid array with trailing text",
			input: `[{"word": "Hello", "start": 0.0, "end": 0.4}]
			I hope this helps!`,
			wantCount: 1,
		},
		{
			name:      "array between prose with brackets after it",
			input:     `Here you go: [{"word": "Hello", "start": 0.0, "end": 0.4}, {"word": "there", "start": 0.4, "end": 0.9}] and a note [see above] {done}`,
			wantCount: 2,
		},
		{
			name:      "text key instead of word",
			input:     `[{"text": "Hello", "start": 0.0, "end": 0.4}]`,
			wantCount: 1,
		},
		{
			name:      "wrapper object with words key",
			input:     `{"words": [{"word": "Wrapped", "start": 0.0, "end": 2.0}]}`,
			wantCount: 1,
		},
		{
			name:      "wrapper object with unknown key",
			input:     `{"myCustomKey": [{"word": "Unknown", "start": 0.0, "end": 2.0}]}`,
			wantCount: 1,
		},
		{
			name: "unrelated object first then word array",
			input: `{"status": "ok", "count": 5}
			[{"word": "Real", "start": 0.0, "end": 2.0}]`,
			wantCount: 1,
		},
		{
			name: "number array first",
			input: `[1, 2, 3]
			[{"word": "Actual", "start": 0.0, "end": 2.0}]`,
			wantCount: 1,
		},
		{
			name: "nested wrapper object",
			input: `{
				"response": {
					"words": [{"word": "Nested", "start": 0.0, "end": 1.0}]
				}
			}`,
			wantCount: 1,
		},
		{
			name:      "empty word with timestamps",
			input:     `[{"word": "", "start": 1.0, "end": 2.0}]`,
			wantCount: 1,
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   `This is just plain text with no JSON content.`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `[{"word": "incomplete", "start": 0.0`,
			wantErr: true,
		},
		{
			name:    "array with empty words",
			input:   `[{"word": "", "start": 0, "end": 0}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := extractWords(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(words) != tt.wantCount {
				t.Errorf("got %d words, want %d", len(words), tt.wantCount)
			}
		})
	}
}

func TestExtractWordsTimes(t *testing.T) {
	words, err := extractWords(`[{"word": " twenty ", "start": 1.2344, "end": 1.5}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Word{{Text: "twenty", StartMillis: 1234, EndMillis: 1500}}
	if diff := cmp.Diff(want, words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON",
			input: `[{"word": "a", "start": 0, "end": 1}]`,
			want:  `[{"word": "a", "start": 0, "end": 1}]`,
		},
		{
			name:  "json code fence",
			input: "```json\n[{\"word\": \"a\"}]\n```",
			want:  `[{"word": "a"}]`,
		},
		{
			name:  "plain code fence",
			input: "```\n[{\"word\": \"a\"}]\n```",
			want:  `[{"word": "a"}]`,
		},
		{
			name:  "with leading/trailing whitespace",
			input: "  \n\n```json\n[{\"start\": 0}]\n```\n\n  ",
			want:  `[{"start": 0}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.want {
				t.Errorf("cleanJSONResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	tr := &GeminiTranscriber{options: Options{Language: "English"}}
	prompt := tr.buildPrompt("  Hello world.  ")

	for _, want := range []string{"The audio is in English.", "Hello world.\n", "JSON array"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	if strings.Contains((&GeminiTranscriber{}).buildPrompt(""), "reads this text") {
		t.Error("empty text should not add a text hint")
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("abcdef", 3); got != "abc..." {
		t.Errorf("truncateString = %q", got)
	}
	if got := truncateString("ab", 3); got != "ab" {
		t.Errorf("truncateString = %q", got)
	}
}
