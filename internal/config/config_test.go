package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdf2video.yaml")
	content := `engine: openai
voice: nova
audio_cache: /tmp/cache
concurrency: 2
tools:
  ffmpeg: /opt/ffmpeg/bin/ffmpeg
models:
  speech: tts-1-hd
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Engine != EngineOpenAI || cfg.Voice != "nova" || cfg.Concurrency != 2 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" || cfg.Models.Speech != "tts-1-hd" {
		t.Errorf("nested sections not loaded: %+v", cfg)
	}
	// untouched values keep their defaults
	if cfg.TempPrefix != "pdf2video-temp" || cfg.AWSProfile != "default" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Engine != EnginePolly || cfg.AudioCache != "pdf2video-cache" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("engine: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.Engine = " Polly "
	cfg.Conversational = true
	cfg.Concurrency = 0
	cfg.Normalize()

	if cfg.Engine != EnginePolly || cfg.Voice != "Joanna" || !cfg.Neural || cfg.Concurrency != 1 {
		t.Errorf("unexpected normalized config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default polly", mutate: func(c *Config) {}},
		{name: "neural voice", mutate: func(c *Config) { c.Voice = "Matthew"; c.Neural = true }},
		{name: "neural only voice", mutate: func(c *Config) { c.Voice = "Kevin"; c.Neural = true }},
		{name: "conversational", mutate: func(c *Config) { c.Voice = "Lupe"; c.Conversational = true }},
		{name: "unknown voice", mutate: func(c *Config) { c.Voice = "Hal" }, wantErr: "unsupported voice Hal"},
		{name: "standard only voice", mutate: func(c *Config) { c.Voice = "Hans"; c.Neural = true }, wantErr: "not available in neural TTS"},
		{name: "not conversational", mutate: func(c *Config) { c.Voice = "Amy"; c.Conversational = true }, wantErr: "conversational style"},
		{name: "openai", mutate: func(c *Config) { c.Engine = EngineOpenAI; c.Voice = "" }},
		{name: "openai bad voice", mutate: func(c *Config) { c.Engine = EngineOpenAI; c.Voice = "Joanna" }, wantErr: "unsupported OpenAI voice"},
		{name: "gemini neural", mutate: func(c *Config) { c.Engine = EngineGemini; c.Voice = ""; c.Neural = true }, wantErr: "only supported by the polly engine"},
		{name: "unknown engine", mutate: func(c *Config) { c.Engine = "espeak" }, wantErr: "unsupported engine"},
		{name: "unknown transcriber", mutate: func(c *Config) { c.Transcriber = "vosk" }, wantErr: "unsupported transcriber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			cfg.Normalize()
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate returned error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestAPIKey(t *testing.T) {
	stored := map[string]string{"anthropic": "from-keyring"}
	old := keyringGet
	keyringGet = func(service, user string) (string, error) {
		if service != KeyringService {
			t.Errorf("unexpected keyring service %q", service)
		}
		if v, ok := stored[user]; ok {
			return v, nil
		}
		return "", keyring.ErrNotFound
	}
	t.Cleanup(func() { keyringGet = old })

	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	tests := []struct {
		provider, explicit, want string
		wantErr                  bool
	}{
		{provider: "openai", explicit: "from-flag", want: "from-flag"},
		{provider: "openai", want: "from-env"},
		{provider: "anthropic", want: "from-keyring"},
		{provider: "gemini", wantErr: true},
		{provider: "mistral", wantErr: true},
	}
	for _, tt := range tests {
		got, err := APIKey(tt.provider, tt.explicit)
		if tt.wantErr {
			if err == nil {
				t.Errorf("APIKey(%q) = %q, want error", tt.provider, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("APIKey(%q, %q) = %q, %v, want %q", tt.provider, tt.explicit, got, err, tt.want)
		}
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PDF2VIDEO_TEST_KEY=abc\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("PDF2VIDEO_TEST_KEY", "")
	os.Unsetenv("PDF2VIDEO_TEST_KEY")

	if err := LoadEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}
	if got := os.Getenv("PDF2VIDEO_TEST_KEY"); got != "abc" {
		t.Errorf("PDF2VIDEO_TEST_KEY = %q, want %q", got, "abc")
	}
}
