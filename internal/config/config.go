// Package config holds the render settings. Values come from built-in
// defaults, an optional YAML file and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// speech engines
const (
	EnginePolly  = "polly"
	EngineOpenAI = "openai"
	EngineGemini = "gemini"
)

// paths of the external tools; empty means look them up
type Tools struct {
	FFmpeg   string `yaml:"ffmpeg"`
	FFprobe  string `yaml:"ffprobe"`
	Pdfinfo  string `yaml:"pdfinfo"`
	Pdftoppm string `yaml:"pdftoppm"`
}

// provider models; empty means the provider default
type Models struct {
	Speech     string `yaml:"speech"`
	Transcribe string `yaml:"transcribe"`
	Translate  string `yaml:"translate"`
}

type Config struct {
	Engine         string `yaml:"engine"`
	Voice          string `yaml:"voice"`
	Neural         bool   `yaml:"neural"`
	Conversational bool   `yaml:"conversational"`

	// AWS shared-config profile for Polly, "default" uses the default chain
	AWSProfile string `yaml:"aws_profile"`
	AWSRegion  string `yaml:"aws_region"`

	// word timing provider for engines without speech marks
	Transcriber string `yaml:"transcriber"`

	AudioCache      string `yaml:"audio_cache"`
	TempPrefix      string `yaml:"temp_prefix"`
	IgnoreSubtitles bool   `yaml:"ignore_subtitles"`
	Concurrency     int    `yaml:"concurrency"`
	// wrap captions longer than this onto two lines, 0 disables
	CaptionWidth int `yaml:"caption_width"`

	Tools  Tools  `yaml:"tools"`
	Models Models `yaml:"models"`

	LogFile string `yaml:"log_file"`
}

func Default() *Config {
	return &Config{
		Engine:      EnginePolly,
		AWSProfile:  "default",
		Transcriber: EngineOpenAI,
		AudioCache:  "pdf2video-cache",
		TempPrefix:  "pdf2video-temp",
		Concurrency: runtime.NumCPU(),
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv loads KEY=value pairs from the given .env files into the process
// environment without overriding existing variables. Missing files are ignored.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Normalize fills engine dependent defaults. Conversational style implies
// the neural engine.
func (c *Config) Normalize() {
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	c.Transcriber = strings.ToLower(strings.TrimSpace(c.Transcriber))
	if c.Voice == "" {
		c.Voice = DefaultVoice(c.Engine)
	}
	if c.Conversational {
		c.Neural = true
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
}

// Validate checks the engine, voice and style combination.
func (c *Config) Validate() error {
	switch c.Engine {
	case EnginePolly:
		if err := ValidatePollyVoice(c.Voice, c.Neural, c.Conversational); err != nil {
			return err
		}
	case EngineOpenAI:
		if c.Neural || c.Conversational {
			return fmt.Errorf("--neural and --conversational are only supported by the polly engine")
		}
		if !contains(OpenAIVoices, c.Voice) {
			return fmt.Errorf(
				"unsupported OpenAI voice %s. The available voices are %s",
				c.Voice,
				strings.Join(OpenAIVoices, ", "),
			)
		}
	case EngineGemini:
		if c.Neural || c.Conversational {
			return fmt.Errorf("--neural and --conversational are only supported by the polly engine")
		}
	default:
		return fmt.Errorf("unsupported engine %q: use polly, openai, or gemini", c.Engine)
	}

	switch c.Transcriber {
	case EngineOpenAI, EngineGemini:
	default:
		return fmt.Errorf("unsupported transcriber %q: use openai or gemini", c.Transcriber)
	}
	return nil
}
