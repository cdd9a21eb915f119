package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mgpai22/pdf2video/internal/config"
	"github.com/mgpai22/pdf2video/internal/ffmpeg"
	"github.com/mgpai22/pdf2video/internal/ssml"
	"github.com/mgpai22/pdf2video/internal/synth"
)

// adds the flags selecting and tuning the speech engine
func addEngineFlags(flags *pflag.FlagSet) {
	flags.String("engine", config.EnginePolly, "Speech engine (polly, openai, gemini)")
	flags.String("voice", "", "Voice of the speech engine (default Joanna, alloy or Kore)")
	flags.Bool("neural", false, "Use the Polly neural engine")
	flags.Bool("conversational", false, "Use the Polly conversational style, implies --neural")
	flags.String("aws-profile", "default", "Polly-enabled AWS profile")
	flags.String("aws-region", "", "AWS region for Polly")
	flags.String("audio-cache", "pdf2video-cache", "Directory for caching speech audio")
	flags.StringP("api-key", "k", "", "API key of the speech engine (or set OPENAI_API_KEY/GEMINI_API_KEY env var)")
	flags.String("model", "", "Speech model (provider-specific, uses sensible defaults)")
}

// adds the external tool path flags
func addToolFlags(flags *pflag.FlagSet) {
	flags.String("ffmpeg", "", "Path of the ffmpeg binary")
	flags.String("ffprobe", "", "Path of the ffprobe binary")
	flags.String("pdfinfo", "", "Path of the pdfinfo binary")
	flags.String("pdftoppm", "", "Path of the pdftoppm binary")
}

// applyFlags copies the flags set on the command line over the loaded
// configuration, then normalizes and validates the result.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst, _ = flags.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst, _ = flags.GetBool(name)
		}
	}
	integer := func(name string, dst *int) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst, _ = flags.GetInt(name)
		}
	}

	str("engine", &c.Engine)
	str("voice", &c.Voice)
	boolean("neural", &c.Neural)
	boolean("conversational", &c.Conversational)
	str("aws-profile", &c.AWSProfile)
	str("aws-region", &c.AWSRegion)
	str("audio-cache", &c.AudioCache)
	str("model", &c.Models.Speech)
	str("transcriber", &c.Transcriber)
	str("transcribe-model", &c.Models.Transcribe)
	str("translate-model", &c.Models.Translate)
	str("temp-prefix", &c.TempPrefix)
	boolean("ignore-subtitles", &c.IgnoreSubtitles)
	integer("concurrency", &c.Concurrency)
	integer("caption-width", &c.CaptionWidth)
	str("ffmpeg", &c.Tools.FFmpeg)
	str("ffprobe", &c.Tools.FFprobe)
	str("pdfinfo", &c.Tools.Pdfinfo)
	str("pdftoppm", &c.Tools.Pdftoppm)

	c.Normalize()
	return c.Validate()
}

func profileOf(c *config.Config) ssml.Profile {
	return ssml.Profile{
		Voice:          c.Voice,
		Neural:         c.Neural,
		Conversational: c.Conversational,
	}
}

// newEngine creates the configured speech engine. Polly authenticates with
// AWS credentials, the others with an API key.
func newEngine(ctx context.Context, cmd *cobra.Command, c *config.Config, encoder synth.PCMEncoder) (synth.Engine, error) {
	var apiKey string
	if c.Engine != config.EnginePolly {
		explicit, _ := cmd.Flags().GetString("api-key")
		key, err := config.APIKey(c.Engine, explicit)
		if err != nil {
			return nil, err
		}
		apiKey = key
	}

	engine, err := synth.Factory(ctx, synth.Provider(c.Engine), apiKey, synth.Options{
		Profile:    profileOf(c),
		Model:      c.Models.Speech,
		AWSProfile: c.AWSProfile,
		AWSRegion:  c.AWSRegion,
		Encoder:    encoder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create speech engine: %w", err)
	}
	return engine, nil
}

func resolveTools(ctx context.Context, c *config.Config) (ffmpeg.BinaryPaths, error) {
	return ffmpeg.Resolve(ctx, ffmpeg.BinaryPaths{
		FFmpeg:   c.Tools.FFmpeg,
		FFprobe:  c.Tools.FFprobe,
		Pdfinfo:  c.Tools.Pdfinfo,
		Pdftoppm: c.Tools.Pdftoppm,
	})
}
