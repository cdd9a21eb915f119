package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/pdf2video/internal/config"
	"github.com/mgpai22/pdf2video/internal/subtitle"
	"github.com/mgpai22/pdf2video/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Translate subtitles to another language using AI",
	Long: `Translate an existing subtitle file, such as the .vtt written by render,
to another language using AI. Cue timings are kept.

Supports SRT and VTT files.

The --overlay flag creates bilingual subtitles with the translated text
first, followed by the original text on the next line.

Examples:
  pdf2video translate video.vtt --target-language finnish
  pdf2video translate video.srt -t ja --overlay
  pdf2video translate video.vtt -l english -t spanish --provider anthropic -o es.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

var translateModels = map[translate.Provider][]string{
	translate.ProviderGemini: {
		"gemini-3-pro-preview",
		"gemini-3-flash-preview",
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite",
	},
	translate.ProviderOpenAI: {
		"o1", "o3-mini", "o1-pro", "o3",
		"gpt-5", "gpt-5-nano", "gpt-5-mini", "gpt-5-pro",
		"gpt-5.1", "gpt-5.2", "gpt-5.2-pro",
	},
	translate.ProviderAnthropic: {
		"claude-haiku-4-5",
		"claude-sonnet-4-5",
		"claude-opus-4-1",
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	flags := translateCmd.Flags()
	flags.StringP("target-language", "t", "", "Target language for translation (required)")
	flags.StringP("language", "l", "", "Language of the input subtitles (optional)")
	flags.StringP("output", "o", "", "Output file path (default <input>.<target-language>.<ext>)")
	flags.Bool("overlay", false, "Overlay translated text with original (bilingual subtitles)")
	flags.StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY env var)")
	flags.String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	flags.Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	flags.String("provider", string(translate.ProviderGemini), "Translation provider (gemini, openai, anthropic)")
	flags.Int("concurrency", translate.DefaultConcurrency, "Number of parallel translation requests")
	flags.Int("batch-size", translate.DefaultBatchSize, "Number of subtitle entries per API request")
	flags.String("prompt", "", "Additional instructions for the translator")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := cmd.Context()

	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("language")
	outputPath, _ := cmd.Flags().GetString("output")
	overlay, _ := cmd.Flags().GetBool("overlay")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	providerStr, _ := cmd.Flags().GetString("provider")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	prompt, _ := cmd.Flags().GetString("prompt")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}
	if strings.TrimSpace(targetLang) == "" {
		return fmt.Errorf("target language is required")
	}
	if inputLang != "" &&
		strings.EqualFold(strings.TrimSpace(inputLang), strings.TrimSpace(targetLang)) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	provider := translate.Provider(strings.ToLower(providerStr))
	if model != "" && !modelOverride {
		if err := validateTranslateModel(provider, model); err != nil {
			return err
		}
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	apiKey, err := config.APIKey(string(provider), apiKey)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = translatedPath(subtitlePath, targetLang, overlay)
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"output", outputPath,
		"target_language", targetLang,
		"input_language", inputLang,
		"overlay", overlay,
		"provider", provider,
		"model", model,
	)

	subFile, err := subtitle.Open(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	track := subFile.Track()
	if len(track.Cues) == 0 {
		return fmt.Errorf("subtitle file contains no entries")
	}

	logger.Infow("Parsed subtitle file",
		"entries", len(track.Cues),
		"format", subFile.Format(),
	)

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
		BatchSize:      batchSize,
		Concurrency:    concurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	translated, err := translate.TranslateTrack(ctx, translator, track, targetLang)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	logger.Infow("Translation complete", "entries", len(translated.Cues))

	for i, cue := range translated.Cues {
		text := cue.Text
		if overlay {
			// translated + newline + original
			text = text + "\n" + track.Cues[i].Text
		}
		if err := subFile.SetText(i, text); err != nil {
			return fmt.Errorf("failed to set text for entry %d: %w", i, err)
		}
	}

	if err := subFile.Write(outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	out := cmd.OutOrStdout()
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(out, "Subtitles translated successfully: %s\n", absOutput)
	fmt.Fprintf(out, "  Entries: %d\n", len(track.Cues))
	fmt.Fprintf(out, "  Target language: %s\n", targetLang)
	if overlay {
		fmt.Fprintf(out, "  Mode: bilingual overlay\n")
	}

	return nil
}

func validateTranslateModel(provider translate.Provider, model string) error {
	valid, ok := translateModels[provider]
	if !ok {
		return fmt.Errorf("unsupported translation provider: %s", provider)
	}
	if !slices.Contains(valid, model) {
		return fmt.Errorf(
			"unsupported %s model %q: valid models are %s (use --model-override to bypass)",
			provider,
			model,
			strings.Join(valid, ", "),
		)
	}
	return nil
}

// <base>.<language>[.overlay]<ext> next to the input
func translatedPath(input, language string, overlay bool) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if overlay {
		return fmt.Sprintf("%s.%s.overlay%s", base, language, ext)
	}
	return fmt.Sprintf("%s.%s%s", base, language, ext)
}
