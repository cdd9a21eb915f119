package cli

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mgpai22/pdf2video/internal/config"
	"github.com/mgpai22/pdf2video/internal/media"
	"github.com/mgpai22/pdf2video/internal/pipeline"
	"github.com/mgpai22/pdf2video/internal/synth"
	"github.com/mgpai22/pdf2video/internal/transcribe"
	"github.com/mgpai22/pdf2video/internal/translate"
)

var renderCmd = &cobra.Command{
	Use:   "render [pdf_file] [script_file] [output_file]",
	Short: "Render a narrated video from a PDF and a script",
	Long: `Render a narrated video from a PDF presentation and a script file.

The selected PDF pages (--pages) correspond one-to-one to the #page texts of
the script. Each page is rasterized, its text synthesized to speech, and the
resulting clips are joined into an mp4 with a subtitle track. A WebVTT copy
of the subtitles is written next to the video.

Speech audio is cached by content in --audio-cache, so re-rendering after
editing one page only synthesizes that page again.

Polly reports speech marks that time every subtitle line. For the openai and
gemini engines the audio is transcribed (--transcriber) to time the words.

Examples:
  pdf2video render slides.pdf script.txt video.mp4
  pdf2video render slides.pdf script.txt video.mp4 --voice Matthew --neural
  pdf2video render slides.pdf script.txt video.mp4 --pages 1-5,7 --only intro,usage
  pdf2video render slides.pdf script.txt video.mp4 --engine openai --voice nova
  pdf2video render slides.pdf script.txt video.mp4 --translate-to finnish`,
	Args: cobra.ExactArgs(3),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	flags := renderCmd.Flags()
	addEngineFlags(flags)
	addToolFlags(flags)

	flags.String("pages", "all", `PDF page range like "1,3,4-7,1", one page per #page of the script`)
	flags.String("only", "all", `Only render the selected #pages: numbers, names, and ranges like "1,usage,scripts_1-2"`)
	flags.String("temp-prefix", "pdf2video-temp", "Prefix of the temporary files")
	flags.Bool("ignore-subtitles", false, "Do not produce or include subtitles")
	flags.Int("concurrency", runtime.NumCPU(), "Number of pages rendered in parallel")
	flags.Int("caption-width", 0, "Wrap subtitle lines longer than this onto two lines (0 disables)")
	flags.String("transcriber", config.EngineOpenAI, "Word timing provider for engines without speech marks (openai, gemini)")
	flags.String("transcribe-model", "", "Transcription model (provider-specific)")
	flags.String("translate-to", "", "Also write subtitles translated to this language")
	flags.String("translate-provider", string(translate.ProviderGemini), "Translation provider (gemini, openai, anthropic)")
	flags.String("translate-model", "", "Translation model (provider-specific)")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	job := pipeline.Job{
		PDF:    args[0],
		Script: args[1],
		Output: args[2],
	}
	job.Pages, _ = cmd.Flags().GetString("pages")
	job.Only, _ = cmd.Flags().GetString("only")
	job.TranslateTo, _ = cmd.Flags().GetString("translate-to")

	if filepath.Ext(job.Output) != ".mp4" {
		return fmt.Errorf("the output file name must end with .mp4: %s", job.Output)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	tools, err := resolveTools(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Debugw("Resolved tools",
		"ffmpeg", tools.FFmpeg,
		"ffprobe", tools.FFprobe,
		"pdfinfo", tools.Pdfinfo,
		"pdftoppm", tools.Pdftoppm,
	)

	assembler := &media.Assembler{FFmpeg: tools.FFmpeg}
	engine, err := newEngine(ctx, cmd, cfg, assembler)
	if err != nil {
		return err
	}

	runner := &pipeline.Runner{
		Config:     cfg,
		Engine:     engine,
		Rasterizer: &media.Rasterizer{Pdfinfo: tools.Pdfinfo, Pdftoppm: tools.Pdftoppm},
		Assembler:  assembler,
		Prober:     &media.Prober{FFprobe: tools.FFprobe},
		Logger:     logger.Named("render"),
	}

	if _, ok := engine.(synth.MarkEngine); !ok && !cfg.IgnoreSubtitles {
		key, err := config.APIKey(cfg.Transcriber, "")
		if err != nil {
			return fmt.Errorf("%s transcriber: %w", cfg.Transcriber, err)
		}
		runner.Transcriber, err = transcribe.Factory(
			ctx,
			transcribe.Provider(cfg.Transcriber),
			key,
			transcribe.Options{Model: cfg.Models.Transcribe},
		)
		if err != nil {
			return fmt.Errorf("failed to create transcriber: %w", err)
		}
	}

	if job.TranslateTo != "" && cfg.IgnoreSubtitles {
		logger.Warnw("Ignoring --translate-to, subtitles are disabled")
		job.TranslateTo = ""
	}
	if job.TranslateTo != "" {
		providerStr, _ := cmd.Flags().GetString("translate-provider")
		key, err := config.APIKey(providerStr, "")
		if err != nil {
			return fmt.Errorf("%s translator: %w", providerStr, err)
		}
		runner.Translator, err = translate.Factory(ctx, translate.Provider(providerStr), key, translate.Options{
			TargetLanguage: job.TranslateTo,
			Model:          cfg.Models.Translate,
			Concurrency:    cfg.Concurrency,
		})
		if err != nil {
			return fmt.Errorf("failed to create translator: %w", err)
		}
	}

	if err := runner.Run(ctx, job); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(job.Output)
	fmt.Fprintf(cmd.OutOrStdout(), "Video rendered successfully: %s\n", absOutput)
	return nil
}
