package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/pdf2video/internal/cache"
	"github.com/mgpai22/pdf2video/internal/config"
	"github.com/mgpai22/pdf2video/internal/media"
	"github.com/mgpai22/pdf2video/internal/ssml"
	"github.com/mgpai22/pdf2video/internal/synth"
)

var audioCmd = &cobra.Command{
	Use:   "audio [script_file] [page] [output_file]",
	Short: "Synthesize the narration of one #page to an mp3 file",
	Long: `Synthesize the narration of one #page and save it as an mp3 file.

The audio goes through the same cache as render, so listening to a page
before rendering costs no extra synthesis.

Examples:
  pdf2video audio script.txt intro intro.mp3
  pdf2video audio script.txt 4 page4.mp3 --voice Matthew --neural
  pdf2video audio script.txt 4 page4.mp3 --engine gemini --voice Puck`,
	Args: cobra.ExactArgs(3),
	RunE: runAudio,
}

func init() {
	rootCmd.AddCommand(audioCmd)

	addEngineFlags(audioCmd.Flags())
	addToolFlags(audioCmd.Flags())
}

func runAudio(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	outputPath := args[2]

	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	s, idx, err := scriptPage(args[0], args[1])
	if err != nil {
		return err
	}
	doc, err := ssml.Compile(s.Pages[idx].Lines, profileOf(cfg))
	if err != nil {
		return err
	}

	// only gemini needs ffmpeg, for its raw PCM output
	var encoder synth.PCMEncoder
	if cfg.Engine == config.EngineGemini {
		tools, err := resolveTools(ctx, cfg)
		if err != nil {
			return err
		}
		encoder = &media.Assembler{FFmpeg: tools.FFmpeg}
	}

	engine, err := newEngine(ctx, cmd, cfg, encoder)
	if err != nil {
		return err
	}

	logger.Infow("Synthesizing page",
		"page", idx+1,
		"engine", engine.Name(),
		"voice", cfg.Voice,
		"fingerprint", doc.Fingerprint,
	)

	store := cache.NewStore(cfg.AudioCache, engine.Name())
	cached, err := store.Ensure(ctx, doc.Fingerprint, ".mp3", func(ctx context.Context, path string) error {
		return engine.Synthesize(ctx, doc, path)
	})
	if err != nil {
		return err
	}

	if err := copyFile(cached, outputPath); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Audio saved: %s\n", absOutput)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
