package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/pdf2video/internal/subsync"
	"github.com/mgpai22/pdf2video/internal/subtitle"
)

var subsCmd = &cobra.Command{
	Use:   "subs [script_file] [page] [marks_file]",
	Short: "Build the subtitles of one #page from a speech marks file",
	Long: `Time the subtitle lines of one #page with a speech marks file, without
synthesizing anything. The marks file holds one JSON object per line in the
Polly speech marks format, such as the .mrk files in the audio cache.

Lines are timed with the ssml marks when the file has any, otherwise by
walking the word marks.

Examples:
  pdf2video subs script.txt intro pdf2video-cache/polly/3f2a.mrk
  pdf2video subs script.txt 2 marks.json -o page2.vtt --caption-width 42`,
	Args: cobra.ExactArgs(3),
	RunE: runSubs,
}

func init() {
	rootCmd.AddCommand(subsCmd)

	subsCmd.Flags().StringP("output", "o", "", "Write the subtitles to this .srt or .vtt file instead of stdout")
	subsCmd.Flags().Int("caption-width", 0, "Wrap subtitle lines longer than this onto two lines (0 disables)")
}

func runSubs(cmd *cobra.Command, args []string) error {
	s, idx, err := scriptPage(args[0], args[1])
	if err != nil {
		return err
	}

	marks, err := subsync.ReadMarksFile(args[2])
	if err != nil {
		return err
	}

	caps := subsync.Capabilities{WordMarks: true}
	for _, m := range marks {
		if m.Type == subsync.MarkSSML {
			caps.Landmarks = true
			break
		}
	}

	cues, err := subsync.ForCapabilities(caps).Sync(s.Pages[idx].Lines, marks)
	if err != nil {
		return err
	}

	width, _ := cmd.Flags().GetInt("caption-width")
	for i := range cues {
		cues[i].Text = subtitle.Wrap(cues[i].Text, width)
	}
	track := &subtitle.Track{Cues: cues}

	logger.Infow("Subtitles built",
		"page", idx+1,
		"cues", len(cues),
		"landmarks", caps.Landmarks,
	)

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		return (&subtitle.SRTWriter{}).Encode(cmd.OutOrStdout(), track)
	}

	writer, err := subtitle.NewWriter(subtitle.GetFormatFromExtension(outputPath))
	if err != nil {
		return err
	}
	if err := writer.Write(track, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}
