package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// builds clips and the final video with ffmpeg
type Assembler struct {
	FFmpeg string
	Runner Runner
}

// MakeClip loops a still image over the audio track, ending with the audio.
func (a *Assembler) MakeClip(ctx context.Context, imagePath, audioPath, outPath string) error {
	image := ffmpeg.Input(imagePath, ffmpeg.KwArgs{"loop": 1})
	audio := ffmpeg.Input(audioPath)
	stream := ffmpeg.Output([]*ffmpeg.Stream{image, audio}, outPath, ffmpeg.KwArgs{
		"shortest": "",
		"c:v":      "libx264",
		"vf":       fmt.Sprintf("scale=-2:%d,format=yuv420p", FrameHeight),
		"c:a":      "copy",
		"tune":     "stillimage",
	})
	return a.run(ctx, stream)
}

// AddSubtitles muxes an SRT file into the clip as an English mov_text track.
func (a *Assembler) AddSubtitles(ctx context.Context, clipPath, srtPath, outPath string) error {
	clip := ffmpeg.Input(clipPath)
	subs := ffmpeg.Input(srtPath)
	stream := ffmpeg.Output([]*ffmpeg.Stream{clip, subs}, outPath, ffmpeg.KwArgs{
		"c":              "copy",
		"c:s":            "mov_text",
		"metadata:s:s:0": "language=eng",
	})
	return a.run(ctx, stream)
}

// Concat joins clips in order into outPath, re-encoding audio to AAC and
// copying video and subtitle tracks. The concat list written to listPath
// is removed afterwards.
func (a *Assembler) Concat(ctx context.Context, clips []string, listPath, outPath string) error {
	if len(clips) == 0 {
		return fmt.Errorf("no clips to combine")
	}
	if err := writeConcatList(listPath, clips); err != nil {
		return err
	}
	defer func() { _ = os.Remove(listPath) }()

	stream := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(outPath, ffmpeg.KwArgs{
			"c:v":    "copy",
			"c:a":    "aac",
			"c:s":    "copy",
			"strict": "-2",
		})
	return a.run(ctx, stream)
}

// ExportVTT extracts the subtitle track of a video as WebVTT.
func (a *Assembler) ExportVTT(ctx context.Context, videoPath, vttPath string) error {
	return a.run(ctx, ffmpeg.Input(videoPath).Output(vttPath))
}

// EncodeMP3 converts raw signed 16-bit little endian mono PCM to MP3.
func (a *Assembler) EncodeMP3(ctx context.Context, pcmPath string, sampleRate int, mp3Path string) error {
	stream := ffmpeg.Input(pcmPath, ffmpeg.KwArgs{"f": "s16le", "ar": sampleRate, "ac": 1}).
		Output(mp3Path, ffmpeg.KwArgs{"acodec": "libmp3lame", "b:a": "128k"})
	return a.run(ctx, stream)
}

func (a *Assembler) run(ctx context.Context, stream *ffmpeg.Stream) error {
	args := stream.OverWriteOutput().GetArgs()
	_, err := runnerOrDefault(a.Runner).Run(ctx, a.FFmpeg, args...)
	return err
}

func writeConcatList(listPath string, clips []string) error {
	var sb strings.Builder
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return err
		}
		// single quotes are closed, escaped and reopened
		fmt.Fprintf(&sb, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	if err := os.WriteFile(listPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	return nil
}
