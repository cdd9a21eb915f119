package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Encode writes the track as SubRip to w.
func (sw *SRTWriter) Encode(w io.Writer, track *Track) error {
	bw := bufio.NewWriter(w)
	for i, cue := range track.Cues {
		// index (1-based)
		fmt.Fprintf(bw, "%d\n", i+1)
		fmt.Fprintf(bw, "%s --> %s\n",
			FormatSRTTime(cue.StartMillis),
			FormatSRTTime(cue.EndMillis))
		bw.WriteString(cue.Text)
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

// writes the track to an SRT file
func (sw *SRTWriter) Write(track *Track, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return sw.Encode(w, track)
	})
}

// Encode writes the track as WebVTT to w.
func (vw *VTTWriter) Encode(w io.Writer, track *Track) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("WEBVTT\n\n")
	for i, cue := range track.Cues {
		// optional cue identifier
		fmt.Fprintf(bw, "%d\n", i+1)
		fmt.Fprintf(bw, "%s --> %s\n",
			FormatVTTTime(cue.StartMillis),
			FormatVTTTime(cue.EndMillis))
		bw.WriteString(cue.Text)
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

// writes the track to a VTT file
func (vw *VTTWriter) Write(track *Track, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return vw.Encode(w, track)
	})
}

// FormatSRTTime renders milliseconds as HH:MM:SS,mmm.
func FormatSRTTime(ms int64) string {
	return formatTime(ms, ',')
}

// FormatVTTTime renders milliseconds as HH:MM:SS.mmm.
func FormatVTTTime(ms int64) string {
	return formatTime(ms, '.')
}

func formatTime(ms int64, sep byte) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3_600_000
	minutes := ms / 60_000 % 60
	seconds := ms / 1000 % 60
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, seconds, sep, millis)
}

func writeFile(path string, encode func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// caption format based on file extension
func GetFormatFromExtension(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".vtt":
		return FormatVTT
	default:
		return FormatSRT
	}
}

