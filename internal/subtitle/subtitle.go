// Package subtitle reads and writes caption files.
package subtitle

// represents single caption, times in milliseconds from the start of the clip
type Cue struct {
	StartMillis int64
	EndMillis   int64
	Text        string
}

// represents complete caption track
type Track struct {
	Cues     []Cue
	Language string
}

// represents supported caption formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// interface for writing captions to files
type Writer interface {
	Write(track *Track, path string) error
}
