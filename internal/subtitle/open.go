package subtitle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// parsed caption file
type File interface {
	Format() Format
	Track() *Track
	SetText(index int, text string) error
	Write(path string) error
}

// Open parses the .srt or .vtt file at path.
func Open(path string) (File, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var format Format
	switch ext {
	case ".srt":
		format = FormatSRT
	case ".vtt":
		format = FormatVTT
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", strings.ToUpper(string(format)), err)
	}
	defer func() {
		_ = file.Close()
	}()
	return Parse(file, format)
}

// Parse reads a caption file of the given format from r.
func Parse(r io.Reader, format Format) (File, error) {
	switch format {
	case FormatSRT:
		return ParseSRT(r)
	case FormatVTT:
		return ParseVTT(r)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", format)
	}
}
