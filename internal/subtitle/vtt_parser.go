package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

type VTTFile struct {
	cues []Cue
}

// ParseVTT reads WebVTT cues from r. NOTE and STYLE blocks are skipped.
func ParseVTT(r io.Reader) (*VTTFile, error) {
	var cues []Cue
	scanner := bufio.NewScanner(r)

	var current *Cue
	var textLines []string
	lineNum := 0
	headerParsed := false

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		textLines = nil
	}
	skipBlock := func() {
		for scanner.Scan() {
			lineNum++
			if strings.TrimSpace(scanner.Text()) == "" {
				break
			}
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if !headerParsed && strings.HasPrefix(trimmed, "WEBVTT") {
			headerParsed = true
			continue
		}

		if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") {
			skipBlock()
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		var parts []string
		if m := vttTimestampRegex.FindStringSubmatch(line); len(m) == 9 {
			parts = m[1:]
		} else if m := vttShortTimestampRegex.FindStringSubmatch(line); len(m) == 7 {
			parts = []string{"00", m[1], m[2], m[3], "00", m[4], m[5], m[6]}
		}
		if parts != nil {
			flush()
			start, err := parseTimestamp(parts[:4])
			if err != nil {
				return nil, fmt.Errorf(
					"invalid start timestamp at line %d: %w",
					lineNum,
					err,
				)
			}
			end, err := parseTimestamp(parts[4:])
			if err != nil {
				return nil, fmt.Errorf(
					"invalid end timestamp at line %d: %w",
					lineNum,
					err,
				)
			}
			current = &Cue{StartMillis: start, EndMillis: end}
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT file: %w", err)
	}

	return &VTTFile{cues: cues}, nil
}

func (f *VTTFile) Format() Format {
	return FormatVTT
}

func (f *VTTFile) Track() *Track {
	return &Track{Cues: f.cues}
}

func (f *VTTFile) SetText(index int, text string) error {
	return setText(f.cues, index, text)
}

func (f *VTTFile) Write(path string) error {
	return (&VTTWriter{}).Write(f.Track(), path)
}
