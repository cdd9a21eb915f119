package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var srtTimestampRegex = regexp.MustCompile(
	`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
)

type SRTFile struct {
	cues []Cue
}

// ParseSRT reads SubRip cues from r.
func ParseSRT(r io.Reader) (*SRTFile, error) {
	var cues []Cue
	scanner := bufio.NewScanner(r)

	var current *Cue
	timed := false
	var textLines []string
	lineNum := 0

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		timed = false
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				current = &Cue{}
				continue
			}
		}

		if current != nil && !timed {
			matches := srtTimestampRegex.FindStringSubmatch(line)
			if len(matches) == 9 {
				start, err := parseTimestamp(matches[1:5])
				if err != nil {
					return nil, fmt.Errorf(
						"invalid start timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				end, err := parseTimestamp(matches[5:9])
				if err != nil {
					return nil, fmt.Errorf(
						"invalid end timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				current.StartMillis = start
				current.EndMillis = end
				timed = true
				continue
			}
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}

	return &SRTFile{cues: cues}, nil
}

// parses hours, minutes, seconds and milliseconds into milliseconds
func parseTimestamp(parts []string) (int64, error) {
	scale := []int64{3_600_000, 60_000, 1000, 1}
	var total int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, err
		}
		total += n * scale[len(scale)-len(parts)+i]
	}
	return total, nil
}

func (f *SRTFile) Format() Format {
	return FormatSRT
}

func (f *SRTFile) Track() *Track {
	return &Track{Cues: f.cues}
}

func (f *SRTFile) SetText(index int, text string) error {
	return setText(f.cues, index, text)
}

func (f *SRTFile) Write(path string) error {
	return (&SRTWriter{}).Write(f.Track(), path)
}

func setText(cues []Cue, index int, text string) error {
	if index < 0 || index >= len(cues) {
		return fmt.Errorf(
			"index %d out of range (0-%d)",
			index,
			len(cues)-1,
		)
	}
	cues[index].Text = text
	return nil
}
