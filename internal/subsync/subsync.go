package subsync

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mgpai22/pdf2video/internal/markup"
	"github.com/mgpai22/pdf2video/internal/script"
	"github.com/mgpai22/pdf2video/internal/ssml"
	"github.com/mgpai22/pdf2video/internal/subtitle"
)

const (
	// upper bound on how far an overlapping cue end is moved
	lingerMillis = 1000
	// gap kept before the next cue starts
	gapMillis = 10
)

// interface for turning the timing events of one page into cues
type Strategy interface {
	Sync(lines []script.Line, marks []Mark) ([]subtitle.Cue, error)
}

// SyncError reports a word event that does not match the line being timed.
type SyncError struct {
	Line     int
	Expected string
	Actual   string
}

func (e *SyncError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf(
			"subtitles out of sync on line %d: expected %q, engine reported %q",
			e.Line, e.Expected, e.Actual,
		)
	}
	return fmt.Sprintf(
		"subtitles out of sync: expected %q, engine reported %q",
		e.Expected, e.Actual,
	)
}

// ForCapabilities picks Landmark when the engine reports landmarks and
// WordCount otherwise.
func ForCapabilities(caps Capabilities) Strategy {
	if caps.Landmarks {
		return Landmark{}
	}
	return WordCount{}
}

// Landmark times every line with its s<i>/e<i> ssml marks.
type Landmark struct{}

func (Landmark) Sync(lines []script.Line, marks []Mark) ([]subtitle.Cue, error) {
	times := map[string]int64{}
	for _, m := range filter(marks, MarkSSML) {
		times[m.Value] = m.TimeMillis
	}

	var cues []subtitle.Cue
	for i, line := range lines {
		start, ok := times[ssml.StartMark(i)]
		if !ok {
			continue
		}
		end, ok := times[ssml.EndMark(i)]
		if !ok {
			continue
		}
		nodes, err := markup.ParseLine(line.Text, line.Num)
		if err != nil {
			return nil, err
		}
		if len(markup.Words(nodes)) == 0 {
			continue
		}
		cues = append(cues, subtitle.Cue{
			StartMillis: start,
			EndMillis:   end,
			Text:        markup.SubtitleText(nodes),
		})
	}
	return cues, nil
}

// WordCount walks the word events of a page in order, giving each line as
// many events as it has words. It relies on the engine reporting words the
// way the markup splits them; a numeral read as several words is covered by
// counting the tokens of each event, other tokenizations are not.
type WordCount struct{}

func (WordCount) Sync(lines []script.Line, marks []Mark) ([]subtitle.Cue, error) {
	events := filter(marks, MarkWord)
	cursor := 0

	var cues []subtitle.Cue
	for _, line := range lines {
		nodes, err := markup.ParseLine(line.Text, line.Num)
		if err != nil {
			return nil, err
		}
		words := markup.Words(nodes)
		if len(words) == 0 {
			continue
		}

		if cursor >= len(events) {
			return nil, &SyncError{Line: line.Num, Expected: words[0]}
		}
		if !sameWord(words[0], events[cursor].Value) {
			return nil, &SyncError{
				Line:     line.Num,
				Expected: words[0],
				Actual:   events[cursor].Value,
			}
		}

		first := cursor
		for consumed := 0; consumed < len(words); cursor++ {
			if cursor >= len(events) {
				return nil, &SyncError{
					Line:     line.Num,
					Expected: strings.Join(words[consumed:], " "),
				}
			}
			consumed += len(strings.Fields(events[cursor].Value))
		}

		start := events[first].TimeMillis
		if n := len(cues); n > 0 {
			if prev := &cues[n-1]; prev.EndMillis >= start-gapMillis {
				prev.EndMillis = max(prev.StartMillis, min(prev.EndMillis+lingerMillis, start-gapMillis))
			}
		}
		cues = append(cues, subtitle.Cue{
			StartMillis: start,
			EndMillis:   events[cursor-1].TimeMillis,
			Text:        markup.SubtitleText(nodes),
		})
	}
	return cues, nil
}

// sameWord compares a source word with an engine word. They match when
// equal, or when one becomes the other by dropping a single punctuation or
// symbol character from its start or end.
func sameWord(expected, actual string) bool {
	if expected == actual {
		return true
	}
	return trimsTo(expected, actual) || trimsTo(actual, expected)
}

// reports whether removing one punctuation rune from an end of long gives short
func trimsTo(long, short string) bool {
	if r, size := utf8.DecodeRuneInString(long); size > 0 && isPunct(r) && long[size:] == short {
		return true
	}
	if r, size := utf8.DecodeLastRuneInString(long); size > 0 && isPunct(r) && long[:len(long)-size] == short {
		return true
	}
	return false
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
