// Package subsync turns timing events reported by a speech engine into
// caption cues for the lines of one page.
package subsync

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// speech mark types, as reported in Polly JSON lines
const (
	MarkSSML     = "ssml"
	MarkWord     = "word"
	MarkSentence = "sentence"
	MarkViseme   = "viseme"
)

// represents single timing event reported by a speech engine
type Mark struct {
	Type       string `json:"type"`
	Value      string `json:"value"`
	TimeMillis int64  `json:"time"`
}

// what timing information an engine can report
type Capabilities struct {
	// engine honours <mark/> landmarks and reports them as ssml marks
	Landmarks bool
	// engine reports one event per spoken word
	WordMarks bool
}

// ParseMarks reads speech marks, one JSON object per line. Blank lines are
// ignored, anything else that is not a JSON object is an error.
func ParseMarks(r io.Reader) ([]Mark, error) {
	var marks []Mark
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			return nil, fmt.Errorf("invalid speech mark on line %d: %s", lineNum, line)
		}
		res := gjson.Parse(line)
		if !res.IsObject() {
			return nil, fmt.Errorf("invalid speech mark on line %d: %s", lineNum, line)
		}
		marks = append(marks, Mark{
			Type:       res.Get("type").String(),
			Value:      res.Get("value").String(),
			TimeMillis: res.Get("time").Int(),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading speech marks: %w", err)
	}
	return marks, nil
}

// ReadMarksFile parses the speech marks stored at path.
func ReadMarksFile(path string) ([]Mark, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open speech marks: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ParseMarks(f)
}

// WriteMarks writes marks as JSON lines in the format ParseMarks reads.
func WriteMarks(w io.Writer, marks []Mark) error {
	bw := bufio.NewWriter(w)
	for _, m := range marks {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		bw.Write(data)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// marks of the given type, in stream order
func filter(marks []Mark, typ string) []Mark {
	var out []Mark
	for _, m := range marks {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}
