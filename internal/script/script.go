// Package script reads narration script files. A script is a sequence of
// pages, each started by a "#page" line and optionally named.
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// single narration line with its 1-based position in the script file
type Line struct {
	Text string
	Num  int
}

// narration of one PDF page
type Page struct {
	Name  string
	Lines []Line
}

// parsed script file
type Script struct {
	Pages []Page
	// page name -> index in Pages
	Names map[string]int
}

var pageLineRegex = regexp.MustCompile(`^#page(?:\s+(?P<name>[a-zA-Z_]+(?:[1-9]\d*)?))?\s*$`)

// reads and parses a script file
func ReadFile(path string) (*Script, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not read the script file %q: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	return Read(file)
}

// parses a script from r
func Read(r io.Reader) (*Script, error) {
	s := &Script{Names: map[string]int{}}

	var current *Page
	flush := func(lineNum int) error {
		if current == nil {
			return nil
		}
		if current.Name != "" {
			if _, dup := s.Names[current.Name]; dup {
				return fmt.Errorf(
					"on line %d: #page named %q defined twice",
					lineNum,
					current.Name,
				)
			}
			s.Names[current.Name] = len(s.Pages)
		}
		s.Pages = append(s.Pages, *current)
		return nil
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}

		if m := pageLineRegex.FindStringSubmatch(line); m != nil {
			if err := flush(lineNum); err != nil {
				return nil, err
			}
			current = &Page{Name: m[pageLineRegex.SubexpIndex("name")]}
			continue
		}
		if strings.HasPrefix(line, "#page") {
			return nil, fmt.Errorf("on line %d: malformed #page line: %s", lineNum, line)
		}
		if current == nil {
			return nil, fmt.Errorf(
				"on line %d: all text should be after a \"#page\" line",
				lineNum,
			)
		}
		current.Lines = append(current.Lines, Line{Text: line, Num: lineNum})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading script: %w", err)
	}
	if err := flush(lineNum); err != nil {
		return nil, err
	}

	return s, nil
}

