package markup

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyntaxError reports a malformed or unknown construct. Remaining is the
// unparsed input starting at the offending construct.
type SyntaxError struct {
	Line      int // 1-based source line, 0 if unknown
	Msg       string
	Remaining string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("on line %d: %s %q", e.Line, e.Msg, e.Remaining)
	}
	return fmt.Sprintf("%s %q", e.Msg, e.Remaining)
}

const delimiters = `-.,:;!?"`

// characters that end a plain word
const wordStops = `#*@".,:;!?`

// a directive keyword followed by a chosen delimiter and its parts
type directive struct {
	keyword string
	parts   int
	// minimum length of each part
	minLen []int
	build  func(parts []string, line int) (Node, error)
}

// longest literal prefix first; filled in init since the builders
// recurse into ParseLine
var directives []directive

func init() {
	directives = []directive{
		{
			keyword: "#slow", parts: 1, minLen: []int{1},
			build: func(p []string, line int) (Node, error) {
				children, err := ParseLine(p[0], line)
				return Slow{Children: children}, err
			},
		},
		{
			keyword: "#high", parts: 1, minLen: []int{1},
			build: func(p []string, line int) (Node, error) {
				children, err := ParseLine(p[0], line)
				return High{Children: children}, err
			},
		},
		{
			keyword: "#sub", parts: 2, minLen: []int{0, 1},
			build: func(p []string, line int) (Node, error) {
				children, err := ParseLine(p[0], line)
				return SubtitleOverride{Children: children, Caption: p[1]}, err
			},
		},
		{
			keyword: "#low", parts: 1, minLen: []int{1},
			build: func(p []string, line int) (Node, error) {
				children, err := ParseLine(p[0], line)
				return Low{Children: children}, err
			},
		},
		{
			keyword: "#ph", parts: 2, minLen: []int{1, 1},
			build: func(p []string, _ int) (Node, error) {
				return Phoneme{Text: p[0], Phonetic: p[1]}, nil
			},
		},
	}
}

// Parse parses one script line into a node forest.
func Parse(line string) ([]Node, error) {
	return ParseLine(line, 0)
}

// ParseLine is Parse with the source line number used in error reports.
func ParseLine(line string, lineNum int) ([]Node, error) {
	p := &parser{src: line, line: lineNum}
	return p.parse()
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(line string) []Node {
	nodes, err := Parse(line)
	if err != nil {
		panic(err)
	}
	return nodes
}

type parser struct {
	src  string
	pos  int
	line int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{
		Line:      p.line,
		Msg:       fmt.Sprintf(format, args...),
		Remaining: p.src[p.pos:],
	}
}

func (p *parser) parse() ([]Node, error) {
	var nodes []Node
	for p.pos < len(p.src) {
		rest := p.src[p.pos:]
		var (
			n   Node
			err error
		)
		switch c := rest[0]; {
		case c == '#':
			n, err = p.hash(rest)
		case c == '*':
			n, err = p.enclosed(rest, '*', "emphasis", func(s string) (Node, error) {
				children, err := ParseLine(s, p.line)
				return Emphasis{Children: children}, err
			})
		case c == '@':
			n, err = p.enclosed(rest, '@', "spell-out", func(s string) (Node, error) {
				return SpellOut{Letters: s}, nil
			})
		default:
			n = p.plain(rest)
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (p *parser) hash(rest string) (Node, error) {
	for _, d := range directives {
		if strings.HasPrefix(rest, d.keyword) {
			return p.directive(rest, d)
		}
	}

	digits := 1
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 1 {
		return nil, p.errorf("unrecognized directive")
	}
	units, err := strconv.Atoi(rest[1:digits])
	if err != nil {
		return nil, p.errorf("invalid pause length")
	}
	p.pos += digits
	return Break{Units: units}, nil
}

// directive reads KEYWORD<d>PART<d>[PART<d>] where <d> is any single
// character. Each part ends at the first following occurrence of <d>.
func (p *parser) directive(rest string, d directive) (Node, error) {
	body := rest[len(d.keyword):]
	delim, size := utf8.DecodeRuneInString(body)
	if size == 0 {
		return nil, p.errorf("malformed %s directive", d.keyword)
	}
	body = body[size:]

	parts := make([]string, 0, d.parts)
	for i := 0; i < d.parts; i++ {
		end := strings.IndexRune(body, delim)
		if end < d.minLen[i] {
			return nil, p.errorf("malformed %s directive", d.keyword)
		}
		parts = append(parts, body[:end])
		body = body[end+size:]
	}

	n, err := d.build(parts, p.line)
	if err != nil {
		return nil, err
	}
	p.pos += len(rest) - len(body)
	return n, nil
}

// enclosed reads <c>TEXT<c> with a non-empty TEXT free of <c>.
func (p *parser) enclosed(
	rest string,
	c byte,
	what string,
	build func(string) (Node, error),
) (Node, error) {
	end := strings.IndexByte(rest[1:], c)
	if end < 1 {
		return nil, p.errorf("malformed %s", what)
	}
	n, err := build(rest[1 : 1+end])
	if err != nil {
		return nil, err
	}
	p.pos += end + 2
	return n, nil
}

func (p *parser) plain(rest string) Node {
	r, size := utf8.DecodeRuneInString(rest)
	if unicode.IsSpace(r) {
		end := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsSpace(r) })
		if end < 0 {
			end = len(rest)
		}
		p.pos += end
		return Space{}
	}

	// negative numbers are words, not a dash and a number
	if r == '-' && len(rest) > 1 && isDigit(rest[1]) {
		end := 2
		for end < len(rest) && isDigit(rest[end]) {
			end++
		}
		p.pos += end
		return Word{Text: rest[:end]}
	}

	if strings.ContainsRune(delimiters, r) {
		p.pos += size
		return Delimiter{Char: rest[:size]}
	}

	end := strings.IndexFunc(rest, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(wordStops, r)
	})
	if end < 0 {
		end = len(rest)
	}
	p.pos += end
	return Word{Text: rest[:end]}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
