// Package markup parses the inline narration markup of script lines and
// renders the resulting node forest as SSML, spoken words and subtitle text.
package markup

import (
	"strconv"
	"strings"
)

// Node is one element of a parsed line. The set of implementations is closed:
// every node renders itself in all three views.
type Node interface {
	// SSML renders the node for the speech engine.
	SSML(neural bool) string
	// Words returns the spoken word tokens of the node.
	Words() []string
	// Subtitle renders the node as caption text.
	Subtitle() string

	node()
}

// plain word
type Word struct {
	Text string
}

// one of - . , : ; ! ? "
type Delimiter struct {
	Char string
}

// a whitespace run, its length is not kept
type Space struct{}

// pause of Units*100 milliseconds
type Break struct {
	Units int
}

// *text*
type Emphasis struct {
	Children []Node
}

// #slow/text/
type Slow struct {
	Children []Node
}

// #low/text/
type Low struct {
	Children []Node
}

// #high/text/
type High struct {
	Children []Node
}

// #ph/text/x-sampa/
type Phoneme struct {
	Text     string
	Phonetic string
}

// @letters@
type SpellOut struct {
	Letters string
}

// #sub/spoken/caption/: children are spoken, Caption is shown.
type SubtitleOverride struct {
	Children []Node
	Caption  string
}

func (Word) node()             {}
func (Delimiter) node()        {}
func (Space) node()            {}
func (Break) node()            {}
func (Emphasis) node()         {}
func (Slow) node()             {}
func (Low) node()              {}
func (High) node()             {}
func (Phoneme) node()          {}
func (SpellOut) node()         {}
func (SubtitleOverride) node() {}

func (n Word) SSML(bool) string { return n.Text }
func (n Word) Words() []string  { return []string{n.Text} }
func (n Word) Subtitle() string { return n.Text }

func (n Delimiter) SSML(bool) string { return n.Char }
func (Delimiter) Words() []string    { return nil }
func (n Delimiter) Subtitle() string { return n.Char }

func (Space) SSML(bool) string { return " " }
func (Space) Words() []string  { return nil }
func (Space) Subtitle() string { return " " }

func (n Break) SSML(bool) string {
	return `<break time="` + strconv.Itoa(n.Millis()) + `ms" />`
}
func (Break) Words() []string  { return nil }
func (Break) Subtitle() string { return "" }

// Millis is the pause length in milliseconds.
func (n Break) Millis() int { return n.Units * 100 }

func (n Emphasis) SSML(neural bool) string {
	inner := SSML(n.Children, neural)
	if neural {
		return `<prosody rate="90%" volume="loud">` + inner + `</prosody>`
	}
	return `<prosody pitch="high" volume="loud">` + inner + `</prosody>`
}
func (n Emphasis) Words() []string  { return Words(n.Children) }
func (n Emphasis) Subtitle() string { return SubtitleText(n.Children) }

func (n Slow) SSML(neural bool) string {
	return `<prosody rate="80%">` + SSML(n.Children, neural) + `</prosody>`
}
func (n Slow) Words() []string  { return Words(n.Children) }
func (n Slow) Subtitle() string { return SubtitleText(n.Children) }

// pitch is not supported by neural voices, slow down instead
func (n Low) SSML(neural bool) string {
	inner := SSML(n.Children, neural)
	if neural {
		return `<prosody rate="80%">` + inner + `</prosody>`
	}
	return `<prosody pitch="low">` + inner + `</prosody>`
}
func (n Low) Words() []string  { return Words(n.Children) }
func (n Low) Subtitle() string { return SubtitleText(n.Children) }

// pitch is not supported by neural voices, speed up instead
func (n High) SSML(neural bool) string {
	inner := SSML(n.Children, neural)
	if neural {
		return `<prosody rate="120%">` + inner + `</prosody>`
	}
	return `<prosody pitch="high">` + inner + `</prosody>`
}
func (n High) Words() []string  { return Words(n.Children) }
func (n High) Subtitle() string { return SubtitleText(n.Children) }

func (n Phoneme) SSML(bool) string {
	return `<phoneme alphabet="x-sampa" ph="` + n.Phonetic + `">` + n.Text + `</phoneme>`
}
func (n Phoneme) Words() []string  { return strings.Fields(n.Text) }
func (n Phoneme) Subtitle() string { return n.Text }

func (n SpellOut) SSML(bool) string {
	return `<say-as interpret-as="characters">` + n.Letters + `</say-as>`
}
func (n SpellOut) Words() []string  { return strings.Fields(n.Letters) }
func (n SpellOut) Subtitle() string { return n.Letters }

func (n SubtitleOverride) SSML(neural bool) string { return SSML(n.Children, neural) }
func (n SubtitleOverride) Words() []string         { return Words(n.Children) }
func (n SubtitleOverride) Subtitle() string        { return n.Caption }

// SSML concatenates the speech markup of a forest.
func SSML(nodes []Node, neural bool) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(n.SSML(neural))
	}
	return sb.String()
}

// Words collects the spoken tokens of a forest in order.
func Words(nodes []Node) []string {
	var words []string
	for _, n := range nodes {
		words = append(words, n.Words()...)
	}
	return words
}

// SubtitleText concatenates the caption text of a forest.
func SubtitleText(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(n.Subtitle())
	}
	return sb.String()
}
