// Package ssml compiles the narration of one page into a single SSML
// document with per-line marks and a fingerprint for caching the audio.
package ssml

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/mgpai22/pdf2video/internal/markup"
	"github.com/mgpai22/pdf2video/internal/script"
)

// leading silence of every document
const leadingPause = `<break time="200ms" />`

// synthesis settings that change the produced audio
type Profile struct {
	Voice          string
	Neural         bool
	Conversational bool
}

// compiled page narration
type Document struct {
	// SSML input for engines that accept it
	SSML string
	// plain text, one line per script line, for engines without SSML
	Plain string
	// hex sha256 over the profile and every marked line, the audio cache key
	Fingerprint string
	// number of compiled lines; line i is bracketed by StartMark(i) and EndMark(i)
	Lines int
}

// name of the mark placed before line i
func StartMark(i int) string { return fmt.Sprintf("s%d", i) }

// name of the mark placed after line i
func EndMark(i int) string { return fmt.Sprintf("e%d", i) }

// Compile renders the lines of a page into one SSML document. Any markup
// error aborts compilation.
func Compile(lines []script.Line, profile Profile) (*Document, error) {
	hash := sha256.New()
	hash.Write([]byte(profile.Voice))
	hash.Write([]byte(hashBool(profile.Neural)))
	hash.Write([]byte(hashBool(profile.Conversational)))

	var doc, plain strings.Builder
	doc.WriteString("<speak>")
	doc.WriteString(leadingPause)
	if profile.Conversational {
		doc.WriteString(`<amazon:domain name="conversational">`)
	}
	doc.WriteString("\n")

	for i, line := range lines {
		nodes, err := markup.ParseLine(line.Text, line.Num)
		if err != nil {
			return nil, err
		}
		body := markup.SSML(nodes, profile.Neural)

		chunk := `<mark name="` + StartMark(i) + `"/>` + body + "\n" +
			`<mark name="` + EndMark(i) + `"/>`
		doc.WriteString(chunk)
		hash.Write([]byte(chunk))

		plain.WriteString(StripTags(body))
		plain.WriteString("\n")
	}

	if profile.Conversational {
		doc.WriteString("</amazon:domain>")
	}
	doc.WriteString("</speak>\n")

	return &Document{
		SSML:        doc.String(),
		Plain:       plain.String(),
		Fingerprint: hex.EncodeToString(hash.Sum(nil)),
		Lines:       len(lines),
	}, nil
}

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// StripTags removes SSML tags, keeping the text between them.
func StripTags(s string) string {
	return tagRegex.ReplaceAllString(s, "")
}

// True/False is the spelling existing audio caches were keyed with
func hashBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
