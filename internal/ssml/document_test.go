package ssml

import (
	"errors"
	"testing"

	"github.com/mgpai22/pdf2video/internal/markup"
	"github.com/mgpai22/pdf2video/internal/script"
)

var sampleLines = []script.Line{
	{Text: "Hello *world*.", Num: 2},
	{Text: "Pause#5 here.", Num: 3},
}

func TestCompile(t *testing.T) {
	doc, err := Compile(sampleLines, Profile{Voice: "Joanna"})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	want := `<speak><break time="200ms" />` + "\n" +
		`<mark name="s0"/>Hello <prosody pitch="high" volume="loud">world</prosody>.` + "\n" +
		`<mark name="e0"/>` +
		`<mark name="s1"/>Pause<break time="500ms" /> here.` + "\n" +
		`<mark name="e1"/>` +
		"</speak>\n"
	if doc.SSML != want {
		t.Errorf("SSML =\n%s\nwant\n%s", doc.SSML, want)
	}
	if doc.Plain != "Hello world.\nPause here.\n" {
		t.Errorf("Plain = %q", doc.Plain)
	}
	if doc.Lines != 2 {
		t.Errorf("Lines = %d, want 2", doc.Lines)
	}
	if len(doc.Fingerprint) != 64 {
		t.Errorf("Fingerprint %q is not a hex sha256", doc.Fingerprint)
	}
}

func TestCompileConversational(t *testing.T) {
	doc, err := Compile(sampleLines[:1], Profile{Voice: "Matthew", Neural: true, Conversational: true})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	want := `<speak><break time="200ms" /><amazon:domain name="conversational">` + "\n" +
		`<mark name="s0"/>Hello <prosody rate="90%" volume="loud">world</prosody>.` + "\n" +
		`<mark name="e0"/>` +
		"</amazon:domain></speak>\n"
	if doc.SSML != want {
		t.Errorf("SSML =\n%s\nwant\n%s", doc.SSML, want)
	}
}

func TestFingerprint(t *testing.T) {
	base := Profile{Voice: "Joanna"}
	fingerprint := func(lines []script.Line, p Profile) string {
		t.Helper()
		doc, err := Compile(lines, p)
		if err != nil {
			t.Fatalf("Compile returned error: %v", err)
		}
		return doc.Fingerprint
	}

	reference := fingerprint(sampleLines, base)
	if again := fingerprint(sampleLines, base); again != reference {
		t.Fatalf("fingerprint not deterministic: %s != %s", again, reference)
	}

	renumbered := []script.Line{
		{Text: sampleLines[0].Text, Num: 40},
		{Text: sampleLines[1].Text, Num: 41},
	}
	if got := fingerprint(renumbered, base); got != reference {
		t.Errorf("source line numbers must not change the fingerprint")
	}

	variants := map[string]string{
		"voice":          fingerprint(sampleLines, Profile{Voice: "Matthew"}),
		"neural":         fingerprint(sampleLines, Profile{Voice: "Joanna", Neural: true}),
		"conversational": fingerprint(sampleLines, Profile{Voice: "Joanna", Conversational: true}),
		"order":          fingerprint([]script.Line{sampleLines[1], sampleLines[0]}, base),
		"text":           fingerprint([]script.Line{sampleLines[0]}, base),
	}
	for name, got := range variants {
		if got == reference {
			t.Errorf("changing %s did not change the fingerprint", name)
		}
	}
}

func TestCompileSyntaxError(t *testing.T) {
	lines := []script.Line{{Text: "fine"}, {Text: "#slowXtext", Num: 12}}
	_, err := Compile(lines, Profile{Voice: "Joanna"})
	var synErr *markup.SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *markup.SyntaxError, got %v", err)
	}
	if synErr.Line != 12 {
		t.Errorf("Line = %d, want 12", synErr.Line)
	}
}

func TestStripTags(t *testing.T) {
	in := `a <prosody rate="80%">b</prosody><break time="100ms" />c`
	if got := StripTags(in); got != "a bc" {
		t.Errorf("StripTags = %q, want %q", got, "a bc")
	}
}
