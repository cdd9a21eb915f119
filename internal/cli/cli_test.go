package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/mgpai22/pdf2video/internal/config"
	"github.com/mgpai22/pdf2video/internal/translate"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApplyFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addEngineFlags(cmd.Flags())
	addToolFlags(cmd.Flags())
	cmd.Flags().Int("concurrency", 1, "")

	for name, value := range map[string]string{
		"voice":          "Matthew",
		"conversational": "true",
		"audio-cache":    "/tmp/audio",
		"pdftoppm":       "/opt/poppler/pdftoppm",
		"concurrency":    "0",
	} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("Set(%s): %v", name, err)
		}
	}

	c := config.Default()
	c.AWSProfile = "from-file"
	if err := applyFlags(cmd, c); err != nil {
		t.Fatalf("applyFlags returned error: %v", err)
	}

	if c.Voice != "Matthew" || !c.Conversational || !c.Neural {
		t.Errorf("voice settings not applied: %+v", c)
	}
	if c.AudioCache != "/tmp/audio" || c.Tools.Pdftoppm != "/opt/poppler/pdftoppm" {
		t.Errorf("paths not applied: %+v", c)
	}
	if c.AWSProfile != "from-file" {
		t.Errorf("unset flag overrode the file value: %s", c.AWSProfile)
	}
	if c.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want it raised to 1", c.Concurrency)
	}
}

func TestApplyFlagsValidates(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addEngineFlags(cmd.Flags())
	_ = cmd.Flags().Set("voice", "Nobody")

	if err := applyFlags(cmd, config.Default()); err == nil {
		t.Error("expected error for unknown voice")
	}
}

func TestSSMLCommand(t *testing.T) {
	scriptPath := writeFile(t, "talk.txt", "#page intro\nHello *world*.\n")

	out, err := execute(t, "", "ssml", scriptPath, "intro")
	if err != nil {
		t.Fatalf("ssml returned error: %v", err)
	}

	lines := strings.SplitN(out, "\n", 3)
	if lines[0] != "% #page 1 intro" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "% fingerprint ") || len(lines[1]) != len("% fingerprint ")+64 {
		t.Errorf("fingerprint line = %q", lines[1])
	}
	want := `<mark name="s0"/>Hello <prosody pitch="high" volume="loud">world</prosody>.`
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}

func TestSubsCommand(t *testing.T) {
	scriptPath := writeFile(t, "talk.txt", "#page\nHello *world*.\n#page outro\nBye.\n")
	marksPath := writeFile(t, "marks.json",
		`{"time":100,"type":"ssml","start":0,"end":1,"value":"s0"}`+"\n"+
			`{"time":150,"type":"word","start":0,"end":1,"value":"Hello"}`+"\n"+
			`{"time":900,"type":"ssml","start":0,"end":1,"value":"e0"}`+"\n")

	out, err := execute(t, "", "subs", scriptPath, "1", marksPath)
	if err != nil {
		t.Fatalf("subs returned error: %v", err)
	}
	want := "1\n00:00:00,100 --> 00:00:00,900\nHello world.\n\n"
	if out != want {
		t.Errorf("subs output = %q, want %q", out, want)
	}

	if _, err := execute(t, "", "subs", scriptPath, "1,outro", marksPath); err == nil {
		t.Error("expected error when selecting two pages")
	}
}

func TestKeySetCommand(t *testing.T) {
	var stored [][2]string
	storeAPIKey = func(provider, key string) error {
		stored = append(stored, [2]string{provider, key})
		return nil
	}
	t.Cleanup(func() { storeAPIKey = config.StoreAPIKey })

	out, err := execute(t, "  sk-test  \n", "key", "set", "OpenAI")
	if err != nil {
		t.Fatalf("key set returned error: %v", err)
	}
	if diff := cmp.Diff([][2]string{{"openai", "sk-test"}}, stored); diff != "" {
		t.Errorf("stored keys mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out, "Stored openai API key") {
		t.Errorf("output = %q", out)
	}

	if _, err := execute(t, "\n", "key", "set", "gemini"); err == nil {
		t.Error("expected error for an empty key")
	}

	boom := errors.New("no keyring")
	storeAPIKey = func(string, string) error { return boom }
	if _, err := execute(t, "k\n", "key", "set", "gemini"); !errors.Is(err, boom) {
		t.Errorf("expected keyring error, got %v", err)
	}
}

func TestLicenseCommand(t *testing.T) {
	out, err := execute(t, "", "license")
	if err != nil {
		t.Fatalf("license returned error: %v", err)
	}
	if !strings.Contains(out, "MIT License") {
		t.Errorf("license output = %q", out)
	}

	t.Cleanup(func() { _ = licenseCmd.Flags().Set("notices", "false") })
	out, err = execute(t, "", "license", "--notices")
	if err != nil {
		t.Fatalf("license --notices returned error: %v", err)
	}
	if !strings.Contains(out, "ffmpeg") || strings.Contains(out, "MIT License") {
		t.Errorf("license --notices output = %q", out)
	}
}

func TestTranslatedPath(t *testing.T) {
	tests := []struct {
		input   string
		overlay bool
		want    string
	}{
		{"video.srt", false, "video.fi.srt"},
		{"out/video.vtt", false, "out/video.fi.vtt"},
		{"video.vtt", true, "video.fi.overlay.vtt"},
	}
	for _, tt := range tests {
		if got := translatedPath(tt.input, "fi", tt.overlay); got != tt.want {
			t.Errorf("translatedPath(%q, %v) = %q, want %q", tt.input, tt.overlay, got, tt.want)
		}
	}
}

func TestValidateTranslateModel(t *testing.T) {
	tests := []struct {
		provider translate.Provider
		model    string
		wantErr  bool
	}{
		{translate.ProviderGemini, "gemini-2.5-flash", false},
		{translate.ProviderOpenAI, "gpt-5-mini", false},
		{translate.ProviderAnthropic, "claude-haiku-4-5", false},
		{translate.ProviderGemini, "gpt-5", true},
		{translate.Provider("deepl"), "any", true},
	}
	for _, tt := range tests {
		err := validateTranslateModel(tt.provider, tt.model)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateTranslateModel(%s, %s) error = %v, wantErr %v", tt.provider, tt.model, err, tt.wantErr)
		}
	}
}
