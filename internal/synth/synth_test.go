package synth

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/polly"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/mgpai22/pdf2video/internal/ssml"
)

type fakePolly struct {
	inputs []*polly.SynthesizeSpeechInput
	body   string
	err    error
}

func (f *fakePolly) SynthesizeSpeechWithContext(
	_ aws.Context,
	input *polly.SynthesizeSpeechInput,
	_ ...request.Option,
) (*polly.SynthesizeSpeechOutput, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return &polly.SynthesizeSpeechOutput{
		AudioStream: io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

var doc = &ssml.Document{SSML: "<speak>hi</speak>\n", Plain: "hi\n", Lines: 1}

func TestPollySynthesize(t *testing.T) {
	client := &fakePolly{body: "mp3 bytes"}
	engine := &PollyEngine{client: client, profile: ssml.Profile{Voice: "Joanna", Neural: true}}

	out := filepath.Join(t.TempDir(), "a.mp3")
	if err := engine.Synthesize(context.Background(), doc, out); err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "mp3 bytes" {
		t.Errorf("audio = %q", data)
	}

	in := client.inputs[0]
	if aws.StringValue(in.Engine) != polly.EngineNeural ||
		aws.StringValue(in.OutputFormat) != polly.OutputFormatMp3 ||
		aws.StringValue(in.TextType) != polly.TextTypeSsml ||
		aws.StringValue(in.VoiceId) != "Joanna" ||
		aws.StringValue(in.Text) != doc.SSML {
		t.Errorf("unexpected input %v", in)
	}
	if len(in.SpeechMarkTypes) != 0 {
		t.Errorf("audio request should not ask for speech marks")
	}
}

func TestPollySpeechMarks(t *testing.T) {
	client := &fakePolly{body: `{"time":0,"type":"ssml","value":"s0"}` + "\n"}
	engine := &PollyEngine{client: client, profile: ssml.Profile{Voice: "Joanna"}}

	out := filepath.Join(t.TempDir(), "a.mrk")
	if err := engine.SpeechMarks(context.Background(), doc, out); err != nil {
		t.Fatalf("SpeechMarks returned error: %v", err)
	}

	in := client.inputs[0]
	if aws.StringValue(in.Engine) != polly.EngineStandard {
		t.Errorf("Engine = %s, want standard", aws.StringValue(in.Engine))
	}
	if aws.StringValue(in.OutputFormat) != polly.OutputFormatJson {
		t.Errorf("OutputFormat = %s, want json", aws.StringValue(in.OutputFormat))
	}
	if diff := cmp.Diff(pollyMarkTypes, aws.StringValueSlice(in.SpeechMarkTypes)); diff != "" {
		t.Errorf("mark types mismatch (-want +got):\n%s", diff)
	}
}

func TestPollyError(t *testing.T) {
	boom := errors.New("throttled")
	engine := &PollyEngine{client: &fakePolly{err: boom}}
	err := engine.Synthesize(context.Background(), doc, filepath.Join(t.TempDir(), "a.mp3"))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped polly error, got %v", err)
	}
}

func TestCapabilities(t *testing.T) {
	if caps := (&PollyEngine{}).Capabilities(); !caps.Landmarks || !caps.WordMarks {
		t.Errorf("polly capabilities = %+v", caps)
	}
	if caps := (&OpenAIEngine{}).Capabilities(); caps.Landmarks || caps.WordMarks {
		t.Errorf("openai capabilities = %+v", caps)
	}
	if caps := (&GeminiEngine{}).Capabilities(); caps.Landmarks || caps.WordMarks {
		t.Errorf("gemini capabilities = %+v", caps)
	}
}

func TestFactory(t *testing.T) {
	if _, err := Factory(context.Background(), Provider("espeak"), "", Options{}); err == nil {
		t.Error("expected error for unknown engine")
	}
	if _, err := Factory(context.Background(), ProviderOpenAI, "", Options{}); err == nil {
		t.Error("expected error for missing OpenAI key")
	}
	if _, err := Factory(context.Background(), ProviderGemini, "key", Options{}); err == nil {
		t.Error("expected error for gemini without encoder")
	}
}

func TestInlineAudio(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{InlineData: &genai.Blob{Data: []byte{1, 2}}},
				{Text: "ignored"},
				{InlineData: &genai.Blob{Data: []byte{3}}},
			}},
		}},
	}
	pcm, err := inlineAudio(resp)
	if err != nil {
		t.Fatalf("inlineAudio returned error: %v", err)
	}
	if diff := cmp.Diff([]byte{1, 2, 3}, pcm); diff != "" {
		t.Errorf("pcm mismatch (-want +got):\n%s", diff)
	}

	if _, err := inlineAudio(&genai.GenerateContentResponse{}); err == nil {
		t.Error("expected error for empty response")
	}
}
