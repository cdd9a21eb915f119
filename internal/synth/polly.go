package synth

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/polly"

	"github.com/mgpai22/pdf2video/internal/ssml"
	"github.com/mgpai22/pdf2video/internal/subsync"
)

// speech mark types requested from polly
var pollyMarkTypes = []string{
	polly.SpeechMarkTypeSentence,
	polly.SpeechMarkTypeWord,
	polly.SpeechMarkTypeViseme,
	polly.SpeechMarkTypeSsml,
}

// subset of the polly client used here
type pollyClient interface {
	SynthesizeSpeechWithContext(
		ctx aws.Context,
		input *polly.SynthesizeSpeechInput,
		opts ...request.Option,
	) (*polly.SynthesizeSpeechOutput, error)
}

// implements MarkEngine using Amazon Polly
type PollyEngine struct {
	client  pollyClient
	profile ssml.Profile
}

func NewPollyEngine(opts Options) (*PollyEngine, error) {
	sessOpts := session.Options{SharedConfigState: session.SharedConfigEnable}
	if opts.AWSProfile != "" && opts.AWSProfile != "default" {
		sessOpts.Profile = opts.AWSProfile
	}
	if opts.AWSRegion != "" {
		sessOpts.Config.Region = aws.String(opts.AWSRegion)
	}

	sess, err := session.NewSessionWithOptions(sessOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &PollyEngine{
		client:  polly.New(sess),
		profile: opts.Profile,
	}, nil
}

func (e *PollyEngine) Name() string { return string(ProviderPolly) }

func (e *PollyEngine) Capabilities() subsync.Capabilities {
	return subsync.Capabilities{Landmarks: true, WordMarks: true}
}

func (e *PollyEngine) Synthesize(ctx context.Context, doc *ssml.Document, outPath string) error {
	input := e.input(doc)
	input.OutputFormat = aws.String(polly.OutputFormatMp3)
	return e.synthesize(ctx, input, outPath)
}

func (e *PollyEngine) SpeechMarks(ctx context.Context, doc *ssml.Document, outPath string) error {
	input := e.input(doc)
	input.OutputFormat = aws.String(polly.OutputFormatJson)
	input.SpeechMarkTypes = aws.StringSlice(pollyMarkTypes)
	return e.synthesize(ctx, input, outPath)
}

func (e *PollyEngine) input(doc *ssml.Document) *polly.SynthesizeSpeechInput {
	engine := polly.EngineStandard
	if e.profile.Neural {
		engine = polly.EngineNeural
	}
	return &polly.SynthesizeSpeechInput{
		Engine:   aws.String(engine),
		Text:     aws.String(doc.SSML),
		TextType: aws.String(polly.TextTypeSsml),
		VoiceId:  aws.String(e.profile.Voice),
	}
}

func (e *PollyEngine) synthesize(ctx context.Context, input *polly.SynthesizeSpeechInput, outPath string) error {
	out, err := e.client.SynthesizeSpeechWithContext(ctx, input)
	if err != nil {
		return fmt.Errorf("polly synthesis failed: %w", err)
	}
	defer out.AudioStream.Close()
	return writeStream(outPath, out.AudioStream)
}
