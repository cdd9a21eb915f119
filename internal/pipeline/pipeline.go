// Package pipeline renders a narrated video from a PDF and a script.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/pdf2video/internal/cache"
	"github.com/mgpai22/pdf2video/internal/config"
	"github.com/mgpai22/pdf2video/internal/logging"
	"github.com/mgpai22/pdf2video/internal/script"
	"github.com/mgpai22/pdf2video/internal/ssml"
	"github.com/mgpai22/pdf2video/internal/subsync"
	"github.com/mgpai22/pdf2video/internal/subtitle"
	"github.com/mgpai22/pdf2video/internal/synth"
	"github.com/mgpai22/pdf2video/internal/transcribe"
	"github.com/mgpai22/pdf2video/internal/translate"
)

// turns PDF pages into images, implemented by media.Rasterizer
type Rasterizer interface {
	PageCount(ctx context.Context, pdfPath string) (int, error)
	Rasterize(ctx context.Context, pdfPath string, page int, outBase string) (string, error)
}

// builds clips and the final video, implemented by media.Assembler
type Assembler interface {
	MakeClip(ctx context.Context, imagePath, audioPath, outPath string) error
	AddSubtitles(ctx context.Context, clipPath, srtPath, outPath string) error
	Concat(ctx context.Context, clips []string, listPath, outPath string) error
	ExportVTT(ctx context.Context, videoPath, vttPath string) error
}

// measures media files, implemented by media.Prober
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// one render request
type Job struct {
	PDF    string
	Script string
	Output string
	// PDF pages in script order, "all" or a list like "1,3,4-7"
	Pages string
	// script pages to render, see script.Script.Select
	Only string
	// language of an extra translated caption file, empty for none
	TranslateTo string
}

// renders jobs with a fixed set of collaborators
type Runner struct {
	Config *config.Config
	Engine synth.Engine
	// times words for engines without speech marks
	Transcriber transcribe.Transcriber
	// required when a job has TranslateTo set
	Translator translate.Translator

	Rasterizer Rasterizer
	Assembler  Assembler
	Prober     Prober
	Logger     *logging.Logger
}

// output of one rendered page
type pageResult struct {
	clip     string
	cues     []subtitle.Cue
	duration time.Duration
}

// Run renders job.Output. Temporary files are removed when it returns.
func (r *Runner) Run(ctx context.Context, job Job) error {
	if !strings.HasSuffix(job.Output, ".mp4") {
		return fmt.Errorf("the output file name must end with .mp4: %s", job.Output)
	}
	if job.TranslateTo != "" && r.Translator == nil {
		return fmt.Errorf("translating captions requires a translator")
	}
	if _, ok := r.Engine.(synth.MarkEngine); !ok && r.Transcriber == nil && !r.Config.IgnoreSubtitles {
		return fmt.Errorf("the %s engine reports no speech marks and no transcriber is configured", r.Engine.Name())
	}

	s, err := script.ReadFile(job.Script)
	if err != nil {
		return err
	}

	pages, err := script.PageRange(job.Pages, func() (int, error) {
		return r.Rasterizer.PageCount(ctx, job.PDF)
	})
	if err != nil {
		return err
	}
	if len(pages) != len(s.Pages) {
		return fmt.Errorf(
			"the PDF page range has %d pages but the script has %d #pages",
			len(pages),
			len(s.Pages),
		)
	}

	selected, err := s.Select(job.Only)
	if err != nil {
		return err
	}

	temp := &tempFiles{}
	defer temp.removeAll()

	r.Logger.Infow("Rendering video",
		"pdf", job.PDF,
		"script", job.Script,
		"output", job.Output,
		"pages", len(selected),
		"engine", r.Engine.Name(),
		"concurrency", r.Config.Concurrency,
	)

	store := cache.NewStore(r.Config.AudioCache, r.Engine.Name())
	results := make([]pageResult, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Config.Concurrency, 1))
	for i, idx := range selected {
		g.Go(func() error {
			res, err := r.renderPage(gctx, store, temp, job.PDF, pages[idx], idx, s.Pages[idx])
			if err != nil {
				return fmt.Errorf("page %d: %w", idx+1, err)
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	clips := make([]string, len(results))
	hasCaptions := false
	for i, res := range results {
		clips[i] = res.clip
		hasCaptions = hasCaptions || len(res.cues) > 0
	}

	listPath := temp.add(r.Config.TempPrefix + ".lst")
	if err := r.Assembler.Concat(ctx, clips, listPath, job.Output); err != nil {
		return fmt.Errorf("failed to join clips: %w", err)
	}

	base := strings.TrimSuffix(job.Output, ".mp4")
	if hasCaptions {
		if err := r.Assembler.ExportVTT(ctx, job.Output, base+".vtt"); err != nil {
			return fmt.Errorf("failed to export captions: %w", err)
		}
	}

	if job.TranslateTo != "" && hasCaptions {
		if err := r.writeTranslation(ctx, results, job.TranslateTo, base); err != nil {
			return err
		}
	}

	r.Logger.Infow("Video written", "output", job.Output)
	return nil
}

func (r *Runner) renderPage(
	ctx context.Context,
	store *cache.Store,
	temp *tempFiles,
	pdfPath string,
	pdfPage, idx int,
	page script.Page,
) (*pageResult, error) {
	base := fmt.Sprintf("%s-%d", r.Config.TempPrefix, idx)

	image, err := r.Rasterizer.Rasterize(ctx, pdfPath, pdfPage, base)
	if err != nil {
		return nil, err
	}
	temp.add(image)

	doc, err := ssml.Compile(page.Lines, r.profile())
	if err != nil {
		return nil, err
	}

	audio, err := store.Ensure(ctx, doc.Fingerprint, ".mp3", func(ctx context.Context, path string) error {
		r.Logger.Debugw("Synthesizing speech", "page", idx+1, "fingerprint", doc.Fingerprint)
		return r.Engine.Synthesize(ctx, doc, path)
	})
	if err != nil {
		return nil, err
	}

	var cues []subtitle.Cue
	if !r.Config.IgnoreSubtitles {
		cues, err = r.captions(ctx, store, doc, audio, page)
		if err != nil {
			return nil, err
		}
	}

	clip := temp.add(base + ".mp4")
	if len(cues) == 0 {
		if err := r.Assembler.MakeClip(ctx, image, audio, clip); err != nil {
			return nil, err
		}
	} else {
		bare := temp.add(fmt.Sprintf("%s-d%d.mp4", r.Config.TempPrefix, idx))
		if err := r.Assembler.MakeClip(ctx, image, audio, bare); err != nil {
			return nil, err
		}

		srt := temp.add(base + ".srt")
		track := &subtitle.Track{Cues: wrapCues(cues, r.Config.CaptionWidth)}
		if err := (&subtitle.SRTWriter{}).Write(track, srt); err != nil {
			return nil, err
		}
		if err := r.Assembler.AddSubtitles(ctx, bare, srt, clip); err != nil {
			return nil, err
		}
	}

	duration, err := r.Prober.Duration(ctx, clip)
	if err != nil {
		return nil, err
	}
	r.Logger.Infow("Page rendered",
		"page", idx+1,
		"pdf_page", pdfPage,
		"name", page.Name,
		"captions", len(cues),
		"duration", duration.String(),
	)

	return &pageResult{clip: clip, cues: cues, duration: duration}, nil
}

// captions times the lines of a page against its cached marks. The cues
// are rebuilt every run since caption text is not part of the fingerprint.
func (r *Runner) captions(
	ctx context.Context,
	store *cache.Store,
	doc *ssml.Document,
	audio string,
	page script.Page,
) ([]subtitle.Cue, error) {
	marks, err := r.marks(ctx, store, doc, audio)
	if err != nil {
		return nil, err
	}
	return subsync.ForCapabilities(r.Engine.Capabilities()).Sync(page.Lines, marks)
}

// marks returns the timing events of a page, cached as <fingerprint>.mrk
func (r *Runner) marks(
	ctx context.Context,
	store *cache.Store,
	doc *ssml.Document,
	audio string,
) ([]subsync.Mark, error) {
	path, err := store.Ensure(ctx, doc.Fingerprint, ".mrk", func(ctx context.Context, path string) error {
		if engine, ok := r.Engine.(synth.MarkEngine); ok {
			return engine.SpeechMarks(ctx, doc, path)
		}

		r.Logger.Debugw("Transcribing speech for word timings", "audio", audio)
		result, err := r.Transcriber.Transcribe(ctx, audio, doc.Plain)
		if err != nil {
			return err
		}
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := subsync.WriteMarks(file, transcribe.WordMarks(result.Words)); err != nil {
			_ = file.Close()
			return err
		}
		return file.Close()
	})
	if err != nil {
		return nil, err
	}
	return subsync.ReadMarksFile(path)
}

// writeTranslation writes <base>.<language>.srt with the captions of every
// page shifted to their position in the joined video
func (r *Runner) writeTranslation(ctx context.Context, results []pageResult, language, base string) error {
	track := &subtitle.Track{}
	var offset int64
	for _, res := range results {
		for _, cue := range res.cues {
			cue.StartMillis += offset
			cue.EndMillis += offset
			track.Cues = append(track.Cues, cue)
		}
		offset += res.duration.Milliseconds()
	}

	r.Logger.Infow("Translating captions", "language", language, "cues", len(track.Cues))
	translated, err := translate.TranslateTrack(ctx, r.Translator, track, language)
	if err != nil {
		return fmt.Errorf("failed to translate captions: %w", err)
	}
	translated.Cues = wrapCues(translated.Cues, r.Config.CaptionWidth)

	path := base + "." + language + ".srt"
	if err := (&subtitle.SRTWriter{}).Write(translated, path); err != nil {
		return err
	}
	r.Logger.Infow("Translated captions written", "output", path)
	return nil
}

func (r *Runner) profile() ssml.Profile {
	return ssml.Profile{
		Voice:          r.Config.Voice,
		Neural:         r.Config.Neural,
		Conversational: r.Config.Conversational,
	}
}

func wrapCues(cues []subtitle.Cue, width int) []subtitle.Cue {
	out := make([]subtitle.Cue, len(cues))
	for i, cue := range cues {
		cue.Text = subtitle.Wrap(cue.Text, width)
		out[i] = cue
	}
	return out
}

// temporary files of one run
type tempFiles struct {
	mu    sync.Mutex
	paths []string
}

func (t *tempFiles) add(path string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = append(t.paths, path)
	return path
}

func (t *tempFiles) removeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.paths {
		_ = os.Remove(p)
	}
	t.paths = nil
}
