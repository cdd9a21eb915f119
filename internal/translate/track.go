package translate

import (
	"context"

	"github.com/mgpai22/pdf2video/internal/subtitle"
)

// TranslateTrack returns a copy of track with every cue translated. Cue
// timings are kept; a cue the provider skipped keeps its original text.
func TranslateTrack(
	ctx context.Context,
	translator Translator,
	track *subtitle.Track,
	language string,
) (*subtitle.Track, error) {
	items := make([]Item, len(track.Cues))
	for i, cue := range track.Cues {
		items[i] = Item{Index: i, Text: cue.Text}
	}

	translated, err := translator.Translate(ctx, items)
	if err != nil {
		return nil, err
	}

	out := &subtitle.Track{
		Cues:     append([]subtitle.Cue(nil), track.Cues...),
		Language: language,
	}
	for _, item := range translated {
		if item.Index >= 0 && item.Index < len(out.Cues) && item.Text != "" {
			out.Cues[item.Index].Text = item.Text
		}
	}
	return out, nil
}
