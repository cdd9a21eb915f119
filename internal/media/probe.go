package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// reads stream information with ffprobe
type Prober struct {
	FFprobe string
	Runner  Runner
}

// Duration returns the container duration of a media file.
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, error) {
	out, err := runnerOrDefault(p.Runner).Run(ctx, p.FFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, err
	}

	raw := gjson.GetBytes(out, "format.duration").String()
	seconds, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", raw, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
