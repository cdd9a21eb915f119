package media

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// frame height of every rendered page
const FrameHeight = 1080

var pagesRegex = regexp.MustCompile(`(?m)^Pages:\s+(\d+)\s*$`)

// renders PDF pages with the poppler utilities
type Rasterizer struct {
	Pdfinfo  string
	Pdftoppm string
	Runner   Runner
}

// PageCount returns the number of pages in the PDF as reported by pdfinfo.
func (r *Rasterizer) PageCount(ctx context.Context, pdfPath string) (int, error) {
	out, err := runnerOrDefault(r.Runner).Run(ctx, r.Pdfinfo, pdfPath)
	if err != nil {
		return 0, err
	}
	m := pagesRegex.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("pdfinfo reported no page count for %s", pdfPath)
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("invalid page count in pdfinfo output: %w", err)
	}
	return n, nil
}

// Rasterize renders one 1-based page to outBase+".ppm", FrameHeight pixels
// high with the width following the aspect ratio.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath string, page int, outBase string) (string, error) {
	args := []string{
		"-scale-to-y", strconv.Itoa(FrameHeight),
		"-scale-to-x", "-1",
		"-f", strconv.Itoa(page),
		"-singlefile",
		pdfPath,
		strings.TrimSuffix(outBase, ".ppm"),
	}
	if _, err := runnerOrDefault(r.Runner).Run(ctx, r.Pdftoppm, args...); err != nil {
		return "", err
	}
	return strings.TrimSuffix(outBase, ".ppm") + ".ppm", nil
}
