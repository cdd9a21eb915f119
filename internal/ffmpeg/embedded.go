//go:build pdf2video_bundle

package ffmpeg

import (
	"embed"
	"io/fs"
)

// release zips (and an optional SHA256SUMS) copied into bundle/ before
// building with -tags pdf2video_bundle
//
//go:embed bundle
var bundleFS embed.FS

func embeddedBundle() fs.FS {
	sub, err := fs.Sub(bundleFS, "bundle")
	if err != nil {
		return nil
	}
	return sub
}
