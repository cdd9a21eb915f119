//go:build !pdf2video_bundle

package ffmpeg

import "io/fs"

// builds without the pdf2video_bundle tag carry no bundle
func embeddedBundle() fs.FS { return nil }
