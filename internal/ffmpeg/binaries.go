// Package ffmpeg locates the external tools: ffmpeg and ffprobe, which can
// be fetched on demand, and the poppler pdfinfo and pdftoppm utilities.
package ffmpeg

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const (
	ffmpegReleaseVersion = "6.1"
	ffmpegReleaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"
)

// environment variables overriding each tool path
const (
	EnvFFmpeg   = "PDF2VIDEO_FFMPEG_PATH"
	EnvFFprobe  = "PDF2VIDEO_FFPROBE_PATH"
	EnvPdfinfo  = "PDF2VIDEO_PDFINFO_PATH"
	EnvPdftoppm = "PDF2VIDEO_PDFTOPPM_PATH"
)

type BinaryPaths struct {
	FFmpeg   string
	FFprobe  string
	Pdfinfo  string
	Pdftoppm string
}

var (
	bundleOnce sync.Once
	bundleErr  error
	bundlePath BinaryPaths
)

// Resolve fills every tool path. A non-empty field of explicit wins, then
// the tool's environment variable, then PATH. ffmpeg and ffprobe fall back
// to a bundle extracted into the user cache directory; the poppler tools
// have no fallback.
func Resolve(ctx context.Context, explicit BinaryPaths) (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:   lookup(explicit.FFmpeg, EnvFFmpeg, "ffmpeg"),
		FFprobe:  lookup(explicit.FFprobe, EnvFFprobe, "ffprobe"),
		Pdfinfo:  lookup(explicit.Pdfinfo, EnvPdfinfo, "pdfinfo"),
		Pdftoppm: lookup(explicit.Pdftoppm, EnvPdftoppm, "pdftoppm"),
	}

	if paths.FFmpeg == "" || paths.FFprobe == "" {
		bundled, err := ensureBundle(ctx)
		if err != nil {
			return BinaryPaths{}, err
		}
		if paths.FFmpeg == "" {
			paths.FFmpeg = bundled.FFmpeg
		}
		if paths.FFprobe == "" {
			paths.FFprobe = bundled.FFprobe
		}
	}

	for _, tool := range []struct{ name, path string }{
		{"pdfinfo", paths.Pdfinfo},
		{"pdftoppm", paths.Pdftoppm},
	} {
		if tool.path == "" {
			return BinaryPaths{}, fmt.Errorf(
				"%s not found: install poppler-utils or pass --%s",
				tool.name,
				tool.name,
			)
		}
	}
	return paths, nil
}

func lookup(explicit, envVar, name string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(envVar); p != "" {
		return p
	}
	if found, err := exec.LookPath(name); err == nil {
		return found
	}
	return ""
}

func ensureBundle(ctx context.Context) (BinaryPaths, error) {
	bundleOnce.Do(func() {
		bundlePath, bundleErr = installBundle(ctx)
	})
	return bundlePath, bundleErr
}

func installBundle(ctx context.Context) (BinaryPaths, error) {
	assetName, err := assetForPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return BinaryPaths{}, err
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil || cacheDir == "" {
		cacheDir = os.TempDir()
	}
	installDir := filepath.Join(
		cacheDir,
		"pdf2video",
		"ffmpeg",
		ffmpegReleaseVersion,
		runtime.GOOS,
		runtime.GOARCH,
	)
	paths := BinaryPaths{
		FFmpeg:  filepath.Join(installDir, "ffmpeg"+executableSuffix()),
		FFprobe: filepath.Join(installDir, "ffprobe"+executableSuffix()),
	}

	if binariesExist(paths.FFmpeg, paths.FFprobe) {
		return paths, nil
	}

	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}

	embeddedUsed, err := extractEmbedded(assetName, installDir)
	if err != nil {
		return BinaryPaths{}, err
	}
	if !embeddedUsed {
		if err := downloadAndExtract(ctx, assetName, installDir); err != nil {
			return BinaryPaths{}, err
		}
	}

	if !binariesExist(paths.FFmpeg, paths.FFprobe) {
		return BinaryPaths{}, errors.New("ffmpeg binaries not found after extraction")
	}
	if runtime.GOOS != "windows" {
		for _, p := range []string{paths.FFmpeg, paths.FFprobe} {
			if err := os.Chmod(p, 0o755); err != nil {
				return BinaryPaths{}, fmt.Errorf("chmod %s: %w", filepath.Base(p), err)
			}
		}
	}
	return paths, nil
}

func assetForPlatform(goos, goarch string) (string, error) {
	switch {
	case goos == "linux" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-linux-64.zip", nil
	case goos == "linux" && goarch == "arm64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-linux-arm-64.zip", nil
	case goos == "darwin" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-macos-64.zip", nil
	case goos == "windows" && goarch == "amd64":
		return "ffmpeg-" + ffmpegReleaseVersion + "-win-64.zip", nil
	default:
		return "", fmt.Errorf(
			"ffmpeg not found and no bundle exists for %s/%s: install ffmpeg or pass --ffmpeg",
			goos,
			goarch,
		)
	}
}

func downloadAndExtract(ctx context.Context, assetName, installDir string) error {
	url := fmt.Sprintf("%s/v%s/%s", ffmpegReleaseBaseURL, ffmpegReleaseVersion, assetName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	return extractArchiveFromReader(assetName, resp.Body, installDir)
}

func extractEmbedded(assetName, installDir string) (bool, error) {
	reader, ok, err := openBundleAsset(embeddedBundle(), assetName)
	if err != nil || !ok {
		return ok, err
	}
	if err := extractArchiveFromReader(assetName, reader, installDir); err != nil {
		return true, err
	}
	return true, nil
}

// name of the optional checksum manifest inside a bundle, in sha256sum format
const bundleSumsFile = "SHA256SUMS"

// openBundleAsset reads name from fsys. A missing fsys or asset reports
// false. When the bundle carries a manifest listing the asset, its
// sha256 must match.
func openBundleAsset(fsys fs.FS, name string) (io.Reader, bool, error) {
	if fsys == nil {
		return nil, false, nil
	}
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read bundled %s: %w", name, err)
	}

	sums, err := fs.ReadFile(fsys, bundleSumsFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("read bundle checksums: %w", err)
	}
	if want, listed := checksumFor(string(sums), name); listed {
		sum := sha256.Sum256(data)
		if got := hex.EncodeToString(sum[:]); got != want {
			return nil, false, fmt.Errorf("bundled %s: checksum %s, want %s", name, got, want)
		}
	}
	return bytes.NewReader(data), true, nil
}

// hex digest of name in a sha256sum style manifest
func checksumFor(manifest, name string) (string, bool) {
	for _, line := range strings.Split(manifest, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && strings.TrimPrefix(fields[1], "*") == name {
			return strings.ToLower(fields[0]), true
		}
	}
	return "", false
}

func extractArchiveFromReader(assetName string, reader io.Reader, installDir string) error {
	tmpFile, err := os.CreateTemp("", "pdf2video-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmpFile.Name()
	defer func() { _ = os.Remove(archivePath) }()

	if _, err := io.Copy(tmpFile, reader); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := extractArchive(archivePath, installDir); err != nil {
		return fmt.Errorf("extract %s: %w", assetName, err)
	}
	return nil
}

// extractArchive copies the ffmpeg and ffprobe entries of a zip archive
// into installDir, ignoring their directory inside the archive.
func extractArchive(archivePath, installDir string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zipReader.Close() }()

	found := map[string]bool{}
	for _, file := range zipReader.File {
		name := binaryName(filepath.Base(file.Name))
		if name == "" {
			continue
		}
		dest := filepath.Join(installDir, name+executableSuffix())
		if err := extractZipFile(file, dest); err != nil {
			return err
		}
		found[name] = true
	}

	if !found["ffmpeg"] || !found["ffprobe"] {
		return fmt.Errorf("ffmpeg archive missing required binaries")
	}
	return nil
}

func extractZipFile(file *zip.File, dest string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open ffmpeg archive entry: %w", err)
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create ffmpeg output dir: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create ffmpeg binary: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write ffmpeg binary: %w", err)
	}
	return nil
}

func binariesExist(paths ...string) bool {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || info.Size() == 0 {
			return false
		}
	}
	return true
}

// "ffmpeg" or "ffprobe" for a bundled executable name, "" otherwise
func binaryName(name string) string {
	name = strings.TrimSuffix(strings.ToLower(name), ".exe")
	switch name {
	case "ffmpeg", "ffprobe":
		return name
	}
	return ""
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
