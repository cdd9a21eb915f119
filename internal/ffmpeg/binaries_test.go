package ffmpeg

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"testing/fstest"
)

func TestAssetForPlatform(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{goos: "linux", goarch: "amd64", want: "ffmpeg-6.1-linux-64.zip"},
		{goos: "linux", goarch: "arm64", want: "ffmpeg-6.1-linux-arm-64.zip"},
		{goos: "darwin", goarch: "amd64", want: "ffmpeg-6.1-macos-64.zip"},
		{goos: "windows", goarch: "amd64", want: "ffmpeg-6.1-win-64.zip"},
		{goos: "plan9", goarch: "386", wantErr: true},
	}
	for _, tt := range tests {
		got, err := assetForPlatform(tt.goos, tt.goarch)
		if tt.wantErr {
			if err == nil {
				t.Errorf("assetForPlatform(%s, %s) = %q, want error", tt.goos, tt.goarch, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("assetForPlatform(%s, %s) = %q, %v, want %q", tt.goos, tt.goarch, got, err, tt.want)
		}
	}
}

func TestResolveExplicitAndEnv(t *testing.T) {
	t.Setenv(EnvPdftoppm, "/env/pdftoppm")
	explicit := BinaryPaths{
		FFmpeg:  "/opt/ffmpeg",
		FFprobe: "/opt/ffprobe",
		Pdfinfo: "/opt/pdfinfo",
	}
	got, err := Resolve(context.Background(), explicit)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := BinaryPaths{
		FFmpeg:   "/opt/ffmpeg",
		FFprobe:  "/opt/ffprobe",
		Pdfinfo:  "/opt/pdfinfo",
		Pdftoppm: "/env/pdftoppm",
	}
	if got != want {
		t.Errorf("Resolve = %+v, want %+v", got, want)
	}
}

func TestResolveMissingPoppler(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv(EnvPdfinfo, "")
	t.Setenv(EnvPdftoppm, "")
	_, err := Resolve(context.Background(), BinaryPaths{FFmpeg: "/x/ffmpeg", FFprobe: "/x/ffprobe"})
	if err == nil || !strings.Contains(err.Error(), "pdfinfo not found") {
		t.Errorf("expected missing pdfinfo error, got %v", err)
	}
}

func TestExtractArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "bundle.zip")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, name := range []string{"bin/ffmpeg", "bin/ffprobe", "README.txt"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := w.Write([]byte("binary " + name)); err != nil {
			t.Fatalf("write entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	installDir := filepath.Join(dir, "install")
	if err := extractArchive(archivePath, installDir); err != nil {
		t.Fatalf("extractArchive returned error: %v", err)
	}

	suffix := ""
	if runtime.GOOS == "windows" {
		suffix = ".exe"
	}
	ffmpegPath := filepath.Join(installDir, "ffmpeg"+suffix)
	ffprobePath := filepath.Join(installDir, "ffprobe"+suffix)
	if !binariesExist(ffmpegPath, ffprobePath) {
		t.Fatal("binaries not extracted")
	}
	if _, err := os.Stat(filepath.Join(installDir, "README.txt")); !os.IsNotExist(err) {
		t.Error("unrelated archive entries should not be extracted")
	}
}

func TestExtractArchiveMissingBinary(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "bundle.zip")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("ffmpeg")
	_, _ = w.Write([]byte("x"))
	_ = zw.Close()
	_ = f.Close()

	if err := extractArchive(archivePath, filepath.Join(dir, "out")); err == nil {
		t.Error("expected error for archive without ffprobe")
	}
}

func TestBinaryName(t *testing.T) {
	tests := map[string]string{
		"ffmpeg":      "ffmpeg",
		"FFPROBE.EXE": "ffprobe",
		"ffplay":      "",
		"ffmpeg.txt":  "",
	}
	for in, want := range tests {
		if got := binaryName(in); got != want {
			t.Errorf("binaryName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenBundleAsset(t *testing.T) {
	zipData := []byte("PK fake archive")
	sum := sha256.Sum256(zipData)
	good := hex.EncodeToString(sum[:])

	tests := []struct {
		name    string
		fsys    fs.FS
		wantOK  bool
		wantErr string
	}{
		{name: "no bundle", fsys: nil},
		{name: "missing asset", fsys: fstest.MapFS{}},
		{
			name:   "no manifest",
			fsys:   fstest.MapFS{"a.zip": {Data: zipData}},
			wantOK: true,
		},
		{
			name: "matching checksum",
			fsys: fstest.MapFS{
				"a.zip":      {Data: zipData},
				"SHA256SUMS": {Data: []byte(good + "  a.zip\nffff  other.zip\n")},
			},
			wantOK: true,
		},
		{
			name: "unlisted asset",
			fsys: fstest.MapFS{
				"a.zip":      {Data: zipData},
				"SHA256SUMS": {Data: []byte("ffff  other.zip\n")},
			},
			wantOK: true,
		},
		{
			name: "checksum mismatch",
			fsys: fstest.MapFS{
				"a.zip":      {Data: zipData},
				"SHA256SUMS": {Data: []byte("00ff *a.zip\n")},
			},
			wantErr: "checksum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, ok, err := openBundleAsset(tt.fsys, "a.zip")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("openBundleAsset returned error: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			data, err := io.ReadAll(reader)
			if err != nil || !bytes.Equal(data, zipData) {
				t.Errorf("asset data = %q, %v", data, err)
			}
		})
	}
}
