// Package media drives the external tools that turn PDF pages and speech
// audio into video: poppler for rasterization, ffmpeg for assembly.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// stderr lines kept in a ToolError
const stderrTailLines = 10

// ToolError reports an external tool that failed or exited non-zero.
type ToolError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("error when executing %q: %v", e.Tool+" "+strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += fmt.Sprintf(". The last %d lines of the stderr output are:\n%s", stderrTailLines, e.Stderr)
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// interface for running an external program
type Runner interface {
	// Run executes name with args and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// runs programs with os/exec
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &ToolError{
			Tool:   filepath.Base(name),
			Args:   args,
			Stderr: tail(stderr.String(), stderrTailLines),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}

// last n lines of s
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func runnerOrDefault(r Runner) Runner {
	if r == nil {
		return ExecRunner{}
	}
	return r
}
