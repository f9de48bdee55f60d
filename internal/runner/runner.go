// Package runner executes a single local command without a shell and
// normalizes its outcome into a uniform result record.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/uuid"
)

// DefaultMaxOutput caps captured output per stream when the Runner does
// not specify a limit.
const DefaultMaxOutput = 1 << 20 // 1 MiB

// Runner executes commands and captures their output.
type Runner struct {
	MaxOutput int // per-stream byte cap; DefaultMaxOutput when zero
}

// Run executes command with an optional single argument string. When
// args is non-empty it is passed to the OS loader as exactly one token;
// it is never split on whitespace, quoted, or glob-expanded. No shell
// is involved and the child inherits the parent environment. Stdin is
// not supplied.
//
// Run never fails: a process that cannot be started at all yields a
// Result with StatusCode 1 and a single stderr line describing the
// spawn failure, so callers can treat every outcome as ordinary data.
// The call blocks until the child exits; there is no internal timeout.
func (r *Runner) Run(ctx context.Context, command, args string) *Result {
	runID := uuid.New().String()

	argv := []string{command}
	if args != "" {
		argv = append(argv, args)
	}

	max := r.maxOutput()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitWriter{buf: &stdout, limit: max}
	cmd.Stderr = &limitWriter{buf: &stderr, limit: max}

	runErr := cmd.Run()

	statusCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// The process ran and exited non-zero (or was signalled).
			statusCode = exitErr.ExitCode()
		} else {
			// Binary not found, permission denied, or another spawn
			// failure. Normalized into the same envelope.
			return &Result{
				RunID:      runID,
				Command:    command,
				Args:       args,
				StatusCode: 1,
				Stdout:     []string{},
				Stderr:     []string{fmt.Sprintf("executing %s: %v", command, runErr)},
			}
		}
	}

	return &Result{
		RunID:      runID,
		Command:    command,
		Args:       args,
		StatusCode: statusCode,
		Stdout:     splitLines(stdout.Bytes()),
		Stderr:     splitLines(stderr.Bytes()),
		Truncated:  stdout.Len() >= max || stderr.Len() >= max,
	}
}

func (r *Runner) maxOutput() int {
	if r.MaxOutput > 0 {
		return r.MaxOutput
	}
	return DefaultMaxOutput
}

// splitLines decodes a captured stream into lines, dropping blanks.
// The result is never nil so it marshals as a JSON array.
func splitLines(b []byte) []string {
	lines := []string{}
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// limitWriter writes up to limit bytes to buf, then silently discards
// the rest, reporting all bytes as consumed to avoid short writes.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
