package linter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/sanix-darker/reviewbot/internal/core"
)

// Runner executes the applicable linters for a file. Each tool runs as a
// subprocess bounded by Timeout; tool failures are contained here and never
// abort the file's review.
type Runner struct {
	// Dir is the working directory for tool invocations (the repo root).
	Dir string

	// Timeout bounds each individual tool run.
	Timeout time.Duration

	// Disabled names tools that must be skipped.
	Disabled map[string]bool

	// ExtraArgs appends per-tool arguments before the file path.
	ExtraArgs map[string][]string

	// Exec runs one tool invocation and returns stdout, stderr and the exit
	// error. Defaults to a real subprocess; swappable in tests.
	Exec CommandFunc
}

// CommandFunc executes a command in dir and returns its stdout, stderr and
// exit error.
type CommandFunc func(ctx context.Context, command string, args []string, dir string) (string, string, error)

// NewRunner creates a Runner rooted at dir with the given per-tool timeout.
func NewRunner(dir string, timeout time.Duration) *Runner {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		Dir:     dir,
		Timeout: timeout,
		Exec:    runCommand,
	}
}

// Run executes every applicable tool for the file in registry order and
// returns the normalized findings, preserving tool-invocation order. A file
// type with no mapped tools yields no findings and no error.
func (r *Runner) Run(ctx context.Context, file core.ChangedFile) []core.Finding {
	var findings []core.Finding

	for _, tool := range ToolsFor(file.Path) {
		if r.Disabled[tool.Name] {
			continue
		}

		args := append([]string{}, tool.Args...)
		args = append(args, r.ExtraArgs[tool.Name]...)
		args = append(args, file.Path)

		toolCtx, cancel := context.WithTimeout(ctx, r.Timeout)
		stdout, stderr, err := r.Exec(toolCtx, tool.Command, args, r.Dir)
		timedOut := errors.Is(toolCtx.Err(), context.DeadlineExceeded)
		cancel()

		if timedOut {
			findings = append(findings, toolFailure(tool.Name,
				fmt.Sprintf("%s timed out after %s", tool.Name, r.Timeout)))
			continue
		}

		var execErr *exec.Error
		if errors.As(err, &execErr) {
			// Binary missing or not executable: degrade to zero findings
			// from this tool.
			continue
		}

		parsed := tool.Parse(tool.Name, file.Path, stdout, stderr)
		if err != nil && len(parsed) == 0 {
			// Linters exit non-zero when they report issues, so a non-zero
			// exit only counts as a crash when nothing was parseable.
			findings = append(findings, toolFailure(tool.Name,
				fmt.Sprintf("%s failed: %v", tool.Name, err)))
			continue
		}

		findings = append(findings, parsed...)
	}

	return findings
}

// toolFailure converts a tool-level failure into an informational finding so
// the degraded condition is visible in the posted review.
func toolFailure(tool, message string) core.Finding {
	return core.Finding{
		Source:   core.SourceLinter,
		Tool:     tool,
		Message:  message,
		Severity: core.SeverityInfo,
	}
}

// runCommand is the real subprocess executor.
func runCommand(ctx context.Context, command string, args []string, dir string) (string, string, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
