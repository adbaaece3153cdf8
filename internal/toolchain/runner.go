package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Commander is the subset of exec.Cmd needed to run the compiler.
type Commander interface {
	Run() error
}

// Runner invokes the real compiler with an argument vector appended
// verbatim. Used for invocations that bypass the cache: version
// queries, link-only commands, and per-file language overrides.
type Runner struct {
	// Path is the real compiler executable.
	Path string

	// Env is the full child environment, typically captured from
	// vcvarsall. Nil inherits the wrapper's own environment.
	Env []string

	// Stdout and Stderr receive the compiler's streams.
	Stdout io.Writer
	Stderr io.Writer

	execCommand func(ctx context.Context, name string, args ...string) Commander
}

// NewRunner creates a Runner wired to the wrapper's own streams.
func NewRunner(path string, env []string) *Runner {
	return &Runner{
		Path:   path,
		Env:    env,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		execCommand: func(ctx context.Context, name string, args ...string) Commander {
			return exec.CommandContext(ctx, name, args...)
		},
	}
}

// Run executes the compiler and returns its exit code. A non-zero
// compiler exit is not an error here: the caller forwards the code as
// its own. Failing to start the compiler at all reports code 1 with
// the underlying error.
func (r *Runner) Run(ctx context.Context, argv []string) (int, error) {
	c := r.execCommand(ctx, r.Path, argv...)

	if cmd, ok := c.(*exec.Cmd); ok {
		cmd.Env = r.Env
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
		cmd.Stdin = os.Stdin
	}

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}

		return 1, fmt.Errorf("failed to run %s: %w", r.Path, err)
	}

	return 0, nil
}
