package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Outputter is the subset of exec.Cmd used to capture command output.
type Outputter interface {
	Output() ([]byte, error)
}

// Env captures the environment variables vcvarsall.bat sets up for a
// given target architecture. The capture runs once per wrapper
// invocation and feeds every real-compiler passthrough.
type Env struct {
	// VCVarsAll is the path to vcvarsall.bat.
	VCVarsAll string

	// Arch is the architecture identifier passed to vcvarsall.
	Arch string

	execCommand func(ctx context.Context, name string, args ...string) Outputter
}

// NewEnv creates an environment capturer for the given vcvarsall
// script and architecture.
func NewEnv(vcvarsall, arch string) *Env {
	return &Env{
		VCVarsAll: vcvarsall,
		Arch:      arch,
		execCommand: func(ctx context.Context, name string, args ...string) Outputter {
			return exec.CommandContext(ctx, name, args...)
		},
	}
}

// Capture runs `"<vcvarsall>" <arch> && set` through cmd.exe and
// returns the resulting KEY=VALUE pairs, ready for exec.Cmd.Env.
func (e *Env) Capture(ctx context.Context) ([]string, error) {
	script := fmt.Sprintf(`"%s" %s && set`, e.VCVarsAll, e.Arch)

	c := e.execCommand(ctx, "cmd.exe", "/c", script)

	out, err := c.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("vcvarsall failed: %s", bytes.TrimSpace(exitErr.Stderr))
		}

		return nil, fmt.Errorf("failed to run vcvarsall: %w", err)
	}

	env := parseEnvBlock(out)
	if len(env) == 0 {
		return nil, fmt.Errorf("vcvarsall produced no environment variables")
	}

	return env, nil
}

// parseEnvBlock splits `set` output into KEY=VALUE entries. Banner
// lines vcvarsall prints, blank lines, and entries with an empty key
// are skipped.
func parseEnvBlock(out []byte) []string {
	var env []string

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")

		if eq := strings.IndexByte(line, '='); eq > 0 {
			env = append(env, line)
		}
	}

	return env
}
