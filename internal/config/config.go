// Package config reads the tool-configuration file that tells the
// wrapper where the real compiler lives. The wrapper fails closed on
// any configuration problem: a wrong compiler path would poison cache
// fingerprints for everyone sharing the cache.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/quicken-build/quickencl/internal/toolchain"
	"github.com/spf13/viper"
)

// FileName is the tool-configuration file resolved at startup.
const FileName = "tools.json"

// Default configuration values
const (
	DefaultArch    = "x64"
	DefaultBackend = "quicken"
)

// Holds the tool locations the wrapper needs before it can forward
// anything.
type Config struct {
	// Path to the real cl.exe
	CompilerPath string

	// Path to vcvarsall.bat, run once to capture the MSVC environment
	VCVarsAll string

	// vcvarsall architecture identifier (e.g. x64, x86, amd64_arm64)
	Arch string

	// Cache backend executable; bare names resolve via PATH
	Backend string

	// Source is the file the configuration was read from
	Source string
}

// Error describes an unusable tool configuration.
type Error struct {
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("tool configuration: %s", e.Reason)
	}

	return fmt.Sprintf("tool configuration %s: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load resolves the configuration file (see Locate) and reads it.
func Load() (*Config, error) {
	path, err := Locate()
	if err != nil {
		return nil, err
	}

	return LoadFile(path)
}

// LoadFile reads and validates a tool-configuration file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("msvc_arch", DefaultArch)
	v.SetDefault("backend", DefaultBackend)

	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Path: path, Reason: "cannot be read", Err: err}
	}

	cfg := &Config{
		CompilerPath: v.GetString("cl"),
		VCVarsAll:    v.GetString("vcvarsall"),
		Arch:         v.GetString("msvc_arch"),
		Backend:      v.GetString("backend"),
		Source:       path,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the tool locations eagerly so a broken configuration
// surfaces before any forwarding starts.
func (c *Config) Validate() error {
	if c.CompilerPath == "" {
		return &Error{Path: c.Source, Reason: `missing required key "cl"`}
	}

	if !absPath(c.CompilerPath) {
		return &Error{Path: c.Source, Reason: fmt.Sprintf(`"cl" must be an absolute path, got %q`, c.CompilerPath)}
	}

	if c.VCVarsAll == "" {
		return &Error{Path: c.Source, Reason: `missing required key "vcvarsall"`}
	}

	if !absPath(c.VCVarsAll) {
		return &Error{Path: c.Source, Reason: fmt.Sprintf(`"vcvarsall" must be an absolute path, got %q`, c.VCVarsAll)}
	}

	if !toolchain.ValidArch(c.Arch) {
		return &Error{
			Path:   c.Source,
			Reason: fmt.Sprintf("unknown msvc_arch %q (valid: %s)", c.Arch, strings.Join(toolchain.Archs(), ", ")),
		}
	}

	if c.Backend == "" {
		return &Error{Path: c.Source, Reason: `"backend" must not be empty`}
	}

	return nil
}

// absPath reports whether p is absolute, treating Windows drive-letter
// paths as absolute on every host.
func absPath(p string) bool {
	if filepath.IsAbs(p) {
		return true
	}

	if len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/') {
		c := p[0]
		return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
	}

	return false
}
