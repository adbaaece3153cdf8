// Package clargs splits a cl.exe argument vector into the pieces the
// wrapper routes differently: compilable source files, the object
// output directory, and everything else.
package clargs

import "strings"

// sourceExtensions are the suffixes cl.exe treats as compilable
// translation units. Matching is case-insensitive.
var sourceExtensions = map[string]bool{
	".cpp": true,
	".cxx": true,
	".cc":  true,
	".c":   true,
	".c++": true,
}

// SourceFile is a compilable input together with its position in the
// original argument vector.
type SourceFile struct {
	Path  string
	Index int
}

// Classified is the result of splitting an argument vector. Tokens are
// never rewritten: sources keep their exact spelling and passthrough
// tokens keep their order and quoting.
type Classified struct {
	// Sources holds the compilable inputs in command-line order.
	Sources []SourceFile

	// OutputDir is the object directory named by the first /Fo flag,
	// or empty when none was given. A /Fo value naming a file is
	// reduced to the file's parent directory.
	OutputDir string

	// Passthrough holds every non-source token, verbatim. Output
	// flags stay in here because the real compiler still needs them.
	Passthrough []string

	// LanguageOverride reports a /Tc<file> or /Tp<file> token. These
	// embed the filename in the flag itself, so the invocation cannot
	// be split per source file.
	LanguageOverride bool
}

// HasSources reports whether any compilable input was found.
func (c Classified) HasSources() bool {
	return len(c.Sources) > 0
}

// Classify splits argv in a single positional pass. A token is a
// source file when it does not start with '/', '-', or '@' and its
// suffix is a known source extension; everything else is passthrough.
func Classify(argv []string) Classified {
	var c Classified

	seenOutput := false

	for i, arg := range argv {
		if isSourceFile(arg) {
			c.Sources = append(c.Sources, SourceFile{Path: arg, Index: i})
			continue
		}

		if isLanguageOverride(arg) {
			c.LanguageOverride = true
		}

		if !seenOutput {
			if dir, ok := parseOutputFlag(arg); ok {
				c.OutputDir = dir
				seenOutput = true
			}
		}

		c.Passthrough = append(c.Passthrough, arg)
	}

	return c
}

func isSourceFile(arg string) bool {
	if arg == "" {
		return false
	}

	switch arg[0] {
	case '/', '-', '@':
		return false
	}

	dot := strings.LastIndexByte(arg, '.')
	if dot < 0 {
		return false
	}

	return sourceExtensions[strings.ToLower(arg[dot:])]
}

// isLanguageOverride matches /Tc and /Tp only when a filename is
// attached. The bare forms take the next token as a separate argument
// and do not block per-file routing.
func isLanguageOverride(arg string) bool {
	if len(arg) <= 3 {
		return false
	}

	if arg[0] != '/' && arg[0] != '-' {
		return false
	}

	return arg[1:3] == "Tc" || arg[1:3] == "Tp"
}

// parseOutputFlag extracts the directory named by an /Fo or -Fo token.
// The value is attached with no space and may be wrapped in double
// quotes, which are stripped. A value ending in a path separator names
// the directory itself and is kept verbatim; a file value yields its
// parent directory. A bare /Fo with no value sets no directory and
// rides through to the real compiler untouched.
func parseOutputFlag(arg string) (string, bool) {
	if len(arg) < 3 {
		return "", false
	}

	if arg[0] != '/' && arg[0] != '-' {
		return "", false
	}

	if arg[1:3] != "Fo" {
		return "", false
	}

	value := unquote(arg[3:])
	if value == "" {
		return "", false
	}

	if last := value[len(value)-1]; last == '/' || last == '\\' {
		return value, true
	}

	if i := strings.LastIndexAny(value, `/\`); i >= 0 {
		return value[:i], true
	}

	return "", true
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
