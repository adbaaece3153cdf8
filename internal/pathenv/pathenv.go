package pathenv

import "strings"

// Separator joins entries in a PATH-style string.
const Separator = ";"

// PathString is a raw semicolon-delimited search path, as held in the
// PATH environment variable on Windows. All operations are pure: they
// return a new value and never touch the environment.
type PathString string

// Entries splits the path into its non-empty entries, in order.
func (p PathString) Entries() []string {
	var entries []string

	for _, entry := range strings.Split(string(p), Separator) {
		if entry != "" {
			entries = append(entries, entry)
		}
	}

	return entries
}

// Has reports whether the path already contains the entry. Matching is
// case-insensitive and ignores a single trailing path separator, so
// "C:\Tools" and "c:\tools\" count as the same entry.
func (p PathString) Has(entry string) bool {
	for _, e := range p.Entries() {
		if entriesEqual(e, entry) {
			return true
		}
	}

	return false
}

// Add appends the entry to the end of the path unless an equivalent
// entry is already present, in which case the path comes back
// unchanged. Adding to an empty path yields just the entry.
func (p PathString) Add(entry string) PathString {
	if p.Has(entry) {
		return p
	}

	trimmed := strings.TrimRight(string(p), Separator)
	if trimmed == "" {
		return PathString(entry)
	}

	return PathString(trimmed + Separator + entry)
}

// Remove drops every entry equivalent to the given one, preserving the
// order of the rest. Empty segments left by doubled or dangling
// separators collapse away in the result.
func (p PathString) Remove(entry string) PathString {
	var kept []string

	for _, e := range p.Entries() {
		if !entriesEqual(e, entry) {
			kept = append(kept, e)
		}
	}

	return PathString(strings.Join(kept, Separator))
}

func entriesEqual(a, b string) bool {
	return strings.EqualFold(normalizeEntry(a), normalizeEntry(b))
}

// normalizeEntry strips at most one trailing slash or backslash. A
// bare separator stays as it is so a root like "\" never collapses to
// an empty entry.
func normalizeEntry(entry string) string {
	if len(entry) > 1 {
		if last := entry[len(entry)-1]; last == '\\' || last == '/' {
			return entry[:len(entry)-1]
		}
	}

	return entry
}
