package pathenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntries(t *testing.T) {
	tests := []struct {
		path     PathString
		expected []string
	}{
		{"", nil},
		{";", nil},
		{"C:\\A", []string{"C:\\A"}},
		{"C:\\A;C:\\B", []string{"C:\\A", "C:\\B"}},
		{"C:\\A;;C:\\B;", []string{"C:\\A", "C:\\B"}},
		{";C:\\A;", []string{"C:\\A"}},
	}

	for _, test := range tests {
		result := test.path.Entries()
		assert.Equal(t, test.expected, result, "Entries(%q)", test.path)
	}
}

func TestHas(t *testing.T) {
	tests := []struct {
		path     PathString
		entry    string
		expected bool
	}{
		{"C:\\Tools", "C:\\Tools", true},
		{"C:\\Tools", "c:\\tools", true},
		{"C:\\Tools", "C:\\Tools\\", true},
		{"C:\\Tools\\", "C:\\Tools", true},
		{"C:\\Tools/", "C:\\Tools", true},
		{"C:\\A;C:\\B", "C:\\B", true},
		{"C:\\A;C:\\B", "C:\\C", false},
		{"C:\\Toolsmith", "C:\\Tools", false},
		{"C:\\Tools", "C:\\Toolsmith", false},
		{"", "C:\\Tools", false},
		{"C:\\Tools\\\\", "C:\\Tools", false},
	}

	for _, test := range tests {
		result := test.path.Has(test.entry)
		assert.Equal(t, test.expected, result, "Has(%q, %q)", test.path, test.entry)
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name     string
		path     PathString
		entry    string
		expected PathString
	}{
		{
			name:     "appends to existing path",
			path:     "C:\\A;C:\\B",
			entry:    "C:\\Tools",
			expected: "C:\\A;C:\\B;C:\\Tools",
		},
		{
			name:     "empty path becomes the entry",
			path:     "",
			entry:    "C:\\Tools",
			expected: "C:\\Tools",
		},
		{
			name:     "separator-only path becomes the entry",
			path:     ";",
			entry:    "C:\\Tools",
			expected: "C:\\Tools",
		},
		{
			name:     "does not double a trailing separator",
			path:     "C:\\A;",
			entry:    "C:\\Tools",
			expected: "C:\\A;C:\\Tools",
		},
		{
			name:     "already present leaves path unchanged",
			path:     "C:\\A;C:\\Tools",
			entry:    "C:\\Tools",
			expected: "C:\\A;C:\\Tools",
		},
		{
			name:     "present under different case leaves path unchanged",
			path:     "C:\\A;C:\\TOOLS",
			entry:    "c:\\tools",
			expected: "C:\\A;C:\\TOOLS",
		},
		{
			name:     "present with trailing separator leaves path unchanged",
			path:     "C:\\A;C:\\Tools\\",
			entry:    "C:\\Tools",
			expected: "C:\\A;C:\\Tools\\",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.path.Add(test.entry))
		})
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name     string
		path     PathString
		entry    string
		expected PathString
	}{
		{
			name:     "removes every occurrence",
			path:     "C:\\A;C:\\B;C:\\A\\",
			entry:    "C:\\A",
			expected: "C:\\B",
		},
		{
			name:     "removes case-insensitively",
			path:     "c:\\tools;C:\\B",
			entry:    "C:\\TOOLS",
			expected: "C:\\B",
		},
		{
			name:     "missing entry collapses empty segments only",
			path:     "C:\\A;;C:\\B;",
			entry:    "C:\\C",
			expected: "C:\\A;C:\\B",
		},
		{
			name:     "never matches a substring of an entry",
			path:     "C:\\AB;C:\\A",
			entry:    "C:\\A",
			expected: "C:\\AB",
		},
		{
			name:     "removing the only entry yields the empty path",
			path:     "C:\\Tools",
			entry:    "C:\\Tools",
			expected: "",
		},
		{
			name:     "empty path stays empty",
			path:     "",
			entry:    "C:\\Tools",
			expected: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.path.Remove(test.entry))
		})
	}
}

func TestAddIsIdempotent(t *testing.T) {
	paths := []PathString{"", "C:\\A", "C:\\A;C:\\B", "C:\\Tools"}

	for _, path := range paths {
		once := path.Add("C:\\Tools")
		twice := once.Add("C:\\Tools")

		assert.Equal(t, once, twice, "Add twice on %q", path)
		assert.True(t, once.Has("C:\\Tools"))
	}
}

func TestRemoveUndoesAdd(t *testing.T) {
	paths := []PathString{"", "C:\\A", "C:\\A;C:\\B", "C:\\A;C:\\Tools\\;C:\\B"}

	for _, path := range paths {
		added := path.Add("C:\\Tools")
		removed := added.Remove("C:\\Tools")

		assert.Equal(t, path.Remove("C:\\Tools"), removed, "Remove after Add on %q", path)
		assert.False(t, removed.Has("C:\\Tools"))
	}
}
