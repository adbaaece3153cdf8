// Package toolchain talks to the real MSVC installation: it captures
// the environment vcvarsall.bat sets up and runs the real cl.exe for
// invocations that bypass the cache.
package toolchain

import "strings"

// archs lists the architecture identifiers vcvarsall.bat accepts,
// native targets first, then the cross pairs.
var archs = []string{
	"x86",
	"amd64",
	"x64",
	"arm",
	"arm64",
	"x86_amd64",
	"x86_arm",
	"x86_arm64",
	"amd64_x86",
	"amd64_arm",
	"amd64_arm64",
}

// ValidArch reports whether arch is an identifier vcvarsall.bat
// accepts. Matching is case-insensitive.
func ValidArch(arch string) bool {
	for _, a := range archs {
		if strings.EqualFold(a, arch) {
			return true
		}
	}

	return false
}

// Archs lists the accepted architecture identifiers.
func Archs() []string {
	return append([]string(nil), archs...)
}
