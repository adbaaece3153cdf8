package pathenv

import "errors"

// Scope selects which persistent PATH a store operates on.
type Scope string

const (
	// UserScope targets the per-user PATH under HKCU\Environment.
	UserScope Scope = "user"

	// SystemScope targets the machine-wide PATH under
	// HKLM\SYSTEM\CurrentControlSet\Control\Session Manager\Environment.
	SystemScope Scope = "system"
)

// ErrUnsupported is returned by NewStore on platforms without a
// persistent PATH to edit.
var ErrUnsupported = errors.New("persistent PATH editing is only available on Windows")

// Store reads and writes a persistent PATH value.
type Store interface {
	// Load returns the stored PATH. A missing value loads as the
	// empty path rather than an error.
	Load() (PathString, error)

	// Save replaces the stored PATH with the given value.
	Save(path PathString) error

	// Scope identifies which PATH the store manages.
	Scope() Scope
}
