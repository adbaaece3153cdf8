//go:build !windows

package pathenv

// NewStore opens a registry-backed store for the given scope. There is
// no registry off Windows, so it always fails with ErrUnsupported.
func NewStore(scope Scope) (Store, error) {
	return nil, ErrUnsupported
}
