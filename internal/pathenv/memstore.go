package pathenv

// MemStore is an in-memory Store for tests and non-Windows development.
// The zero value is usable and starts with an empty PATH.
type MemStore struct {
	ScopeName Scope
	Path      PathString
	LoadErr   error
	SaveErr   error
	Saves     int
}

var _ Store = (*MemStore)(nil)

func (m *MemStore) Load() (PathString, error) {
	if m.LoadErr != nil {
		return "", m.LoadErr
	}

	return m.Path, nil
}

func (m *MemStore) Save(path PathString) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}

	m.Path = path
	m.Saves++

	return nil
}

func (m *MemStore) Scope() Scope {
	if m.ScopeName == "" {
		return UserScope
	}

	return m.ScopeName
}
