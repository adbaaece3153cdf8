//go:build windows

package pathenv

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const pathValueName = "Path"

type registryStore struct {
	scope Scope
	root  registry.Key
	key   string
}

// NewStore opens a registry-backed store for the given scope.
func NewStore(scope Scope) (Store, error) {
	switch scope {
	case UserScope:
		return &registryStore{
			scope: scope,
			root:  registry.CURRENT_USER,
			key:   `Environment`,
		}, nil
	case SystemScope:
		return &registryStore{
			scope: scope,
			root:  registry.LOCAL_MACHINE,
			key:   `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`,
		}, nil
	default:
		return nil, fmt.Errorf("unknown scope: %s", scope)
	}
}

func (s *registryStore) Scope() Scope {
	return s.scope
}

func (s *registryStore) Load() (PathString, error) {
	key, err := registry.OpenKey(s.root, s.key, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("failed to open %s environment key: %w", s.scope, err)
	}
	defer key.Close()

	value, _, err := key.GetStringValue(pathValueName)
	if errors.Is(err, registry.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to read %s value: %w", pathValueName, err)
	}

	return PathString(value), nil
}

func (s *registryStore) Save(path PathString) error {
	key, err := registry.OpenKey(s.root, s.key, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open %s environment key: %w", s.scope, err)
	}
	defer key.Close()

	// Keep the existing value type so entries like %SystemRoot% stay
	// expandable. A missing value defaults to REG_EXPAND_SZ, which is
	// what Windows itself uses for PATH.
	_, valueType, err := key.GetValue(pathValueName, nil)
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("failed to inspect %s value: %w", pathValueName, err)
	}

	if valueType == registry.SZ {
		err = key.SetStringValue(pathValueName, string(path))
	} else {
		err = key.SetExpandStringValue(pathValueName, string(path))
	}

	if err != nil {
		return fmt.Errorf("failed to write %s value: %w", pathValueName, err)
	}

	return nil
}
