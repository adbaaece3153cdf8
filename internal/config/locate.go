package config

import (
	"os"
	"path/filepath"
)

// EnvVar overrides the configuration file location when set.
const EnvVar = "QUICKENCL_TOOLS"

// Locate resolves the configuration file path. QUICKENCL_TOOLS wins
// when set; otherwise the file next to the running executable is used,
// matching the installed layout where every wrapper binary and its
// tools.json share one directory. A file in the current directory is
// the final fallback for development runs.
func Locate() (string, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return path, nil
	}

	if exe, err := os.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(exe), FileName)

		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	return "", &Error{Reason: FileName + " not found next to the executable or in the current directory"}
}
