package setupcli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	// autoConfName is the auto-configuration tool shipped next to the
	// wrapper binaries. It probes the machine for MSVC and writes
	// tools.json.
	autoConfName = "QuickenAutoConf.exe"

	// installLogName receives the auto-configuration transcript.
	installLogName = "quickencl-install.log"
)

// OutputCommander is the subset of exec.Cmd used for auto-configuration.
type OutputCommander interface {
	CombinedOutput() ([]byte, error)
}

// autoConfCommand is swapped in tests.
var autoConfCommand = func(name string, args ...string) OutputCommander {
	return exec.Command(name, args...)
}

// runAutoConf executes the auto-configuration tool from the install
// directory and writes its transcript next to the installed binaries.
// A failed run still leaves the transcript behind for troubleshooting.
func runAutoConf(program, dir string) error {
	c := autoConfCommand(program)
	if cmd, ok := c.(*exec.Cmd); ok {
		cmd.Dir = dir
	}

	out, runErr := c.CombinedOutput()

	result := "ok"
	if runErr != nil {
		result = runErr.Error()
	}

	transcript := fmt.Sprintf("command: %s\ntime: %s\nresult: %s\n\n%s",
		program, time.Now().Format(time.RFC3339), result, out)

	logPath := filepath.Join(dir, installLogName)
	if err := os.WriteFile(logPath, []byte(transcript), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", installLogName, err)
	}

	if runErr != nil {
		return fmt.Errorf("%s: %w (transcript in %s)", program, runErr, logPath)
	}

	return nil
}
