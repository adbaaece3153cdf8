package logging

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// EnvVar names the environment variable that controls the diagnostic
// log level. Anything written by the logger goes to stderr so it never
// mixes with forwarded compiler output on stdout.
const EnvVar = "QUICKENCL_LOG"

// Init configures the default logger for the named binary. The level
// comes from QUICKENCL_LOG (debug, info, warn, error); unset or
// unrecognised values keep the logger quiet at error level.
func Init(prefix string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportTimestamp: false,
	})

	logger.SetLevel(levelFromEnv())
	log.SetDefault(logger)
}

func levelFromEnv() log.Level {
	switch strings.ToLower(os.Getenv(EnvVar)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}
