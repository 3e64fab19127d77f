package cmd

import (
	"fmt"
	"os"

	"github.com/ethpandaops/tapcheck/internal/config"
	"github.com/sirupsen/logrus"
)

// newLogger creates a stderr logger at level. Verbose forces DebugLevel; an empty or
// invalid level falls back to info.
func newLogger(level string, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if verbose {
		log.SetLevel(logrus.DebugLevel)
		return log
	}

	if level == "" {
		level = config.DefaultLogLevel
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s '%s', defaulting to 'info'\n", config.EnvLogLevel, level)
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return log
}
