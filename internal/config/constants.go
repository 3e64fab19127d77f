package config

import (
	"errors"
	"time"
)

const (
	// EnvLogLevel sets the logrus level.
	EnvLogLevel = "LOG_LEVEL"
	// EnvPrefixPath is the install prefix searched by the executable under test.
	EnvPrefixPath = "CPS_PREFIX_PATH"
	// EnvClickhouseURL enables run history when set.
	EnvClickhouseURL = "TAPCHECK_CLICKHOUSE_URL"
	// EnvTimeout overrides the default per-case timeout.
	EnvTimeout = "TAPCHECK_TIMEOUT"
	// EnvNoColor disables colored output when set to any value.
	EnvNoColor = "NO_COLOR"

	// DefaultLogLevel is used when LOG_LEVEL is unset.
	DefaultLogLevel = "info"
	// DefaultTimeout bounds a case that declares no timeout.
	DefaultTimeout = 5 * time.Second
	// DefaultLibdir is the libdir suites are written against.
	DefaultLibdir = "lib"
)

var errNonPositiveTimeout = errors.New("timeout must be positive")
