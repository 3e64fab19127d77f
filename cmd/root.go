package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethpandaops/tapcheck/internal/config"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Logger is the shared logger instance for all commands
	Logger *logrus.Logger

	opts = runOptions{}

	rootCmd = &cobra.Command{
		Use:   "tapcheck <executable> <suite>...",
		Short: "tapcheck - concurrent command-line test harness",
		Long: `tapcheck runs every case of one or more suite files against an executable,
concurrently, and compares exit code, stdout and stderr with the expected values.

Suites are TOML or YAML. Named suites define one table per case (plus an optional
[setup] table); list suites define [[case]] entries.

Examples:
  tapcheck ./build/pkgconf tests/pkgconf/basic.toml tests/pkgconf/requires.toml
  tapcheck --tap "./build/pkgconf --static" tests/pkgconf/static.toml
  tapcheck --libdir lib64 ./build/cps-config tests/cases.toml
  tapcheck --var arch=x86_64 ./build/pkgconf tests/pkgconf/cross.toml`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("timeout") {
				opts.timeout = 0
			}

			return run(cmd.Context(), Logger, opts, args, cmd.OutOrStdout())
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSuiteFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()

	InitLogger()

	rootCmd.PersistentFlags().String("env", "", "Environment file to load (default: .env)")

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.tap, "tap", false, "Print TAP compatible output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print passing cases and debug logs")
	flags.StringVar(&opts.libdir, "libdir", config.DefaultLibdir, "The build system configured libdir")
	flags.StringVar(&opts.prefix, "prefix", "", "The prefix cases are relative to (default: test root)")
	flags.StringVar(&opts.testRoot, "test-root", "", "Value of {test_root} in suites (default: current directory)")
	flags.DurationVar(&opts.timeout, "timeout", config.DefaultTimeout, "Timeout for cases that do not declare one")
	flags.StringVar(&opts.record, "record", "", "ClickHouse URL to record results to (default: $"+config.EnvClickhouseURL+")")
	flags.BoolVar(&opts.pick, "pick", false, "Interactively choose which cases to run")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.StringToStringVar(&opts.vars, "var", nil, "Extra {name} placeholder for suites, as name=value (repeatable)")
}

// InitLogger (re)creates the shared logger from LOG_LEVEL.
func InitLogger() {
	Logger = newLogger(os.Getenv(config.EnvLogLevel), false)
}

// runOptions holds the root command flags.
type runOptions struct {
	tap      bool
	verbose  bool
	libdir   string
	prefix   string
	testRoot string
	timeout  time.Duration
	record   string
	pick     bool
	noColor  bool
	vars     map[string]string
}
