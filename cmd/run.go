package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ethpandaops/tapcheck/internal/config"
	"github.com/ethpandaops/tapcheck/internal/executor"
	"github.com/ethpandaops/tapcheck/internal/history"
	"github.com/ethpandaops/tapcheck/internal/interpolate"
	"github.com/ethpandaops/tapcheck/internal/metrics"
	"github.com/ethpandaops/tapcheck/internal/prefix"
	"github.com/ethpandaops/tapcheck/internal/report"
	"github.com/ethpandaops/tapcheck/internal/scheduler"
	"github.com/ethpandaops/tapcheck/internal/suite"
	"github.com/ethpandaops/tapcheck/internal/testcase"
	"github.com/ethpandaops/tapcheck/pkg/interactive"
	"github.com/fatih/color"
	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
)

var (
	// errSuiteFailed signals a completed run with failures. The report already says why.
	errSuiteFailed     = errors.New("suite failed")
	errEmptyExecutable = errors.New("executable must not be empty")
)

// picker narrows the loaded cases when --pick is set. Tests replace it.
var picker = func(cases []*testcase.CaseSpec) ([]*testcase.CaseSpec, error) {
	return interactive.NewPicker().Pick(cases)
}

// run loads the suites, executes every case and reports to out. It returns errSuiteFailed
// when any case did not pass or fail as expected.
func run(ctx context.Context, base *logrus.Logger, opts runOptions, args []string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := base
	if opts.verbose {
		log = newLogger(cfg.LogLevel, true)
	}

	if opts.noColor || cfg.NoColor || opts.tap {
		color.NoColor = true
	}

	runner, err := shellquote.Split(args[0])
	if err != nil {
		return fmt.Errorf("parsing executable %q: %w", args[0], err)
	}

	if len(runner) == 0 {
		return errEmptyExecutable
	}

	timeout := opts.timeout
	if timeout <= 0 {
		timeout = cfg.DefaultTimeout
	}

	loader := suite.NewLoader(log, runner, suite.WithDefaultTimeout(timeout))

	suites, err := loader.LoadAll(args[1:])
	if err != nil {
		return err
	}

	cases := suite.Cases(suites)

	if opts.pick {
		if cases, err = picker(cases); err != nil {
			return err
		}
	}

	if err := scheduler.Validate(cases); err != nil {
		return fmt.Errorf("invalid suites: %w", err)
	}

	testRoot, err := resolveTestRoot(opts.testRoot)
	if err != nil {
		return err
	}

	mapping, err := prefix.Remap(log, prefix.Options{
		Libdir:     opts.libdir,
		Prefix:     opts.prefix,
		PrefixPath: cfg.PrefixPath,
	})
	if err != nil {
		return fmt.Errorf("remapping prefix: %w", err)
	}
	defer func() {
		if closeErr := mapping.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("Failed to remove remapped prefix")
		}
	}()

	requested := opts.prefix
	if requested == "" {
		requested = testRoot
	}

	interp := interpolate.New(interpolate.Context{
		Prefix:   mapping.PrefixOr(requested),
		Libdir:   opts.libdir,
		TestRoot: testRoot,
		Vars:     opts.vars,
	})

	exec := executor.New(log, interp, executor.WithOverrides(mapping.Env()))
	collector := metrics.NewCollector(log)

	observers := []scheduler.Observer{collector}

	var human *report.Human
	if opts.tap {
		tap := report.NewTAP(out)
		tap.Plan(len(cases))
		observers = append(observers, tap)
	} else {
		human = report.NewHuman(out, opts.verbose)
		observers = append(observers, human)
	}

	log.WithFields(logrus.Fields{
		"suites": len(suites),
		"cases":  len(cases),
		"prefix": mapping.PrefixOr(requested),
		"libdir": opts.libdir,
	}).Debug("running cases")

	if err := collector.Start(ctx); err != nil {
		return fmt.Errorf("starting metrics collector: %w", err)
	}

	startedAt := time.Now()

	results, err := scheduler.New(log, exec, observers...).RunSuite(ctx, cases)

	if stopErr := collector.Stop(); stopErr != nil {
		log.WithError(stopErr).Warn("Failed to stop metrics collector")
	}

	if err != nil {
		return fmt.Errorf("running cases: %w", err)
	}

	if human != nil {
		human.Render(results, collector.GetSummary())
	}

	url := opts.record
	if url == "" {
		url = cfg.ClickhouseURL
	}

	if url != "" {
		recordRun(ctx, log, url, history.NewRun(runner, startedAt), results)
	}

	if !report.Summarize(results).Success(len(cases)) {
		return errSuiteFailed
	}

	return nil
}

// recordRun stores results. Failures are logged and never affect the exit code.
func recordRun(ctx context.Context, log logrus.FieldLogger, url string, run history.Run, results []*testcase.Result) {
	recorder := history.NewRecorder(log, url)

	if err := recorder.Start(ctx); err != nil {
		log.WithError(err).Warn("Failed to start history recorder, results not recorded")
		return
	}
	defer func() {
		if err := recorder.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop history recorder")
		}
	}()

	if err := recorder.Record(ctx, run, results); err != nil {
		log.WithError(err).Warn("Failed to record results")
		return
	}

	log.WithField("run", run.ID).Info("Recorded results")
}

func resolveTestRoot(root string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}

		return wd, nil
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving test root %s: %w", root, err)
	}

	return abs, nil
}
