// Package executor runs a single case as a child process and classifies the outcome.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ethpandaops/tapcheck/internal/compare"
	"github.com/ethpandaops/tapcheck/internal/testcase"
	"github.com/sirupsen/logrus"
)

const (
	// defaultWaitDelay bounds how long output pipes are drained after the child is killed.
	defaultWaitDelay = time.Second

	xpassReason = "expected to fail, but passed"
)

var errEmptyCommand = errors.New("empty command")

// Executor runs cases. It is safe for concurrent use.
type Executor struct {
	log       logrus.FieldLogger
	interp    testcase.Interpolator
	baseEnv   []string
	overrides map[string]string
	waitDelay time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithOverrides sets run-level variables applied to every case, before suite and case
// variables.
func WithOverrides(vars map[string]string) Option {
	return func(e *Executor) {
		e.overrides = vars
	}
}

// WithWaitDelay sets how long to wait for output after killing a timed out child.
func WithWaitDelay(d time.Duration) Option {
	return func(e *Executor) {
		e.waitDelay = d
	}
}

// New creates an Executor resolving suite strings through interp.
func New(log logrus.FieldLogger, interp testcase.Interpolator, opts ...Option) *Executor {
	e := &Executor{
		log:       log.WithField("component", "executor"),
		interp:    interp,
		baseEnv:   os.Environ(),
		waitDelay: defaultWaitDelay,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run executes spec and returns its Result. Test failures, timeouts and launch failures are
// all reported through the Result.
func (e *Executor) Run(ctx context.Context, spec *testcase.CaseSpec) *testcase.Result {
	var (
		argv     = spec.Argv(e.interp)
		timeout  = spec.EffectiveTimeout()
		expected = e.interp.Interpolate(spec.Stdout.Text)
		log      = e.log.WithField("case", spec.ID())
	)

	result := &testcase.Result{
		Suite:    spec.Suite,
		Name:     spec.Name,
		Command:  argv,
		Expected: expected,
	}

	if len(argv) == 0 {
		result.ExitCode = testcase.IntPtr(-1)
		return finish(result, errEmptyCommand.Error(), spec.ExpectedFail)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: running the command under test is the point
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Env = e.environment(spec)
	cmd.WaitDelay = e.waitDelay
	isolateProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.WithField("argv", argv).Debug("starting case")

	start := time.Now()
	err := cmd.Run()
	result.Duration = time.Since(start)

	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		log.WithField("timeout", timeout).Debug("case timed out")

		result.Status = testcase.StatusTimeout
		result.Captured = true
		result.Stdout = stdout.String()
		result.Stderr = fmt.Sprintf("Timed out after %s seconds", formatSeconds(timeout))

		return result
	}

	// A nil ProcessState means the child never started. Otherwise it exited, possibly with
	// ErrWaitDelay when a leftover grandchild kept the output pipes open.
	if err != nil && cmd.ProcessState == nil {
		log.WithError(err).Debug("failed to launch case")

		result.ExitCode = testcase.IntPtr(-1)
		result.Stderr = stderr.String()

		return finish(result, err.Error(), spec.ExpectedFail)
	}

	if errors.Is(err, exec.ErrWaitDelay) {
		log.Debug("case exited with output still held open by a child")
	}

	result.Captured = true
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.ExitCode = testcase.IntPtr(cmd.ProcessState.ExitCode())

	reason := e.check(spec, result, expected)

	log.WithFields(logrus.Fields{
		"exit_code": *result.ExitCode,
		"duration":  result.Duration,
		"mismatch":  reason != "",
	}).Debug("case finished")

	return finish(result, reason, spec.ExpectedFail)
}

// check evaluates exit code, stdout and stderr in that order and returns the message of
// the first failing check.
func (e *Executor) check(spec *testcase.CaseSpec, result *testcase.Result, expectedStdout string) string {
	var reasons []string

	if !compare.ExitCode(*result.ExitCode, spec.ExitCode) {
		reasons = append(reasons, fmt.Sprintf("Return code was %d, but expected %d", *result.ExitCode, spec.ExitCode))
	}

	if !compare.Match(spec.Stdout.Mode, result.Stdout, expectedStdout) {
		reasons = append(reasons, stdoutReason(spec.Stdout.Mode, result.Stdout, expectedStdout))
	}

	if !spec.Stderr.Ignored() {
		expectedStderr := e.interp.Interpolate(spec.Stderr.Text)
		if !compare.Exact(result.Stderr, expectedStderr) {
			reasons = append(reasons, fmt.Sprintf("Stderr was %q, but expected %q", result.Stderr, expectedStderr))
		}
	}

	if len(reasons) == 0 {
		return ""
	}

	return reasons[0]
}

func stdoutReason(mode testcase.MatchMode, actual, expected string) string {
	switch mode {
	case testcase.MatchContains:
		return fmt.Sprintf("Stdout was %q, which does not contain %q", actual, expected)
	case testcase.MatchUnordered:
		return fmt.Sprintf("Stdout was %q, which does not match %q in any order", actual, expected)
	default:
		return fmt.Sprintf("Stdout was %q, but expected %q", actual, expected)
	}
}

// environment merges inherited, run-level, suite and case variables, in that order.
func (e *Executor) environment(spec *testcase.CaseSpec) []string {
	merged := make(map[string]string)

	if spec.InheritEnv {
		for _, kv := range e.baseEnv {
			if k, v, ok := strings.Cut(kv, "="); ok {
				merged[k] = v
			}
		}
	}

	for k, v := range e.overrides {
		merged[k] = v
	}

	for k, v := range spec.SuiteEnv {
		merged[k] = e.interp.Interpolate(v)
	}

	for k, v := range spec.Env {
		merged[k] = e.interp.Interpolate(v)
	}

	env := make([]string, 0, len(merged))
	for k, v := range merged {
		env = append(env, k+"="+v)
	}

	sort.Strings(env)

	return env
}

func finish(result *testcase.Result, reason string, expectedFail bool) *testcase.Result {
	result.Status = testcase.Resolve(reason != "", expectedFail)

	switch result.Status {
	case testcase.StatusXPass:
		result.Reason = xpassReason
	case testcase.StatusPass:
		result.Reason = ""
	default:
		result.Reason = reason
	}

	return result
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
