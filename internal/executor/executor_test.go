package executor

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/ethpandaops/tapcheck/internal/interpolate"
	"github.com/ethpandaops/tapcheck/internal/testcase"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T, opts ...Option) *Executor {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("executor tests rely on POSIX utilities")
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	interp := interpolate.New(interpolate.Context{Prefix: "/opt/pfx", Libdir: "lib"})

	return New(log, interp, opts...)
}

func shell(script string) []string {
	return []string{"/bin/sh", "-c", script}
}

func TestExecutor_EchoPasses(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Run(context.Background(), &testcase.CaseSpec{
		Name:    "echo-ok",
		Command: []string{"echo"},
		Args:    []string{"hi"},
		Stdout:  testcase.Expectation{Mode: testcase.MatchExact, Text: "hi"},
	})

	require.Equal(t, testcase.StatusPass, res.Status, res.Reason)
	assert.Empty(t, res.Reason)
	require.NotNil(t, res.ExitCode)
	assert.Equal(t, 0, *res.ExitCode)
	assert.Equal(t, "hi\n", res.Stdout)
	assert.True(t, res.Captured)
	assert.Equal(t, []string{"echo", "hi"}, res.Command)
}

func TestExecutor_ExpectedFailThatPasses(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Run(context.Background(), &testcase.CaseSpec{
		Name:         "echo-ok",
		Command:      []string{"echo"},
		Args:         []string{"hi"},
		Stdout:       testcase.Expectation{Text: "hi"},
		ExpectedFail: true,
	})

	assert.Equal(t, testcase.StatusXPass, res.Status)
	assert.Equal(t, xpassReason, res.Reason)
}

func TestExecutor_ExpectedFailSymmetry(t *testing.T) {
	e := newTestExecutor(t)

	base := testcase.CaseSpec{
		Name:    "mismatch",
		Command: []string{"echo"},
		Args:    []string{"actual"},
		Stdout:  testcase.Expectation{Text: "expected"},
	}

	plain := base
	res := e.Run(context.Background(), &plain)
	assert.Equal(t, testcase.StatusFail, res.Status)

	xfail := base
	xfail.ExpectedFail = true
	res = e.Run(context.Background(), &xfail)
	assert.Equal(t, testcase.StatusXFail, res.Status)
	assert.Equal(t, `Stdout was "actual\n", but expected "expected"`, res.Reason)
}

func TestExecutor_StdoutModes(t *testing.T) {
	e := newTestExecutor(t)

	tests := []struct {
		name   string
		stdout testcase.Expectation
		status testcase.Status
	}{
		{name: "exact", stdout: testcase.Expectation{Mode: testcase.MatchExact, Text: "-a -b -c"}, status: testcase.StatusPass},
		{name: "exact reordered", stdout: testcase.Expectation{Mode: testcase.MatchExact, Text: "-c -b -a"}, status: testcase.StatusFail},
		{name: "unordered reordered", stdout: testcase.Expectation{Mode: testcase.MatchUnordered, Text: "-c -b -a"}, status: testcase.StatusPass},
		{name: "unordered missing token", stdout: testcase.Expectation{Mode: testcase.MatchUnordered, Text: "-c -a"}, status: testcase.StatusFail},
		{name: "contains", stdout: testcase.Expectation{Mode: testcase.MatchContains, Text: "-b"}, status: testcase.StatusPass},
		{name: "contains absent", stdout: testcase.Expectation{Mode: testcase.MatchContains, Text: "-z"}, status: testcase.StatusFail},
		{name: "ignore", stdout: testcase.Expectation{Mode: testcase.MatchIgnore, Text: "anything"}, status: testcase.StatusPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Run(context.Background(), &testcase.CaseSpec{
				Name:    tt.name,
				Command: []string{"echo", "-a", "-b", "-c"},
				Stdout:  tt.stdout,
			})
			assert.Equal(t, tt.status, res.Status, res.Reason)
		})
	}
}

func TestExecutor_ExpectedStdoutIsInterpolated(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Run(context.Background(), &testcase.CaseSpec{
		Name:    "interp",
		Command: []string{"echo"},
		Args:    []string{"-I{prefix}/include"},
		Stdout:  testcase.Expectation{Text: "-I{prefix}/include"},
	})

	assert.Equal(t, testcase.StatusPass, res.Status, res.Reason)
	assert.Equal(t, "-I/opt/pfx/include", res.Expected)
	assert.Equal(t, []string{"echo", "-I/opt/pfx/include"}, res.Command)
}

func TestExecutor_CheckOrder(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Run(context.Background(), &testcase.CaseSpec{
		Name:    "all-wrong",
		Command: shell("echo out; echo err >&2; exit 3"),
		Stdout:  testcase.Expectation{Text: "nope"},
		Stderr:  testcase.Expectation{Text: "nope"},
	})

	assert.Equal(t, testcase.StatusFail, res.Status)
	assert.Equal(t, "Return code was 3, but expected 0", res.Reason)
	require.NotNil(t, res.ExitCode)
	assert.Equal(t, 3, *res.ExitCode)

	res = e.Run(context.Background(), &testcase.CaseSpec{
		Name:     "stdout-and-stderr-wrong",
		Command:  shell("echo out; echo err >&2; exit 3"),
		ExitCode: 3,
		Stdout:   testcase.Expectation{Text: "nope"},
		Stderr:   testcase.Expectation{Text: "nope"},
	})

	assert.Equal(t, `Stdout was "out\n", but expected "nope"`, res.Reason)
}

func TestExecutor_Stderr(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Run(context.Background(), &testcase.CaseSpec{
		Name:    "stderr-exact",
		Command: shell("echo oops >&2"),
		Stderr:  testcase.Expectation{Text: "oops"},
	})
	assert.Equal(t, testcase.StatusPass, res.Status, res.Reason)

	res = e.Run(context.Background(), &testcase.CaseSpec{
		Name:    "stderr-unexpected",
		Command: shell("echo oops >&2"),
	})
	assert.Equal(t, testcase.StatusFail, res.Status)
	assert.Equal(t, `Stderr was "oops\n", but expected ""`, res.Reason)

	res = e.Run(context.Background(), &testcase.CaseSpec{
		Name:    "stderr-ignored",
		Command: shell("echo oops >&2"),
		Stderr:  testcase.Expectation{Mode: testcase.MatchIgnore},
	})
	assert.Equal(t, testcase.StatusPass, res.Status, res.Reason)
}

func TestExecutor_Environment(t *testing.T) {
	e := newTestExecutor(t, WithOverrides(map[string]string{"CPS_PREFIX_PATH": "/tmp/remap"}))
	e.baseEnv = []string{"INHERITED=yes", "SHARED=base"}

	res := e.Run(context.Background(), &testcase.CaseSpec{
		Name:     "env",
		Command:  shell(`echo "$INHERITED $CPS_PREFIX_PATH $SHARED $CASE"`),
		SuiteEnv: map[string]string{"SHARED": "suite", "CASE": "suite"},
		Env:      map[string]string{"CASE": "{prefix}/case"},
		Stdout:   testcase.Expectation{Text: " /tmp/remap suite /opt/pfx/case"},
	})
	assert.Equal(t, testcase.StatusPass, res.Status, res.Reason)

	res = e.Run(context.Background(), &testcase.CaseSpec{
		Name:       "env-inherited",
		Command:    shell(`echo "$INHERITED $SHARED"`),
		InheritEnv: true,
		Stdout:     testcase.Expectation{Text: "yes base"},
	})
	assert.Equal(t, testcase.StatusPass, res.Status, res.Reason)
}

func TestExecutor_Timeout(t *testing.T) {
	e := newTestExecutor(t, WithWaitDelay(100*time.Millisecond))

	start := time.Now()
	res := e.Run(context.Background(), &testcase.CaseSpec{
		Name:         "sleepy",
		Command:      []string{"sleep"},
		Args:         []string{"10"},
		Timeout:      time.Second,
		ExpectedFail: true,
	})

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, testcase.StatusTimeout, res.Status)
	assert.Nil(t, res.ExitCode)
	assert.Equal(t, "Timed out after 1 seconds", res.Stderr)
	assert.Contains(t, res.Stderr, "Timed out")
}

func TestExecutor_TimeoutKillsProcessGroup(t *testing.T) {
	e := newTestExecutor(t, WithWaitDelay(100*time.Millisecond))

	start := time.Now()
	res := e.Run(context.Background(), &testcase.CaseSpec{
		Name:    "grandchild",
		Command: shell("sleep 10 & wait"),
		Timeout: 300 * time.Millisecond,
	})

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, testcase.StatusTimeout, res.Status)
	assert.Equal(t, "Timed out after 0.3 seconds", res.Stderr)
}

func TestExecutor_FinishesBeforeTimeout(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Run(context.Background(), &testcase.CaseSpec{
		Name:    "quick-sleep",
		Command: []string{"sleep", "0.2"},
		Timeout: 3 * time.Second,
	})

	assert.Equal(t, testcase.StatusPass, res.Status, res.Reason)
}

func TestExecutor_LaunchFailure(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Run(context.Background(), &testcase.CaseSpec{
		Name:    "missing",
		Command: []string{"/nonexistent/tapcheck-binary"},
	})

	assert.Equal(t, testcase.StatusFail, res.Status)
	assert.Contains(t, res.Reason, "/nonexistent/tapcheck-binary")
	assert.False(t, res.Captured)
	require.NotNil(t, res.ExitCode)
	assert.Equal(t, -1, *res.ExitCode)

	res = e.Run(context.Background(), &testcase.CaseSpec{
		Name:         "missing-xfail",
		Command:      []string{"/nonexistent/tapcheck-binary"},
		ExpectedFail: true,
	})
	assert.Equal(t, testcase.StatusXFail, res.Status)
}

func TestExecutor_EmptyCommand(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Run(context.Background(), &testcase.CaseSpec{Name: "empty"})

	assert.Equal(t, testcase.StatusFail, res.Status)
	assert.Equal(t, errEmptyCommand.Error(), res.Reason)
}

func TestExecutor_Idempotent(t *testing.T) {
	e := newTestExecutor(t)

	spec := &testcase.CaseSpec{
		Name:    "twice",
		Command: []string{"echo", "same"},
		Stdout:  testcase.Expectation{Text: "other"},
	}

	first := e.Run(context.Background(), spec)
	second := e.Run(context.Background(), spec)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Reason, second.Reason)
}

func TestExecutor_BackgroundChildHoldingOutput(t *testing.T) {
	e := newTestExecutor(t, WithWaitDelay(100*time.Millisecond))

	res := e.Run(context.Background(), &testcase.CaseSpec{
		Name:    "detached",
		Command: shell("echo hi; sleep 3 &"),
		Stdout:  testcase.Expectation{Text: "hi"},
		Timeout: 10 * time.Second,
	})

	require.Equal(t, testcase.StatusPass, res.Status, res.Reason)
	assert.True(t, res.Captured)
	assert.Equal(t, "hi\n", res.Stdout)
	require.NotNil(t, res.ExitCode)
	assert.Equal(t, 0, *res.ExitCode)

	res = e.Run(context.Background(), &testcase.CaseSpec{
		Name:     "detached-exit",
		Command:  shell("echo hi; sleep 3 & exit 4"),
		ExitCode: 4,
		Stdout:   testcase.Expectation{Text: "hi"},
		Timeout:  10 * time.Second,
	})

	require.Equal(t, testcase.StatusPass, res.Status, res.Reason)
	require.NotNil(t, res.ExitCode)
	assert.Equal(t, 4, *res.ExitCode)
}
