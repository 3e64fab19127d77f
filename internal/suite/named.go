package suite

import (
	"fmt"

	"github.com/ethpandaops/tapcheck/internal/testcase"
)

// namedCase is one top-level table of a named suite. The setup table decodes into the same
// shape after checkSetup has limited it to env.
type namedCase struct {
	Args            []string          `toml:"args" yaml:"args"`
	Env             map[string]string `toml:"env" yaml:"env"`
	Command         string            `toml:"command" yaml:"command"`
	Stdout          *string           `toml:"stdout" yaml:"stdout"`
	StdoutContains  *string           `toml:"stdout_contains" yaml:"stdout_contains"`
	StdoutUnordered *string           `toml:"stdout_unordered" yaml:"stdout_unordered"`
	StdoutMode      string            `toml:"stdout_mode" yaml:"stdout_mode"`
	Stderr          *string           `toml:"stderr" yaml:"stderr"`
	ExitCode        int               `toml:"exitcode" yaml:"exitcode"`
	ExpectedFail    bool              `toml:"expected_fail" yaml:"expected_fail"`
	Timeout         *float64          `toml:"timeout" yaml:"timeout"`
	InheritEnv      bool              `toml:"inherit_env" yaml:"inherit_env"`
}

func (l *loader) buildNamed(name string, file map[string]*namedCase) (*Suite, error) {
	s := &Suite{Name: name}

	if setup := file[setupTable]; setup != nil {
		s.Env = setup.Env
	}

	for _, caseName := range sortedNames(file) {
		raw := file[caseName]
		if raw == nil {
			raw = &namedCase{}
		}

		spec, err := l.namedSpec(s, caseName, raw)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", caseName, err)
		}

		s.Cases = append(s.Cases, spec)
	}

	return s, nil
}

func (l *loader) namedSpec(s *Suite, name string, raw *namedCase) (*testcase.CaseSpec, error) {
	stdout, err := raw.stdoutExpectation()
	if err != nil {
		return nil, err
	}

	stderr, err := raw.stderrExpectation()
	if err != nil {
		return nil, err
	}

	timeout, err := l.timeout(raw.Timeout)
	if err != nil {
		return nil, err
	}

	command, err := l.command(raw.Command)
	if err != nil {
		return nil, err
	}

	return &testcase.CaseSpec{
		Suite:        s.Name,
		Name:         name,
		Command:      command,
		Args:         raw.Args,
		SuiteEnv:     s.Env,
		Env:          raw.Env,
		InheritEnv:   raw.InheritEnv,
		Stdout:       stdout,
		Stderr:       stderr,
		ExitCode:     raw.ExitCode,
		ExpectedFail: raw.ExpectedFail,
		Timeout:      timeout,
	}, nil
}

func (c *namedCase) stdoutExpectation() (testcase.Expectation, error) {
	set := 0
	for _, present := range []bool{c.Stdout != nil || c.StdoutMode != "", c.StdoutContains != nil, c.StdoutUnordered != nil} {
		if present {
			set++
		}
	}

	if set > 1 {
		return testcase.Expectation{}, errConflictingStdout
	}

	switch {
	case c.StdoutContains != nil:
		return testcase.Expectation{Mode: testcase.MatchContains, Text: *c.StdoutContains}, nil
	case c.StdoutUnordered != nil:
		return testcase.Expectation{Mode: testcase.MatchUnordered, Text: *c.StdoutUnordered}, nil
	}

	text := ""
	if c.Stdout != nil {
		text = *c.Stdout
	}

	if text == IgnoreSentinel {
		return testcase.Expectation{Mode: testcase.MatchIgnore}, nil
	}

	if c.StdoutMode == "" {
		return testcase.Expectation{Mode: testcase.MatchExact, Text: text}, nil
	}

	mode, err := testcase.ParseMatchMode(c.StdoutMode)
	if err != nil {
		return testcase.Expectation{}, fmt.Errorf("stdout_mode: %w", err)
	}

	if c.Stdout == nil && mode != testcase.MatchIgnore {
		return testcase.Expectation{}, errStdoutModeTarget
	}

	return testcase.Expectation{Mode: mode, Text: text}, nil
}

func (c *namedCase) stderrExpectation() (testcase.Expectation, error) {
	if c.Stderr == nil {
		return testcase.Expectation{Mode: testcase.MatchExact}, nil
	}

	if *c.Stderr == IgnoreSentinel {
		return testcase.Expectation{Mode: testcase.MatchIgnore}, nil
	}

	return testcase.Expectation{Mode: testcase.MatchExact, Text: *c.Stderr}, nil
}
