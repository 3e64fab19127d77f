// Package testcase defines the harness data model: the immutable description of a case
// and the Result produced by executing it.
package testcase

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout is applied to cases that do not declare a positive timeout.
const DefaultTimeout = 5 * time.Second

var errUnknownMatchMode = errors.New("unknown match mode")

// MatchMode selects how captured output is compared against the expected text.
type MatchMode int

const (
	// MatchExact compares after stripping trailing whitespace.
	MatchExact MatchMode = iota
	// MatchContains requires the expected text to appear in the output.
	MatchContains
	// MatchUnordered compares whitespace separated tokens regardless of order.
	MatchUnordered
	// MatchIgnore skips the comparison entirely.
	MatchIgnore
)

var matchModeNames = map[MatchMode]string{
	MatchExact:     "exact",
	MatchContains:  "contains",
	MatchUnordered: "unordered",
	MatchIgnore:    "ignore",
}

func (m MatchMode) String() string {
	if name, ok := matchModeNames[m]; ok {
		return name
	}

	return fmt.Sprintf("MatchMode(%d)", int(m))
}

// ParseMatchMode converts a mode name (case-insensitive) into a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for mode, name := range matchModeNames {
		if name == want {
			return mode, nil
		}
	}

	return MatchExact, fmt.Errorf("%w: %q", errUnknownMatchMode, s)
}

// UnmarshalText lets MatchMode be decoded straight from suite files.
func (m *MatchMode) UnmarshalText(text []byte) error {
	mode, err := ParseMatchMode(string(text))
	if err != nil {
		return err
	}

	*m = mode

	return nil
}

// Expectation pairs an expected text with the mode used to check it.
type Expectation struct {
	Mode MatchMode
	Text string
}

// Ignored reports whether the expectation skips its check.
func (e Expectation) Ignored() bool {
	return e.Mode == MatchIgnore
}

// Interpolator resolves placeholders in raw suite strings.
type Interpolator interface {
	Interpolate(raw string) string
}

// CaseSpec is an immutable description of one test case.
type CaseSpec struct {
	Suite string
	Name  string

	// Command is the argv prefix of the executable under test.
	Command []string
	Args    []string
	// Target is appended after Args when set.
	Target string
	// Format is appended as --format=<Format> when set.
	Format string

	SuiteEnv   map[string]string
	Env        map[string]string
	InheritEnv bool

	Stdout       Expectation
	Stderr       Expectation
	ExitCode     int
	ExpectedFail bool
	Timeout      time.Duration
}

// ID returns the case name qualified with its suite.
func (c *CaseSpec) ID() string {
	if c.Suite == "" {
		return c.Name
	}

	return c.Suite + "." + c.Name
}

// EffectiveTimeout returns Timeout, or DefaultTimeout when Timeout is not positive.
func (c *CaseSpec) EffectiveTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}

	return c.Timeout
}

// Argv composes the command line for the case, interpolating everything that came from
// the suite file.
func (c *CaseSpec) Argv(interp Interpolator) []string {
	argv := make([]string, 0, len(c.Command)+len(c.Args)+2)
	argv = append(argv, c.Command...)

	for _, arg := range c.Args {
		argv = append(argv, interp.Interpolate(arg))
	}

	if c.Target != "" {
		argv = append(argv, interp.Interpolate(c.Target))
	}

	if c.Format != "" {
		argv = append(argv, "--format="+c.Format)
	}

	return argv
}
