package testcase

import (
	"fmt"
	"time"
)

// Status is the outcome of a single case.
type Status int

const (
	// StatusPass means every check matched.
	StatusPass Status = iota
	// StatusFail means a check did not match.
	StatusFail
	// StatusXPass means a known-failing case passed.
	StatusXPass
	// StatusXFail means a known-failing case failed.
	StatusXFail
	// StatusTimeout means the child outlived its deadline.
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusXPass:
		return "xpass"
	case StatusXFail:
		return "xfail"
	case StatusTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// OK reports whether the status counts as a harness success.
func (s Status) OK() bool {
	return s == StatusPass || s == StatusXFail
}

// Resolve maps the presence of a mismatch and the expected-fail flag onto a status.
func Resolve(mismatch, expectedFail bool) Status {
	switch {
	case !mismatch && !expectedFail:
		return StatusPass
	case !mismatch && expectedFail:
		return StatusXPass
	case !expectedFail:
		return StatusFail
	default:
		return StatusXFail
	}
}

// Result is the outcome of executing one CaseSpec. It is never modified after the
// executor returns it.
type Result struct {
	Suite  string
	Name   string
	Status Status
	// Reason is set for Fail, XFail and XPass.
	Reason string

	Stdout string
	Stderr string
	// Captured is false when the process never started.
	Captured bool
	// ExitCode is nil only for timeouts.
	ExitCode *int

	Command  []string
	Expected string
	Duration time.Duration
}

// ID returns the result name qualified with its suite.
func (r *Result) ID() string {
	if r.Suite == "" {
		return r.Name
	}

	return r.Suite + "." + r.Name
}

// IntPtr returns a pointer to a copy of v.
func IntPtr(v int) *int {
	return &v
}
