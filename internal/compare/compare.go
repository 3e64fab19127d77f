// Package compare implements the output and exit code comparison policies.
package compare

import (
	"slices"
	"strings"
	"unicode"

	"github.com/ethpandaops/tapcheck/internal/testcase"
)

// Exact reports whether actual equals expected once trailing whitespace is removed from
// both. An empty expected value therefore only matches empty (or whitespace-only) output.
func Exact(actual, expected string) bool {
	return trimTrailing(actual) == trimTrailing(expected)
}

// Contains reports whether expected is a substring of actual.
func Contains(actual, expected string) bool {
	return strings.Contains(actual, expected)
}

// Unordered reports whether actual and expected hold the same whitespace separated
// tokens, in any order.
func Unordered(actual, expected string) bool {
	if actual == expected {
		return true
	}

	got := strings.Fields(actual)
	want := strings.Fields(expected)

	if len(got) != len(want) {
		return false
	}

	slices.Sort(got)
	slices.Sort(want)

	return slices.Equal(got, want)
}

// ExitCode reports whether the exit codes are equal.
func ExitCode(actual, expected int) bool {
	return actual == expected
}

// Match applies the comparison selected by mode.
func Match(mode testcase.MatchMode, actual, expected string) bool {
	switch mode {
	case testcase.MatchIgnore:
		return true
	case testcase.MatchContains:
		return Contains(actual, expected)
	case testcase.MatchUnordered:
		return Unordered(actual, expected)
	default:
		return Exact(actual, expected)
	}
}

func trimTrailing(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
