// Package report aggregates case results and renders them as TAP or for humans.
package report

import "github.com/ethpandaops/tapcheck/internal/testcase"

// Totals counts results by status.
type Totals struct {
	Passed         int
	Failed         int
	UnexpectedPass int
	ExpectedFail   int
	Timeout        int
}

// Summarize derives Totals from results.
func Summarize(results []*testcase.Result) Totals {
	var t Totals

	for _, r := range results {
		switch r.Status {
		case testcase.StatusPass:
			t.Passed++
		case testcase.StatusFail:
			t.Failed++
		case testcase.StatusXPass:
			t.UnexpectedPass++
		case testcase.StatusXFail:
			t.ExpectedFail++
		case testcase.StatusTimeout:
			t.Timeout++
		}
	}

	return t
}

// Total is the number of results counted.
func (t Totals) Total() int {
	return t.Passed + t.Failed + t.UnexpectedPass + t.ExpectedFail + t.Timeout
}

// Success reports whether every submitted case passed or failed as expected. caseCount is
// the number of cases submitted, so a missing result also counts as a failure.
func (t Totals) Success(caseCount int) bool {
	return t.Passed+t.ExpectedFail == caseCount
}
