package report

import (
	"fmt"
	"io"

	"github.com/ethpandaops/tapcheck/internal/testcase"
)

// TAP writes a Test Anything Protocol stream: a plan line followed by one ok/not ok line per
// case in completion order.
type TAP struct {
	w io.Writer
}

// NewTAP creates a TAP writer on w.
func NewTAP(w io.Writer) *TAP {
	return &TAP{w: w}
}

// Plan writes the 1..N header. It must be called before any case completes.
func (t *TAP) Plan(count int) {
	fmt.Fprintf(t.w, "1..%d\n", count)
}

// CaseFinished writes the status line for result.
func (t *TAP) CaseFinished(result *testcase.Result) {
	fmt.Fprintln(t.w, Line(result))
}

// Line formats the TAP line for result.
func Line(result *testcase.Result) string {
	if result.Status.OK() {
		return "ok - " + result.Name
	}

	return "not ok - " + result.Name
}
