package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ethpandaops/tapcheck/internal/metrics"
	"github.com/ethpandaops/tapcheck/internal/testcase"
	"github.com/kballard/go-shellquote"
)

// Human prints live progress lines while cases complete and a detailed report at the end.
type Human struct {
	w       io.Writer
	verbose bool
	colors  *ColorHelper
}

// NewHuman creates a human-readable reporter on w. With verbose, passing and expected
// failing cases are reported too.
func NewHuman(w io.Writer, verbose bool) *Human {
	return &Human{
		w:       w,
		verbose: verbose,
		colors:  NewColorHelper(),
	}
}

// CaseFinished prints the progress line for result. Each line is written with a single
// call so concurrent cases cannot interleave within it.
func (h *Human) CaseFinished(result *testcase.Result) {
	var line string

	switch result.Status {
	case testcase.StatusPass:
		if !h.verbose {
			return
		}
		line = fmt.Sprintf("%s: %s\n", result.ID(), h.colors.Success("passed"))
	case testcase.StatusXFail:
		if !h.verbose {
			return
		}
		line = fmt.Sprintf("%s: %s\n  reason: %s\n", result.ID(), h.colors.Muted("expected failure"), result.Reason)
	case testcase.StatusXPass:
		line = fmt.Sprintf("%s: %s\n", result.ID(), h.colors.Warning("unexpected passed"))
	case testcase.StatusTimeout:
		line = fmt.Sprintf("%s: %s\n  reason: %s\n", result.ID(), h.colors.Failure("timeout"), result.Stderr)
	default:
		line = fmt.Sprintf("%s: %s\n  reason: %s\n", result.ID(), h.colors.Failure("failure"), result.Reason)
	}

	_, _ = io.WriteString(h.w, line)
}

// Render prints failure details for every Fail, XPass and Timeout result followed by the
// totals table.
func (h *Human) Render(results []*testcase.Result, summary metrics.SummaryMetric) {
	var b strings.Builder

	failed := make([]*testcase.Result, 0)
	for _, r := range results {
		if !r.Status.OK() {
			failed = append(failed, r)
		}
	}

	if len(failed) > 0 {
		b.WriteString("\n" + h.colors.Header("▸ Failed Case Details") + "\n\n")

		for i, r := range failed {
			if i > 0 {
				b.WriteString("\n")
			}

			h.writeDetail(&b, r)
		}
	}

	if h.verbose && len(results) > 0 {
		b.WriteString("\n" + h.colors.Header("▸ Case Results") + "\n\n")
		b.WriteString(h.resultsTable(results))
	}

	b.WriteString("\n" + h.colors.Header("▸ Totals") + "\n\n")
	b.WriteString(h.totalsTable(Summarize(results), summary))

	_, _ = io.WriteString(h.w, b.String())
}

func (h *Human) writeDetail(b *strings.Builder, r *testcase.Result) {
	const pad = "              "

	exitCode := "<none>"
	if r.ExitCode != nil {
		exitCode = strconv.Itoa(*r.ExitCode)
	}

	stdout, stderr := r.Stdout, r.Stderr
	if !r.Captured {
		stdout, stderr = noStdout, noStderr
	}

	fmt.Fprintf(b, "%s (%s)\n", h.colors.Bold(r.ID()), FormatDuration(r.Duration))
	fmt.Fprintf(b, "  %s %s\n", h.colors.Failure("result:    "), r.Status)

	if r.Reason != "" {
		fmt.Fprintf(b, "  %s %s\n", h.colors.Failure("reason:    "), indent(r.Reason, pad))
	}

	fmt.Fprintf(b, "  %s %s\n", h.colors.Info("returncode:"), exitCode)
	fmt.Fprintf(b, "  %s %s\n", h.colors.Warning("stdout:    "), indent(stdout, pad))
	fmt.Fprintf(b, "  %s %s\n", h.colors.Info("expected:  "), indent(r.Expected, pad))
	fmt.Fprintf(b, "  %s %s\n", h.colors.Warning("stderr:    "), indent(stderr, pad))
	fmt.Fprintf(b, "  %s %s\n", h.colors.Muted("command:   "), shellquote.Join(r.Command...))
}

func (h *Human) resultsTable(results []*testcase.Result) string {
	headers := []string{"Case", "Status", "Duration"}
	rows := make([][]string, 0, len(results))

	for _, r := range results {
		rows = append(rows, []string{
			r.ID(),
			h.colors.FormatStatus(r.Status),
			FormatDuration(r.Duration),
		})
	}

	return RenderTable(headers, rows, WithRightAligned(2))
}

func (h *Human) totalsTable(t Totals, summary metrics.SummaryMetric) string {
	count := func(n int, good bool) string {
		return h.colors.FormatCount(strconv.Itoa(n), n, good)
	}

	rows := [][]string{
		{"Passes", count(t.Passed, true)},
		{"Failures", count(t.Failed, false)},
		{"Expected Failures", count(t.ExpectedFail, true)},
		{"Unexpected Passes", count(t.UnexpectedPass, false)},
		{"Timeouts", count(t.Timeout, false)},
		{"Total", h.colors.Bold(strconv.Itoa(t.Total()))},
		{"Duration", FormatDuration(summary.TotalDuration)},
		{"Case Time", FormatDuration(summary.CaseTime)},
	}

	if summary.Slowest != "" {
		rows = append(rows, []string{"Slowest", fmt.Sprintf("%s (%s)", summary.Slowest, FormatDuration(summary.SlowestTime))})
	}

	return RenderTable([]string{"Metric", "Value"}, rows, WithRightAligned(1))
}
