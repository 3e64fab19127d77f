package report

import (
	"bytes"
	"io"

	"github.com/olekukonko/tablewriter"
)

// RenderOption adjusts one table.
type RenderOption func(*tableStyle)

type tableStyle struct {
	rightAligned map[int]bool
}

// WithRightAligned right-aligns the given zero-based columns, typically counts and durations.
func WithRightAligned(columns ...int) RenderOption {
	return func(s *tableStyle) {
		for _, c := range columns {
			s.rightAligned[c] = true
		}
	}
}

func (s *tableStyle) alignments(columns int) []int {
	aligns := make([]int, columns)
	for i := range aligns {
		aligns[i] = tablewriter.ALIGN_LEFT
		if s.rightAligned[i] {
			aligns[i] = tablewriter.ALIGN_RIGHT
		}
	}

	return aligns
}

// RenderTable renders rows under headers into a string.
func RenderTable(headers []string, rows [][]string, opts ...RenderOption) string {
	buf := &bytes.Buffer{}
	RenderTableTo(buf, headers, rows, opts...)
	return buf.String()
}

// RenderTableTo renders rows under headers to w.
func RenderTableTo(w io.Writer, headers []string, rows [][]string, opts ...RenderOption) {
	style := &tableStyle{rightAligned: make(map[int]bool)}
	for _, opt := range opts {
		opt(style)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnAlignment(style.alignments(len(headers)))
	table.SetCenterSeparator("")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.SetHeaderLine(true)
	table.SetBorder(true)
	table.SetTablePadding(" ")

	table.AppendBulk(rows)
	table.Render()
}
