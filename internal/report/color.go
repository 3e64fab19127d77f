package report

import (
	"github.com/ethpandaops/tapcheck/internal/testcase"
	"github.com/fatih/color"
)

// ColorHelper provides utilities for coloring report output
type ColorHelper struct {
	enabled bool
}

// NewColorHelper creates a new color helper
// Colors are enabled only when outputting to a terminal
func NewColorHelper() *ColorHelper {
	return &ColorHelper{
		enabled: !color.NoColor,
	}
}

// Success returns green colored text
func (c *ColorHelper) Success(text string) string {
	if !c.enabled {
		return text
	}
	return color.GreenString(text)
}

// Failure returns red colored text
func (c *ColorHelper) Failure(text string) string {
	if !c.enabled {
		return text
	}
	return color.RedString(text)
}

// Warning returns yellow colored text
func (c *ColorHelper) Warning(text string) string {
	if !c.enabled {
		return text
	}
	return color.YellowString(text)
}

// Info returns cyan colored text
func (c *ColorHelper) Info(text string) string {
	if !c.enabled {
		return text
	}
	return color.CyanString(text)
}

// Muted returns gray colored text
func (c *ColorHelper) Muted(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgHiBlack).Sprint(text)
}

// Bold returns bold text
func (c *ColorHelper) Bold(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.Bold).Sprint(text)
}

// Header returns bold cyan text for section headers
func (c *ColorHelper) Header(text string) string {
	if !c.enabled {
		return text
	}
	return color.New(color.FgCyan, color.Bold).Sprint(text)
}

// FormatStatus returns the symbol and label for a status, colored by outcome.
func (c *ColorHelper) FormatStatus(status testcase.Status) string {
	switch status {
	case testcase.StatusPass:
		return c.Success("✓ PASS")
	case testcase.StatusXFail:
		return c.Muted("✓ XFAIL")
	case testcase.StatusXPass:
		return c.Warning("✗ XPASS")
	case testcase.StatusTimeout:
		return c.Failure("✗ TIMEOUT")
	default:
		return c.Failure("✗ FAIL")
	}
}

// FormatCount colors a counter: zero is muted, otherwise good counters are green and bad
// ones red.
func (c *ColorHelper) FormatCount(text string, n int, good bool) string {
	switch {
	case n == 0:
		return c.Muted(text)
	case good:
		return c.Success(text)
	default:
		return c.Failure(text)
	}
}
