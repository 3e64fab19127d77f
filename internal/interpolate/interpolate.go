// Package interpolate resolves {placeholder} references in suite strings.
package interpolate

import (
	"strings"

	"github.com/ethpandaops/tapcheck/internal/testcase"
)

// Context carries the values placeholders resolve to.
type Context struct {
	Prefix   string
	Libdir   string
	TestRoot string
	// Vars holds additional placeholders; they never shadow the fixed ones.
	Vars map[string]string
}

// Formatter substitutes {prefix}, {libdir}, {test_root} and any Vars. Doubled braces
// produce literal braces and unknown placeholders are kept verbatim.
type Formatter struct {
	values map[string]string
}

// New builds a Formatter for ctx.
func New(ctx Context) *Formatter {
	values := make(map[string]string, len(ctx.Vars)+3)
	for k, v := range ctx.Vars {
		values[k] = v
	}

	values["prefix"] = ctx.Prefix
	values["libdir"] = ctx.Libdir
	values["test_root"] = ctx.TestRoot

	return &Formatter{values: values}
}

// Interpolate resolves every placeholder in raw.
func (f *Formatter) Interpolate(raw string) string {
	if !strings.ContainsAny(raw, "{}") {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))

	for i := 0; i < len(raw); i++ {
		c := raw[i]

		switch {
		case c == '{' && i+1 < len(raw) && raw[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(raw) && raw[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				b.WriteString(raw[i:])
				return b.String()
			}

			key := raw[i+1 : i+1+end]
			if v, ok := f.values[key]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(raw[i : i+2+end])
			}

			i += end + 1
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

var _ testcase.Interpolator = (*Formatter)(nil)
