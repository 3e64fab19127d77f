package interpolate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatter_Interpolate(t *testing.T) {
	f := New(Context{
		Prefix:   "/opt/x",
		Libdir:   "lib64",
		TestRoot: "/src/tests",
		Vars:     map[string]string{"name": "zlib", "prefix": "shadowed"},
	})

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "no placeholders", raw: "-I/usr/include", expected: "-I/usr/include"},
		{name: "prefix", raw: "-I{prefix}/include", expected: "-I/opt/x/include"},
		{name: "several", raw: "{prefix}/{libdir}/cps/{name}.cps", expected: "/opt/x/lib64/cps/zlib.cps"},
		{name: "test root", raw: "{test_root}/data", expected: "/src/tests/data"},
		{name: "fixed keys win over vars", raw: "{prefix}", expected: "/opt/x"},
		{name: "unknown kept", raw: "{unknown}/x", expected: "{unknown}/x"},
		{name: "escaped braces", raw: "{{prefix}}", expected: "{prefix}"},
		{name: "unterminated", raw: "a{prefix", expected: "a{prefix"},
		{name: "lone closing brace", raw: "a}b", expected: "a}b"},
		{name: "empty", raw: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Interpolate(tt.raw))
		})
	}
}

func TestFormatter_IdempotentWithoutPlaceholders(t *testing.T) {
	f := New(Context{Prefix: "/p"})

	for _, raw := range []string{"plain", "-L/usr/lib -lfoo", "{nope}"} {
		once := f.Interpolate(raw)
		assert.Equal(t, once, f.Interpolate(once))
	}
}
