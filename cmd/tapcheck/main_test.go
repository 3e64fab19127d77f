package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "absent", args: []string{"pkgconf", "suite.toml"}, want: ""},
		{name: "separate value", args: []string{"--env", "ci.env", "pkgconf", "s.toml"}, want: "ci.env"},
		{name: "equals form", args: []string{"pkgconf", "--env=ci.env", "s.toml"}, want: "ci.env"},
		{name: "missing value", args: []string{"pkgconf", "s.toml", "--env"}, want: ""},
		{name: "after terminator", args: []string{"--", "--env", "x"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseEnvFlag(tt.args))
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ci.env")
	require.NoError(t, os.WriteFile(path, []byte("TAPCHECK_MAIN_TEST=from-file\n"), 0o600))

	t.Setenv("TAPCHECK_MAIN_TEST", "from-env")
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("TAPCHECK_MAIN_TEST"))

	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
