package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lazygrid/internal/app"
)

func TestParse_Eval(t *testing.T) {
	out := &bytes.Buffer{}

	cfg, shouldExit, err := Parse([]string{
		"--log-level", "DEBUG", "--color", "never",
		"eval", "--entry", "server.ports[0]", "-o", "yaml", "--max-depth", "64", "a.hcl", "dir",
	}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, &app.Config{
		Paths:     []string{"a.hcl", "dir"},
		Entry:     "server.ports[0]",
		Command:   app.CommandEval,
		Output:    "yaml",
		LogFormat: "text",
		LogLevel:  "debug",
		Color:     false,
		MaxDepth:  64,
	}, cfg)
}

func TestParse_Calls(t *testing.T) {
	cfg, shouldExit, err := Parse([]string{"--color", "always", "calls", "-e", "x", "main.hcl"}, &bytes.Buffer{})

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, app.CommandCalls, cfg.Command)
	assert.Equal(t, "x", cfg.Entry)
	assert.Equal(t, "json", cfg.Output)
	assert.True(t, cfg.Color)
}

func TestParse_Help(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {}} {
		out := &bytes.Buffer{}
		cfg, shouldExit, err := Parse(args, out)

		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
		assert.Contains(t, out.String(), "eval")
		assert.Contains(t, out.String(), "calls")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"unknown flag", []string{"eval", "--this-is-not-a-valid-flag", "a.hcl"}, "unknown flag"},
		{"bad color", []string{"--color", "sometimes", "eval", "a.hcl"}, "color"},
		{"bad level", []string{"--log-level", "loud", "eval", "a.hcl"}, "invalid log-level"},
		{"bad format", []string{"--log-format", "xml", "eval", "a.hcl"}, "invalid log-format"},
		{"no paths", []string{"eval"}, "at least one path"},
		{"missing config", []string{"--config", "does-not-exist.yaml", "eval", "a.hcl"}, "failed to read config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, shouldExit, err := Parse(tt.args, &bytes.Buffer{})

			require.Error(t, err)
			assert.False(t, shouldExit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tt.wantMsg)
		})
	}
}

func TestParse_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lazygrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [from-file]\nlog_format: json\ncolor: true\nmax_depth: 10\n"), 0o600))

	cfg, _, err := Parse([]string{"--config", path, "eval", "--max-depth", "20"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, []string{"from-file"}, cfg.Paths)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Color, "auto falls back to the file setting")
	assert.Equal(t, 20, cfg.MaxDepth, "flags win over the file")
}

func TestParse_Environment(t *testing.T) {
	t.Setenv("LAZYGRID_LOG_LEVEL", "warn")

	cfg, _, err := Parse([]string{"eval", "a.hcl"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
