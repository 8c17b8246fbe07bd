package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appProgram = `
function "make_server" {
  params    = ["name", "p"]
  contracts = { name = string, p = number }
  result = {
    label  = name
    listen = port(p)
  }
}

server = make_server("api", 8080)
broken = make_server("db", 0)
`

func TestApp_Eval(t *testing.T) {
	// --- Arrange ---
	dir := WriteSources(t, map[string]string{"main.hcl": appProgram})
	cfg, err := NewConfig(Config{Paths: []string{dir}, Entry: "server"})
	require.NoError(t, err)
	a, out, _ := SetupAppTest(t, cfg)

	// --- Act ---
	err = a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
	assert.Equal(t, map[string]any{"label": "api", "listen": float64(8080)}, got)
}

func TestApp_EvalYAML(t *testing.T) {
	dir := WriteSources(t, map[string]string{"main.hcl": appProgram})
	cfg, err := NewConfig(Config{Paths: []string{dir}, Entry: "server.label", Output: "yaml"})
	require.NoError(t, err)
	a, out, _ := SetupAppTest(t, cfg)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, "api\n", out.String())
}

func TestApp_EvalFailureRendersChain(t *testing.T) {
	// --- Arrange ---
	dir := WriteSources(t, map[string]string{"main.hcl": appProgram})
	cfg, err := NewConfig(Config{Paths: []string{dir}, Entry: "broken.listen"})
	require.NoError(t, err)
	a, out, errOut := SetupAppTest(t, cfg)

	// --- Act ---
	err = a.Run(context.Background())

	// --- Assert ---
	require.ErrorIs(t, err, ErrEvaluationFailed)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error: Evaluation failed")
	assert.Contains(t, errOut.String(), "expected a number between 1 and 65535, got 0")
	assert.Contains(t, errOut.String(), "Call chain (innermost first):\n  port at ")
	assert.Contains(t, errOut.String(), "  make_server at ")
	assert.Contains(t, errOut.String(), "Evaluation failed.", "the engine logs the failure at debug level")
}

func TestApp_Calls(t *testing.T) {
	dir := WriteSources(t, map[string]string{"main.hcl": appProgram})
	cfg, err := NewConfig(Config{Paths: []string{dir}, Entry: "broken.listen", Command: CommandCalls})
	require.NoError(t, err)
	a, out, _ := SetupAppTest(t, cfg)

	err = a.Run(context.Background())

	require.ErrorIs(t, err, ErrEvaluationFailed)
	got := out.String()
	assert.Contains(t, got, "Call log (")
	assert.Contains(t, got, "field ")
	assert.Contains(t, got, "Call chain (innermost first):\n  port at ")
	assert.Contains(t, got, "Audit: ")
}

func TestApp_LoadFailure(t *testing.T) {
	dir := WriteSources(t, map[string]string{
		"a.hcl": "x = 1\n",
		"b.hcl": "x = 2\n",
	})
	cfg, err := NewConfig(Config{Paths: []string{dir}})
	require.NoError(t, err)
	a, _, errOut := SetupAppTest(t, cfg)

	err = a.Run(context.Background())

	require.ErrorIs(t, err, ErrLoadFailed)
	assert.Contains(t, errOut.String(), "Duplicate definition")
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults", Config{Paths: []string{"."}}, ""},
		{"no paths", Config{}, "at least one path"},
		{"bad command", Config{Paths: []string{"."}, Command: "run"}, "unknown command"},
		{"bad output", Config{Paths: []string{"."}, Output: "xml"}, "invalid output format"},
		{"bad level", Config{Paths: []string{"."}, LogLevel: "loud"}, "invalid log-level"},
		{"bad format", Config{Paths: []string{"."}, LogFormat: "xml"}, "invalid log-format"},
		{"negative depth", Config{Paths: []string{"."}, MaxDepth: -1}, "max depth"},
		{"bad entry", Config{Paths: []string{"."}, Entry: "a..b"}, "invalid entry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, CommandEval, cfg.Command)
			assert.Equal(t, "json", cfg.Output)
			assert.Equal(t, "text", cfg.LogFormat)
			assert.Equal(t, "info", cfg.LogLevel)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lazygrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [conf]\nentry: server\nlog_level: debug\ncolor: true\n"), 0o600))

	fc, err := LoadConfigFile(path)
	require.NoError(t, err)
	require.NotNil(t, fc.Color)
	assert.True(t, *fc.Color)

	cfg := Config{Entry: "other"}
	fc.ApplyTo(&cfg)
	assert.Equal(t, []string{"conf"}, cfg.Paths)
	assert.Equal(t, "other", cfg.Entry, "explicit values win")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfigFile(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pathz: [x]\n"), 0o600))
	_, err = LoadConfigFile(path)
	require.Error(t, err, "unknown keys are rejected")
}
