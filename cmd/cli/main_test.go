package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/lazygrid/internal/app"
)

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(src), 0600), "failed to set up test file")
	return filePath
}

func TestRun_Eval(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	filePath := writeProgram(t, `total = between(1, 10, 4) + 1`)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"eval", "--entry", "total", filePath})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "5\n", out.String())
}

func TestRun_SyntaxError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	filePath := writeProgram(t, `
		function "broken" {
			params = ["x"]
		// Missing closing brace here
	`)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"eval", filePath})

	// --- Assert ---
	require.ErrorIs(t, err, app.ErrLoadFailed)
	require.Contains(t, err.Error(), "failed to parse")
	require.Contains(t, errOut.String(), "Error: ", "the diagnostic is written to the error output")
}

func TestRun_EvaluationFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	filePath := writeProgram(t, "function \"check\" {\n  params = [\"n\"]\n  result = positive(n)\n}\n\nbad = check(-3)\n")
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"--color", "never", "eval", "--entry", "bad", filePath})

	// --- Assert ---
	require.ErrorIs(t, err, app.ErrEvaluationFailed)
	require.Contains(t, errOut.String(), "expected a positive number, got -3")
	require.Contains(t, errOut.String(), "Call chain (innermost first):\n  positive at "+filePath+":3,12-23\n  check at "+filePath+":6,7-16\n")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag --this-is-not-a-valid-flag")
}
