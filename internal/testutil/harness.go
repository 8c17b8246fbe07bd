// Package testutil provides a harness for integration tests: it writes HCL
// programs to a temporary directory, runs the application on them and
// exposes the outputs together with the engine's call log.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/lazygrid/internal/app"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string // results written to standard output
	LogOutput string // logs and diagnostics
	Err       error
	App       *app.App
}

// Run describes one application run.
type Run struct {
	Files   map[string]string // relative path -> HCL source
	Entry   string
	Command string
	Output  string
}

// RunIntegrationTest runs the application using a default background context.
func RunIntegrationTest(t *testing.T, run Run) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, run)
}

// RunIntegrationTestWithContext runs the application with a specific context
// provided by the caller.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, run Run) *HarnessResult {
	t.Helper()

	// 1. Write all HCL files to a temporary directory. Relative paths create
	//    the subdirectory structure.
	tmpDir := t.TempDir()
	for name, content := range run.Files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	// 2. Configure the app.
	cfg, err := app.NewConfig(app.Config{
		Paths:     []string{tmpDir},
		Entry:     run.Entry,
		Command:   run.Command,
		Output:    run.Output,
		LogLevel:  "debug",
		LogFormat: "text",
	})
	require.NoError(t, err)

	outBuffer := &app.SafeBuffer{}
	logBuffer := &app.SafeBuffer{}
	testApp := app.NewApp(outBuffer, logBuffer, cfg)

	// 3. Run, turning panics into errors so a broken engine fails the test
	//    with the log attached.
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("application panicked | %v", r)
			}
		}()
		runErr = testApp.Run(ctx)
	}()

	if os.Getenv("LAZYGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Output:    outBuffer.String(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
