package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lazygrid/internal/app"
	"github.com/vk/lazygrid/internal/testutil"
)

func TestErrorHandling_InvalidHCLIsRejected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.hcl": `
function "broken" {
  params = ["x"]
  // Missing closing brace here
`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Run{Files: files})

	// --- Assert ---
	require.ErrorIs(t, result.Err, app.ErrLoadFailed)
	assert.Contains(t, result.Err.Error(), "failed to parse HCL file")
	assert.Nil(t, result.App.Engine(), "no engine is built for a broken program")
}

func TestErrorHandling_LoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		wantLog string
	}{
		{
			name:    "duplicate definition across files",
			files:   map[string]string{"a.hcl": "x = 1\n", "b.hcl": "x = 2\n"},
			wantLog: "Duplicate definition",
		},
		{
			name:    "redefining a builtin function",
			files:   map[string]string{"main.hcl": "positive = 1\n"},
			wantLog: "Duplicate definition",
		},
		{
			name:    "unknown contract keyword",
			files:   map[string]string{"main.hcl": "function \"f\" {\n  params = [\"x\"]\n  contracts = { x = integer }\n  result = x\n}\n"},
			wantLog: "integer",
		},
		{
			name:    "reserved native name",
			files:   map[string]string{"main.hcl": "length = 3\n"},
			wantLog: "reserved builtin name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := testutil.RunIntegrationTest(t, testutil.Run{Files: tt.files})

			require.ErrorIs(t, result.Err, app.ErrLoadFailed)
			assert.Contains(t, result.LogOutput, tt.wantLog)
		})
	}
}
