package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/lazygrid/internal/app"
	"github.com/vk/lazygrid/internal/testutil"
)

func TestCallChains_NestedCallsAcrossFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"lib/validate.hcl": `
function "valid_port" {
  params = ["p"]
  result = port(p)
}
`,
		"lib/server.hcl": `
function "server" {
  params = ["name", "p"]
  result = {
    label  = name
    listen = valid_port(p)
  }
}
`,
		"main.hcl": `
api = server("api", 70000)
`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Run{Files: files, Entry: "api.listen"})

	// --- Assert ---
	require.ErrorIs(t, result.Err, app.ErrEvaluationFailed)
	testutil.AssertChain(t, result, "port", "valid_port", "server")
}

func TestCallChains_FinishedOperandsDoNotLeak(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The left operand calls user functions and succeeds; only the failing
	// right operand may appear in the chain.
	files := map[string]string{
		"main.hcl": `
function "double" {
  params = ["x"]
  result = x * 2
}

function "explode" {
  params = ["x"]
  result = fail("boom ${x}")
}

value = double(double(2)) + explode(1)
`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Run{Files: files, Entry: "value"})

	// --- Assert ---
	require.ErrorIs(t, result.Err, app.ErrEvaluationFailed)
	testutil.AssertChain(t, result, "fail", "explode")
}

func TestCallChains_SuccessfulRunPrintsResult(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.hcl": `
function "double" {
  params = ["x"]
  result = x * 2
}

value = compose(double, double, 3)
`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, testutil.Run{Files: files, Entry: "value"})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, "12\n", result.Output)
}
