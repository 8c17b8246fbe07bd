package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// Chain returns the names of the calls reconstructed from the engine's call
// log, innermost first, and the name of the open call ("" if none or
// anonymous).
func Chain(t *testing.T, result *HarnessResult) ([]string, string) {
	t.Helper()
	require.NotNil(t, result.App, "the app was not created")
	e := result.App.Engine()
	require.NotNil(t, e, "the program was not loaded")

	calls, open := e.CallStack().GroupByCalls(e.Builtin())
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		names = append(names, c.Name())
	}
	openName := ""
	if open != nil {
		openName = open.Name()
	}
	return names, openName
}

// AssertChain checks the reconstructed call chain, innermost first.
func AssertChain(t *testing.T, result *HarnessResult, want ...string) {
	t.Helper()
	got, _ := Chain(t, result)
	if want == nil {
		want = []string{}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("call chain mismatch (-want +got):\n%s\n--- log ---\n%s", diff, result.LogOutput)
	}
}
