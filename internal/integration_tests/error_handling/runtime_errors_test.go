package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lazygrid/internal/app"
	"github.com/vk/lazygrid/internal/testutil"
)

func TestErrorHandling_RuntimeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		src       string
		entry     string
		wantLog   string
		wantChain []string
	}{
		{
			name:      "contract violation",
			src:       `value = non_empty("")`,
			entry:     "value",
			wantLog:   "expected a non-empty string",
			wantChain: []string{"non_empty"},
		},
		{
			name:      "wrong argument type",
			src:       `value = between(1, "ten", 5)`,
			entry:     "value",
			wantLog:   "Contract broken by a function argument",
			wantChain: []string{"between"},
		},
		{
			name:      "infinite recursion",
			src:       "a = b + 1\nb = a + 1\n",
			entry:     "a",
			wantLog:   "Infinite recursion",
			wantChain: nil,
		},
		{
			name:      "missing field",
			src:       "cfg = { port = 80 }\nvalue = cfg.host\n",
			entry:     "value",
			wantLog:   "does not have a field named \"host\"",
			wantChain: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := testutil.RunIntegrationTest(t, testutil.Run{
				Files: map[string]string{"main.hcl": tt.src},
				Entry: tt.entry,
			})

			require.ErrorIs(t, result.Err, app.ErrEvaluationFailed)
			assert.Contains(t, result.LogOutput, tt.wantLog)
			testutil.AssertChain(t, result, tt.wantChain...)
		})
	}
}
