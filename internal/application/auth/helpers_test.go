package auth

import (
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/metrics"
)

// assertRefreshOutcome checks that the refresh counter has exactly one
// series, outcome, with value n.
func assertRefreshOutcome(t *testing.T, m *metrics.Recorder, outcome string, n int) {
	t.Helper()
	expected := fmt.Sprintf(`
# HELP retailctl_token_refresh_total Access token refresh attempts by outcome.
# TYPE retailctl_token_refresh_total counter
retailctl_token_refresh_total{outcome=%q} %d
`, outcome, n)
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "retailctl_token_refresh_total"))
}
