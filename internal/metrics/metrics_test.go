package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.SettlementsSuggested(3)
	m.SettlementsSuggested(0)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.settlementsSuggested))

	m.CleanupRun(4, nil)
	m.CleanupRun(0, errors.New("database is locked"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cleanupRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cleanupRuns.WithLabelValues("error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.invitationsDeleted))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SettlementsSuggested(2)
		m.CleanupRun(1, nil)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SettlementsSuggested(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "splitmoney_settlements_suggested_total 1"), "body: %s", body)
	assert.Contains(t, string(body), "go_goroutines")
}
