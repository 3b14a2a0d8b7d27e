package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(InsertsTotal.WithLabelValues("success"))
	InsertsTotal.WithLabelValues("success").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(InsertsTotal.WithLabelValues("success")))

	before = testutil.ToFloat64(RefreshCyclesTotal)
	RefreshCyclesTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RefreshCyclesTotal))

	before = testutil.ToFloat64(FetchErrorsTotal)
	FetchErrorsTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(FetchErrorsTotal))
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	InsertsTotal.WithLabelValues("success").Inc()

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gcalnote_inserts_total")
	assert.Contains(t, rec.Body.String(), "gcalnote_refresh_cycles_total")
	assert.Contains(t, rec.Body.String(), "gcalnote_calendar_fetch_errors_total")
}

func TestMetricsServerAddr(t *testing.T) {
	s := NewMetricsServer(":9090")
	assert.Equal(t, ":9090", s.Addr())
}
