package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstancesAreIndependent(t *testing.T) {
	first := New()
	second := New()

	first.ScrapeRuns.WithLabelValues("completed").Inc()
	first.RemindersCreated.Add(3)

	require.InDelta(t, 1, testutil.ToFloat64(first.ScrapeRuns.WithLabelValues("completed")), 0)
	require.InDelta(t, 3, testutil.ToFloat64(first.RemindersCreated), 0)
	require.InDelta(t, 0, testutil.ToFloat64(second.RemindersCreated), 0)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ResourcesStored.WithLabelValues("feed").Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `faithlog_resources_stored_total{path="feed"} 1`)
	require.Contains(t, w.Body.String(), "go_goroutines")
}
