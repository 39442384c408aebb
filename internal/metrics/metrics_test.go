package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveHTTP(t *testing.T) {
	ObserveHTTP("/api/mgnrega", http.StatusNotFound, 12*time.Millisecond)

	body := scrape(t)
	assert.Contains(t, body, `mgnrega_http_requests_total{route="/api/mgnrega",status="404"}`)
	assert.Contains(t, body, `mgnrega_http_duration_ms_count{route="/api/mgnrega"}`)
}

func TestHandlerExposesUpstreamCollectors(t *testing.T) {
	UpstreamRequestsTotal.WithLabelValues("ok").Inc()
	RecordsCacheTotal.WithLabelValues("miss").Inc()
	UpstreamDurationMs.Observe(120)

	body := scrape(t)
	assert.Contains(t, body, `mgnrega_upstream_requests_total{outcome="ok"}`)
	assert.Contains(t, body, `mgnrega_records_cache_total{result="miss"}`)
	assert.Contains(t, body, "mgnrega_upstream_duration_ms_bucket")
}
