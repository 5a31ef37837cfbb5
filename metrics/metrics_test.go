package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	m := New()
	m.ObserveFetch(OutcomeResized)
	m.ObserveFetch(OutcomeResized)
	m.ObserveFetch(OutcomeStorageError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues(OutcomeResized)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues(OutcomeStorageError)))
}

func TestObserveStorageAndTranscode(t *testing.T) {
	m := New()
	m.ObserveStorageFetch("s3", nil, 10*time.Millisecond)
	m.ObserveStorageFetch("s3", errors.New("boom"), time.Millisecond)
	m.ObserveTranscode(nil, 5*time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(m.storageFetch))
	assert.Equal(t, 1, testutil.CollectAndCount(m.transcode))
}

func TestQueueDepthGauge(t *testing.T) {
	m := New()
	depth := 3
	require.NoError(t, m.RegisterQueueDepth(func() int { return depth }))

	expected := `
# HELP mediaserve_pool_queue_depth Jobs waiting in the blocking worker pool.
# TYPE mediaserve_pool_queue_depth gauge
mediaserve_pool_queue_depth 3
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "mediaserve_pool_queue_depth"))

	assert.Error(t, m.RegisterQueueDepth(func() int { return 0 }), "gauge registered twice")
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mediaserve_http_requests_total{method="GET",status="404"} 1`)
}
