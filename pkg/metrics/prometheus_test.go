package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r := New()

	r.RecordError("preference_write")
	r.RecordError("preference_write")
	r.RecordFeedRefresh("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("preference_write")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.feedRefreshes.WithLabelValues("ok")))
}

func TestRecordersDoNotCollide(t *testing.T) {
	// Each recorder owns its registry; two in one process must not panic.
	a := New()
	b := New()
	a.SetActiveSessions(3)
	b.SetActiveSessions(1)

	assert.Equal(t, 3.0, testutil.ToFloat64(a.activeSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.activeSessions))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.RecordError("x")
	r.RecordUpstream("GET", "200", 0.1)
	r.SetActiveSessions(2)
}

func TestHandler(t *testing.T) {
	r := New()
	r.RecordUpstream("GET", "200", 0.05)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ranker_upstream_requests_total")
}
