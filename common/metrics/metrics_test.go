package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCheckIn(t *testing.T) {
	before := testutil.ToFloat64(checkIns.WithLabelValues("ok"))
	RecordCheckIn("ok")
	assert.Equal(t, before+1, testutil.ToFloat64(checkIns.WithLabelValues("ok")))
}

func TestRecordAttendance(t *testing.T) {
	before := testutil.ToFloat64(attendance.WithLabelValues("7"))
	RecordAttendance(7)
	RecordAttendance(7)
	assert.Equal(t, before+2, testutil.ToFloat64(attendance.WithLabelValues("7")))
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	Middleware(mux).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(httpDuration, "http_request_duration_seconds"))
}
