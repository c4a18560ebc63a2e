package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Registrations created, by payment state",
		},
		[]string{"event_id", "payment_state"},
	)

	paymentOrders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_orders_total",
			Help: "Payment order outcomes",
		},
		[]string{"event_id", "status"},
	)

	verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment verification attempts, by result",
		},
		[]string{"result"},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Ticket scans, by result",
		},
		[]string{"result"},
	)

	attendance = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_total",
			Help: "Attendees admitted, by event",
		},
		[]string{"event_id"},
	)

	emails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_total",
			Help: "Outgoing emails, by result",
		},
		[]string{"result"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pattern", "status"},
	)
)

func RecordRegistration(eventId int64, paymentState string) {
	registrations.WithLabelValues(strconv.FormatInt(eventId, 10), paymentState).Inc()
}

func RecordPaymentOrder(eventId int64, status string) {
	paymentOrders.WithLabelValues(strconv.FormatInt(eventId, 10), status).Inc()
}

func RecordVerification(result string) {
	verifications.WithLabelValues(result).Inc()
}

func RecordCheckIn(result string) {
	checkIns.WithLabelValues(result).Inc()
}

func RecordAttendance(eventId int64) {
	attendance.WithLabelValues(strconv.FormatInt(eventId, 10)).Inc()
}

func RecordEmail(result string) {
	emails.WithLabelValues(result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware observes request latency keyed by the matched ServeMux pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		httpDuration.WithLabelValues(pattern, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	})
}
