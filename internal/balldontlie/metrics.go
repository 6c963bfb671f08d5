package balldontlie

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK        = "ok"
	outcomeStatus    = "status"
	outcomeMalformed = "malformed"
	outcomeTransport = "transport"
)

type metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courtside",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Stats API requests by resource and outcome.",
		}, []string{"resource", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "courtside",
			Subsystem: "gateway",
			Name:      "request_seconds",
			Help:      "Stats API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

func (m *metrics) observe(resource, outcome string, elapsed time.Duration) {
	name := resourceLabel(resource)
	m.requests.WithLabelValues(name, outcome).Inc()
	m.latency.WithLabelValues(name).Observe(elapsed.Seconds())
}

// resourceLabel keeps the collection name only ("teams/14" -> "teams").
func resourceLabel(resource string) string {
	resource = strings.Trim(resource, "/")
	if i := strings.IndexByte(resource, '/'); i >= 0 {
		return resource[:i]
	}
	return resource
}

// RequestCounter exposes the request counter for callers that export or
// assert on it.
func (c *Client) RequestCounter() *prometheus.CounterVec {
	return c.metrics.requests
}
