package client

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hikepredict",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of backend requests issued by the client",
		},
		[]string{"op", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hikepredict",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op", "status"},
	)

	inflightRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hikepredict",
			Subsystem: "client",
			Name:      "inflight_requests",
			Help:      "Backend requests currently in flight",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, inflightRequests)
}

// statusLabel is "error" when no response arrived.
func statusLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}
