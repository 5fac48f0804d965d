package httpclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace   = "cpc"
	subsystem   = "http_client"
	clientLabel = "client"
	statusLabel = "status"
)

var (
	requestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound provider API requests by status code or failure kind.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{clientLabel, statusLabel},
	)

	retries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "retries_total",
			Help:      "Number of failed attempts that were eligible for a retry.",
		},
		[]string{clientLabel},
	)
)

func recordRequest(client, status string, duration time.Duration) {
	requestLatency.WithLabelValues(client, status).Observe(duration.Seconds())
}

func recordRetry(client string) {
	retries.WithLabelValues(client).Inc()
}
