package cache

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "cpc"
	subsystem = "response_cache"
	nameLabel = "name"
	hitLabel  = "hit"
)

var (
	cacheSizeMetric = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "size",
			Help:      "Number of items in the response cache.",
		}, []string{nameLabel})

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "lookups_total",
			Help:      "Number of response cache lookups, including hits and misses.",
		}, []string{nameLabel, hitLabel})
)

func (c *ResponseCache) recordMetrics() {
	cacheSizeMetric.With(prometheus.Labels{nameLabel: c.name}).Set(float64(c.cache.Len()))
}

func recordLookup(name string, hit bool) {
	cacheLookups.WithLabelValues(name, strconv.FormatBool(hit)).Inc()
}
