package storage

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var artifactWrites = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cpc",
		Subsystem: "storage",
		Name:      "artifact_writes_total",
		Help:      "Number of artifact writes, including successful and failed.",
	},
	[]string{"success", "artifact"},
)

func recordWrite(success bool, artifact string) {
	artifactWrites.WithLabelValues(strconv.FormatBool(success), artifact).Inc()
}
