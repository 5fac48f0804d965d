package process

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

const (
	namespace     = "cpc"
	subsystem     = "process"
	successLabel  = "success"
	providerLabel = "provider"
)

var (
	providerTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "provider_tasks_total",
			Help:      "Number of provider tasks, including successful and failed.",
		},
		[]string{successLabel, providerLabel},
	)
	providerTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "provider_task_duration_seconds",
			Help:      "Duration of provider tasks.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{providerLabel},
	)
	instancesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "instances",
			Help:      "Number of valid instances of the last run per provider.",
		},
		[]string{providerLabel},
	)
	runDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run.",
		},
	)
	runTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_timestamp_seconds",
			Help:      "Unix timestamp (in seconds) of the last finished run.",
		},
	)
)

func recordProviderTask(success bool, provider resource.Provider, duration time.Duration) {
	// the order of the values should be the same as defined in the metric declaration.
	providerTasks.WithLabelValues(strconv.FormatBool(success), string(provider)).Inc()
	providerTaskDuration.WithLabelValues(string(provider)).Observe(duration.Seconds())
}

func recordRun(result *Result, duration time.Duration) {
	for provider, count := range result.Summary.ByProvider {
		instancesTotal.WithLabelValues(string(provider)).Set(float64(count))
	}

	runDuration.Set(duration.Seconds())
	runTimestamp.SetToCurrentTime()
}
