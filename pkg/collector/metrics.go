package collector

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

const (
	namespace         = "cpc"
	subsystem         = "collector"
	providerLabel     = "provider"
	subResourceLabel  = "sub_resource"
	successLabel      = "success"
	resourceTypeLabel = "type"
)

var (
	TotalFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fetches_total",
			Help:      "Total number of sub-resource fetches per provider, including successful and failed.",
		},
		[]string{successLabel, providerLabel, subResourceLabel},
	)

	TotalRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records_total",
			Help:      "Total number of provisional records emitted per provider and type.",
		},
		[]string{providerLabel, resourceTypeLabel},
	)

	TotalSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "skipped_total",
			Help:      "Total number of raw resources that could not be turned into records.",
		},
		[]string{providerLabel, subResourceLabel},
	)
)

func RecordFetch(success bool, provider resource.Provider, subResource string) {
	// the order of the values should be same as defined in the metric declaration.
	TotalFetches.WithLabelValues(strconv.FormatBool(success), string(provider), subResource).Inc()
}

func RecordEmitted(records []resource.Record) {
	for _, r := range records {
		TotalRecords.WithLabelValues(string(r.Provider), string(r.Type)).Inc()
	}
}

func RecordSkipped(provider resource.Provider, subResource string) {
	TotalSkipped.WithLabelValues(string(provider), subResource).Inc()
}
