package validator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

const (
	namespace     = "cpc"
	subsystem     = "validator"
	providerLabel = "provider"
	reasonLabel   = "reason"
)

var (
	accepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "accepted_total",
			Help:      "Total number of instances that passed validation.",
		},
		[]string{providerLabel},
	)

	rejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rejected_total",
			Help:      "Total number of instances dropped by validation, by reason.",
		},
		[]string{providerLabel, reasonLabel},
	)
)

func recordAccepted(provider resource.Provider) {
	accepted.WithLabelValues(string(provider)).Inc()
}

func recordRejected(provider resource.Provider, reason string) {
	// the order of the values should be same as defined in the metric declaration.
	rejected.WithLabelValues(string(provider), reason).Inc()
}
