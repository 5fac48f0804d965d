package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes every metric of gatherer to path in the Prometheus text format,
// for pickup by a node exporter textfile collector.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}

	return nil
}
