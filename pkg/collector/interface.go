package collector

import (
	"context"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

// Collector fetches the offerings of one provider and emits provisional records.
type Collector interface {
	// Provider returns the name under which the collector is registered.
	Provider() resource.Provider

	// Collect returns every record it could build. Failing sub-resources are logged and skipped;
	// an error is returned only when nothing could be collected at all.
	Collect(ctx context.Context) ([]resource.Record, error)
}
