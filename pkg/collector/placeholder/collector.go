package placeholder

import (
	"context"

	"go.uber.org/zap"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

// Collector stands in for a provider without a pricing integration. It always returns an empty result.
type Collector struct {
	provider resource.Provider
	logger   *zap.SugaredLogger
}

var _ collector.Collector = &Collector{}

func NewCollector(provider resource.Provider, logger *zap.SugaredLogger) *Collector {
	return &Collector{
		provider: provider,
		logger:   logger,
	}
}

func (c *Collector) Provider() resource.Provider {
	return c.provider
}

func (c *Collector) Collect(_ context.Context) ([]resource.Record, error) {
	c.logger.With(log.KeyProvider, c.provider).
		With(log.KeyReason, "not implemented").
		Warn("provider collector is not implemented, returning no records")

	return []resource.Record{}, nil
}
