package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/kyma-project/cloud-pricing-collector/env"
	"github.com/kyma-project/cloud-pricing-collector/pkg/cache"
	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	"github.com/kyma-project/cloud-pricing-collector/pkg/collector/aws"
	"github.com/kyma-project/cloud-pricing-collector/pkg/collector/hetzner"
	"github.com/kyma-project/cloud-pricing-collector/pkg/collector/oci"
	"github.com/kyma-project/cloud-pricing-collector/pkg/collector/ovh"
	"github.com/kyma-project/cloud-pricing-collector/pkg/collector/placeholder"
	"github.com/kyma-project/cloud-pricing-collector/pkg/config"
	"github.com/kyma-project/cloud-pricing-collector/pkg/httpclient"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

func newHTTPClient(name string, cfg *env.Config, responseCache *cache.ResponseCache, logger *zap.SugaredLogger) *httpclient.Client {
	return httpclient.NewClient(name, &httpclient.Config{
		Timeout:        cfg.APITimeout,
		RetryCount:     cfg.APIRetryCount,
		RateLimitDelay: cfg.APIRateLimitDelay,
		BackoffBase:    cfg.APIBackoffBase,
	}, responseCache, logger)
}

// buildRegistry registers the enabled collectors in submission order.
func buildRegistry(ctx context.Context, cfg *env.Config, settings *config.ProviderSettings,
	responseCache *cache.ResponseCache, logger *zap.SugaredLogger,
) (*collector.Registry, error) {
	registry := collector.NewRegistry()

	var collectors []collector.Collector

	if cfg.EnableHetzner {
		collectors = append(collectors, hetzner.NewCollector(hetzner.Config{
			CloudAPIURL:   cfg.CloudAPIURL,
			CloudAPIToken: cfg.CloudAPIToken,
			RobotAPIURL:   cfg.RobotAPIURL,
			RobotUser:     cfg.RobotAPIUser,
			RobotPassword: cfg.RobotAPIPassword,
		}, newHTTPClient(string(resource.Hetzner), cfg, responseCache, logger), settings.Hetzner, logger))
	}

	if cfg.EnableAWS {
		awsCollector, err := aws.NewDefaultCollector(ctx, cfg.AWSPricingRegions, logger)
		if err != nil {
			logger.With(log.KeyProvider, resource.AWS).With(log.KeyError, err.Error()).
				Warn("AWS is enabled but cannot be configured, skipping it")
		} else {
			collectors = append(collectors, awsCollector)
		}
	}

	if cfg.EnableAzure {
		collectors = append(collectors, placeholder.NewCollector(resource.Azure, logger))
	}

	if cfg.EnableGCP {
		collectors = append(collectors, placeholder.NewCollector(resource.GCP, logger))
	}

	if cfg.EnableOCI {
		collectors = append(collectors, oci.NewCollector(cfg.OCIPriceListURL,
			newHTTPClient(string(resource.OCI), cfg, responseCache, logger), settings.OCI, logger))
	}

	if cfg.EnableOVH {
		collectors = append(collectors, ovh.NewCollector(cfg.OVHCatalogURL, cfg.OVHSubsidiary,
			newHTTPClient(string(resource.OVH), cfg, responseCache, logger), logger))
	}

	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
