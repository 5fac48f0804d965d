package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kyma-project/cloud-pricing-collector/env"
	"github.com/kyma-project/cloud-pricing-collector/options"
	"github.com/kyma-project/cloud-pricing-collector/pkg/cache"
	"github.com/kyma-project/cloud-pricing-collector/pkg/config"
	"github.com/kyma-project/cloud-pricing-collector/pkg/currency"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	cpcmetrics "github.com/kyma-project/cloud-pricing-collector/pkg/metrics"
	"github.com/kyma-project/cloud-pricing-collector/pkg/normalizer"
	cpcotel "github.com/kyma-project/cloud-pricing-collector/pkg/otel"
	"github.com/kyma-project/cloud-pricing-collector/pkg/process"
	"github.com/kyma-project/cloud-pricing-collector/pkg/storage"
	"github.com/kyma-project/cloud-pricing-collector/pkg/validator"
)

func main() {
	opts := options.ParseArgs()
	logger := log.NewLogger(opts.LogLevel)
	logger.Infof("Starting application with options: %v", opts.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	ok := run(ctx, opts, logger)

	stop()

	if opts.MetricsFile != "" {
		if err := cpcmetrics.WriteTextfile(opts.MetricsFile, prometheus.DefaultGatherer); err != nil {
			logger.With(log.KeyResult, log.ValueFail).With(log.KeyError, err.Error()).Error("Write metrics file")
		}
	}

	_ = logger.Sync()

	if !ok {
		os.Exit(1)
	}
}

// run performs one collection run. It reports whether at least one instance was collected and written.
func run(ctx context.Context, opts *options.Options, logger *zap.SugaredLogger) bool {
	runID := uuid.NewString()
	logger = logger.With(log.KeyRunID, runID)

	if opts.EnableTracing {
		logger.Info("Setting up OTel SDK")

		otelShutdown, err := cpcotel.SetupSDK(ctx)
		if err != nil {
			logger.With(log.KeyResult, log.ValueFail).With(log.KeyError, err.Error()).Error("Set up OTel SDK")
			return false
		}

		defer func() {
			if err := otelShutdown(context.Background()); err != nil {
				logger.Errorf("Failed to shutdown OTel SDK: %v", err)
			}
		}()
	}

	cfg, err := env.Load()
	if err != nil {
		logger.With(log.KeyResult, log.ValueFail).With(log.KeyError, err.Error()).Error("Load env config")
		return false
	}

	settings, err := config.LoadProviderSettings(cfg.ProviderSettings)
	if err != nil {
		logger.With(log.KeyResult, log.ValueFail).With(log.KeyError, err.Error()).Error("Load provider settings")
		return false
	}

	responseCache := cache.New("provider-api", cfg.APICacheTTL)

	converter := currency.NewConverter(newHTTPClient("exchange-rates", cfg, responseCache, logger), cfg.ExchangeRatesURL, currency.DefaultRatesTTL, logger)
	if err := converter.Refresh(ctx); err != nil {
		logger.With(log.KeyError, err.Error()).Warn("Continuing with fallback exchange rates")
	}

	registry, err := buildRegistry(ctx, cfg, settings, responseCache, logger)
	if err != nil {
		logger.With(log.KeyResult, log.ValueFail).With(log.KeyError, err.Error()).Error("Register collectors")
		return false
	}

	p := process.New(
		registry,
		normalizer.New(converter.Convert, logger),
		validator.New(logger),
		process.WithWorkersPoolSize(opts.WorkerPoolSize),
		process.WithProviderTimeout(cfg.ProviderTimeout),
		process.WithRunID(runID),
		process.WithLogger(logger),
	)

	result, err := p.Run(ctx)
	if err != nil {
		logger.With(log.KeyResult, log.ValueFail).With(log.KeyError, err.Error()).Error("Run collection")
		return false
	}

	stores, err := artifactStores(ctx, cfg)
	if err != nil {
		logger.With(log.KeyResult, log.ValueFail).With(log.KeyError, err.Error()).Error("Set up artifact stores")
		return false
	}

	if err := storage.NewWriter(logger, stores...).Write(ctx, result.Instances, result.Summary); err != nil {
		logger.With(log.KeyResult, log.ValueFail).With(log.KeyError, err.Error()).Error("Write artifacts")
		return false
	}

	if opts.PrintSummary {
		process.PrintSummary(os.Stdout, result.Summary)
	}

	if !result.Success {
		logger.With(log.KeyResult, log.ValueFail).Error("No valid instances collected")
	}

	return result.Success
}

func artifactStores(ctx context.Context, cfg *env.Config) ([]storage.BlobStore, error) {
	stores := []storage.BlobStore{storage.NewLocalStore(cfg.OutputDir)}

	if cfg.OutputS3Bucket != "" {
		s3Store, err := storage.NewDefaultS3Store(ctx, cfg.OutputS3Bucket, cfg.OutputS3Prefix)
		if err != nil {
			return nil, err
		}

		stores = append(stores, s3Store)
	}

	return stores, nil
}
