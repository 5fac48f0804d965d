package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/process"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

const (
	InstancesArtifact = "all_instances.json"
	SummaryArtifact   = "summary.json"
)

// Writer serializes the outcome of a run and hands the artifacts to every store.
type Writer struct {
	stores []BlobStore
	logger *zap.SugaredLogger
}

func NewWriter(logger *zap.SugaredLogger, stores ...BlobStore) *Writer {
	return &Writer{
		stores: stores,
		logger: logger,
	}
}

func (w *Writer) Write(ctx context.Context, instances []resource.Instance, summary process.Summary) error {
	if instances == nil {
		instances = []resource.Instance{}
	}

	artifacts := []struct {
		name  string
		value any
	}{
		{InstancesArtifact, instances},
		{SummaryArtifact, summary},
	}

	for _, artifact := range artifacts {
		body, err := json.MarshalIndent(artifact.value, "", "  ")
		if err != nil {
			return errors.Wrapf(err, "failed to serialize %s", artifact.name)
		}

		for _, store := range w.stores {
			if err := store.Put(ctx, artifact.name, body); err != nil {
				recordWrite(false, artifact.name)
				return err
			}
		}

		recordWrite(true, artifact.name)
		w.namedLogger().With(log.KeyCount, len(body)).Infof("wrote %s", artifact.name)
	}

	return nil
}

func (w *Writer) namedLogger() *zap.SugaredLogger {
	return w.logger.With("component", "storage")
}
