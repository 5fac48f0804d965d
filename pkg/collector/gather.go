package collector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

var ErrAllSubResourcesFailed = errors.New("all sub-resources failed")

// Fetch builds the records of one sub-resource of a provider, e.g. server types or load balancers.
type Fetch struct {
	Name string
	Run  func(ctx context.Context) ([]resource.Record, error)
}

// Gather runs the fetches one after another. A failing fetch is logged and skipped.
// The joined errors are returned only if every fetch failed.
func Gather(ctx context.Context, provider resource.Provider, logger *zap.SugaredLogger, fetches ...Fetch) ([]resource.Record, error) {
	var errs []error

	records := []resource.Record{}

	for _, f := range fetches {
		fetched, err := f.Run(ctx)
		RecordFetch(err == nil, provider, f.Name)

		if err != nil {
			errs = append(errs, fmt.Errorf("sub-resource %s of provider %s failed: %w", f.Name, provider, err))
			logger.With(log.KeyProvider, provider).
				With(log.KeyResult, log.ValueFail).
				With(log.KeyError, err.Error()).
				Warnf("skipping sub-resource %s", f.Name)

			if ctx.Err() != nil {
				break
			}

			continue
		}

		logger.With(log.KeyProvider, provider).
			With(log.KeyCount, len(fetched)).
			Debugf("fetched sub-resource %s", f.Name)

		records = append(records, fetched...)
	}

	RecordEmitted(records)

	if len(fetches) > 0 && len(errs) == len(fetches) {
		return records, fmt.Errorf("%w: %w", ErrAllSubResourcesFailed, errors.Join(errs...))
	}

	return records, nil
}
