package process

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/otel"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

var (
	ErrProviderTimeout  = errors.New("provider task timed out")
	ErrProviderCanceled = errors.New("provider task canceled")
	ErrProviderPanic    = errors.New("provider task panicked")
)

type collectOutcome struct {
	records []resource.Record
	err     error
}

// runTask collects one provider within the provider timeout, then normalizes and validates its records.
// Records of a timed out task are discarded even when the collector returns later.
func (p *Process) runTask(ctx context.Context, workerID int, c collector.Collector) taskResult {
	provider := c.Provider()
	logger := p.namedLogger().With(log.KeyProvider, provider).With(log.KeyWorkerID, workerID)

	ctx, span := otel.StartProviderSpan(ctx, p.runID, string(provider))
	defer span.End()

	start := p.now()

	ctx, cancel := context.WithTimeout(ctx, p.providerTimeout)
	defer cancel()

	done := make(chan collectOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- collectOutcome{err: fmt.Errorf("%w: %v", ErrProviderPanic, r)}
			}
		}()

		records, err := c.Collect(ctx)
		done <- collectOutcome{records: records, err: err}
	}()

	var outcome collectOutcome

	select {
	case outcome = <-done:
	case <-ctx.Done():
		outcome = collectOutcome{err: abandoned(ctx.Err(), p.providerTimeout)}
	}

	if outcome.err != nil {
		span.RecordError(outcome.err)
		span.SetStatus(codes.Error, outcome.err.Error())
		recordProviderTask(false, provider, p.now().Sub(start))
		logger.With(log.KeyResult, log.ValueFail).With(log.KeyError, outcome.err.Error()).
			Error("provider task failed")

		return taskResult{provider: provider, err: outcome.err}
	}

	instances := make([]resource.Instance, 0, len(outcome.records))

	for _, rec := range outcome.records {
		instance := p.normalizer.Normalize(rec, provider)
		if !p.validator.Validate(instance) {
			continue
		}

		instances = append(instances, instance)
	}

	recordProviderTask(true, provider, p.now().Sub(start))
	logger.With(log.KeyResult, log.ValueSuccess).With(log.KeyCount, len(instances)).
		Infof("provider task finished, %d of %d records valid", len(instances), len(outcome.records))

	return taskResult{provider: provider, instances: instances}
}

// abandoned tells a provider timeout apart from a canceled run.
func abandoned(ctxErr error, timeout time.Duration) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %w", ErrProviderTimeout, timeout, ctxErr)
	}

	return fmt.Errorf("%w: %w", ErrProviderCanceled, ctxErr)
}
