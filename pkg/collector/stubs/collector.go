package stubs

import (
	"context"
	"time"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

// Collector returns canned records or an error, optionally after a delay or with a panic.
type Collector struct {
	provider resource.Provider
	records  []resource.Record
	err      error
	delay    time.Duration
	panicMsg string
}

var _ collector.Collector = Collector{}

func NewCollector(provider resource.Provider, records []resource.Record, err error) Collector {
	return Collector{
		provider: provider,
		records:  records,
		err:      err,
	}
}

// WithDelay makes Collect return after d, even when the context is done earlier.
func (c Collector) WithDelay(d time.Duration) Collector {
	c.delay = d
	return c
}

func (c Collector) WithPanic(msg string) Collector {
	c.panicMsg = msg
	return c
}

func (c Collector) Provider() resource.Provider {
	return c.provider
}

func (c Collector) Collect(ctx context.Context) ([]resource.Record, error) {
	if c.panicMsg != "" {
		panic(c.panicMsg)
	}

	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			time.Sleep(c.delay)
		}
	}

	return c.records, c.err
}
