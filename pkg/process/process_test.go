package process

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	"github.com/kyma-project/cloud-pricing-collector/pkg/collector/stubs"
	"github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/normalizer"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
	"github.com/kyma-project/cloud-pricing-collector/pkg/validator"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func serverRecord(provider resource.Provider, name, currency string, hourly, monthly float64) resource.Record {
	return resource.Record{
		Provider:     provider,
		Type:         resource.CloudServer,
		InstanceType: name,
		VCPU:         2,
		MemoryGiB:    4,
		Currency:     currency,
		PriceHourly:  hourly,
		PriceMonthly: monthly,
		Regions:      []string{"eu-1"},
	}
}

func eurToUSD(amount float64, from, to string) (float64, error) {
	if from == resource.EUR && to == resource.USD {
		return amount * 1.1, nil
	}

	return 0, errors.New("unsupported currency")
}

func newTestProcess(t *testing.T, opts []Option, collectors ...collector.Collector) *Process {
	t.Helper()

	registry := collector.NewRegistry()
	for _, c := range collectors {
		require.NoError(t, registry.Register(c))
	}

	log := logger.NewLogger(zapcore.DebugLevel)
	opts = append([]Option{WithLogger(log), WithClock(func() time.Time { return fixedNow })}, opts...)

	return New(registry, normalizer.New(eurToUSD, log), validator.New(log), opts...)
}

func TestProcess_Run(t *testing.T) {
	hetzner := stubs.NewCollector(resource.Hetzner, []resource.Record{
		serverRecord(resource.Hetzner, "cx11", resource.EUR, 0.0054, 3.29),
		serverRecord(resource.Hetzner, "cx21", resource.EUR, 0.0095, 5.83),
	}, nil)
	aws := stubs.NewCollector(resource.AWS, nil, errors.New("throttled by pricing API"))
	oci := stubs.NewCollector(resource.OCI, []resource.Record{
		serverRecord(resource.OCI, "VM.Standard.E4.Flex", resource.USD, 0.049, 35.79),
	}, nil)

	failedBefore := testutil.ToFloat64(providerTasks.WithLabelValues("false", string(resource.AWS)))

	p := newTestProcess(t, nil, hetzner, aws, oci)
	require.Equal(t, Idle, p.State())
	require.NotEmpty(t, p.RunID())

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Done, p.State())

	require.True(t, result.Success)
	require.Len(t, result.Instances, 3)
	require.Equal(t, "cx11", result.Instances[0].InstanceType)
	require.Equal(t, "cx21", result.Instances[1].InstanceType)
	require.Equal(t, "VM.Standard.E4.Flex", result.Instances[2].InstanceType)
	require.InDelta(t, 0.00594, result.Instances[0].PriceUSDHourly, 1e-9)

	require.Len(t, result.Summary.Errors, 1)
	require.Contains(t, result.Summary.Errors[resource.AWS], "throttled")
	require.Equal(t, 2, result.Summary.ProvidersCount)
	require.Equal(t, 3, result.Summary.TotalInstances)

	require.Equal(t, failedBefore+1, testutil.ToFloat64(providerTasks.WithLabelValues("false", string(resource.AWS))))

	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, ErrAlreadyRun)
}

func TestProcess_Run_Timeout(t *testing.T) {
	slow := stubs.NewCollector(resource.OCI, []resource.Record{
		serverRecord(resource.OCI, "VM.Standard.E4.Flex", resource.USD, 0.049, 35.79),
	}, nil).WithDelay(500 * time.Millisecond)
	fast := stubs.NewCollector(resource.Hetzner, []resource.Record{
		serverRecord(resource.Hetzner, "cx11", resource.EUR, 0.0054, 3.29),
	}, nil)

	p := newTestProcess(t, []Option{WithProviderTimeout(50 * time.Millisecond)}, slow, fast)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Instances, 1)
	require.Equal(t, resource.Hetzner, result.Instances[0].Provider)
	require.Contains(t, result.Summary.Errors[resource.OCI], ErrProviderTimeout.Error())
	require.NotContains(t, result.Summary.ByProvider, resource.OCI)
}

// gauge tracks how many collectors run at the same time.
type gauge struct {
	running atomic.Int32
	peak    atomic.Int32
}

// countingCollector reports itself to the gauge while it sleeps, then returns one record.
type countingCollector struct {
	provider resource.Provider
	delay    time.Duration
	gauge    *gauge
}

func (c countingCollector) Provider() resource.Provider {
	return c.provider
}

func (c countingCollector) Collect(_ context.Context) ([]resource.Record, error) {
	running := c.gauge.running.Add(1)
	defer c.gauge.running.Add(-1)

	for {
		peak := c.gauge.peak.Load()
		if running <= peak || c.gauge.peak.CompareAndSwap(peak, running) {
			break
		}
	}

	time.Sleep(c.delay)

	return []resource.Record{serverRecord(c.provider, string(c.provider)+"-small", resource.USD, 0.01, 7.3)}, nil
}

func TestProcess_Run_BoundedPoolKeepsSubmissionOrder(t *testing.T) {
	g := &gauge{}
	delays := []time.Duration{150, 10, 100, 5, 50, 1}

	collectors := make([]collector.Collector, 0, len(resource.Providers))
	for i, provider := range resource.Providers {
		collectors = append(collectors, countingCollector{provider: provider, delay: delays[i] * time.Millisecond, gauge: g})
	}

	result, err := newTestProcess(t, []Option{WithWorkersPoolSize(2)}, collectors...).Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.Summary.Errors)

	require.LessOrEqual(t, g.peak.Load(), int32(2))
	require.Equal(t, int32(2), g.peak.Load())

	providers := make([]resource.Provider, 0, len(result.Instances))
	for _, instance := range result.Instances {
		providers = append(providers, instance.Provider)
	}

	require.Equal(t, resource.Providers, providers)
}

func TestProcess_Run_Canceled(t *testing.T) {
	slow := stubs.NewCollector(resource.OCI, []resource.Record{
		serverRecord(resource.OCI, "VM.Standard.E4.Flex", resource.USD, 0.049, 35.79),
	}, nil).WithDelay(500 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	result, err := newTestProcess(t, nil, slow).Run(ctx)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Contains(t, result.Summary.Errors[resource.OCI], ErrProviderCanceled.Error())
	require.NotContains(t, result.Summary.Errors[resource.OCI], ErrProviderTimeout.Error())
}

func TestAbandoned(t *testing.T) {
	err := abandoned(context.DeadlineExceeded, time.Minute)
	require.ErrorIs(t, err, ErrProviderTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	err = abandoned(context.Canceled, time.Minute)
	require.ErrorIs(t, err, ErrProviderCanceled)
	require.NotErrorIs(t, err, ErrProviderTimeout)
}

func TestProcess_Run_Panic(t *testing.T) {
	panicking := stubs.NewCollector(resource.OVH, nil, nil).WithPanic("index out of range")
	healthy := stubs.NewCollector(resource.OCI, []resource.Record{
		serverRecord(resource.OCI, "VM.Standard.A1.Flex", resource.USD, 0.019, 13.88),
	}, nil)

	result, err := newTestProcess(t, nil, panicking, healthy).Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Instances, 1)
	require.Contains(t, result.Summary.Errors[resource.OVH], "index out of range")
}

func TestProcess_Run_SkipsInvalidRecords(t *testing.T) {
	missingSpecs := serverRecord(resource.Hetzner, "cx-broken", resource.EUR, 0.0054, 3.29)
	missingSpecs.VCPU = 0

	noPrice := serverRecord(resource.Hetzner, "cx-free", resource.EUR, 0, 0)

	c := stubs.NewCollector(resource.Hetzner, []resource.Record{
		missingSpecs,
		serverRecord(resource.Hetzner, "cx11", resource.EUR, 0.0054, 3.29),
		noPrice,
	}, nil)

	result, err := newTestProcess(t, nil, c).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Instances, 1)
	require.Equal(t, "cx11", result.Instances[0].InstanceType)
	require.Empty(t, result.Summary.Errors)
}

func TestProcess_Run_NothingCollected(t *testing.T) {
	failing := stubs.NewCollector(resource.Hetzner, nil, errors.New("unauthorized"))
	empty := stubs.NewCollector(resource.Azure, []resource.Record{}, nil)

	result, err := newTestProcess(t, []Option{WithWorkersPoolSize(1)}, failing, empty).Run(context.Background())
	require.NoError(t, err)
	require.False(t, result.Success)
	require.NotNil(t, result.Instances)
	require.Empty(t, result.Instances)
	require.Len(t, result.Summary.Errors, 1)
}

func TestSummarize(t *testing.T) {
	instances := []resource.Instance{
		{Provider: resource.Hetzner, Type: resource.CloudServer, PriceUSDHourly: 0.00594},
		{Provider: resource.Hetzner, Type: resource.CloudVolume, PriceUSDHourly: 0},
		{Provider: resource.Hetzner, Type: resource.DedicatedServer, PriceUSDHourly: 0.0603},
		{Provider: resource.OCI, Type: resource.CloudServer, PriceUSDHourly: 0.049},
	}

	summary := Summarize(instances, map[resource.Provider]error{resource.AWS: errors.New("boom")}, fixedNow)

	require.Equal(t, 4, summary.TotalInstances)
	require.Equal(t, 2, summary.ProvidersCount)
	require.Equal(t, fixedNow, summary.LastUpdated)
	require.Equal(t, PriceRange{Min: 0.00594, Max: 0.0603}, summary.PriceRange)
	require.Equal(t, map[resource.Provider]int{resource.Hetzner: 3, resource.OCI: 1}, summary.ByProvider)
	require.Equal(t, 2, summary.ByType[resource.CloudServer])
	require.Equal(t, map[resource.Provider]string{resource.AWS: "boom"}, summary.Errors)

	empty := Summarize(nil, nil, fixedNow)
	require.Zero(t, empty.TotalInstances)
	require.Equal(t, PriceRange{}, empty.PriceRange)
	require.NotNil(t, empty.Errors)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer

	PrintSummary(&buf, Summary{
		TotalInstances: 3,
		PriceRange:     PriceRange{Min: 0.00594, Max: 0.049},
		ByProvider:     map[resource.Provider]int{resource.Hetzner: 2, resource.OCI: 1},
		ByType:         map[resource.Type]int{resource.CloudServer: 3},
		Errors:         map[resource.Provider]string{resource.AWS: "throttled"},
	})

	out := buf.String()
	require.Contains(t, out, "hetzner")
	require.Contains(t, out, "throttled")
	require.Contains(t, out, "cloud-server")
	require.Contains(t, out, "0.0490")
}
