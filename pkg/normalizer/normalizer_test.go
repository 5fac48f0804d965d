package normalizer

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
	kpctesting "github.com/kyma-project/cloud-pricing-collector/pkg/testing"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func eurRate(amount float64, from, to string) (float64, error) {
	if from == "EUR" && to == "USD" {
		return amount * 1.1, nil
	}

	return 0, errors.New("unsupported")
}

func cx11() resource.Record {
	return resource.Record{
		Provider:     resource.Hetzner,
		Type:         resource.CloudServer,
		InstanceType: "cx11",
		VCPU:         2,
		MemoryGiB:    4,
		Currency:     resource.EUR,
		PriceHourly:  0.0054,
		PriceMonthly: 3.29,
		Regions:      []string{"fsn1"},
		Raw:          json.RawMessage(`{"name":"cx11"}`),
	}
}

func TestNormalize_ConvertsEURToUSD(t *testing.T) {
	n := New(eurRate, logger.NewLogger(zapcore.InfoLevel), WithClock(func() time.Time { return fixedNow }))

	instance := n.Normalize(cx11(), "")

	require.Equal(t, resource.Hetzner, instance.Provider)
	require.Equal(t, resource.PlatformCloud, instance.Platform)
	require.InDelta(t, 0.00594, instance.PriceUSDHourly, 1e-9)
	require.InDelta(t, 3.62, instance.PriceUSDMonthly, 1e-9)
	require.Equal(t, resource.OriginalPrice{Hourly: 0.0054, Monthly: 3.29, Currency: resource.EUR}, instance.OriginalPrice)
	require.False(t, instance.ConversionFailed)
	require.Equal(t, fixedNow, instance.LastUpdated)
	require.JSONEq(t, `{"name":"cx11"}`, string(instance.Raw))
}

func TestNormalize_IsIdempotent(t *testing.T) {
	n := New(eurRate, logger.NewLogger(zapcore.InfoLevel))

	first := n.Normalize(cx11(), resource.Hetzner)
	second := n.Normalize(cx11(), resource.Hetzner)

	first.LastUpdated, second.LastUpdated = time.Time{}, time.Time{}
	require.Equal(t, first, second)
}

func TestNormalize_ConversionFailure(t *testing.T) {
	n := New(eurRate, logger.NewLogger(zapcore.InfoLevel))

	rec := cx11()
	rec.Currency = "GBP"

	instance := n.Normalize(rec, "")
	require.True(t, instance.ConversionFailed)
	require.Equal(t, 0.0054, instance.PriceUSDHourly)
	require.Equal(t, 3.29, instance.PriceUSDMonthly)
	require.Equal(t, "GBP", instance.OriginalPrice.Currency)

	out, err := json.Marshal(instance)
	require.NoError(t, err)
	require.Contains(t, string(out), `"conversionFailed":true`)
}

func TestNormalize_Defaults(t *testing.T) {
	n := New(nil, logger.NewLogger(zapcore.InfoLevel))

	instance := n.Normalize(resource.Record{
		Type:         resource.DedicatedServer,
		InstanceType: "  AX41 ",
		PriceMonthly: 39.00001,
	}, resource.Hetzner)

	require.Equal(t, resource.Hetzner, instance.Provider)
	require.Equal(t, resource.PlatformDedicated, instance.Platform)
	require.Equal(t, "AX41", instance.InstanceType)
	require.Equal(t, resource.USD, instance.OriginalPrice.Currency)
	require.Equal(t, 39.0, instance.PriceUSDMonthly)
	require.False(t, instance.ConversionFailed)

	out, err := json.Marshal(instance)
	require.NoError(t, err)
	require.Contains(t, string(out), `"regions":[]`)
	require.Contains(t, string(out), `"locationDetails":[]`)
	require.Contains(t, string(out), `"regionalPricing":[]`)
	require.NotContains(t, string(out), "conversionFailed")
	require.NotContains(t, string(out), "priceRange")
}

func TestNormalize_RoundsUSD(t *testing.T) {
	n := New(nil, logger.NewLogger(zapcore.InfoLevel))

	instance := n.Normalize(resource.Record{
		Provider:     resource.OCI,
		Type:         resource.CloudServer,
		InstanceType: "VM.Standard.E4.Flex",
		Currency:     resource.USD,
		PriceHourly:  0.0306 + 0.0015*16 + 0.0000004,
		PriceMonthly: (0.0306 + 0.0015*16) * resource.HoursPerMonth,
	}, "")

	require.Equal(t, 0.0546, instance.PriceUSDHourly)
	require.InDelta(t, 39.88, instance.PriceUSDMonthly, kpctesting.Delta)
}
