package normalizer

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

// ConvertFunc converts amount from one currency into another.
type ConvertFunc func(amount float64, from, to string) (float64, error)

type Option func(*Normalizer)

// WithClock overrides the clock used for lastUpdated.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// Normalizer maps provisional records onto the canonical instance shape.
type Normalizer struct {
	convert ConvertFunc
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func New(convert ConvertFunc, logger *zap.SugaredLogger, opts ...Option) *Normalizer {
	n := &Normalizer{
		convert: convert,
		logger:  logger,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Normalize never fails. When a price cannot be converted to USD the original amounts are kept
// and the instance is marked with ConversionFailed.
func (n *Normalizer) Normalize(rec resource.Record, providerHint resource.Provider) resource.Instance {
	provider := rec.Provider
	if provider == "" {
		provider = providerHint
	}

	currency := strings.ToUpper(strings.TrimSpace(rec.Currency))
	if currency == "" {
		currency = resource.USD
	}

	instance := resource.Instance{
		Provider:     provider,
		Platform:     rec.Platform,
		Type:         rec.Type,
		InstanceType: strings.TrimSpace(rec.InstanceType),
		Description:  rec.Description,
		VCPU:         rec.VCPU,
		MemoryGiB:    rec.MemoryGiB,
		DiskSizeGB:   rec.DiskSizeGB,
		DiskType:     rec.DiskType,
		CPUType:      rec.CPUType,
		Architecture: rec.Architecture,
		OriginalPrice: resource.OriginalPrice{
			Hourly:   rec.PriceHourly,
			Monthly:  rec.PriceMonthly,
			Currency: currency,
		},
		Regions:         nonNil(rec.Regions),
		LocationDetails: nonNil(rec.LocationDetails),
		RegionalPricing: nonNil(rec.RegionalPricing),
		PriceRange:      rec.PriceRange,
		NetworkOptions:  rec.NetworkOptions,
		Deprecated:      rec.Deprecated,
		Source:          rec.Source,
		LastUpdated:     n.now().UTC(),
		Raw:             rec.Raw,
	}

	if instance.Platform == "" {
		instance.Platform = platformOf(rec.Type)
	}

	hourly, monthly, ok := n.toUSD(rec.PriceHourly, rec.PriceMonthly, currency)
	if !ok {
		n.namedLogger().With(log.KeyProvider, provider).With(log.KeyInstance, instance.InstanceType).
			With(log.KeyReason, "conversion failed").Warnf("keeping %s prices unconverted", currency)

		instance.PriceUSDHourly = rec.PriceHourly
		instance.PriceUSDMonthly = rec.PriceMonthly
		instance.ConversionFailed = true

		return instance
	}

	instance.PriceUSDHourly = round(hourly, 6)
	instance.PriceUSDMonthly = round(monthly, 2)

	return instance
}

func (n *Normalizer) toUSD(hourly, monthly float64, currency string) (float64, float64, bool) {
	if currency == resource.USD {
		return hourly, monthly, true
	}

	if n.convert == nil {
		return hourly, monthly, false
	}

	usdHourly, err := n.convert(hourly, currency, resource.USD)
	if err != nil {
		return hourly, monthly, false
	}

	usdMonthly, err := n.convert(monthly, currency, resource.USD)
	if err != nil {
		return hourly, monthly, false
	}

	return usdHourly, usdMonthly, true
}

func (n *Normalizer) namedLogger() *zap.SugaredLogger {
	return n.logger.With("component", "normalizer")
}

func platformOf(t resource.Type) resource.Platform {
	if strings.HasPrefix(string(t), "dedicated-") {
		return resource.PlatformDedicated
	}

	return resource.PlatformCloud
}

func round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
