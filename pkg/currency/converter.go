package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/kyma-project/cloud-pricing-collector/pkg/httpclient"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

const (
	DefaultRatesTTL = time.Hour
	ratesKey        = "usd_rates"
)

var ErrUnknownCurrency = errors.New("unknown currency")

// FallbackRates are the USD values of one unit of each currency used when no live rates are available.
var FallbackRates = map[string]float64{
	resource.USD: 1.0,
	resource.EUR: 1.10,
	"GBP":        1.25,
	"JPY":        0.0067,
	"CAD":        0.74,
	"AUD":        0.65,
	"CHF":        1.05,
}

type JSONGetter interface {
	GetJSON(ctx context.Context, req httpclient.Request, out any) error
}

// Converter converts amounts between currencies through USD.
// Convert only reads rates from memory; live rates are loaded by Refresh.
type Converter struct {
	client   JSONGetter
	ratesURL string
	cache    *gocache.Cache
	logger   *zap.SugaredLogger
}

// ratesResponse is the body of the exchange rates endpoint: units of each currency per USD.
type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// NewConverter returns a converter. If client is nil or ratesURL is empty, only the fallback rates are used.
func NewConverter(client JSONGetter, ratesURL string, ttl time.Duration, logger *zap.SugaredLogger) *Converter {
	return &Converter{
		client:   client,
		ratesURL: ratesURL,
		cache:    gocache.New(ttl, 2*ttl),
		logger:   logger,
	}
}

// Refresh loads live rates. On failure the fallback rates stay in effect and the error is returned for logging.
func (c *Converter) Refresh(ctx context.Context) error {
	if c.client == nil || c.ratesURL == "" {
		c.namedLogger().Info("live exchange rates disabled, using fallback rates")
		return nil
	}

	var resp ratesResponse
	if err := c.client.GetJSON(ctx, httpclient.Request{URL: c.ratesURL}, &resp); err != nil {
		c.namedLogger().With(log.KeyResult, log.ValueFail).With(log.KeyError, err.Error()).
			Warn("fetch exchange rates, using fallback rates")

		return fmt.Errorf("failed to refresh exchange rates: %w", err)
	}

	if resp.Base != "" && !strings.EqualFold(resp.Base, resource.USD) {
		return fmt.Errorf("failed to refresh exchange rates: base currency is %s, expected USD", resp.Base)
	}

	rates := make(map[string]float64, len(resp.Rates))
	for code, perUSD := range resp.Rates {
		if perUSD <= 0 {
			continue
		}

		rates[strings.ToUpper(code)] = 1 / perUSD
	}

	rates[resource.USD] = 1.0

	c.cache.Set(ratesKey, rates, gocache.DefaultExpiration)
	c.namedLogger().With(log.KeyResult, log.ValueSuccess).With(log.KeyCount, len(rates)).Info("refreshed exchange rates")

	return nil
}

// Convert converts amount from one currency into another.
func (c *Converter) Convert(amount float64, from, to string) (float64, error) {
	from, to = strings.ToUpper(strings.TrimSpace(from)), strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return amount, nil
	}

	fromRate, err := c.Rate(from)
	if err != nil {
		return amount, err
	}

	toRate, err := c.Rate(to)
	if err != nil {
		return amount, err
	}

	return amount * fromRate / toRate, nil
}

// Rate returns the USD value of one unit of code.
func (c *Converter) Rate(code string) (float64, error) {
	if cached, found := c.cache.Get(ratesKey); found {
		if rates, ok := cached.(map[string]float64); ok {
			if rate, ok := rates[code]; ok {
				return rate, nil
			}
		}
	}

	if rate, ok := FallbackRates[code]; ok {
		return rate, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
}

func (c *Converter) namedLogger() *zap.SugaredLogger {
	return c.logger.With("component", "currency")
}
