package process

import (
	"time"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

// Summary is written next to the instance catalog. Its field names are consumed downstream.
type Summary struct {
	TotalInstances int                          `json:"totalInstances"`
	ProvidersCount int                          `json:"providersCount"`
	LastUpdated    time.Time                    `json:"lastUpdated"`
	PriceRange     PriceRange                   `json:"priceRange"`
	ByProvider     map[resource.Provider]int    `json:"byProvider"`
	ByType         map[resource.Type]int        `json:"byType"`
	Errors         map[resource.Provider]string `json:"errors"`
}

// PriceRange spans the positive USD hourly prices of a run.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func Summarize(instances []resource.Instance, failures map[resource.Provider]error, now time.Time) Summary {
	summary := Summary{
		TotalInstances: len(instances),
		LastUpdated:    now.UTC(),
		ByProvider:     make(map[resource.Provider]int),
		ByType:         make(map[resource.Type]int),
		Errors:         make(map[resource.Provider]string, len(failures)),
	}

	first := true

	for _, instance := range instances {
		summary.ByProvider[instance.Provider]++
		summary.ByType[instance.Type]++

		price := instance.PriceUSDHourly
		if price <= 0 {
			continue
		}

		if first {
			summary.PriceRange = PriceRange{Min: price, Max: price}
			first = false

			continue
		}

		summary.PriceRange.Min = min(summary.PriceRange.Min, price)
		summary.PriceRange.Max = max(summary.PriceRange.Max, price)
	}

	summary.ProvidersCount = len(summary.ByProvider)

	for provider, err := range failures {
		summary.Errors[provider] = err.Error()
	}

	return summary
}
