package resource

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount = errors.New("invalid price amount")
	ErrNoPrices      = errors.New("no regional prices")
)

// PricingEntry is one net price point of a resource in one location.
type PricingEntry struct {
	Location  string
	Currency  string
	AmountNet float64
	Unit      PriceUnit
}

// NewPricingEntry parses a decimal amount as delivered by provider APIs.
func NewPricingEntry(location, currency, amountNet string, unit PriceUnit) (PricingEntry, error) {
	amount, err := ParseAmount(amountNet)
	if err != nil {
		return PricingEntry{}, fmt.Errorf("location %s, %s: %w", location, unit, err)
	}

	return PricingEntry{
		Location:  location,
		Currency:  currency,
		AmountNet: amount,
		Unit:      unit,
	}, nil
}

// ParseAmount parses a non-negative decimal string.
func ParseAmount(amount string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	if value < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, amount)
	}

	return value, nil
}

// GroupRegional merges hourly and monthly entries of the same location.
// Locations keep the order in which they were first seen.
func GroupRegional(entries []PricingEntry) []RegionalPrice {
	var regional []RegionalPrice

	index := make(map[string]int)

	for _, entry := range entries {
		i, found := index[entry.Location]
		if !found {
			i = len(regional)
			index[entry.Location] = i
			regional = append(regional, RegionalPrice{Location: entry.Location})
		}

		switch entry.Unit {
		case Hourly:
			regional[i].Hourly = entry.AmountNet
		case Monthly:
			regional[i].Monthly = entry.AmountNet
		}
	}

	return regional
}

// ReduceRegional returns the default price of a resource offered in several regions,
// which is the cheapest region, together with the spread across regions.
// A zero amount means the region lacks that unit and does not count towards the bounds.
func ReduceRegional(regional []RegionalPrice) (hourly, monthly float64, priceRange PriceRange, err error) {
	if len(regional) == 0 {
		return 0, 0, PriceRange{}, ErrNoPrices
	}

	hourlies := make([]float64, 0, len(regional))
	monthlies := make([]float64, 0, len(regional))

	for _, price := range regional {
		hourlies = append(hourlies, price.Hourly)
		monthlies = append(monthlies, price.Monthly)
	}

	priceRange = PriceRange{
		Hourly:  boundsOf(hourlies),
		Monthly: boundsOf(monthlies),
	}

	return priceRange.Hourly.Min, priceRange.Monthly.Min, priceRange, nil
}

// boundsOf spans the positive amounts. Without any, the bounds are zero.
func boundsOf(amounts []float64) Bounds {
	var b Bounds

	found := false

	for _, amount := range amounts {
		if amount <= 0 {
			continue
		}

		if !found {
			b = Bounds{Min: amount, Max: amount}
			found = true

			continue
		}

		b.Min = min(b.Min, amount)
		b.Max = max(b.Max, amount)
	}

	b.HasVariation = b.Min != b.Max

	return b
}

// Locations returns the location codes of the regional prices.
func Locations(regional []RegionalPrice) []string {
	locations := make([]string, 0, len(regional))
	for _, price := range regional {
		locations = append(locations, price.Location)
	}

	return locations
}
