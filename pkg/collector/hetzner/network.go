package hetzner

import (
	"fmt"
	"strings"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

// IPv6OnlyPrice returns the price of a server without a primary IPv4 address.
// The monthly price never drops below zero.
func IPv6OnlyPrice(monthly, ipv4MonthlyFee float64) (ipv6Monthly, ipv6Hourly float64) {
	ipv6Monthly = max(0, monthly-ipv4MonthlyFee)
	return ipv6Monthly, ipv6Monthly / resource.HoursPerMonth
}

func networkOptions(hourly, monthly, ipv4MonthlyFee float64) *resource.NetworkOptions {
	options := &resource.NetworkOptions{
		IPv4IPv6: resource.NetworkOption{
			Available:   true,
			Hourly:      hourly,
			Monthly:     monthly,
			Description: "IPv4 + IPv6 included",
		},
		IPv6Only: resource.NetworkOption{
			Description: "IPv6-only",
		},
	}

	if ipv4MonthlyFee <= 0 {
		return options
	}

	ipv6Monthly, ipv6Hourly := IPv6OnlyPrice(monthly, ipv4MonthlyFee)
	options.IPv6Only = resource.NetworkOption{
		Available:   true,
		Hourly:      ipv6Hourly,
		Monthly:     ipv6Monthly,
		Savings:     ipv4MonthlyFee,
		Description: fmt.Sprintf("IPv6-only (saves €%.2f/month)", ipv4MonthlyFee),
	}

	return options
}

// ipv4Fee is the cheapest monthly primary IPv4 price, or the configured fallback.
func (cat *catalog) ipv4Fee() float64 {
	fee := 0.0

	for _, ip := range cat.pricing.PrimaryIPs {
		if !strings.EqualFold(ip.Type, "ipv4") {
			continue
		}

		for _, p := range ip.Prices {
			monthly, err := resource.ParseAmount(p.PriceMonthly.Net)
			if err != nil || monthly <= 0 {
				continue
			}

			if fee == 0 || monthly < fee {
				fee = monthly
			}
		}
	}

	if fee > 0 {
		return fee
	}

	return cat.c.settings.IPv4MonthlyFee
}
