package hetzner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

// services builds records for the offerings that are only described by the pricing endpoint.
func (cat *catalog) services(_ context.Context) ([]resource.Record, error) {
	if cat.pricingErr != nil {
		return nil, cat.pricingErr
	}

	var records []resource.Record

	if rec, err := cat.perGBRecord(resource.CloudVolume, "Block Storage", "Block storage volume pricing per GB", cat.pricing.Volume); err != nil {
		cat.skip("volume", "Block Storage", err)
	} else {
		records = append(records, rec)
	}

	if rec, err := cat.perGBRecord(resource.CloudSnapshot, "Snapshot", "Image and snapshot storage pricing per GB", cat.pricing.Image); err != nil {
		cat.skip("image", "Snapshot", err)
	} else {
		records = append(records, rec)
	}

	for _, ip := range cat.pricing.FloatingIPs {
		name := "Floating " + ipLabel(ip.Type)
		if rec, err := cat.ipRecord(name, "Floating IP pricing", ip); err != nil {
			cat.skip("floating_ips", name, err)
		} else {
			records = append(records, rec)
		}
	}

	for _, ip := range cat.pricing.PrimaryIPs {
		name := "Primary " + ipLabel(ip.Type)
		if rec, err := cat.ipRecord(name, "Primary IP pricing", ip); err != nil {
			cat.skip("primary_ips", name, err)
		} else {
			records = append(records, rec)
		}
	}

	return records, nil
}

func (cat *catalog) perGBRecord(t resource.Type, name, description string, section perGBMonth) (resource.Record, error) {
	monthly, err := resource.ParseAmount(section.PricePerGBMonth.Net)
	if err != nil {
		return resource.Record{}, err
	}

	regions := cat.allLocations()

	return resource.Record{
		Provider:        resource.Hetzner,
		Platform:        resource.PlatformCloud,
		Type:            t,
		InstanceType:    name,
		Description:     description,
		Currency:        cat.currency(),
		PriceHourly:     monthly / resource.HoursPerMonth,
		PriceMonthly:    monthly,
		Regions:         regions,
		LocationDetails: cat.locationDetails(regions),
		Source:          sourceCloud,
		Raw:             mustRaw(section),
	}, nil
}

func (cat *catalog) ipRecord(name, description string, ip ipPricing) (resource.Record, error) {
	regional, err := regionalPrices(cat.currency(), ip.Prices)
	if err != nil {
		return resource.Record{}, err
	}

	// floating IPs are billed monthly only
	for i := range regional {
		if regional[i].Hourly == 0 {
			regional[i].Hourly = regional[i].Monthly / resource.HoursPerMonth
		}
	}

	hourly, monthly, priceRange, err := resource.ReduceRegional(regional)
	if err != nil {
		return resource.Record{}, err
	}

	regions := resource.Locations(regional)

	return resource.Record{
		Provider:        resource.Hetzner,
		Platform:        resource.PlatformCloud,
		Type:            resource.CloudFloatingIP,
		InstanceType:    name,
		Description:     description,
		Currency:        cat.currency(),
		PriceHourly:     hourly,
		PriceMonthly:    monthly,
		Regions:         regions,
		LocationDetails: cat.locationDetails(regions),
		RegionalPricing: regional,
		PriceRange:      &priceRange,
		Source:          sourceCloud,
		Raw:             mustRaw(ip),
	}, nil
}

func ipLabel(ipType string) string {
	switch strings.ToLower(ipType) {
	case "ipv4":
		return "IPv4"
	case "ipv6":
		return "IPv6"
	default:
		return fmt.Sprintf("IP (%s)", ipType)
	}
}

// mustRaw re-encodes a decoded pricing section. The sections only hold strings and slices, so encoding cannot fail.
func mustRaw(v any) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}
