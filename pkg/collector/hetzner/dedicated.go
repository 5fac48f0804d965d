package hetzner

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	"github.com/kyma-project/cloud-pricing-collector/pkg/config"
	"github.com/kyma-project/cloud-pricing-collector/pkg/httpclient"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

var (
	numericCoresPattern = regexp.MustCompile(`(?i)(\d+)[\s-]*(?:cores?|kerne)\b`)
	namedCoresPattern   = regexp.MustCompile(`(?i)\b(quad|hexa|octa|deca|dodeca)[\s-]*core\b`)
	memoryPattern       = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*GB\b.*\bRAM\b`)
	diskPattern         = regexp.MustCompile(`(?i)(\d+)\s*x\s*(\d+(?:\.\d+)?)\s*(GB|TB)\s+(.+)`)
)

var namedCores = map[string]int{
	"quad":   4,
	"hexa":   6,
	"octa":   8,
	"deca":   10,
	"dodeca": 12,
}

// specs is what can be read from the description lines of a Robot product.
type specs struct {
	CPU        string
	Cores      int
	MemoryGiB  float64
	DiskSizeGB float64
	DiskType   string
}

// parseSpecs reads cores, memory and disks from description lines such as
// "AMD Ryzen 5 3600 Hexa-Core", "64 GB DDR4 ECC RAM" and "2 x 512 GB NVMe SSD".
func parseSpecs(lines []string) specs {
	var s specs

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if s.CPU == "" && (strings.Contains(line, "Intel") || strings.Contains(line, "AMD") || strings.Contains(line, "Ampere")) {
			s.CPU = line
		}

		if s.Cores == 0 {
			if m := numericCoresPattern.FindStringSubmatch(line); m != nil {
				s.Cores, _ = strconv.Atoi(m[1])
			} else if m := namedCoresPattern.FindStringSubmatch(line); m != nil {
				s.Cores = namedCores[strings.ToLower(m[1])]
			}
		}

		if s.MemoryGiB == 0 {
			if m := memoryPattern.FindStringSubmatch(line); m != nil {
				s.MemoryGiB, _ = strconv.ParseFloat(m[1], 64)
				continue
			}
		}

		if m := diskPattern.FindStringSubmatch(line); m != nil {
			count, _ := strconv.Atoi(m[1])
			size, _ := strconv.ParseFloat(m[2], 64)

			if strings.EqualFold(m[3], "TB") {
				size *= 1000
			}

			s.DiskSizeGB += float64(count) * size
			if s.DiskType == "" {
				s.DiskType = strings.TrimSpace(m[4])
			}
		}
	}

	return s
}

func (c *Collector) dedicatedServers(ctx context.Context) ([]resource.Record, error) {
	req := httpclient.Request{
		URL:       c.config.RobotAPIURL + "/order/server/product",
		BasicAuth: &httpclient.BasicAuth{User: c.config.RobotUser, Password: c.config.RobotPassword},
	}

	var entries []robotProductEntry
	if err := c.client.GetJSON(ctx, req, &entries); err != nil {
		return nil, fmt.Errorf("failed to list dedicated server products: %w", err)
	}

	records := make([]resource.Record, 0, len(entries))

	for _, entry := range entries {
		var product robotProduct
		if err := json.Unmarshal(entry.Product, &product); err != nil {
			c.skipDedicated("", err)
			continue
		}

		rec, err := dedicatedRecord(product, entry.Product, c.settings.Locations)
		if err != nil {
			c.skipDedicated(product.ID, err)
			continue
		}

		records = append(records, rec)
	}

	return records, nil
}

func dedicatedRecord(product robotProduct, raw json.RawMessage, known map[string]config.Location) (resource.Record, error) {
	entries := make([]resource.PricingEntry, 0, len(product.Prices))

	for _, p := range product.Prices {
		entry, err := resource.NewPricingEntry(strings.ToLower(p.Location), resource.EUR, p.Price.Net, resource.Monthly)
		if err != nil {
			return resource.Record{}, err
		}

		entries = append(entries, entry)
	}

	regional := resource.GroupRegional(entries)
	for i := range regional {
		regional[i].Hourly = regional[i].Monthly / resource.HoursPerMonth
	}

	hourly, monthly, priceRange, err := resource.ReduceRegional(regional)
	if err != nil {
		return resource.Record{}, err
	}

	regions := resource.Locations(regional)

	details := make([]resource.LocationDetail, 0, len(regions))
	for _, code := range regions {
		if l, found := known[code]; found {
			details = append(details, l.Detail(code))
			continue
		}

		details = append(details, resource.LocationDetail{Code: code, City: code, Country: "Unknown", CountryCode: "XX", Region: "Unknown"})
	}

	s := parseSpecs(product.Description)

	name := product.ID
	if name == "" {
		name = product.Name
	}

	return resource.Record{
		Provider:        resource.Hetzner,
		Platform:        resource.PlatformDedicated,
		Type:            resource.DedicatedServer,
		InstanceType:    name,
		Description:     strings.Join(append([]string{product.Name}, product.Description...), " - "),
		VCPU:            s.Cores,
		MemoryGiB:       s.MemoryGiB,
		DiskSizeGB:      s.DiskSizeGB,
		DiskType:        s.DiskType,
		CPUType:         s.CPU,
		Architecture:    architectureOf(s.CPU),
		Currency:        resource.EUR,
		PriceHourly:     hourly,
		PriceMonthly:    monthly,
		Regions:         regions,
		LocationDetails: details,
		RegionalPricing: regional,
		PriceRange:      &priceRange,
		Source:          sourceRobot,
		Raw:             raw,
	}, nil
}

func architectureOf(cpu string) string {
	if strings.Contains(cpu, "Ampere") {
		return "arm"
	}

	return "x86"
}

func (c *Collector) skipDedicated(id string, err error) {
	collector.RecordSkipped(resource.Hetzner, "dedicated_servers")
	c.namedLogger().With(log.KeyInstance, id).With(log.KeyError, err.Error()).Warn("skipping dedicated server product")
}
