package ovh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	"github.com/kyma-project/cloud-pricing-collector/pkg/httpclient"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

const (
	DefaultCatalogURL = "https://api.ovh.com/1.0/order/catalog/public/cloud"
	DefaultSubsidiary = "FR"

	source            = "ovh_catalog_api"
	brickInstance     = "instance"
	consumptionSuffix = ".consumption"
	monthlySuffix     = ".monthly.postpaid"
)

type JSONGetter interface {
	GetJSON(ctx context.Context, req httpclient.Request, out any) error
}

// Collector reads public cloud instance prices from the OVHcloud order catalog.
type Collector struct {
	catalogURL string
	subsidiary string
	client     JSONGetter
	logger     *zap.SugaredLogger
}

var _ collector.Collector = &Collector{}

func NewCollector(catalogURL, subsidiary string, client JSONGetter, logger *zap.SugaredLogger) *Collector {
	if catalogURL == "" {
		catalogURL = DefaultCatalogURL
	}

	if subsidiary == "" {
		subsidiary = DefaultSubsidiary
	}

	return &Collector{
		catalogURL: catalogURL,
		subsidiary: subsidiary,
		client:     client,
		logger:     logger,
	}
}

func (c *Collector) Provider() resource.Provider {
	return resource.OVH
}

func (c *Collector) Collect(ctx context.Context) ([]resource.Record, error) {
	return collector.Gather(ctx, resource.OVH, c.namedLogger(), collector.Fetch{
		Name: "instances",
		Run:  c.instances,
	})
}

func (c *Collector) instances(ctx context.Context) ([]resource.Record, error) {
	var cat catalog

	err := c.client.GetJSON(ctx, httpclient.Request{
		URL:    c.catalogURL,
		Params: url.Values{"ovhSubsidiary": []string{c.subsidiary}},
	}, &cat)
	if err != nil {
		return nil, err
	}

	currency := cat.Locale.CurrencyCode
	if currency == "" {
		currency = resource.EUR
	}

	addons := make(map[string]addon, len(cat.Addons))
	raws := make(map[string]json.RawMessage, len(cat.Addons))
	order := make([]string, 0, len(cat.Addons))

	for _, raw := range cat.Addons {
		var a addon
		if err := json.Unmarshal(raw, &a); err != nil {
			collector.RecordSkipped(resource.OVH, "instances")
			c.namedLogger().With(log.KeyError, err.Error()).Debug("skipping undecodable addon")

			continue
		}

		addons[a.PlanCode] = a
		raws[a.PlanCode] = raw
		order = append(order, a.PlanCode)
	}

	records := make([]resource.Record, 0)

	for _, planCode := range order {
		a := addons[planCode]
		if !strings.HasSuffix(planCode, consumptionSuffix) || !isInstance(a) {
			continue
		}

		record, err := instanceRecord(a, raws[planCode], currency)
		if err != nil {
			collector.RecordSkipped(resource.OVH, "instances")
			c.namedLogger().With(log.KeyInstance, planCode).With(log.KeyError, err.Error()).
				Debug("skipping addon")

			continue
		}

		base := strings.TrimSuffix(planCode, consumptionSuffix)
		if monthly, found := addons[base+monthlySuffix]; found {
			if price, ok := priceOf(monthly, "month"); ok {
				record.PriceMonthly = price
				record.RegionalPricing = regional(record.Regions, record.PriceHourly, price)
			}
		}

		records = append(records, record)
	}

	return records, nil
}

func isInstance(a addon) bool {
	if a.Blobs != nil && a.Blobs.Commercial.Brick != "" {
		return a.Blobs.Commercial.Brick == brickInstance
	}

	return strings.HasPrefix(a.Product, "publiccloud-instance")
}

func instanceRecord(a addon, raw json.RawMessage, currency string) (resource.Record, error) {
	if a.Blobs == nil {
		return resource.Record{}, fmt.Errorf("addon %s has no technical details", a.PlanCode)
	}

	hourly, ok := priceOf(a, "hour")
	if !ok {
		return resource.Record{}, fmt.Errorf("addon %s has no hourly consumption price", a.PlanCode)
	}

	tech := a.Blobs.Technical
	if tech.CPU.Cores <= 0 || tech.Memory.Size <= 0 {
		return resource.Record{}, fmt.Errorf("addon %s lacks cpu or memory", a.PlanCode)
	}

	name := a.InvoiceName
	if name == "" {
		name = strings.TrimSuffix(a.PlanCode, consumptionSuffix)
	}

	var diskSize float64

	var diskType string

	for _, disk := range tech.Storage.Disks {
		n := max(disk.Number, 1)
		diskSize += disk.Capacity * float64(n)
		if diskType == "" {
			diskType = strings.ToLower(disk.Technology)
		}
	}

	regions := regionsOf(a)
	monthly := hourly * resource.HoursPerMonth

	return resource.Record{
		Provider:        resource.OVH,
		Platform:        resource.PlatformCloud,
		Type:            resource.CloudServer,
		InstanceType:    strings.ToLower(name),
		Description:     name,
		VCPU:            tech.CPU.Cores,
		MemoryGiB:       tech.Memory.Size,
		DiskSizeGB:      diskSize,
		DiskType:        diskType,
		CPUType:         strings.TrimSpace(tech.CPU.Brand + " " + tech.CPU.Model),
		Architecture:    "x86",
		Currency:        currency,
		PriceHourly:     hourly,
		PriceMonthly:    monthly,
		Regions:         regions,
		LocationDetails: locationDetails(regions),
		RegionalPricing: regional(regions, hourly, monthly),
		Source:          source,
		Raw:             raw,
	}, nil
}

// priceOf returns the first price billed per intervalUnit, in currency units.
func priceOf(a addon, intervalUnit string) (float64, bool) {
	for _, p := range a.Pricings {
		if p.IntervalUnit != intervalUnit || p.Price < 0 {
			continue
		}

		if intervalUnit == "hour" && p.Mode != "consumption" && !slices.Contains(p.Capacities, "consumption") {
			continue
		}

		return float64(p.Price) / priceScale, true
	}

	return 0, false
}

func regionsOf(a addon) []string {
	for _, cfg := range a.Configurations {
		if cfg.Name == "region" {
			return slices.Clone(cfg.Values)
		}
	}

	return []string{}
}

func regional(regions []string, hourly, monthly float64) []resource.RegionalPrice {
	prices := make([]resource.RegionalPrice, 0, len(regions))
	for _, region := range regions {
		prices = append(prices, resource.RegionalPrice{Location: region, Hourly: hourly, Monthly: monthly})
	}

	return prices
}

func locationDetails(regions []string) []resource.LocationDetail {
	details := make([]resource.LocationDetail, 0, len(regions))
	for _, region := range regions {
		details = append(details, resource.LocationDetail{Code: region, Region: region})
	}

	return details
}

func (c *Collector) namedLogger() *zap.SugaredLogger {
	return c.logger.With("component", "ovh-collector")
}
