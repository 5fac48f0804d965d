package oci

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	"github.com/kyma-project/cloud-pricing-collector/pkg/config"
	"github.com/kyma-project/cloud-pricing-collector/pkg/httpclient"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

const (
	DefaultPriceListURL = "https://apexapps.oracle.com/pls/apex/cetools/api/v1/products/"

	source        = "oci_price_list"
	payAsYouGo    = "PAY_AS_YOU_GO"
	unitOCPU      = "ocpu"
	unitMemory    = "memory"
	x86           = "x86"
	arm           = "arm"
	threadsPerCPU = 2
)

var seriesPattern = regexp.MustCompile(`\b(E\d+|A\d+|X\d+|Optimized\d+)\b`)

type JSONGetter interface {
	GetJSON(ctx context.Context, req httpclient.Request, out any) error
}

type priceList struct {
	Items []json.RawMessage `json:"items"`
}

type item struct {
	PartNumber                string                 `json:"partNumber"`
	DisplayName               string                 `json:"displayName"`
	MetricName                string                 `json:"metricName"`
	ServiceCategory           string                 `json:"serviceCategory"`
	CurrencyCodeLocalizations []currencyLocalization `json:"currencyCodeLocalizations"`
}

type currencyLocalization struct {
	CurrencyCode string  `json:"currencyCode"`
	Prices       []price `json:"prices"`
}

type price struct {
	Model string  `json:"model"`
	Value float64 `json:"value"`
}

// sku is one priced component of a flexible shape series.
type sku struct {
	item   item
	raw    json.RawMessage
	hourly float64
}

type series struct {
	ocpu   *sku
	memory *sku
}

// Collector builds flexible compute shapes from the public OCI price list. No credentials are needed.
type Collector struct {
	priceListURL string
	client       JSONGetter
	settings     config.OCISettings
	logger       *zap.SugaredLogger
}

var _ collector.Collector = &Collector{}

func NewCollector(priceListURL string, client JSONGetter, settings config.OCISettings, logger *zap.SugaredLogger) *Collector {
	if priceListURL == "" {
		priceListURL = DefaultPriceListURL
	}

	return &Collector{
		priceListURL: priceListURL,
		client:       client,
		settings:     settings,
		logger:       logger,
	}
}

func (c *Collector) Provider() resource.Provider {
	return resource.OCI
}

func (c *Collector) Collect(ctx context.Context) ([]resource.Record, error) {
	return collector.Gather(ctx, resource.OCI, c.namedLogger(),
		collector.Fetch{Name: "compute_shapes", Run: c.computeShapes},
	)
}

func (c *Collector) computeShapes(ctx context.Context) ([]resource.Record, error) {
	var list priceList
	if err := c.client.GetJSON(ctx, httpclient.Request{URL: c.priceListURL}, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch price list: %w", err)
	}

	bySeries := make(map[string]*series)

	var order []string

	for _, raw := range list.Items {
		var it item
		if err := json.Unmarshal(raw, &it); err != nil {
			c.skip("", err)
			continue
		}

		name, unit, ok := classify(it)
		if !ok {
			continue
		}

		hourly, ok := usdPayAsYouGo(it)
		if !ok {
			c.skip(it.PartNumber, fmt.Errorf("no USD pay-as-you-go price"))
			continue
		}

		s, found := bySeries[name]
		if !found {
			s = &series{}
			bySeries[name] = s
			order = append(order, name)
		}

		component := &sku{item: it, raw: raw, hourly: hourly}
		if unit == unitOCPU {
			s.ocpu = component
		} else {
			s.memory = component
		}
	}

	records := make([]resource.Record, 0, len(order))

	for _, name := range order {
		rec, err := c.flexShape(name, bySeries[name])
		if err != nil {
			c.skip(name, err)
			continue
		}

		records = append(records, rec)
	}

	return records, nil
}

// classify returns the series and the unit of a compute item, e.g. ("E4", "ocpu").
func classify(it item) (string, string, bool) {
	if !strings.Contains(strings.ToLower(it.ServiceCategory), "compute") {
		return "", "", false
	}

	name := it.DisplayName
	if !strings.Contains(name, "Standard") && !strings.Contains(name, "Ampere") && !strings.Contains(name, "Optimized") {
		return "", "", false
	}

	m := seriesPattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}

	lower := strings.ToLower(name + " " + it.MetricName)

	switch {
	case strings.Contains(lower, "ocpu"):
		return m[1], unitOCPU, true
	case strings.Contains(lower, "memory") || strings.Contains(lower, "gigabyte"):
		return m[1], unitMemory, true
	default:
		return "", "", false
	}
}

func usdPayAsYouGo(it item) (float64, bool) {
	for _, l := range it.CurrencyCodeLocalizations {
		if l.CurrencyCode != resource.USD {
			continue
		}

		for _, p := range l.Prices {
			if p.Model == payAsYouGo && p.Value >= 0 {
				return p.Value, true
			}
		}
	}

	return 0, false
}

func (c *Collector) flexShape(name string, s *series) (resource.Record, error) {
	if s.ocpu == nil || s.memory == nil {
		return resource.Record{}, fmt.Errorf("series needs both an OCPU and a memory price")
	}

	memoryPerOCPU, found := c.settings.MemoryPerOCPU[name]
	if !found {
		return resource.Record{}, fmt.Errorf("no memory per OCPU configured for series")
	}

	arch, vcpu := x86, threadsPerCPU
	if slices.Contains(c.settings.ARMSeries, name) {
		arch, vcpu = arm, 1
	}

	hourly := s.ocpu.hourly + memoryPerOCPU*s.memory.hourly

	raw, err := json.Marshal(map[string]json.RawMessage{unitOCPU: s.ocpu.raw, unitMemory: s.memory.raw})
	if err != nil {
		return resource.Record{}, err
	}

	regions := make([]string, 0, len(c.settings.Regions))
	for code := range c.settings.Regions {
		regions = append(regions, code)
	}

	slices.Sort(regions)

	details := make([]resource.LocationDetail, 0, len(regions))
	for _, code := range regions {
		details = append(details, c.settings.Regions[code].Detail(code))
	}

	return resource.Record{
		Provider:        resource.OCI,
		Platform:        resource.PlatformCloud,
		Type:            resource.CloudServer,
		InstanceType:    shapeName(name),
		Description:     fmt.Sprintf("Flexible shape, 1 OCPU with %g GB memory (%s)", memoryPerOCPU, s.ocpu.item.DisplayName),
		VCPU:            vcpu,
		MemoryGiB:       memoryPerOCPU,
		CPUType:         "flex",
		Architecture:    arch,
		Currency:        resource.USD,
		PriceHourly:     hourly,
		PriceMonthly:    hourly * resource.HoursPerMonth,
		Regions:         regions,
		LocationDetails: details,
		Source:          source,
		Raw:             raw,
	}, nil
}

func shapeName(series string) string {
	if strings.HasPrefix(series, "Optimized") {
		return "VM." + series + ".Flex"
	}

	return "VM.Standard." + series + ".Flex"
}

func (c *Collector) skip(id string, err error) {
	collector.RecordSkipped(resource.OCI, "compute_shapes")
	c.namedLogger().With(log.KeyInstance, id).With(log.KeyError, err.Error()).Warn("skipping price list entry")
}

func (c *Collector) namedLogger() *zap.SugaredLogger {
	return c.logger.With("component", "oci-collector")
}
