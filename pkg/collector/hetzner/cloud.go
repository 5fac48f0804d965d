package hetzner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	"github.com/kyma-project/cloud-pricing-collector/pkg/httpclient"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

// bytesPerTB converts included_traffic, which the API reports in bytes.
const bytesPerTB = 1 << 40

type pager interface {
	nextPage() *int
}

func (p *serverTypesPage) nextPage() *int       { return p.Meta.Pagination.NextPage }
func (p *loadBalancerTypesPage) nextPage() *int { return p.Meta.Pagination.NextPage }
func (p *locationsPage) nextPage() *int         { return p.Meta.Pagination.NextPage }

// catalog holds what all Cloud API sub-resources share: the pricing join maps and the locations.
type catalog struct {
	c *Collector

	pricing      pricing
	pricingErr   error
	serverPrices map[string][]locationPrice
	lbPrices     map[string][]locationPrice

	locations     map[string]location
	locationCodes []string
}

func (c *Collector) loadCatalog(ctx context.Context) *catalog {
	cat := &catalog{
		c:            c,
		serverPrices: make(map[string][]locationPrice),
		lbPrices:     make(map[string][]locationPrice),
		locations:    make(map[string]location),
	}

	var resp pricingResponse
	if err := c.client.GetJSON(ctx, c.cloudRequest("/pricing", 0), &resp); err != nil {
		cat.pricingErr = fmt.Errorf("failed to fetch pricing: %w", err)
	} else {
		cat.pricing = resp.Pricing
		for _, tp := range resp.Pricing.ServerTypes {
			cat.serverPrices[tp.Name] = tp.Prices
		}

		for _, tp := range resp.Pricing.LoadBalancerTypes {
			cat.lbPrices[tp.Name] = tp.Prices
		}
	}

	err := fetchAll(ctx, c, "/locations", func(p *locationsPage) {
		for _, l := range p.Locations {
			cat.locations[l.Name] = l
			cat.locationCodes = append(cat.locationCodes, l.Name)
		}
	})
	if err != nil {
		c.namedLogger().With(log.KeyResult, log.ValueFail).With(log.KeyError, err.Error()).
			Warn("fetch locations, falling back to the configured location table")
	}

	return cat
}

func (c *Collector) cloudRequest(path string, page int) httpclient.Request {
	req := httpclient.Request{
		URL:     c.config.CloudAPIURL + path,
		Headers: map[string]string{"Authorization": "Bearer " + c.config.CloudAPIToken},
	}

	if page > 0 {
		req.Params = url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(perPage)},
		}
	}

	return req
}

// fetchAll follows next_page until the last page of a paged Cloud API list.
func fetchAll[T any, P interface {
	*T
	pager
}](ctx context.Context, c *Collector, path string, collect func(P)) error {
	page := 1
	for {
		p := P(new(T))
		if err := c.client.GetJSON(ctx, c.cloudRequest(path, page), p); err != nil {
			return err
		}

		collect(p)

		next := p.nextPage()
		if next == nil || *next <= page {
			return nil
		}

		page = *next
	}
}

func (cat *catalog) currency() string {
	if cat.pricing.Currency != "" {
		return cat.pricing.Currency
	}

	return resource.EUR
}

func (cat *catalog) serverTypes(ctx context.Context) ([]resource.Record, error) {
	if cat.pricingErr != nil {
		return nil, cat.pricingErr
	}

	var raws []json.RawMessage

	err := fetchAll(ctx, cat.c, "/server_types", func(p *serverTypesPage) {
		raws = append(raws, p.ServerTypes...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list server types: %w", err)
	}

	records := make([]resource.Record, 0, len(raws))

	for _, raw := range raws {
		var st serverType
		if err := json.Unmarshal(raw, &st); err != nil {
			cat.skip("server_types", "", err)
			continue
		}

		prices, found := cat.serverPrices[st.Name]
		if !found {
			cat.skip("server_types", st.Name, fmt.Errorf("no pricing for server type"))
			continue
		}

		regional, err := regionalPrices(cat.currency(), prices)
		if err != nil {
			cat.skip("server_types", st.Name, err)
			continue
		}

		hourly, monthly, priceRange, err := resource.ReduceRegional(regional)
		if err != nil {
			cat.skip("server_types", st.Name, err)
			continue
		}

		regions := resource.Locations(regional)

		records = append(records, resource.Record{
			Provider:        resource.Hetzner,
			Platform:        resource.PlatformCloud,
			Type:            resource.CloudServer,
			InstanceType:    st.Name,
			Description:     st.Description,
			VCPU:            st.Cores,
			MemoryGiB:       st.Memory,
			DiskSizeGB:      st.Disk,
			DiskType:        st.StorageType,
			CPUType:         st.CPUType,
			Architecture:    st.Architecture,
			Currency:        cat.currency(),
			PriceHourly:     hourly,
			PriceMonthly:    monthly,
			Regions:         regions,
			LocationDetails: cat.locationDetails(regions),
			RegionalPricing: regional,
			PriceRange:      &priceRange,
			NetworkOptions:  networkOptions(hourly, monthly, cat.ipv4Fee()),
			Deprecated:      st.Deprecated,
			Source:          sourceCloud,
			Raw:             raw,
		})
	}

	return records, nil
}

func (cat *catalog) loadBalancerTypes(ctx context.Context) ([]resource.Record, error) {
	if cat.pricingErr != nil {
		return nil, cat.pricingErr
	}

	var raws []json.RawMessage

	err := fetchAll(ctx, cat.c, "/load_balancer_types", func(p *loadBalancerTypesPage) {
		raws = append(raws, p.LoadBalancerTypes...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list load balancer types: %w", err)
	}

	records := make([]resource.Record, 0, len(raws))

	for _, raw := range raws {
		var lb loadBalancerType
		if err := json.Unmarshal(raw, &lb); err != nil {
			cat.skip("load_balancer_types", "", err)
			continue
		}

		prices, found := cat.lbPrices[lb.Name]
		if !found {
			cat.skip("load_balancer_types", lb.Name, fmt.Errorf("no pricing for load balancer type"))
			continue
		}

		regional, err := regionalPrices(cat.currency(), prices)
		if err != nil {
			cat.skip("load_balancer_types", lb.Name, err)
			continue
		}

		hourly, monthly, priceRange, err := resource.ReduceRegional(regional)
		if err != nil {
			cat.skip("load_balancer_types", lb.Name, err)
			continue
		}

		if hourly == 0 && monthly == 0 {
			cat.skip("load_balancer_types", lb.Name, fmt.Errorf("load balancer type is free"))
			continue
		}

		regions := resource.Locations(regional)

		records = append(records, resource.Record{
			Provider:        resource.Hetzner,
			Platform:        resource.PlatformCloud,
			Type:            resource.CloudLoadBalancer,
			InstanceType:    lb.Name,
			Description:     lb.Description,
			Currency:        cat.currency(),
			PriceHourly:     hourly,
			PriceMonthly:    monthly,
			Regions:         regions,
			LocationDetails: cat.locationDetails(regions),
			RegionalPricing: regional,
			PriceRange:      &priceRange,
			Deprecated:      lb.Deprecated != nil,
			Source:          sourceCloud,
			Raw:             raw,
		})
	}

	return records, nil
}

// regionalPrices parses the per-location prices of one type. Empty amounts are left at zero.
func regionalPrices(currency string, prices []locationPrice) ([]resource.RegionalPrice, error) {
	entries := make([]resource.PricingEntry, 0, 2*len(prices))
	byLocation := make(map[string]locationPrice, len(prices))

	for _, p := range prices {
		byLocation[p.Location] = p

		for _, amount := range []struct {
			unit resource.PriceUnit
			net  string
		}{
			{resource.Hourly, p.PriceHourly.Net},
			{resource.Monthly, p.PriceMonthly.Net},
		} {
			if amount.net == "" {
				continue
			}

			entry, err := resource.NewPricingEntry(p.Location, currency, amount.net, amount.unit)
			if err != nil {
				return nil, err
			}

			entries = append(entries, entry)
		}
	}

	regional := resource.GroupRegional(entries)

	for i := range regional {
		p := byLocation[regional[i].Location]
		regional[i].IncludedTrafficTB = float64(p.IncludedTraffic) / bytesPerTB

		if p.PricePerTBTraffic.Net != "" {
			traffic, err := resource.ParseAmount(p.PricePerTBTraffic.Net)
			if err != nil {
				return nil, fmt.Errorf("location %s, traffic: %w", p.Location, err)
			}

			regional[i].TrafficPricePerTB = traffic
		}
	}

	return regional, nil
}

// locationDetails resolves location codes through the configured table first, then the locations endpoint.
func (cat *catalog) locationDetails(codes []string) []resource.LocationDetail {
	details := make([]resource.LocationDetail, 0, len(codes))

	for _, code := range codes {
		code = strings.ToLower(code)

		if known, found := cat.c.settings.Locations[code]; found {
			details = append(details, known.Detail(code))
			continue
		}

		if l, found := cat.locations[code]; found {
			details = append(details, resource.LocationDetail{
				Code:        code,
				City:        orDefault(l.City, code),
				Country:     orDefault(l.Country, "Unknown"),
				CountryCode: countryCode(l.Country),
				Region:      orDefault(l.Description, "Unknown"),
			})

			continue
		}

		details = append(details, resource.LocationDetail{
			Code:        code,
			City:        code,
			Country:     "Unknown",
			CountryCode: "XX",
			Region:      "Unknown",
		})
	}

	return details
}

// allLocations is the location list used for offerings priced independently of the location.
func (cat *catalog) allLocations() []string {
	if len(cat.locationCodes) > 0 {
		return cat.locationCodes
	}

	codes := make([]string, 0, len(cat.c.settings.Locations))
	for code := range cat.c.settings.Locations {
		codes = append(codes, code)
	}

	slices.Sort(codes)

	return codes
}

func (cat *catalog) skip(subResource, name string, err error) {
	collector.RecordSkipped(resource.Hetzner, subResource)
	cat.c.namedLogger().With(log.KeyInstance, name).With(log.KeyError, err.Error()).
		Warnf("skipping entry of %s", subResource)
}

func countryCode(country string) string {
	if len(country) < 2 {
		return "XX"
	}

	return strings.ToUpper(country[:2])
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
