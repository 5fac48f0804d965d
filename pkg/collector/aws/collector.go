package aws

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	awstypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"go.uber.org/zap"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

const (
	// pricingAPIRegion hosts the Price List API endpoint serving all regions.
	pricingAPIRegion = "us-east-1"
	serviceCode      = "AmazonEC2"
	source           = "aws_pricing_api"
	maxResults       = 100
)

// Collector lists on-demand Linux EC2 prices through the AWS Price List API.
type Collector struct {
	api         pricing.GetProductsAPIClient
	credentials aws.CredentialsProvider
	regions     []string
	logger      *zap.SugaredLogger
}

var _ collector.Collector = &Collector{}

// NewCollector uses api for queries. When credentials is set, Collect checks that credentials resolve first.
func NewCollector(api pricing.GetProductsAPIClient, credentials aws.CredentialsProvider, regions []string, logger *zap.SugaredLogger) *Collector {
	return &Collector{
		api:         api,
		credentials: credentials,
		regions:     regions,
		logger:      logger,
	}
}

// NewDefaultCollector resolves configuration and credentials through the default AWS chain.
func NewDefaultCollector(ctx context.Context, regions []string, logger *zap.SugaredLogger) (*Collector, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(pricingAPIRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewCollector(pricing.NewFromConfig(cfg), cfg.Credentials, regions, logger), nil
}

func (c *Collector) Provider() resource.Provider {
	return resource.AWS
}

func (c *Collector) Collect(ctx context.Context) ([]resource.Record, error) {
	if !c.hasCredentials(ctx) {
		return []resource.Record{}, nil
	}

	fetches := make([]collector.Fetch, 0, len(c.regions))
	for _, region := range c.regions {
		fetches = append(fetches, collector.Fetch{
			Name: "instances/" + region,
			Run: func(ctx context.Context) ([]resource.Record, error) {
				return c.regionOffers(ctx, region)
			},
		})
	}

	records, err := collector.Gather(ctx, resource.AWS, c.namedLogger(), fetches...)
	if err != nil {
		return nil, err
	}

	return mergeRegions(records), nil
}

func (c *Collector) hasCredentials(ctx context.Context) bool {
	if c.credentials == nil {
		return true
	}

	if _, err := c.credentials.Retrieve(ctx); err != nil {
		c.namedLogger().With(log.KeyReason, "no AWS credentials").With(log.KeyError, err.Error()).
			Info("skipping AWS")

		return false
	}

	return true
}

func filters(region string) []awstypes.Filter {
	terms := [][2]string{
		{"regionCode", region},
		{"operatingSystem", "Linux"},
		{"tenancy", "Shared"},
		{"preInstalledSw", "NA"},
		{"capacitystatus", "Used"},
	}

	out := make([]awstypes.Filter, 0, len(terms))
	for _, t := range terms {
		out = append(out, awstypes.Filter{
			Type:  awstypes.FilterTypeTermMatch,
			Field: aws.String(t[0]),
			Value: aws.String(t[1]),
		})
	}

	return out
}

func (c *Collector) regionOffers(ctx context.Context, region string) ([]resource.Record, error) {
	paginator := pricing.NewGetProductsPaginator(c.api, &pricing.GetProductsInput{
		ServiceCode:   aws.String(serviceCode),
		Filters:       filters(region),
		FormatVersion: aws.String("aws_v1"),
		MaxResults:    aws.Int32(maxResults),
	})

	var records []resource.Record

	seen := make(map[string]bool)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list products in %s: %w", region, err)
		}

		for _, doc := range page.PriceList {
			o, err := parsePriceListItem(doc)
			if err != nil {
				collector.RecordSkipped(resource.AWS, "instances")
				c.namedLogger().With(log.KeyError, err.Error()).Debug("skipping price list item")

				continue
			}

			if seen[o.InstanceType] {
				continue
			}

			seen[o.InstanceType] = true

			records = append(records, offerRecord(o, region))
		}
	}

	return records, nil
}

func offerRecord(o offer, region string) resource.Record {
	monthly := o.hourlyUSD * resource.HoursPerMonth
	regionCode := o.RegionCode
	if regionCode == "" {
		regionCode = region
	}

	return resource.Record{
		Provider:     resource.AWS,
		Platform:     resource.PlatformCloud,
		Type:         resource.CloudServer,
		InstanceType: o.InstanceType,
		Description:  o.InstanceFamily,
		VCPU:         parseVCPU(o.VCPU),
		MemoryGiB:    parseMemoryGiB(o.Memory),
		DiskType:     o.Storage,
		CPUType:      o.PhysicalProcessor,
		Architecture: architectureOf(o.attributes),
		Currency:     resource.USD,
		PriceHourly:  o.hourlyUSD,
		PriceMonthly: monthly,
		Regions:      []string{regionCode},
		LocationDetails: []resource.LocationDetail{{
			Code:   regionCode,
			Region: o.Location,
		}},
		RegionalPricing: []resource.RegionalPrice{{Location: regionCode, Hourly: o.hourlyUSD, Monthly: monthly}},
		Deprecated:      o.CurrentGeneration == "No",
		Source:          source,
		Raw:             o.raw,
	}
}

// mergeRegions folds the per-region records of an instance type into one record priced at the cheapest region.
func mergeRegions(records []resource.Record) []resource.Record {
	merged := make([]resource.Record, 0, len(records))
	index := make(map[string]int)

	for _, r := range records {
		i, found := index[r.InstanceType]
		if !found {
			index[r.InstanceType] = len(merged)
			merged = append(merged, r)

			continue
		}

		m := &merged[i]
		m.Regions = append(m.Regions, r.Regions...)
		m.LocationDetails = append(m.LocationDetails, r.LocationDetails...)
		m.RegionalPricing = append(m.RegionalPricing, r.RegionalPricing...)
	}

	for i := range merged {
		hourly, monthly, priceRange, err := resource.ReduceRegional(merged[i].RegionalPricing)
		if err != nil {
			continue
		}

		merged[i].PriceHourly = hourly
		merged[i].PriceMonthly = monthly
		merged[i].PriceRange = &priceRange
	}

	slices.SortStableFunc(merged, func(a, b resource.Record) int {
		switch {
		case a.InstanceType < b.InstanceType:
			return -1
		case a.InstanceType > b.InstanceType:
			return 1
		default:
			return 0
		}
	})

	return merged
}

func (c *Collector) namedLogger() *zap.SugaredLogger {
	return c.logger.With("component", "aws-collector")
}
