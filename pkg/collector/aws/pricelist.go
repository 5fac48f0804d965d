package aws

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

// priceListItem is one entry of GetProducts' PriceList, which the API returns as a JSON string.
type priceListItem struct {
	Product struct {
		ProductFamily string     `json:"productFamily"`
		Attributes    attributes `json:"attributes"`
	} `json:"product"`
	Terms struct {
		OnDemand map[string]term `json:"OnDemand"`
	} `json:"terms"`
}

type attributes struct {
	InstanceType          string `json:"instanceType"`
	InstanceFamily        string `json:"instanceFamily"`
	VCPU                  string `json:"vcpu"`
	Memory                string `json:"memory"`
	Storage               string `json:"storage"`
	PhysicalProcessor     string `json:"physicalProcessor"`
	ProcessorArchitecture string `json:"processorArchitecture"`
	CurrentGeneration     string `json:"currentGeneration"`
	RegionCode            string `json:"regionCode"`
	Location              string `json:"location"`
}

type term struct {
	PriceDimensions map[string]priceDimension `json:"priceDimensions"`
}

type priceDimension struct {
	Unit         string            `json:"unit"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
}

// offer is a parsed on-demand instance price in one region.
type offer struct {
	attributes
	hourlyUSD float64
	raw       json.RawMessage
}

func parsePriceListItem(doc string) (offer, error) {
	var item priceListItem
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return offer{}, fmt.Errorf("failed to decode price list item: %w", err)
	}

	attrs := item.Product.Attributes
	if attrs.InstanceType == "" {
		return offer{}, fmt.Errorf("price list item has no instance type")
	}

	hourly, found := onDemandHourlyUSD(item.Terms.OnDemand)
	if !found {
		return offer{}, fmt.Errorf("no on-demand USD hourly price for %s", attrs.InstanceType)
	}

	return offer{
		attributes: attrs,
		hourlyUSD:  hourly,
		raw:        json.RawMessage(doc),
	}, nil
}

func onDemandHourlyUSD(terms map[string]term) (float64, bool) {
	for _, t := range terms {
		for _, dim := range t.PriceDimensions {
			if dim.Unit != "" && !strings.EqualFold(dim.Unit, "Hrs") {
				continue
			}

			value, ok := dim.PricePerUnit[resource.USD]
			if !ok {
				continue
			}

			price, err := resource.ParseAmount(value)
			if err != nil {
				continue
			}

			return price, true
		}
	}

	return 0, false
}

// parseMemoryGiB parses values like "4 GiB" or "0.5 GiB".
func parseMemoryGiB(memory string) float64 {
	fields := strings.Fields(strings.ReplaceAll(memory, ",", ""))
	if len(fields) == 0 {
		return 0
	}

	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}

	return value
}

func parseVCPU(vcpu string) int {
	value, err := strconv.Atoi(strings.TrimSpace(vcpu))
	if err != nil {
		return 0
	}

	return value
}

func architectureOf(attrs attributes) string {
	if strings.Contains(attrs.PhysicalProcessor, "Graviton") || strings.Contains(strings.ToLower(attrs.ProcessorArchitecture), "arm") {
		return "arm"
	}

	return "x86"
}
