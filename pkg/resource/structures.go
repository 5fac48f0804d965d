package resource

import (
	"encoding/json"
	"time"
)

// Record is what a collector emits before normalization. Prices are net and in Currency.
type Record struct {
	Provider        Provider
	Platform        Platform
	Type            Type
	InstanceType    string
	Description     string
	VCPU            int
	MemoryGiB       float64
	DiskSizeGB      float64
	DiskType        string
	CPUType         string
	Architecture    string
	Currency        string
	PriceHourly     float64
	PriceMonthly    float64
	Regions         []string
	LocationDetails []LocationDetail
	RegionalPricing []RegionalPrice
	PriceRange      *PriceRange
	NetworkOptions  *NetworkOptions
	Deprecated      bool
	Source          string
	Raw             json.RawMessage
}

// Instance is the canonical, provider-agnostic catalog entry.
type Instance struct {
	Provider         Provider         `json:"provider"         validate:"required,provider"`
	Platform         Platform         `json:"platform"`
	Type             Type             `json:"type"             validate:"required,offering"`
	InstanceType     string           `json:"instanceType"     validate:"required"`
	Description      string           `json:"description"`
	VCPU             int              `json:"vCPU"             validate:"gte=0"`
	MemoryGiB        float64          `json:"memoryGiB"        validate:"gte=0"`
	DiskSizeGB       float64          `json:"diskSizeGB"`
	DiskType         string           `json:"diskType"`
	CPUType          string           `json:"cpuType"`
	Architecture     string           `json:"architecture"`
	PriceUSDHourly   float64          `json:"priceUSD_hourly"  validate:"gte=0"`
	PriceUSDMonthly  float64          `json:"priceUSD_monthly" validate:"gte=0"`
	OriginalPrice    OriginalPrice    `json:"originalPrice"`
	ConversionFailed bool             `json:"conversionFailed,omitempty"`
	Regions          []string         `json:"regions"`
	LocationDetails  []LocationDetail `json:"locationDetails"`
	RegionalPricing  []RegionalPrice  `json:"regionalPricing"`
	PriceRange       *PriceRange      `json:"priceRange,omitempty"`
	NetworkOptions   *NetworkOptions  `json:"networkOptions,omitempty"`
	Deprecated       bool             `json:"deprecated"`
	Source           string           `json:"source"`
	LastUpdated      time.Time        `json:"lastUpdated"`
	Raw              json.RawMessage  `json:"raw,omitempty"`
}

// OriginalPrice keeps the pre-conversion amounts.
type OriginalPrice struct {
	Hourly   float64 `json:"hourly"`
	Monthly  float64 `json:"monthly"`
	Currency string  `json:"currency"`
}

type RegionalPrice struct {
	Location          string  `json:"location"`
	Hourly            float64 `json:"hourly"`
	Monthly           float64 `json:"monthly"`
	IncludedTrafficTB float64 `json:"includedTraffic"`
	TrafficPricePerTB float64 `json:"trafficPricePerTB,omitempty"`
}

type Bounds struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	HasVariation bool    `json:"hasVariation"`
}

type PriceRange struct {
	Hourly  Bounds `json:"hourly"`
	Monthly Bounds `json:"monthly"`
}

type LocationDetail struct {
	Code        string `json:"code"`
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
}

type NetworkOption struct {
	Available   bool    `json:"available"`
	Hourly      float64 `json:"hourly"`
	Monthly     float64 `json:"monthly"`
	Savings     float64 `json:"savings,omitempty"`
	Description string  `json:"description"`
}

// NetworkOptions lists the price of a server with and without a public IPv4 address.
type NetworkOptions struct {
	IPv4IPv6 NetworkOption `json:"ipv4_ipv6"`
	IPv6Only NetworkOption `json:"ipv6_only"`
}
