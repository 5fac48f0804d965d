package hetzner

import "encoding/json"

// price is a net/gross pair as delivered by both Hetzner APIs.
type price struct {
	Net   string `json:"net"`
	Gross string `json:"gross"`
}

type locationPrice struct {
	Location          string `json:"location"`
	PriceHourly       price  `json:"price_hourly"`
	PriceMonthly      price  `json:"price_monthly"`
	IncludedTraffic   int64  `json:"included_traffic"`
	PricePerTBTraffic price  `json:"price_per_tb_traffic"`
}

type pagination struct {
	Page     int  `json:"page"`
	NextPage *int `json:"next_page"`
}

type meta struct {
	Pagination pagination `json:"pagination"`
}

type serverTypesPage struct {
	ServerTypes []json.RawMessage `json:"server_types"`
	Meta        meta              `json:"meta"`
}

type loadBalancerTypesPage struct {
	LoadBalancerTypes []json.RawMessage `json:"load_balancer_types"`
	Meta              meta              `json:"meta"`
}

type locationsPage struct {
	Locations []location `json:"locations"`
	Meta      meta       `json:"meta"`
}

type serverType struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Cores        int     `json:"cores"`
	Memory       float64 `json:"memory"`
	Disk         float64 `json:"disk"`
	Deprecated   bool    `json:"deprecated"`
	StorageType  string  `json:"storage_type"`
	CPUType      string  `json:"cpu_type"`
	Architecture string  `json:"architecture"`
}

type loadBalancerType struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Deprecated  *string `json:"deprecated"`
}

type location struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Country     string `json:"country"`
	City        string `json:"city"`
	NetworkZone string `json:"network_zone"`
}

type pricingResponse struct {
	Pricing pricing `json:"pricing"`
}

type typePricing struct {
	Name   string          `json:"name"`
	Prices []locationPrice `json:"prices"`
}

type perGBMonth struct {
	PricePerGBMonth price `json:"price_per_gb_month"`
}

type ipPricing struct {
	Type   string          `json:"type"`
	Prices []locationPrice `json:"prices"`
}

type pricing struct {
	Currency          string        `json:"currency"`
	Image             perGBMonth    `json:"image"`
	Volume            perGBMonth    `json:"volume"`
	FloatingIPs       []ipPricing   `json:"floating_ips"`
	PrimaryIPs        []ipPricing   `json:"primary_ips"`
	ServerTypes       []typePricing `json:"server_types"`
	LoadBalancerTypes []typePricing `json:"load_balancer_types"`
}

// Robot API

type robotProductEntry struct {
	Product json.RawMessage `json:"product"`
}

type robotPrice struct {
	Location string `json:"location"`
	Price    price  `json:"price"`
}

type robotProduct struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description []string     `json:"description"`
	Location    []string     `json:"location"`
	Prices      []robotPrice `json:"prices"`
}
