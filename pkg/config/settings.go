package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

const DefaultIPv4MonthlyFee = 0.50

// Location describes a provider location or region.
type Location struct {
	City        string `yaml:"city"`
	Country     string `yaml:"country"`
	CountryCode string `yaml:"country_code"`
	Region      string `yaml:"region"`
}

// Detail returns the location detail of the given location code.
func (l Location) Detail(code string) resource.LocationDetail {
	return resource.LocationDetail{
		Code:        code,
		City:        l.City,
		Country:     l.Country,
		CountryCode: l.CountryCode,
		Region:      l.Region,
	}
}

type HetznerSettings struct {
	// Locations is used when the locations endpoint does not describe a location.
	Locations map[string]Location `yaml:"locations"`
	// IPv4MonthlyFee is the EUR fee of a primary IPv4 when the pricing endpoint does not list it.
	IPv4MonthlyFee float64 `yaml:"ipv4_monthly_fee"`
}

type OCISettings struct {
	Regions map[string]Location `yaml:"regions"`
	// MemoryPerOCPU is the default memory in GiB a flexible shape of a series gets per OCPU.
	MemoryPerOCPU map[string]float64 `yaml:"memory_per_ocpu"`
	// ARMSeries lists the series where one OCPU is one vCPU.
	ARMSeries []string `yaml:"arm_series"`
}

// ProviderSettings holds static provider facts which are not available from the pricing endpoints.
type ProviderSettings struct {
	Hetzner HetznerSettings `yaml:"hetzner"`
	OCI     OCISettings     `yaml:"oci"`
}

// DefaultProviderSettings returns the built-in settings.
func DefaultProviderSettings() *ProviderSettings {
	return &ProviderSettings{
		Hetzner: HetznerSettings{
			Locations: map[string]Location{
				"ash":  {City: "Ashburn", Country: "United States", CountryCode: "US", Region: "Virginia"},
				"fsn1": {City: "Falkenstein", Country: "Germany", CountryCode: "DE", Region: "Saxony"},
				"hel1": {City: "Helsinki", Country: "Finland", CountryCode: "FI", Region: "Uusimaa"},
				"hil":  {City: "Hillsboro", Country: "United States", CountryCode: "US", Region: "Oregon"},
				"nbg1": {City: "Nuremberg", Country: "Germany", CountryCode: "DE", Region: "Bavaria"},
				"sin":  {City: "Singapore", Country: "Singapore", CountryCode: "SG", Region: "Singapore"},
			},
			IPv4MonthlyFee: DefaultIPv4MonthlyFee,
		},
		OCI: OCISettings{
			Regions: map[string]Location{
				"us-ashburn-1":   {City: "Ashburn", Country: "United States", CountryCode: "US", Region: "US East (Ashburn)"},
				"us-phoenix-1":   {City: "Phoenix", Country: "United States", CountryCode: "US", Region: "US West (Phoenix)"},
				"ca-toronto-1":   {City: "Toronto", Country: "Canada", CountryCode: "CA", Region: "Canada Southeast (Toronto)"},
				"ca-montreal-1":  {City: "Montreal", Country: "Canada", CountryCode: "CA", Region: "Canada Southeast (Montreal)"},
				"eu-frankfurt-1": {City: "Frankfurt", Country: "Germany", CountryCode: "DE", Region: "Germany Central (Frankfurt)"},
				"eu-zurich-1":    {City: "Zurich", Country: "Switzerland", CountryCode: "CH", Region: "Switzerland North (Zurich)"},
				"eu-amsterdam-1": {City: "Amsterdam", Country: "Netherlands", CountryCode: "NL", Region: "Netherlands Northwest (Amsterdam)"},
				"eu-milan-1":     {City: "Milan", Country: "Italy", CountryCode: "IT", Region: "Italy Northwest (Milan)"},
				"uk-london-1":    {City: "London", Country: "United Kingdom", CountryCode: "GB", Region: "UK South (London)"},
				"ap-mumbai-1":    {City: "Mumbai", Country: "India", CountryCode: "IN", Region: "India West (Mumbai)"},
				"ap-seoul-1":     {City: "Seoul", Country: "South Korea", CountryCode: "KR", Region: "South Korea Central (Seoul)"},
				"ap-tokyo-1":     {City: "Tokyo", Country: "Japan", CountryCode: "JP", Region: "Japan East (Tokyo)"},
				"ap-osaka-1":     {City: "Osaka", Country: "Japan", CountryCode: "JP", Region: "Japan Central (Osaka)"},
				"ap-sydney-1":    {City: "Sydney", Country: "Australia", CountryCode: "AU", Region: "Australia East (Sydney)"},
				"ap-melbourne-1": {City: "Melbourne", Country: "Australia", CountryCode: "AU", Region: "Australia Southeast (Melbourne)"},
				"ap-singapore-1": {City: "Singapore", Country: "Singapore", CountryCode: "SG", Region: "Singapore"},
				"sa-saopaulo-1":  {City: "Sao Paulo", Country: "Brazil", CountryCode: "BR", Region: "Brazil East (Sao Paulo)"},
				"me-jeddah-1":    {City: "Jeddah", Country: "Saudi Arabia", CountryCode: "SA", Region: "Saudi Arabia West (Jeddah)"},
			},
			MemoryPerOCPU: map[string]float64{
				"E3":         16,
				"E4":         16,
				"E5":         16,
				"Optimized3": 16,
				"A1":         6,
				"A2":         6,
			},
			ARMSeries: []string{"A1", "A2"},
		},
	}
}

// LoadProviderSettings returns the built-in settings, overlaid with the YAML file at path when path is set.
// Maps in the file are merged key by key into the defaults.
func LoadProviderSettings(path string) (*ProviderSettings, error) {
	settings := DefaultProviderSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read provider settings file %s", path)
	}

	overlay := new(ProviderSettings)
	if err := yaml.Unmarshal(data, overlay); err != nil {
		return nil, errors.Wrapf(err, "failed to parse provider settings file %s", path)
	}

	settings.merge(overlay)

	if err := settings.validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid provider settings file %s", path)
	}

	return settings, nil
}

func (s *ProviderSettings) merge(overlay *ProviderSettings) {
	for code, location := range overlay.Hetzner.Locations {
		s.Hetzner.Locations[code] = location
	}

	if overlay.Hetzner.IPv4MonthlyFee != 0 {
		s.Hetzner.IPv4MonthlyFee = overlay.Hetzner.IPv4MonthlyFee
	}

	for code, location := range overlay.OCI.Regions {
		s.OCI.Regions[code] = location
	}

	for series, memory := range overlay.OCI.MemoryPerOCPU {
		s.OCI.MemoryPerOCPU[series] = memory
	}

	if len(overlay.OCI.ARMSeries) > 0 {
		s.OCI.ARMSeries = overlay.OCI.ARMSeries
	}
}

func (s *ProviderSettings) validate() error {
	if s.Hetzner.IPv4MonthlyFee < 0 {
		return errors.Errorf("hetzner.ipv4_monthly_fee must not be negative, got %v", s.Hetzner.IPv4MonthlyFee)
	}

	for series, memory := range s.OCI.MemoryPerOCPU {
		if memory <= 0 {
			return errors.Errorf("oci.memory_per_ocpu.%s must be positive, got %v", series, memory)
		}
	}

	return nil
}
