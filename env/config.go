package env

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config contains the configurations which are controlled by the ENV vars.
type Config struct {
	CloudAPIToken    string `envconfig:"CLOUD_API_TOKEN"`
	CloudAPIURL      string `envconfig:"CLOUD_API_URL"      default:"https://api.hetzner.cloud/v1"`
	RobotAPIUser     string `envconfig:"ROBOT_API_USER"`
	RobotAPIPassword string `envconfig:"ROBOT_API_PASSWORD"`
	RobotAPIURL      string `envconfig:"ROBOT_API_URL"      default:"https://robot-ws.your-server.de"`

	EnableHetzner bool `envconfig:"ENABLE_HETZNER" default:"true"`
	EnableAWS     bool `envconfig:"ENABLE_AWS"     default:"false"`
	EnableAzure   bool `envconfig:"ENABLE_AZURE"   default:"false"`
	EnableGCP     bool `envconfig:"ENABLE_GCP"     default:"false"`
	EnableOCI     bool `envconfig:"ENABLE_OCI"     default:"true"`
	EnableOVH     bool `envconfig:"ENABLE_OVH"     default:"false"`

	ProviderTimeout   time.Duration `envconfig:"PROVIDER_TIMEOUT"     default:"300s"`
	APITimeout        time.Duration `envconfig:"API_TIMEOUT"          default:"15s"`
	APIRateLimitDelay time.Duration `envconfig:"API_RATE_LIMIT_DELAY" default:"100ms"`
	APIRetryCount     int           `envconfig:"API_RETRY_COUNT"      default:"3"`
	APIBackoffBase    time.Duration `envconfig:"API_BACKOFF_BASE"     default:"1s"`
	APICacheTTL       time.Duration `envconfig:"API_CACHE_TTL"        default:"5m"`

	OCIPriceListURL   string   `envconfig:"OCI_PRICE_LIST_URL"  default:"https://apexapps.oracle.com/pls/apex/cetools/api/v1/products/"`
	OVHCatalogURL     string   `envconfig:"OVH_CATALOG_URL"     default:"https://api.ovh.com/1.0/order/catalog/public/cloud"`
	OVHSubsidiary     string   `envconfig:"OVH_SUBSIDIARY"      default:"FR"`
	AWSPricingRegions []string `envconfig:"AWS_PRICING_REGIONS" default:"us-east-1"`
	ExchangeRatesURL  string   `envconfig:"EXCHANGE_RATES_URL"  default:"https://api.exchangerate-api.com/v4/latest/USD"`

	OutputDir        string `envconfig:"OUTPUT_DIR"       default:"data"`
	OutputS3Bucket   string `envconfig:"OUTPUT_S3_BUCKET"`
	OutputS3Prefix   string `envconfig:"OUTPUT_S3_PREFIX"`
	ProviderSettings string `envconfig:"PROVIDER_SETTINGS"`
}

func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
