package hetzner

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	"github.com/kyma-project/cloud-pricing-collector/pkg/config"
	"github.com/kyma-project/cloud-pricing-collector/pkg/httpclient"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

const (
	DefaultCloudAPIURL = "https://api.hetzner.cloud/v1"
	DefaultRobotAPIURL = "https://robot-ws.your-server.de"

	sourceCloud = "hetzner_cloud_api"
	sourceRobot = "hetzner_robot_api"

	perPage = 50
)

type JSONGetter interface {
	GetJSON(ctx context.Context, req httpclient.Request, out any) error
}

type Config struct {
	CloudAPIURL   string
	CloudAPIToken string
	RobotAPIURL   string
	RobotUser     string
	RobotPassword string
}

func (c Config) hasCloudCredentials() bool {
	return c.CloudAPIToken != ""
}

func (c Config) hasRobotCredentials() bool {
	return c.RobotUser != "" && c.RobotPassword != ""
}

// Collector collects cloud offerings from the Cloud API and dedicated servers from the Robot API.
type Collector struct {
	config   Config
	client   JSONGetter
	settings config.HetznerSettings
	logger   *zap.SugaredLogger
}

var _ collector.Collector = &Collector{}

func NewCollector(cfg Config, client JSONGetter, settings config.HetznerSettings, logger *zap.SugaredLogger) *Collector {
	if cfg.CloudAPIURL == "" {
		cfg.CloudAPIURL = DefaultCloudAPIURL
	}

	if cfg.RobotAPIURL == "" {
		cfg.RobotAPIURL = DefaultRobotAPIURL
	}

	cfg.CloudAPIURL = strings.TrimSuffix(cfg.CloudAPIURL, "/")
	cfg.RobotAPIURL = strings.TrimSuffix(cfg.RobotAPIURL, "/")

	return &Collector{
		config:   cfg,
		client:   client,
		settings: settings,
		logger:   logger,
	}
}

func (c *Collector) Provider() resource.Provider {
	return resource.Hetzner
}

func (c *Collector) Collect(ctx context.Context) ([]resource.Record, error) {
	var fetches []collector.Fetch

	if c.config.hasCloudCredentials() {
		cat := c.loadCatalog(ctx)
		fetches = append(fetches,
			collector.Fetch{Name: "server_types", Run: cat.serverTypes},
			collector.Fetch{Name: "load_balancer_types", Run: cat.loadBalancerTypes},
			collector.Fetch{Name: "services", Run: cat.services},
		)
	} else {
		c.namedLogger().With(log.KeyReason, "CLOUD_API_TOKEN not set").Info("skipping Hetzner Cloud")
	}

	if c.config.hasRobotCredentials() {
		fetches = append(fetches, collector.Fetch{Name: "dedicated_servers", Run: c.dedicatedServers})
	} else {
		c.namedLogger().With(log.KeyReason, "ROBOT_API_USER or ROBOT_API_PASSWORD not set").Info("skipping Hetzner Robot")
	}

	return collector.Gather(ctx, resource.Hetzner, c.namedLogger(), fetches...)
}

func (c *Collector) namedLogger() *zap.SugaredLogger {
	return c.logger.With("component", "hetzner-collector")
}
