package hetzner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onsi/gomega"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	"github.com/kyma-project/cloud-pricing-collector/pkg/config"
	"github.com/kyma-project/cloud-pricing-collector/pkg/httpclient"
	"github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
	kpctesting "github.com/kyma-project/cloud-pricing-collector/pkg/testing"
)

const (
	testToken    = "token"
	testUser     = "robot-user"
	testPassword = "robot-password"
)

func serverTypesHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("per_page") != "50" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("page") == "2" {
		kpctesting.FixtureHandler("hetzner_server_types_page2.json")(w, r)
		return
	}

	kpctesting.FixtureHandler("hetzner_server_types_page1.json")(w, r)
}

func requireBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

func requireBasicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || user != testUser || password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

func startHetznerServer(t *testing.T, pricing http.HandlerFunc) *httptest.Server {
	g := gomega.NewGomegaWithT(t)

	return kpctesting.StartTestServerWithRoutes(g,
		kpctesting.Route{Path: "/v1/pricing", Handler: requireBearer(pricing)},
		kpctesting.Route{Path: "/v1/server_types", Handler: requireBearer(serverTypesHandler)},
		kpctesting.Route{Path: "/v1/load_balancer_types", Handler: requireBearer(kpctesting.FixtureHandler("hetzner_load_balancer_types.json"))},
		kpctesting.Route{Path: "/v1/locations", Handler: requireBearer(kpctesting.FixtureHandler("hetzner_locations.json"))},
		kpctesting.Route{Path: "/order/server/product", Handler: requireBasicAuth(kpctesting.FixtureHandler("hetzner_robot_products.json"))},
	)
}

func newTestCollector(srvURL string, cfg Config) *Collector {
	log := logger.NewLogger(zapcore.DebugLevel)
	client := httpclient.NewClient("hetzner", &httpclient.Config{Timeout: 5 * time.Second}, nil, log)

	if cfg.CloudAPIURL == "" {
		cfg.CloudAPIURL = srvURL + "/v1"
	}

	if cfg.RobotAPIURL == "" {
		cfg.RobotAPIURL = srvURL
	}

	return NewCollector(cfg, client, config.DefaultProviderSettings().Hetzner, log)
}

func byInstanceType(records []resource.Record) map[string]resource.Record {
	m := make(map[string]resource.Record, len(records))
	for _, r := range records {
		m[r.InstanceType] = r
	}

	return m
}

func TestCollector_Collect(t *testing.T) {
	srv := startHetznerServer(t, kpctesting.FixtureHandler("hetzner_pricing.json"))
	defer srv.Close()

	c := newTestCollector(srv.URL, Config{
		CloudAPIToken: testToken,
		RobotUser:     testUser,
		RobotPassword: testPassword,
	})
	require.Equal(t, resource.Hetzner, c.Provider())

	records, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 12)

	got := byInstanceType(records)
	require.NotContains(t, got, "ccx99")
	require.NotContains(t, got, "broken")
	require.NotContains(t, got, "BROKEN")

	t.Run("server type joined with pricing", func(t *testing.T) {
		cx11 := got["cx11"]
		require.Equal(t, resource.CloudServer, cx11.Type)
		require.Equal(t, resource.PlatformCloud, cx11.Platform)
		require.Equal(t, 2, cx11.VCPU)
		require.Equal(t, 4.0, cx11.MemoryGiB)
		require.Equal(t, 20.0, cx11.DiskSizeGB)
		require.Equal(t, "local", cx11.DiskType)
		require.Equal(t, resource.EUR, cx11.Currency)
		require.Equal(t, 0.0054, cx11.PriceHourly)
		require.Equal(t, 3.29, cx11.PriceMonthly)
		require.Equal(t, []string{"fsn1", "nbg1"}, cx11.Regions)
		require.True(t, cx11.PriceRange.Hourly.HasVariation)
		require.Equal(t, 0.006, cx11.PriceRange.Hourly.Max)
		require.Equal(t, 3.79, cx11.PriceRange.Monthly.Max)
		require.Equal(t, resource.RegionalPrice{Location: "fsn1", Hourly: 0.0054, Monthly: 3.29, IncludedTrafficTB: 20, TrafficPricePerTB: 1}, cx11.RegionalPricing[0])
		require.Equal(t, "Falkenstein", cx11.LocationDetails[0].City)
		require.Equal(t, "Saxony", cx11.LocationDetails[0].Region)
		require.JSONEq(t, `"cx11"`, jsonField(t, cx11.Raw, "name"))
		require.Equal(t, sourceCloud, cx11.Source)
	})

	t.Run("network options use the primary IPv4 price", func(t *testing.T) {
		options := got["cx11"].NetworkOptions
		require.NotNil(t, options)
		require.True(t, options.IPv4IPv6.Available)
		require.Equal(t, 3.29, options.IPv4IPv6.Monthly)
		require.True(t, options.IPv6Only.Available)
		require.InDelta(t, 2.79, options.IPv6Only.Monthly, kpctesting.Delta)
		require.InDelta(t, 2.79/resource.HoursPerMonth, options.IPv6Only.Hourly, 1e-9)
		require.Equal(t, 0.5, options.IPv6Only.Savings)
		require.Equal(t, "IPv6-only (saves €0.50/month)", options.IPv6Only.Description)
	})

	t.Run("deprecated arm server", func(t *testing.T) {
		cax11 := got["cax11"]
		require.True(t, cax11.Deprecated)
		require.Equal(t, "arm", cax11.Architecture)
		require.False(t, cax11.PriceRange.Hourly.HasVariation)
	})

	t.Run("load balancer", func(t *testing.T) {
		lb11 := got["lb11"]
		require.Equal(t, resource.CloudLoadBalancer, lb11.Type)
		require.Equal(t, 0, lb11.VCPU)
		require.Equal(t, 5.39, lb11.PriceMonthly)
		require.False(t, lb11.Deprecated)
		require.Nil(t, lb11.NetworkOptions)
	})

	t.Run("services from the pricing endpoint", func(t *testing.T) {
		volume := got["Block Storage"]
		require.Equal(t, resource.CloudVolume, volume.Type)
		require.Equal(t, 0.044, volume.PriceMonthly)
		require.InDelta(t, 0.044/resource.HoursPerMonth, volume.PriceHourly, 1e-12)
		require.Equal(t, []string{"fsn1", "nbg1", "hel1", "ash", "tyo1"}, volume.Regions)

		tokyo := volume.LocationDetails[4]
		require.Equal(t, resource.LocationDetail{Code: "tyo1", City: "Tokyo", Country: "JP", CountryCode: "JP", Region: "Tokyo DC 1"}, tokyo)

		require.Equal(t, resource.CloudSnapshot, got["Snapshot"].Type)

		floating := got["Floating IPv4"]
		require.Equal(t, resource.CloudFloatingIP, floating.Type)
		require.Equal(t, 3.0, floating.PriceMonthly)
		require.InDelta(t, 3.0/resource.HoursPerMonth, floating.PriceHourly, 1e-12)
		require.Equal(t, []string{"fsn1", "ash"}, floating.Regions)

		primary := got["Primary IPv4"]
		require.Equal(t, 0.0008, primary.PriceHourly)
		require.Equal(t, 0.5, primary.PriceMonthly)
		require.True(t, primary.PriceRange.Monthly.HasVariation)

		require.Contains(t, got, "Floating IPv6")
		require.Contains(t, got, "Primary IPv6")
	})

	t.Run("dedicated servers from the Robot API", func(t *testing.T) {
		ax41 := got["AX41-NVMe"]
		require.Equal(t, resource.DedicatedServer, ax41.Type)
		require.Equal(t, resource.PlatformDedicated, ax41.Platform)
		require.Equal(t, 6, ax41.VCPU)
		require.Equal(t, 64.0, ax41.MemoryGiB)
		require.Equal(t, 1024.0, ax41.DiskSizeGB)
		require.Equal(t, "NVMe SSD", ax41.DiskType)
		require.Equal(t, "AMD Ryzen 5 3600 Hexa-Core", ax41.CPUType)
		require.Equal(t, 37.0, ax41.PriceMonthly)
		require.InDelta(t, 37.0/resource.HoursPerMonth, ax41.PriceHourly, 1e-12)
		require.Equal(t, []string{"fsn1", "hel1"}, ax41.Regions)
		require.Equal(t, "Helsinki", ax41.LocationDetails[1].City)
		require.Equal(t, sourceRobot, ax41.Source)

		ax102 := got["AX102"]
		require.Equal(t, 16, ax102.VCPU)
		require.Equal(t, 128.0, ax102.MemoryGiB)
		require.InDelta(t, 3840.0, ax102.DiskSizeGB, kpctesting.Delta)
	})
}

func TestCollector_WithoutCredentials(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestCollector(srv.URL, Config{})

	records, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
	require.Zero(t, calls)
}

func TestCollector_PartialFailure(t *testing.T) {
	srv := startHetznerServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	t.Run("pricing failure keeps dedicated servers", func(t *testing.T) {
		c := newTestCollector(srv.URL, Config{
			CloudAPIToken: testToken,
			RobotUser:     testUser,
			RobotPassword: testPassword,
		})

		records, err := c.Collect(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 2)

		for _, r := range records {
			require.Equal(t, resource.DedicatedServer, r.Type)
		}
	})

	t.Run("every sub-resource failing is an error", func(t *testing.T) {
		c := newTestCollector(srv.URL, Config{
			CloudAPIToken: testToken,
			RobotUser:     testUser,
			RobotPassword: "wrong",
		})

		records, err := c.Collect(context.Background())
		require.ErrorIs(t, err, collector.ErrAllSubResourcesFailed)
		require.ErrorIs(t, err, httpclient.ErrNotFound)
		require.ErrorIs(t, err, httpclient.ErrAuth)
		require.Empty(t, records)
	})
}

func TestIPv6OnlyPrice(t *testing.T) {
	testCases := []struct {
		name        string
		monthly     float64
		fee         float64
		wantMonthly float64
	}{
		{name: "fee subtracted", monthly: 3.79, fee: 0.5, wantMonthly: 3.29},
		{name: "never negative", monthly: 0.3, fee: 0.5, wantMonthly: 0},
		{name: "no fee", monthly: 4.51, fee: 0, wantMonthly: 4.51},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			monthly, hourly := IPv6OnlyPrice(tc.monthly, tc.fee)
			require.InDelta(t, tc.wantMonthly, monthly, 1e-9)
			require.InDelta(t, tc.wantMonthly/730.44, hourly, 1e-12)
		})
	}
}

func TestParseSpecs(t *testing.T) {
	s := parseSpecs([]string{"Intel Core i7-6700 Quad-Core", "64 GB DDR4 RAM", "2 x 4 TB SATA Enterprise HDD", "1 x 480 GB SATA SSD"})
	require.Equal(t, 4, s.Cores)
	require.Equal(t, 64.0, s.MemoryGiB)
	require.Equal(t, 8480.0, s.DiskSizeGB)
	require.Equal(t, "SATA Enterprise HDD", s.DiskType)
	require.Equal(t, "Intel Core i7-6700 Quad-Core", s.CPU)

	s = parseSpecs([]string{"Ampere Altra Q80-30 80 cores", "128 GB DDR4 ECC RAM"})
	require.Equal(t, 80, s.Cores)
	require.Equal(t, "arm", architectureOf(s.CPU))

	require.Equal(t, specs{}, parseSpecs(nil))
}

func jsonField(t *testing.T, raw []byte, field string) string {
	t.Helper()

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))

	return string(m[field])
}
