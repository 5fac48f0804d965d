package testing

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	// Delta is used to compare floating point numbers using testify's InDelta.
	Delta = 1.0e-4
)

const (
	timeout = 10 * time.Second
)

// Route binds a handler to a path on a test server.
type Route struct {
	Path    string
	Handler http.HandlerFunc
}

// LoadFixtureFromFile reads a file relative to this package's fixtures directory.
func LoadFixtureFromFile(fileName string) ([]byte, error) {
	return os.ReadFile(filepath.Join(fixturesDir(), fileName))
}

// FixtureHandler serves the named fixture as a JSON response.
func FixtureHandler(fileName string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		body, err := LoadFixtureFromFile(fileName)
		if err != nil {
			writer.WriteHeader(http.StatusInternalServerError)
			return
		}

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write(body)
	}
}

func StartTestServer(path string, testHandler http.HandlerFunc, g gomega.Gomega) *httptest.Server {
	return StartTestServerWithRoutes(g, Route{Path: path, Handler: testHandler})
}

func StartTestServerWithRoutes(g gomega.Gomega, routes ...Route) *httptest.Server {
	testRouter := mux.NewRouter()
	testRouter.HandleFunc("/health", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	for _, route := range routes {
		testRouter.HandleFunc(route.Path, route.Handler)
	}

	// Start a local test HTTP server
	srv := httptest.NewServer(testRouter)

	// Wait until test server is ready
	g.Eventually(func() int {
		// Ignoring error is ok as it goes for retry for non-200 cases
		healthResp, err := http.Get(fmt.Sprintf("%s/health", srv.URL))
		if err != nil {
			log.Printf("retrying :%v", err)
			return 0
		}
		defer healthResp.Body.Close()

		return healthResp.StatusCode
	}, timeout).Should(gomega.Equal(http.StatusOK))

	return srv
}

func PrometheusGatherAndReturn(c prometheus.Collector, metricName string) (*dto.MetricFamily, error) {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		return nil, err
	}

	mf, err := reg.Gather()
	if err != nil {
		return nil, err
	}

	for _, m := range mf {
		if m.GetName() == metricName {
			return m, nil
		}
	}

	return nil, fmt.Errorf("not found")
}

func PrometheusFilterLabelPair(pairs []*dto.LabelPair, name string) *dto.LabelPair {
	for _, p := range pairs {
		if p.GetName() == name {
			return p
		}
	}

	return nil
}

func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "fixtures")
}
