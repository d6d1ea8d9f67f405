package observability

import (
	"fmt"
	"net/http"
	"time"

	"skillvet/internal/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig controls the standalone scrape listener.
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// SetupPrometheusExporter builds the OTel Prometheus reader and the mux
// serving the scrape endpoint. Both are nil when scraping is disabled.
func SetupPrometheusExporter(cfg PrometheusConfig) (metric.Reader, *http.ServeMux, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}

	// The exporter registers against the default prometheus registry, which
	// promhttp.Handler serves.
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Endpoint, promhttp.Handler())

	return exporter, mux, nil
}

// StartPrometheusServer serves the scrape mux on its own port in the
// background. Metrics stay off the main listener so they are never rate
// limited or auth gated.
func StartPrometheusServer(mux *http.ServeMux, port string) error {
	if mux == nil {
		return nil
	}

	addr := ":" + port
	fmt.Printf("Starting Prometheus metrics server on http://localhost%s\n", addr)

	scrapeServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := scrapeServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Prometheus server error: %v\n", err)
		}
	}()

	return nil
}

// GetPrometheusConfig maps the application config onto the scrape listener
// settings, falling back to scrape-enabled defaults.
func GetPrometheusConfig(cfg *config.Config) PrometheusConfig {
	if cfg == nil {
		return PrometheusConfig{Enabled: true, Endpoint: "/metrics", Port: "9090"}
	}

	return PrometheusConfig{
		Enabled:  cfg.Observability.Prometheus.Enabled,
		Endpoint: cfg.Observability.Prometheus.Endpoint,
		Port:     cfg.Observability.Prometheus.Port,
	}
}
