package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"skillvet/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds all custom metrics for Skillvet
type Metrics struct {
	// Collaborator call metrics
	CollaboratorTime         metric.Float64Histogram
	CollaboratorRequestCount metric.Int64Counter
	CollaboratorErrorCount   metric.Int64Counter

	// Business metrics
	ResumesAnalyzed    metric.Int64Counter
	SessionsStarted    metric.Int64Counter
	SessionsCompleted  metric.Int64Counter
	AnswersScored      metric.Int64Counter
	HistoryAppends     metric.Int64Counter
	DocumentsGenerated metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config           ObservabilityConfig
	fullConfig       *config.Config // Store full config for access to nested settings
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.ServeMux
}

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	if !obsConfig.Enabled {
		return &ObservabilityManager{config: obsConfig, fullConfig: fullConfig}, nil
	}

	om := &ObservabilityManager{
		config:        obsConfig,
		fullConfig:    fullConfig,
		shutdownFuncs: make([]func(context.Context) error, 0),
	}

	if err := om.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	if om.config.ConsoleOutput {
		// Console exporter for development
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	} else if om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled {
		// OTLP exporter for production
		exporter, err = om.createOTLPExporter()
	} else {
		// No-op exporter when no production exporter is configured
		exporter = &noOpSpanExporter{}
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := om.createResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	res, err := om.createResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	meterProviderOptions := []sdkmetric.Option{
		sdkmetric.WithResource(res),
	}
	for _, reader := range readers {
		meterProviderOptions = append(meterProviderOptions, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(meterProviderOptions...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	// Console exporter for development
	if err := om.setupConsoleReader(&readers); err != nil {
		return nil, err
	}

	// OTLP exporter for production metrics
	if err := om.setupOTLPReader(&readers); err != nil {
		return nil, err
	}

	// Prometheus exporter for the scrape endpoint
	if err := om.setupPrometheusReader(&readers); err != nil {
		return nil, err
	}

	// If no readers configured, use manual reader as fallback
	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	return readers, nil
}

// setupConsoleReader sets up console metric reader if enabled
func (om *ObservabilityManager) setupConsoleReader(readers *[]sdkmetric.Reader) error {
	if !om.config.ConsoleOutput {
		return nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("failed to create console metric exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	*readers = append(*readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	return nil
}

// setupOTLPReader sets up OTLP metric reader if enabled
func (om *ObservabilityManager) setupOTLPReader(readers *[]sdkmetric.Reader) error {
	if om.fullConfig == nil || !om.fullConfig.Observability.OTLP.Enabled {
		return nil
	}

	otlpReader, err := om.createOTLPMetricsReader()
	if err != nil {
		return fmt.Errorf("failed to create OTLP metrics reader: %w", err)
	}
	if otlpReader != nil {
		*readers = append(*readers, otlpReader)
	}
	return nil
}

// setupPrometheusReader sets up Prometheus metric reader if enabled
func (om *ObservabilityManager) setupPrometheusReader(readers *[]sdkmetric.Reader) error {
	if !om.config.Prometheus.Enabled {
		return nil
	}

	prometheusReader, prometheusMux, err := SetupPrometheusExporter(om.config.Prometheus)
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	if prometheusReader != nil {
		*readers = append(*readers, prometheusReader)
		om.prometheusServer = prometheusMux

		if err := StartPrometheusServer(prometheusMux, om.config.Prometheus.Port); err != nil {
			return fmt.Errorf("failed to start Prometheus server: %w", err)
		}
	}
	return nil
}

// createResource creates the OpenTelemetry resource
func (om *ObservabilityManager) createResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
}

// initCustomMetrics creates all custom metrics for Skillvet
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	if err := om.createCollaboratorMetrics(meter); err != nil {
		return err
	}

	if err := om.createBusinessMetrics(meter); err != nil {
		return err
	}

	return om.createRateLimitMetrics(meter)
}

// createCollaboratorMetrics creates metrics for external collaborator calls
func (om *ObservabilityManager) createCollaboratorMetrics(meter metric.Meter) error {
	var err error

	om.metrics.CollaboratorTime, err = meter.Float64Histogram(
		"skillvet_collaborator_duration_seconds",
		metric.WithDescription("Time spent waiting on collaborator services"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create collaborator duration metric: %w", err)
	}

	om.metrics.CollaboratorRequestCount, err = meter.Int64Counter(
		"skillvet_collaborator_requests_total",
		metric.WithDescription("Total number of collaborator requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create collaborator request count metric: %w", err)
	}

	om.metrics.CollaboratorErrorCount, err = meter.Int64Counter(
		"skillvet_collaborator_errors_total",
		metric.WithDescription("Total number of collaborator request errors"),
	)
	if err != nil {
		return fmt.Errorf("failed to create collaborator error count metric: %w", err)
	}

	return nil
}

// createBusinessMetrics creates business-related metrics
func (om *ObservabilityManager) createBusinessMetrics(meter metric.Meter) error {
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&om.metrics.ResumesAnalyzed, "skillvet_resumes_analyzed_total", "Total number of resumes analyzed"},
		{&om.metrics.SessionsStarted, "skillvet_sessions_started_total", "Total number of verification sessions started"},
		{&om.metrics.SessionsCompleted, "skillvet_sessions_completed_total", "Total number of verification sessions completed"},
		{&om.metrics.AnswersScored, "skillvet_answers_scored_total", "Total number of interview answers scored"},
		{&om.metrics.HistoryAppends, "skillvet_history_appends_total", "Total number of history entries appended"},
		{&om.metrics.DocumentsGenerated, "skillvet_documents_generated_total", "Total number of documents generated"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description))
		if err != nil {
			return fmt.Errorf("failed to create %s metric: %w", c.name, err)
		}
		*c.target = counter
	}

	return nil
}

// createRateLimitMetrics creates rate limiting metrics
func (om *ObservabilityManager) createRateLimitMetrics(meter metric.Meter) error {
	var err error

	om.metrics.RateLimitHits, err = meter.Int64Counter(
		"skillvet_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om.metrics == nil {
		return &Metrics{} // Return empty metrics if not initialized
	}
	return om.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// TrackCollaboratorOperation instruments a collaborator call with tracing and
// metrics.
func (m *Metrics) TrackCollaboratorOperation(ctx context.Context, operation string, fn func(context.Context) error) error {
	if m.CollaboratorTime == nil {
		// Metrics not initialized, just run the function
		return fn(ctx)
	}

	tracer := otel.Tracer("skillvet.collaborator")
	ctx, span := tracer.Start(ctx, "collaborator."+operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	m.CollaboratorTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	m.CollaboratorRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.CollaboratorErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}
	span.SetAttributes(attrs...)

	return err
}

// RecordBusinessMetric records business-specific metrics
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	attrs := append([]attribute.KeyValue{
		attribute.Bool("success", success),
	}, attributes...)

	var counter metric.Int64Counter
	switch metricType {
	case "resume_analyzed":
		counter = m.ResumesAnalyzed
	case "session_started":
		counter = m.SessionsStarted
	case "session_completed":
		counter = m.SessionsCompleted
	case "answer_scored":
		counter = m.AnswersScored
	case "history_appended":
		counter = m.HistoryAppends
	case "document_generated":
		counter = m.DocumentsGenerated
	case "rate_limit_hit":
		counter = m.RateLimitHits
	}

	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// No-op exporters for when console output is disabled
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	if om.fullConfig == nil {
		return nil, fmt.Errorf("config not available for OTLP configuration")
	}

	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}

	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	if om.fullConfig == nil {
		return nil, fmt.Errorf("config not available for OTLP configuration")
	}

	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}

	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))

	return reader, nil
}

// getServiceInstanceID returns the service instance ID from config or generates one
func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	// Fallback to default if config not available
	return "skillvet-1"
}

// getMetricsCollectionInterval returns the configured metrics collection interval
func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	// Fallback to default
	return 15 * time.Second
}
