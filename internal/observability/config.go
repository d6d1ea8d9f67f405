package observability

import (
	"skillvet/internal/config"
)

// GetObservabilityConfig maps application config onto the telemetry settings,
// substituting the build version when none is configured.
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:    "skillvet",
			ServiceVersion: version,
			Enabled:        true,
			ConsoleOutput:  true,
			PrettyPrint:    true,
			SampleRate:     1.0,
			Prometheus:     GetPrometheusConfig(cfg),
		}
	}

	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	return ObservabilityConfig{
		ServiceName:    obs.ServiceName,
		ServiceVersion: serviceVersion,
		Enabled:        obs.Enabled,
		ConsoleOutput:  obs.ConsoleOutput,
		PrettyPrint:    obs.Console.PrettyPrint,
		SampleRate:     obs.SampleRate,
		Prometheus:     GetPrometheusConfig(cfg),
	}
}
