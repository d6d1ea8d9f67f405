package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// External service defaults
	v.SetDefault("services.analysis.baseUrl", "http://localhost:8000")
	v.SetDefault("services.analysis.apiKey", "")
	v.SetDefault("services.analysis.timeout", 60*time.Second)

	v.SetDefault("services.questionBank.baseUrl", "http://localhost:8000")
	v.SetDefault("services.questionBank.apiKey", "")
	v.SetDefault("services.questionBank.timeout", 30*time.Second)

	v.SetDefault("services.docGen.baseUrl", "http://localhost:8000")
	v.SetDefault("services.docGen.apiKey", "")
	v.SetDefault("services.docGen.timeout", 90*time.Second) // Rendering is the slow path

	// Circuit breaker defaults for all collaborators
	for _, svc := range []string{"analysis", "questionBank", "docGen"} {
		v.SetDefault("services."+svc+".circuitBreaker.enabled", true)
		v.SetDefault("services."+svc+".circuitBreaker.maxRequests", 3)
		v.SetDefault("services."+svc+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("services."+svc+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("services."+svc+".circuitBreaker.minRequests", 3)
		v.SetDefault("services."+svc+".circuitBreaker.failureThreshold", 0.6)
	}

	// Question bank source defaults
	v.SetDefault("questionBank.mode", "remote")
	v.SetDefault("questionBank.localDir", "data/questions")
	v.SetDefault("questionBank.hotReload", true)

	// Verification session defaults
	v.SetDefault("verify.defaultQuestionCount", 6)
	v.SetDefault("verify.startBand", "intermediate")
	v.SetDefault("verify.randomSeed", 0)

	// Storage defaults
	v.SetDefault("storage.path", "data/store")
	v.SetDefault("storage.inMemory", false)
	v.SetDefault("storage.syncWrites", true)
	v.SetDefault("storage.gcInterval", 5*time.Minute)
	v.SetDefault("storage.gcDiscardRatio", 0.5)

	// Events defaults
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.url", "")
	v.SetDefault("events.exchange", "skillvet.events")

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 5*1024*1024) // 5MB resume uploads

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.serviceKeys", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "skillvet")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
}
