package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Secret Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (SKILLVET_SERVER_APIKEYS, etc.)
// 4. Default values - Lowest priority
type Config struct {
	Services      ServicesConfig      `mapstructure:"services"`
	QuestionBank  QuestionBankConfig  `mapstructure:"questionBank"`
	Verify        VerifyConfig        `mapstructure:"verify"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Events        EventsConfig        `mapstructure:"events"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServicesConfig groups the external collaborator endpoints
type ServicesConfig struct {
	Analysis     ServiceConfig `mapstructure:"analysis"`
	QuestionBank ServiceConfig `mapstructure:"questionBank"`
	DocGen       ServiceConfig `mapstructure:"docGen"`
}

// ServiceConfig holds one collaborator's connection settings
type ServiceConfig struct {
	BaseURL        string               `mapstructure:"baseUrl"`
	APIKey         string               `mapstructure:"apiKey"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// QuestionBankConfig selects where verification questions come from
type QuestionBankConfig struct {
	Mode      string `mapstructure:"mode"`      // "remote" or "local"
	LocalDir  string `mapstructure:"localDir"`  // Directory of JSON bank files for local mode
	HotReload bool   `mapstructure:"hotReload"` // Watch the local directory for changes
}

// VerifyConfig tunes verification sessions
type VerifyConfig struct {
	DefaultQuestionCount int    `mapstructure:"defaultQuestionCount"`
	StartBand            string `mapstructure:"startBand"`
	RandomSeed           int64  `mapstructure:"randomSeed"` // 0 means seed from the clock
}

// StorageConfig holds the durable store configuration
type StorageConfig struct {
	Path           string        `mapstructure:"path"`
	InMemory       bool          `mapstructure:"inMemory"`
	SyncWrites     bool          `mapstructure:"syncWrites"`
	GCInterval     time.Duration `mapstructure:"gcInterval"`
	GCDiscardRatio float64       `mapstructure:"gcDiscardRatio"`
}

// EventsConfig holds the optional message broker bridge configuration
type EventsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int  `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int  `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool `mapstructure:"byIP"`           // Enable per-IP rate limiting
	ByAPIKey       bool `mapstructure:"byAPIKey"`       // Enable per-API-key rate limiting
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	ServiceName     string            `mapstructure:"serviceName"`
	ServiceVersion  string            `mapstructure:"serviceVersion"`
	ServiceInstance string            `mapstructure:"serviceInstance"`
	ConsoleOutput   bool              `mapstructure:"consoleOutput"`
	SampleRate      float64           `mapstructure:"sampleRate"`
	Tracing         TracingConfig     `mapstructure:"tracing"`
	Metrics         MetricsConfig     `mapstructure:"metrics"`
	Console         ConsoleConfig     `mapstructure:"console"`
	Prometheus      PrometheusConfig  `mapstructure:"prometheus"`
	OTLP            OTLPConfig        `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()

	// Set default values
	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	// Set up environment variable handling
	v.SetEnvPrefix("SKILLVET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'SKILLVET'")

	// Set up config file handling
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/skillvet/")
	v.AddConfigPath("$HOME/.skillvet")
	v.AddConfigPath(".")
	log.Println("[CONFIG] Configured config file search paths: /etc/skillvet/, $HOME/.skillvet, .")

	// Read the config file
	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	// Unmarshal the configuration into the Config struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	// Apply fallback logic
	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	// Log configuration sources summary
	config.logConfigurationSources(configFileUsed)

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.QuestionBank.Mode {
	case "remote":
		if c.Services.QuestionBank.BaseURL == "" {
			return fmt.Errorf("question bank base URL is required in remote mode (set SKILLVET_SERVICES_QUESTIONBANK_BASEURL)")
		}
	case "local":
		if c.QuestionBank.LocalDir == "" {
			return fmt.Errorf("question bank local directory is required in local mode")
		}
	default:
		return fmt.Errorf("invalid question bank mode: %s (must be 'remote' or 'local')", c.QuestionBank.Mode)
	}

	if c.Services.Analysis.Timeout <= 0 || c.Services.QuestionBank.Timeout <= 0 || c.Services.DocGen.Timeout <= 0 {
		return fmt.Errorf("service timeouts must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required (set SKILLVET_STORAGE_PATH)")
	}

	if c.Verify.DefaultQuestionCount < 1 || c.Verify.DefaultQuestionCount > 20 {
		return fmt.Errorf("default question count must be between 1 and 20")
	}

	switch c.Verify.StartBand {
	case "beginner", "intermediate", "advanced":
	default:
		return fmt.Errorf("invalid start band: %s (must be 'beginner', 'intermediate', or 'advanced')", c.Verify.StartBand)
	}

	if c.Events.Enabled && c.Events.URL == "" {
		return fmt.Errorf("events broker URL is required when events are enabled")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	return nil
}

// Global configuration instance
var GlobalConfig *Config

// InitConfig initializes the global configuration
func InitConfig() error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	GlobalConfig = config
	return nil
}
