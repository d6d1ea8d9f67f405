package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyServiceKeyFallbacks()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks applies API key fallbacks from environment variables
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("SKILLVET_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = strings.Split(apiKeysEnv, ",")
			// Trim whitespace from each key
			for i, key := range c.Server.APIKeys {
				c.Server.APIKeys[i] = strings.TrimSpace(key)
			}
		}
	}
}

// applyServiceKeyFallbacks lets one shared key cover all collaborators when
// per-service keys are not set
func (c *Config) applyServiceKeyFallbacks() {
	shared := os.Getenv("SKILLVET_SERVICES_APIKEY")
	if shared == "" {
		return
	}
	if c.Services.Analysis.APIKey == "" {
		c.Services.Analysis.APIKey = shared
	}
	if c.Services.QuestionBank.APIKey == "" {
		c.Services.QuestionBank.APIKey = shared
	}
	if c.Services.DocGen.APIKey == "" {
		c.Services.DocGen.APIKey = shared
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}

	// Debug logging turns console trace output on
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	// Try to get hostname, fallback to default
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	// Log config file source
	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	// Log environment variables that are set
	envVars := []string{
		"SKILLVET_SERVICES_ANALYSIS_BASEURL",
		"SKILLVET_SERVICES_QUESTIONBANK_BASEURL",
		"SKILLVET_SERVICES_DOCGEN_BASEURL",
		"SKILLVET_SERVICES_APIKEY",
		"SKILLVET_QUESTIONBANK_MODE",
		"SKILLVET_STORAGE_PATH",
		"SKILLVET_SERVER_PORT",
		"SKILLVET_SERVER_HOST",
		"SKILLVET_APP_LOGLEVEL",
		"SKILLVET_VAULT_ENABLED",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			// Mask sensitive values
			if strings.Contains(strings.ToLower(envVar), "apikey") || strings.Contains(strings.ToLower(envVar), "key") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	// Log key configuration values (with sensitive data masked)
	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Analysis Service: %s", c.Services.Analysis.BaseURL)
	log.Printf("[CONFIG] Question Bank Mode: %s", c.QuestionBank.Mode)
	if c.QuestionBank.Mode == "local" {
		log.Printf("[CONFIG] Question Bank Dir: %s", c.QuestionBank.LocalDir)
	} else {
		log.Printf("[CONFIG] Question Bank Service: %s", c.Services.QuestionBank.BaseURL)
	}
	log.Printf("[CONFIG] Doc Generation Service: %s", c.Services.DocGen.BaseURL)
	log.Printf("[CONFIG] Storage Path: %s (inMemory=%t)", c.Storage.Path, c.Storage.InMemory)
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Events Enabled: %t", c.Events.Enabled)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] =====================================")
}
