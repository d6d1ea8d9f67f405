package config

import (
	"fmt"
	"os"
	"strings"

	"skillvet/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	// Secret paths
	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault
type VaultSecrets struct {
	// APIKeys expects a single string with comma-separated values in Vault
	// Example format: "key1,key2,key3"
	APIKeys string `mapstructure:"apiKeys"` // Path to server API keys secret
	// ServiceKeys expects keys "analysis", "questionBank", and "docGen"
	ServiceKeys string `mapstructure:"serviceKeys"` // Path to collaborator API keys
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// NewVaultClient creates a new Vault client from configuration
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		if logger != nil {
			logger.Debug("Vault integration disabled")
		}
		return nil, nil
	}

	vaultConfig := api.DefaultConfig()
	if config.Address != "" {
		vaultConfig.Address = config.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	if logger != nil {
		logger.Info("Successfully connected to Vault",
			"address", vaultConfig.Address,
			"version", health.Version,
			"sealed", health.Sealed)
	}

	return &VaultClient{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// resolveVaultToken resolves the Vault token from config or file
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token

	if token == "" && config.TokenFile != "" {
		tokenBytes, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}

	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}

	return token, nil
}

// GetStringSecret retrieves a string value from a Vault KVv2 secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	if vc == nil {
		return "", fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("secret not found at path: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return "", fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}

	value, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	strValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}

	if vc.logger != nil {
		maskedValue := "****"
		if len(strValue) > 8 {
			maskedValue = strValue[:4] + "****" + strValue[len(strValue)-4:]
		}
		vc.logger.Debug("String secret retrieved from Vault",
			"path", path,
			"key", key,
			"masked_value", maskedValue)
	}

	return strValue, nil
}

// GetStringSliceSecret retrieves a comma-separated string as a slice from Vault
func (vc *VaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := vc.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return []string{}, nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, len(parts))
	for i, part := range parts {
		result[i] = strings.TrimSpace(part)
	}
	return result, nil
}

// ApplyVaultSecrets loads secrets from Vault and applies them to the config.
// Vault values override file and environment values.
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		if logger != nil {
			logger.Debug("Vault integration disabled, skipping secret loading")
		}
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	if client == nil {
		return nil
	}

	if path := config.Vault.Secrets.APIKeys; path != "" {
		apiKeys, err := client.GetStringSliceSecret(path, "keys")
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if len(apiKeys) > 0 {
			config.Server.APIKeys = apiKeys
			if logger != nil {
				logger.Info("Loaded server API keys from Vault", "count", len(apiKeys))
			}
		}
	}

	if path := config.Vault.Secrets.ServiceKeys; path != "" {
		targets := map[string]*ServiceConfig{
			"analysis":     &config.Services.Analysis,
			"questionBank": &config.Services.QuestionBank,
			"docGen":       &config.Services.DocGen,
		}
		for key, svc := range targets {
			value, err := client.GetStringSecret(path, key)
			if err != nil {
				// Per-service keys are optional; missing entries keep the
				// configured value.
				if logger != nil {
					logger.Debug("No Vault key for service", "service", key)
				}
				continue
			}
			svc.APIKey = value
		}
		if logger != nil {
			logger.Info("Applied collaborator API keys from Vault", "path", path)
		}
	}

	if logger != nil {
		logger.Info("Successfully completed applying secrets from Vault")
	}
	return nil
}
