package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		Services: ServicesConfig{
			Analysis:     ServiceConfig{BaseURL: "http://localhost:8000", Timeout: 30 * time.Second},
			QuestionBank: ServiceConfig{BaseURL: "http://localhost:8000", Timeout: 30 * time.Second},
			DocGen:       ServiceConfig{BaseURL: "http://localhost:8000", Timeout: 30 * time.Second},
		},
		QuestionBank: QuestionBankConfig{Mode: "remote"},
		Verify:       VerifyConfig{DefaultQuestionCount: 6, StartBand: "intermediate"},
		Storage:      StorageConfig{Path: "data/store"},
		Server:       ServerConfig{Port: "8080"},
		App: AppConfig{
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid remote config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid local config",
			mutate: func(c *Config) {
				c.QuestionBank.Mode = "local"
				c.QuestionBank.LocalDir = "data/questions"
			},
		},
		{
			name: "invalid bank mode",
			mutate: func(c *Config) {
				c.QuestionBank.Mode = "hybrid"
			},
			wantErr: "invalid question bank mode",
		},
		{
			name: "local mode without directory",
			mutate: func(c *Config) {
				c.QuestionBank.Mode = "local"
				c.QuestionBank.LocalDir = ""
			},
			wantErr: "local directory is required",
		},
		{
			name: "missing storage path",
			mutate: func(c *Config) {
				c.Storage.Path = ""
			},
			wantErr: "storage path is required",
		},
		{
			name: "in-memory storage needs no path",
			mutate: func(c *Config) {
				c.Storage.Path = ""
				c.Storage.InMemory = true
			},
		},
		{
			name: "question count out of range",
			mutate: func(c *Config) {
				c.Verify.DefaultQuestionCount = 25
			},
			wantErr: "question count must be between 1 and 20",
		},
		{
			name: "invalid start band",
			mutate: func(c *Config) {
				c.Verify.StartBand = "expert"
			},
			wantErr: "invalid start band",
		},
		{
			name: "events enabled without URL",
			mutate: func(c *Config) {
				c.Events.Enabled = true
			},
			wantErr: "broker URL is required",
		},
		{
			name: "missing server port",
			mutate: func(c *Config) {
				c.Server.Port = ""
			},
			wantErr: "server port is required",
		},
		{
			name: "invalid default format",
			mutate: func(c *Config) {
				c.App.DefaultFormat = "xml"
			},
			wantErr: "invalid default format",
		},
		{
			name: "non-positive service timeout",
			mutate: func(c *Config) {
				c.Services.DocGen.Timeout = 0
			},
			wantErr: "timeouts must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyServerAPIKeyFallbacks(t *testing.T) {
	t.Setenv("SKILLVET_SERVER_APIKEYS", "key-one, key-two ,key-three")

	cfg := validTestConfig()
	cfg.applyServerAPIKeyFallbacks()

	assert.Equal(t, []string{"key-one", "key-two", "key-three"}, cfg.Server.APIKeys)
}

func TestApplyServiceKeyFallbacks(t *testing.T) {
	t.Setenv("SKILLVET_SERVICES_APIKEY", "shared-key")

	cfg := validTestConfig()
	cfg.Services.Analysis.APIKey = "explicit-key"
	cfg.applyServiceKeyFallbacks()

	assert.Equal(t, "explicit-key", cfg.Services.Analysis.APIKey)
	assert.Equal(t, "shared-key", cfg.Services.QuestionBank.APIKey)
	assert.Equal(t, "shared-key", cfg.Services.DocGen.APIKey)
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"})
		require.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		path := t.TempDir() + "/token"
		require.NoError(t, os.WriteFile(path, []byte("  file-token\n"), 0o600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: path})
		require.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{})
		assert.Error(t, err)
	})
}
