package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 4, cfg.Uploads.Concurrency)
	assert.True(t, cfg.Webhook.Enabled)
	assert.Equal(t, "reports", cfg.Reports.OutputDir)

	require.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "negative read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = -1 },
			wantErr: "read timeout must be positive",
		},
		{
			name:    "no allowed origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "at least one allowed origin",
		},
		{
			name:    "malformed uploads URL",
			mutate:  func(c *Config) { c.Uploads.BaseURL = "://bad" },
			wantErr: "invalid uploads base URL",
		},
		{
			name:    "malformed webhook URL",
			mutate:  func(c *Config) { c.Webhook.URL = "not a url" },
			wantErr: "invalid webhook URL",
		},
		{
			name: "webhook URL ignored when disabled",
			mutate: func(c *Config) {
				c.Webhook.Enabled = false
				c.Webhook.URL = "not a url"
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestMergeConfigs(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Server.Port = 9090
	fileCfg.Uploads.BaseURL = "https://uploads.example.com"
	fileCfg.Webhook.URL = "https://hooks.example.com/reports"

	envCfg := Config{}
	envCfg.Server.Port = 8081 // env wins when set

	merged := mergeConfigs(fileCfg, envCfg)

	assert.Equal(t, 8081, merged.Server.Port)
	assert.Equal(t, "https://uploads.example.com", merged.Uploads.BaseURL)
	assert.Equal(t, "https://hooks.example.com/reports", merged.Webhook.URL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COHORT_SERVER_PORT", "9191")
	t.Setenv("COHORT_UPLOADS_BASE_URL", "https://uploads.example.com")
	t.Setenv("COHORT_WEBHOOK_URL", "https://hooks.example.com/reports")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "https://uploads.example.com", cfg.Uploads.BaseURL)
	assert.Equal(t, "https://hooks.example.com/reports", cfg.Webhook.URL)
}
