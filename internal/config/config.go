package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Uploads  UploadsConfig  `yaml:"uploads" envconfig:"UPLOADS"`
	Webhook  WebhookConfig  `yaml:"webhook" envconfig:"WEBHOOK"`
	Reports  ReportsConfig  `yaml:"reports" envconfig:"REPORTS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"5m"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// UploadsConfig describes the upstream service that stores the raw
// sales tables submitted for each brand.
type UploadsConfig struct {
	BaseURL     string        `yaml:"base_url" envconfig:"BASE_URL"`
	APIToken    string        `yaml:"api_token" envconfig:"API_TOKEN"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
	Concurrency int           `yaml:"concurrency" envconfig:"CONCURRENCY" default:"4"`
	RPS         float64       `yaml:"rps" envconfig:"RPS" default:"5"`
	Burst       int           `yaml:"burst" envconfig:"BURST" default:"5"`
}

// WebhookConfig describes where finished reports are delivered.
type WebhookConfig struct {
	URL     string        `yaml:"url" envconfig:"URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"60s"`
	Enabled bool          `yaml:"enabled" envconfig:"ENABLED" default:"true"`
}

// ReportsConfig contains report generation settings.
type ReportsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"reports"`
	KeepLocal bool   `yaml:"keep_local" envconfig:"KEEP_LOCAL" default:"true"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("COHORT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Config file fills in anything the environment left at zero
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Server.WriteTimeout == 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if envConfig.Uploads.BaseURL == "" {
		envConfig.Uploads.BaseURL = fileConfig.Uploads.BaseURL
	}
	if envConfig.Uploads.APIToken == "" {
		envConfig.Uploads.APIToken = fileConfig.Uploads.APIToken
	}
	if envConfig.Webhook.URL == "" {
		envConfig.Webhook.URL = fileConfig.Webhook.URL
	}
	if envConfig.Reports.OutputDir == "" {
		envConfig.Reports.OutputDir = fileConfig.Reports.OutputDir
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Uploads.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.Uploads.BaseURL); err != nil {
			return fmt.Errorf("invalid uploads base URL: %w", err)
		}
	}

	if c.Webhook.Enabled && c.Webhook.URL != "" {
		if _, err := url.ParseRequestURI(c.Webhook.URL); err != nil {
			return fmt.Errorf("invalid webhook URL: %w", err)
		}
	}

	if c.Uploads.Concurrency <= 0 {
		c.Uploads.Concurrency = 1
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  5 * time.Minute,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Uploads: UploadsConfig{
			Timeout:     30 * time.Second,
			Concurrency: 4,
			RPS:         5,
			Burst:       5,
		},
		Webhook: WebhookConfig{
			Timeout: 60 * time.Second,
			Enabled: true,
		},
		Reports: ReportsConfig{
			OutputDir: "reports",
			KeepLocal: true,
		},
	}
}
