// Package config provides centralized configuration management for the
// cohort reporting service. It handles loading configuration from multiple
// sources, validation, and a type-safe API for accessing configuration
// values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern COHORT_* for namespacing:
//
//	COHORT_SERVER_PORT=8080
//	COHORT_UPLOADS_BASE_URL=https://uploads.example.com
//	COHORT_WEBHOOK_URL=https://hooks.example.com/reports
//	COHORT_LOGGING_LEVEL=info
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Values are within acceptable ranges
//	- URLs are properly formatted
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
