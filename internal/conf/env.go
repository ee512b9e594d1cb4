// env.go - Environment variable configuration and validation for pokeart
package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// dotEnvFile is read from the working directory when present. Variables
// already set in the process environment take precedence over it.
const dotEnvFile = ".env"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "POKEART_DEBUG", validateEnvBool},

		// Metadata API
		{"api.endpoint", "POKEART_API_ENDPOINT", validateEnvURL},
		{"api.timeout", "POKEART_API_TIMEOUT", validateEnvDuration},
		{"api.useragent", "POKEART_API_USERAGENT", nil},
		{"api.cachettl", "POKEART_API_CACHETTL", validateEnvDuration},

		// Output
		{"output.dir", "POKEART_OUTPUT_DIR", nil},
		{"output.extension", "POKEART_OUTPUT_EXTENSION", validateExtension},
		{"output.recursive", "POKEART_OUTPUT_RECURSIVE", validateEnvBool},

		// Logging
		{"log.level", "POKEART_LOG_LEVEL", validateEnvLogLevel},
		{"log.file", "POKEART_LOG_FILE", nil},

		// Telemetry and metrics
		{"telemetry.enabled", "POKEART_TELEMETRY_ENABLED", validateEnvBool},
		{"telemetry.dsn", "POKEART_TELEMETRY_DSN", validateEnvURL},
		{"metrics.file", "POKEART_METRICS_FILE", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		// Present-but-empty values are validated too
		if binding.Validate != nil {
			if envValue, ok := os.LookupEnv(binding.EnvVar); ok {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid duration '%s': expected a value like 30s or 5m", value)
	}
	if d < 0 {
		return fmt.Errorf("duration must not be negative, got %s", d)
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("URL must be absolute http(s), got '%s'", value)
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	if !isValidLogLevel(value) {
		return fmt.Errorf("log level must be one of %s, got '%s'", strings.Join(validLogLevels, ", "), value)
	}
	return nil
}

// loadDotEnv merges an optional .env file into the process environment.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	if err := loadDotEnv(dotEnvFile); err != nil {
		return err
	}

	viper.SetEnvPrefix("POKEART")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return bindEnvVars()
}
