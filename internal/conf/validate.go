// conf/validate.go

package conf

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateAPISettings(&settings.API); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateOutputSettings(&settings.Output); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLogSettings(&settings.Log); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateTelemetrySettings(&settings.Telemetry); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateAPISettings(settings *APISettings) error {
	u, err := url.Parse(settings.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.endpoint must be an absolute http(s) URL, got '%s'", settings.Endpoint)
	}
	if settings.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", settings.Timeout)
	}
	if settings.CacheTTL < 0 {
		return fmt.Errorf("api.cachettl must not be negative, got %s", settings.CacheTTL)
	}
	return nil
}

func validateOutputSettings(settings *OutputSettings) error {
	return validateExtension(settings.Extension)
}

// validateExtension accepts short alphanumeric extensions without a dot.
func validateExtension(ext string) error {
	if ext == "" || len(ext) > 8 {
		return fmt.Errorf("output.extension must be 1-8 characters, got '%s'", ext)
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return fmt.Errorf("output.extension must be alphanumeric without a dot, got '%s'", ext)
		}
	}
	return nil
}

func validateLogSettings(settings *LogSettings) error {
	if !isValidLogLevel(settings.Level) {
		return fmt.Errorf("log.level must be one of %s, got '%s'", strings.Join(validLogLevels, ", "), settings.Level)
	}
	return nil
}

func validateTelemetrySettings(settings *TelemetrySettings) error {
	if settings.Enabled && settings.DSN == "" {
		return fmt.Errorf("telemetry.dsn is required when telemetry is enabled")
	}
	return nil
}

func isValidLogLevel(level string) bool {
	return slices.Contains(validLogLevels, strings.ToLower(strings.TrimSpace(level)))
}
