// Package conf loads pokeart settings from defaults, an optional config.yaml,
// POKEART_* environment variables and command line flags.
package conf

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/pokeart/pokeart-go/internal/errors"
)

// APISettings configures the metadata endpoint and the shared HTTP client.
type APISettings struct {
	Endpoint  string        `yaml:"endpoint"`  // base URL, the identifier is appended as a path segment
	Timeout   time.Duration `yaml:"timeout"`   // applied when a request context has no deadline
	UserAgent string        `yaml:"useragent"` // empty means pokeart-go/<version>
	CacheTTL  time.Duration `yaml:"cachettl"`  // 0 disables the in-process record memo
}

// OutputSettings controls where downloaded images land.
type OutputSettings struct {
	Dir       string `yaml:"dir"`       // target directory
	Extension string `yaml:"extension"` // file extension without the dot
	Recursive bool   `yaml:"recursive"` // create missing parent directories too
}

// LogSettings configures the central logger.
type LogSettings struct {
	Level string `yaml:"level"` // trace, debug, info, warn or error
	File  string `yaml:"file"`  // optional JSON log file
}

// TelemetrySettings configures opt-in Sentry error reporting.
type TelemetrySettings struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// MetricsSettings configures the prometheus text file written on exit.
type MetricsSettings struct {
	File string `yaml:"file"`
}

// Settings contains all configuration options for pokeart.
type Settings struct {
	Debug bool `yaml:"debug"` // true to enable debug logging

	// Runtime values, not stored in config file
	Version    string `yaml:"-"`
	ConfigFile string `yaml:"-"` // config file actually read, empty when none

	API       APISettings       `yaml:"api"`
	Output    OutputSettings    `yaml:"output"`
	Log       LogSettings       `yaml:"log"`
	Telemetry TelemetrySettings `yaml:"telemetry"`
	Metrics   MetricsSettings   `yaml:"metrics"`
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads defaults, the config file and environment variables into a
// Settings value. configFile overrides the config search path when set.
// Flags must already be bound to viper keys by the caller.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(configFile); err != nil {
		return nil, err
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	settings.ConfigFile = viper.ConfigFileUsed()

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error validating settings: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper registers defaults and env bindings and reads the configuration
// file. A missing config file is not an error; defaults apply.
func initViper(configFile string) error {
	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "bind_env").
			Build()
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		configPaths, err := GetDefaultConfigPaths()
		if err != nil {
			return err
		}
		for _, path := range configPaths {
			viper.AddConfigPath(path)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.New(fmt.Errorf("error reading config file: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "read_config").
			FileContext(configFile).
			Build()
	}

	return nil
}

// GetSettings returns the most recently loaded settings, or nil before Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
