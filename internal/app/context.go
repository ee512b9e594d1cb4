// Package app holds the application context shared by the CLI commands:
// loaded settings plus the components built from them.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pokeart/pokeart-go/internal/buildinfo"
	"github.com/pokeart/pokeart-go/internal/conf"
	"github.com/pokeart/pokeart-go/internal/downloader"
	"github.com/pokeart/pokeart-go/internal/errors"
	"github.com/pokeart/pokeart-go/internal/httpclient"
	"github.com/pokeart/pokeart-go/internal/imagesaver"
	"github.com/pokeart/pokeart-go/internal/logger"
	"github.com/pokeart/pokeart-go/internal/observability"
	"github.com/pokeart/pokeart-go/internal/pokeapi"
	"github.com/pokeart/pokeart-go/internal/telemetry"
)

// telemetryFlushTimeout bounds how long Close waits for Sentry delivery.
const telemetryFlushTimeout = 2 * time.Second

// Context holds the overall application state. Component fields are nil
// until Initialize succeeds.
type Context struct {
	Build      *buildinfo.Context
	Settings   *conf.Settings
	Logger     *logger.CentralLogger
	Metrics    *observability.Metrics
	HTTP       *httpclient.Client
	PokeAPI    *pokeapi.Client
	Downloader *downloader.Downloader

	// transport overrides the network transport, tests only
	transport http.RoundTripper
}

// NewContext creates an uninitialized application context.
func NewContext(build *buildinfo.Context) *Context {
	if build == nil {
		build = buildinfo.NewContext("", "")
	}
	return &Context{Build: build}
}

// SetTransport replaces the HTTP transport used by Initialize.
func (c *Context) SetTransport(rt http.RoundTripper) {
	c.transport = rt
}

// Initialize loads settings and builds the logger, metrics, telemetry and
// download pipeline from them.
func (c *Context) Initialize(configFile string) error {
	settings, err := conf.Load(configFile)
	if err != nil {
		return err
	}
	settings.Version = c.Build.Version()
	c.Settings = settings

	cl, err := logger.NewCentralLogger(loggingConfig(settings))
	if err != nil {
		return errors.New(fmt.Errorf("failed to create logger: %w", err)).
			Component("app").
			Category(errors.CategoryConfiguration).
			Build()
	}
	logger.SetGlobal(cl)
	c.Logger = cl
	log := cl.Module("app")

	if settings.ConfigFile != "" {
		log.Debug("configuration loaded", logger.String("file", settings.ConfigFile))
	}

	if err := telemetry.InitSentry(settings); err != nil {
		log.Warn("telemetry disabled", logger.Error(err))
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Context("operation", "init_metrics").
			Build()
	}
	c.Metrics = metrics

	userAgent := settings.API.UserAgent
	if userAgent == "" {
		userAgent = c.Build.UserAgent()
	}
	c.HTTP = httpclient.New(&httpclient.Config{
		DefaultTimeout: settings.API.Timeout,
		UserAgent:      userAgent,
		Transport:      c.transport,
	})
	c.HTTP.SetAfterResponseHook(metrics.Downloader.ObserveHTTPResponse)

	api, err := pokeapi.NewClient(c.HTTP, pokeapi.Config{
		BaseURL:  settings.API.Endpoint,
		CacheTTL: settings.API.CacheTTL,
	}, cl.Module("pokeapi"))
	if err != nil {
		return err
	}
	api.SetObserver(metrics.Downloader)
	c.PokeAPI = api

	saver, err := imagesaver.New(c.HTTP, imagesaver.Options{
		Recursive: settings.Output.Recursive,
	}, cl.Module("imagesaver"))
	if err != nil {
		return err
	}

	c.Downloader = downloader.New(api, saver, downloader.Config{
		OutputDir: settings.Output.Dir,
		Extension: settings.Output.Extension,
	}, cl.Module("downloader"))
	c.Downloader.SetRecorder(metrics.Downloader)

	log.Debug("application initialized",
		logger.String("version", settings.Version),
		logger.String("endpoint", settings.API.Endpoint),
		logger.String("output_dir", settings.Output.Dir))

	return nil
}

// Close writes the metrics file, flushes telemetry and releases the logger.
// Safe to call after a failed or skipped Initialize.
func (c *Context) Close() error {
	var errs []error

	if c.Metrics != nil && c.Settings != nil && c.Settings.Metrics.File != "" {
		if err := c.Metrics.WriteTextfile(c.Settings.Metrics.File); err != nil {
			errs = append(errs, err)
		}
	}

	telemetry.Flush(telemetryFlushTimeout)

	if c.HTTP != nil {
		c.HTTP.Close()
	}

	if c.Logger != nil {
		if err := c.Logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close logger: %w", err))
		}
	}

	return errors.Join(errs...)
}

// loggingConfig maps settings onto the central logger configuration.
// Debug mode lowers the level to debug unless trace is already set.
func loggingConfig(settings *conf.Settings) *logger.LoggingConfig {
	level := settings.Log.Level
	if settings.Debug && level != string(logger.LogLevelTrace) {
		level = string(logger.LogLevelDebug)
	}

	cfg := &logger.LoggingConfig{
		DefaultLevel: level,
		Console:      &logger.ConsoleOutput{Enabled: true, Level: level},
	}
	if settings.Log.File != "" {
		cfg.FileOutput = &logger.FileOutput{
			Enabled: true,
			Path:    settings.Log.File,
			Level:   level,
		}
	}
	return cfg
}
