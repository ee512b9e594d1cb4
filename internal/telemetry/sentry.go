// Package telemetry provides opt-in, privacy-filtered error reporting to Sentry.
package telemetry

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/pokeart/pokeart-go/internal/conf"
	"github.com/pokeart/pokeart-go/internal/errors"
	"github.com/pokeart/pokeart-go/internal/logger"
)

// sentryInitialized tracks whether Sentry has been initialized
var sentryInitialized atomic.Bool

// InitSentry initializes the Sentry SDK and routes enhanced errors to it.
// Nothing is initialized unless telemetry is explicitly enabled.
func InitSentry(settings *conf.Settings) error {
	return initSentry(settings, nil)
}

// initSentry allows tests to inject a transport.
func initSentry(settings *conf.Settings, transport sentry.Transport) error {
	log := logger.Global().Module("telemetry")

	if settings == nil || !settings.Telemetry.Enabled {
		log.Debug("Sentry telemetry is disabled (opt-in required)")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:        settings.Telemetry.DSN,
		Transport:  transport,
		SampleRate: 1.0,

		// Privacy-compliant settings
		AttachStacktrace: false,
		Environment:      "production",
		ServerName:       "", // Explicitly clear server name to prevent hostname leakage
		Release:          fmt.Sprintf("pokeart@%s", settings.Version),

		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	configureSentryScope(settings)
	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	sentryInitialized.Store(true)

	log.Info("Sentry telemetry initialized",
		logger.String("version", settings.Version),
		logger.String("os", runtime.GOOS),
		logger.String("arch", runtime.GOARCH))

	return nil
}

// applyPrivacyFilters strips host and user identifying data from an event
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}

// configureSentryScope tags every event with privacy-safe platform information
func configureSentryScope(settings *conf.Settings) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)

		scope.SetContext("application", map[string]any{
			"name":       "pokeart",
			"version":    settings.Version,
			"go_version": runtime.Version(),
		})
	})
}

// Flush sends buffered events and detaches the error reporter. Safe to call
// when telemetry was never initialized.
func Flush(timeout time.Duration) {
	if !sentryInitialized.Swap(false) {
		return
	}
	errors.SetTelemetryReporter(nil)
	sentry.Flush(timeout)
}
