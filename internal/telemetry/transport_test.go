package telemetry

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// captureTransport is a sentry.Transport that keeps events in memory.
type captureTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

//nolint:gocritic // hugeParam: sentry.Transport signature
func (c *captureTransport) Configure(sentry.ClientOptions) {}

func (c *captureTransport) SendEvent(event *sentry.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureTransport) Flush(time.Duration) bool { return true }

func (c *captureTransport) FlushWithContext(ctx context.Context) bool { return ctx.Err() == nil }

func (c *captureTransport) Close() {}

// captured returns a snapshot of the delivered events.
func (c *captureTransport) captured() []*sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.events)
}

// last returns the most recent event, or nil.
func (c *captureTransport) last() *sentry.Event {
	events := c.captured()
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}
