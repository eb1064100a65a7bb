// Package telemetry sends opt-in usage events.
package telemetry

import (
	"log"
	"runtime"
	"sync"

	"github.com/posthog/posthog-go"

	"github.com/prism-io/prism-shell/internal/buildinfo"
	"github.com/prism-io/prism-shell/internal/models"
)

// Event names.
const (
	EventShellStarted  = "shell_started"
	EventCoreStarted   = "core_started"
	EventCoreStopped   = "core_stopped"
	EventCoreUnhealthy = "core_unhealthy"
)

// Tracker records usage events. The zero value and a nil *Tracker drop
// every event.
type Tracker struct {
	mu         sync.Mutex
	client     posthog.Client
	distinctID string
}

// New returns a Tracker for cfg. It is disabled unless telemetry is enabled
// and an API key is set.
func New(cfg models.TelemetryConfig, distinctID string) (*Tracker, error) {
	if !cfg.Enabled || cfg.APIKey == "" || distinctID == "" {
		return &Tracker{}, nil
	}
	pc := posthog.Config{}
	if cfg.Endpoint != "" {
		pc.Endpoint = cfg.Endpoint
	}
	client, err := posthog.NewWithConfig(cfg.APIKey, pc)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client, distinctID), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client posthog.Client, distinctID string) *Tracker {
	return &Tracker{client: client, distinctID: distinctID}
}

// Enabled reports whether events are sent.
func (t *Tracker) Enabled() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client != nil
}

// Track enqueues event with props. Failures are logged.
func (t *Tracker) Track(event string, props map[string]any) {
	if t == nil {
		return
	}
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil {
		return
	}

	p := posthog.NewProperties().
		Set("app", buildinfo.AppID).
		Set("version", buildinfo.Version).
		Set("os", runtime.GOOS).
		Set("arch", runtime.GOARCH)
	for k, v := range props {
		p.Set(k, v)
	}

	err := client.Enqueue(posthog.Capture{
		DistinctId: t.distinctID,
		Event:      event,
		Properties: p,
	})
	if err != nil {
		log.Printf("[telemetry] Failed to enqueue %s: %v", event, err)
	}
}

// Close flushes pending events. Later calls to Track are dropped.
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	t.mu.Lock()
	client := t.client
	t.client = nil
	t.mu.Unlock()
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Printf("[telemetry] Failed to flush: %v", err)
	}
}
