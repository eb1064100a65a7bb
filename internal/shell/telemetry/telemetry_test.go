package telemetry

import (
	"testing"

	"github.com/posthog/posthog-go"

	"github.com/prism-io/prism-shell/internal/models"
)

type fakeClient struct {
	posthog.Client
	captured []posthog.Capture
	closed   int
}

func (c *fakeClient) Enqueue(msg posthog.Message) error {
	if capture, ok := msg.(posthog.Capture); ok {
		c.captured = append(c.captured, capture)
	}
	return nil
}

func (c *fakeClient) Close() error {
	c.closed++
	return nil
}

func TestNewDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.TelemetryConfig
		id   string
	}{
		{"opted out", models.TelemetryConfig{APIKey: "phc_x"}, "id"},
		{"no key", models.TelemetryConfig{Enabled: true}, "id"},
		{"no id", models.TelemetryConfig{Enabled: true, APIKey: "phc_x"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.cfg, tt.id)
			if err != nil {
				t.Fatal(err)
			}
			if tr.Enabled() {
				t.Error("Enabled() = true")
			}
			tr.Track(EventShellStarted, nil)
			tr.Close()
		})
	}
}

func TestTrackAndClose(t *testing.T) {
	fc := &fakeClient{}
	tr := NewWithClient(fc, "install-123")

	tr.Track(EventCoreStarted, map[string]any{"pid": 42})
	if len(fc.captured) != 1 {
		t.Fatalf("captured %d events, want 1", len(fc.captured))
	}
	got := fc.captured[0]
	if got.Event != EventCoreStarted || got.DistinctId != "install-123" {
		t.Errorf("capture = %+v", got)
	}
	if got.Properties["pid"] != 42 || got.Properties["version"] == nil {
		t.Errorf("properties = %v", got.Properties)
	}

	tr.Close()
	tr.Close()
	tr.Track(EventCoreStopped, nil)
	if fc.closed != 1 || len(fc.captured) != 1 {
		t.Errorf("closed = %d, captured = %d after Close", fc.closed, len(fc.captured))
	}
}

func TestNilTracker(t *testing.T) {
	var tr *Tracker
	tr.Track(EventCoreUnhealthy, nil)
	tr.Close()
	if tr.Enabled() {
		t.Error("nil tracker enabled")
	}
}
