package notify

import (
	"errors"
	"testing"
)

func TestDesktopNotify(t *testing.T) {
	var gotTitle, gotBody string
	d := NewDesktop(func(title, body string) error {
		gotTitle, gotBody = title, body
		return nil
	})

	if err := d.Notify("  Core down ", "unreachable"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if gotTitle != "Core down" || gotBody != "unreachable" {
		t.Errorf("sent (%q, %q)", gotTitle, gotBody)
	}
}

func TestDesktopNotifyErrors(t *testing.T) {
	osErr := errors.New("dbus unavailable")

	tests := []struct {
		name    string
		title   string
		sendErr error
		wantErr error
	}{
		{"empty title", "   ", nil, ErrEmptyTitle},
		{"rejected", "Hello", osErr, osErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sent := false
			d := NewDesktop(func(string, string) error {
				sent = true
				return tt.sendErr
			})

			err := d.Notify(tt.title, "body")
			var ne *NotificationError
			if !errors.As(err, &ne) {
				t.Fatalf("Notify() error = %v, want *NotificationError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Notify() error = %v, want wrapping %v", err, tt.wantErr)
			}
			if tt.wantErr == ErrEmptyTitle && sent {
				t.Error("empty title reached the OS")
			}
		})
	}
}
