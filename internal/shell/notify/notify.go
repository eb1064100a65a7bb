// Package notify raises desktop notifications.
package notify

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gen2brain/beeep"
)

// ErrEmptyTitle is returned when a notification has no title.
var ErrEmptyTitle = errors.New("notification title is empty")

// NotificationError reports that the OS notification subsystem rejected a
// request. It is never fatal.
type NotificationError struct {
	Title string
	Err   error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("failed to show notification %q: %v", e.Title, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// Notifier shows a notification with a title and body.
type Notifier interface {
	Notify(title, body string) error
}

// SendFunc delivers a notification to the OS.
type SendFunc func(title, body string) error

// Desktop is a Notifier backed by the host notification center.
type Desktop struct {
	send SendFunc
}

// NewDesktop returns a Desktop notifier. send may be nil to use beeep.
func NewDesktop(send SendFunc) *Desktop {
	if send == nil {
		send = func(title, body string) error {
			return beeep.Notify(title, body, "")
		}
	}
	return &Desktop{send: send}
}

// Notify shows title and body. Failures are returned as *NotificationError.
func (d *Desktop) Notify(title, body string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return &NotificationError{Err: ErrEmptyTitle}
	}
	if err := d.send(title, body); err != nil {
		log.Printf("[notify] %q rejected: %v", title, err)
		return &NotificationError{Title: title, Err: err}
	}
	return nil
}

// Discard drops every notification.
type Discard struct{}

// Notify does nothing.
func (Discard) Notify(string, string) error { return nil }
