// Package notify delivers user-facing notifications for queue events.
//
// Two sinks are provided: Local sends OS desktop notifications via beeep,
// Push delivers to registered mobile devices over the push API.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gen2brain/beeep"
)

// Notification is one user-facing event.
type Notification struct {
	Title   string
	Message string
	Sound   bool
	Link    string
}

// Notifier delivers a notification to one sink.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Local delivers OS desktop notifications. Links cannot be embedded in a
// desktop notification, so they are printed to Out instead.
type Local struct {
	Out io.Writer

	send func(title, message string, sound bool) error
}

// NewLocal creates a desktop notifier writing link fallbacks to stdout.
func NewLocal() *Local {
	return &Local{
		Out:  os.Stdout,
		send: sendDesktop,
	}
}

// Notify sends a desktop notification.
func (l *Local) Notify(_ context.Context, n Notification) error {
	if err := l.send(n.Title, n.Message, n.Sound); err != nil {
		return fmt.Errorf("failed to send desktop notification: %w", err)
	}

	if n.Link != "" && l.Out != nil {
		fmt.Fprintf(l.Out, "%s: %s\n", n.Title, n.Link)
	}

	return nil
}

func sendDesktop(title, message string, sound bool) error {
	if sound {
		return beeep.Alert(title, message, "")
	}

	return beeep.Notify(title, message, "")
}
