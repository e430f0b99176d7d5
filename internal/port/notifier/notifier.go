// Package notifier defines the notification port (interface) and capabilities.
package notifier

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a notifier is not properly configured.
var ErrNotConfigured = errors.New("notifier: not configured")

// Field is a labeled detail attached to a notification. Providers with
// structured layouts (Slack fields, email body lines) render each one
// separately instead of flattening it into the message text.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Notification is the payload sent through a Notifier.
type Notification struct {
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Level   string  `json:"level"`  // "info", "success", "warning", "error"
	Source  string  `json:"source"` // e.g. "approval.escalated"
	UserID  string  `json:"user_id,omitempty"`
	Fields  []Field `json:"fields,omitempty"`
}

// Capabilities declares which features a notifier supports.
type Capabilities struct {
	RichFormatting bool `json:"rich_formatting"`
	DirectMessage  bool `json:"direct_message"`
}

// Notifier is the port interface for sending notifications.
type Notifier interface {
	// Name returns the unique identifier for this notifier (e.g. "slack", "email").
	Name() string

	// Capabilities returns what this notifier supports.
	Capabilities() Capabilities

	// Send delivers a notification.
	Send(ctx context.Context, notification Notification) error
}
