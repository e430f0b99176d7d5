// Package service contains application services.
package service

import (
	"context"
	"log/slog"

	"github.com/greenlight-hq/greenlight/internal/port/notifier"
	"github.com/greenlight-hq/greenlight/internal/resilience"
)

// NotificationService dispatches notifications to all registered notifiers.
// Delivery goes through a circuit breaker so a failing webhook cannot stall
// escalation processing.
type NotificationService struct {
	notifiers     []notifier.Notifier
	enabledEvents map[string]bool
	breaker       *resilience.Breaker
}

// NewNotificationService creates a NotificationService with the given notifiers
// and list of enabled event types (e.g., "approval.escalated"). If
// enabledEvents is nil or empty, all events are enabled.
func NewNotificationService(notifiers []notifier.Notifier, enabledEvents []string, breaker *resilience.Breaker) *NotificationService {
	enabled := make(map[string]bool, len(enabledEvents))
	for _, e := range enabledEvents {
		enabled[e] = true
	}
	return &NotificationService{
		notifiers:     notifiers,
		enabledEvents: enabled,
		breaker:       breaker,
	}
}

// Notify sends a notification to all registered notifiers.
// Errors are logged but do not interrupt delivery to other notifiers.
func (s *NotificationService) Notify(ctx context.Context, n notifier.Notification) {
	if len(s.enabledEvents) > 0 && !s.enabledEvents[n.Source] {
		return
	}

	for _, provider := range s.notifiers {
		err := s.breaker.Execute(func() error {
			return provider.Send(ctx, n)
		})
		if err != nil {
			slog.Warn("notification send failed",
				"provider", provider.Name(),
				"title", n.Title,
				"error", err,
			)
			continue
		}
		slog.Debug("notification sent", "provider", provider.Name(), "title", n.Title)
	}
}

// NotifierCount returns the number of registered notifiers.
func (s *NotificationService) NotifierCount() int {
	return len(s.notifiers)
}
