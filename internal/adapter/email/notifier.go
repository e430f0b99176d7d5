// Package email provides an SMTP-based notifier for escalation alerts.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/greenlight-hq/greenlight/internal/port/notifier"
)

const providerName = "email"

// SMTPConfig holds the configuration for SMTP connections.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Password string
	To       string // default recipient when the notification has no addressable user
}

// Notifier sends email notifications via SMTP.
type Notifier struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg SMTPConfig) *Notifier {
	return &Notifier{cfg: cfg, send: smtp.SendMail}
}

func (n *Notifier) Name() string { return providerName }

func (n *Notifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{
		RichFormatting: false,
		DirectMessage:  true,
	}
}

// Send delivers the notification over SMTP. A notification whose UserID looks
// like an email address is sent directly to that user, otherwise to the
// configured default recipient.
func (n *Notifier) Send(_ context.Context, notification notifier.Notification) error {
	if n.cfg.Host == "" || n.cfg.From == "" {
		return notifier.ErrNotConfigured
	}

	to := n.cfg.To
	if strings.Contains(notification.UserID, "@") {
		to = notification.UserID
	}
	if to == "" {
		return notifier.ErrNotConfigured
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	subject := notification.Title
	if notification.Level != "" {
		subject = fmt.Sprintf("[%s] %s", strings.ToUpper(notification.Level), notification.Title)
	}

	var body strings.Builder
	body.WriteString(notification.Message)
	if len(notification.Fields) > 0 {
		body.WriteString("\r\n")
		for _, f := range notification.Fields {
			fmt.Fprintf(&body, "\r\n%s: %s", f.Label, f.Value)
		}
	}
	if notification.Source != "" {
		fmt.Fprintf(&body, "\r\n\r\nSource: %s", notification.Source)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		n.cfg.From, to, subject, body.String())

	var auth smtp.Auth
	if n.cfg.Password != "" {
		auth = smtp.PlainAuth("", n.cfg.From, n.cfg.Password, n.cfg.Host)
	}

	if err := n.send(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	return nil
}
