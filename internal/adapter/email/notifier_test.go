package email

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/greenlight-hq/greenlight/internal/port/notifier"
)

var _ notifier.Notifier = (*Notifier)(nil)

func TestSendNotConfigured(t *testing.T) {
	n := NewNotifier(SMTPConfig{})
	err := n.Send(context.Background(), notifier.Notification{Title: "test"})
	if err != notifier.ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSendDefaultRecipient(t *testing.T) {
	var gotTo []string
	var gotMsg string
	n := NewNotifier(SMTPConfig{Host: "mail.local", Port: 25, From: "greenlight@mail.local", To: "ops@mail.local"})
	n.send = func(_ string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	err := n.Send(context.Background(), notifier.Notification{
		Title:   "Approval Escalated",
		Message: "Reassigned to owner",
		Level:   "warning",
		Source:  "approval.escalated",
		Fields: []notifier.Field{
			{Label: "Workspace", Value: "ws-1"},
			{Label: "Due", Value: "2026-08-01T00:00:00Z"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotTo) != 1 || gotTo[0] != "ops@mail.local" {
		t.Fatalf("expected default recipient, got %v", gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: [WARNING] Approval Escalated") {
		t.Fatalf("subject not built from level and title: %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "Workspace: ws-1") || !strings.Contains(gotMsg, "Due: 2026-08-01T00:00:00Z") {
		t.Fatalf("structured fields not rendered as body lines: %q", gotMsg)
	}
}

func TestSendDirectToUser(t *testing.T) {
	var gotTo []string
	n := NewNotifier(SMTPConfig{Host: "mail.local", Port: 25, From: "greenlight@mail.local", To: "ops@mail.local"})
	n.send = func(_ string, _ smtp.Auth, _ string, to []string, _ []byte) error {
		gotTo = to
		return nil
	}

	err := n.Send(context.Background(), notifier.Notification{
		Title:   "Approval Assigned",
		Message: "An overdue approval was reassigned to you",
		UserID:  "owner@corp.example",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotTo) != 1 || gotTo[0] != "owner@corp.example" {
		t.Fatalf("expected direct recipient, got %v", gotTo)
	}
}
