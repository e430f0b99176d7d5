// Package escalation defines the events and audit records produced when an
// overdue approval is reassigned.
package escalation

import "time"

// Outcome reports whether one escalation attempt actually transitioned the item.
type Outcome struct {
	Escalated bool `json:"escalated"`
}

// Event is emitted exactly once per successful escalation, after the
// conditional update has committed.
type Event struct {
	ApprovalID    string    `json:"approval_id"`
	WorkspaceID   string    `json:"workspace_id"`
	EscalatedFrom string    `json:"escalated_from"`
	EscalatedTo   string    `json:"escalated_to"`
	DueAt         time.Time `json:"due_at"`
	EscalatedAt   time.Time `json:"escalated_at"`
}

// AuditAction distinguishes the kinds of audit entries the engine writes.
type AuditAction string

const (
	// ActionEscalated records a successful reassignment.
	ActionEscalated AuditAction = "escalated"
	// ActionFailed records the terminal state reached after the target
	// resolution retry cap is exhausted.
	ActionFailed AuditAction = "escalation_failed"
)

// AuditEntry is the immutable audit record written together with the state
// transition. For ActionEscalated entries it carries the full event payload.
type AuditEntry struct {
	ID            string      `json:"id"`
	ApprovalID    string      `json:"approval_id"`
	WorkspaceID   string      `json:"workspace_id"`
	Action        AuditAction `json:"action"`
	EscalatedFrom string      `json:"escalated_from"`
	EscalatedTo   string      `json:"escalated_to,omitempty"`
	DueAt         time.Time   `json:"due_at"`
	EscalatedAt   *time.Time  `json:"escalated_at,omitempty"`
	Actor         string      `json:"actor"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Summary is the result of one manual or scheduled scan pass.
type Summary struct {
	Scanned   int `json:"scanned"`
	Escalated int `json:"escalated"`
	Skipped   int `json:"skipped"`
}

// Add accumulates another summary into s.
func (s *Summary) Add(other Summary) {
	s.Scanned += other.Scanned
	s.Escalated += other.Escalated
	s.Skipped += other.Skipped
}
