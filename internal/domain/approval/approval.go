// Package approval defines the ApprovalItem domain entity.
package approval

import "time"

// Status represents the current state of an approval item.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Item is a pending action awaiting a decision. The escalation fields are
// written at most once, by the escalation executor, and never cleared.
// AssignedToID is preserved across escalation so the original assignee
// remains visible in the audit trail.
type Item struct {
	ID                 string     `json:"id"`
	WorkspaceID        string     `json:"workspace_id"`
	Title              string     `json:"title"`
	Status             Status     `json:"status"`
	AssignedToID       string     `json:"assigned_to_id"`
	DueAt              time.Time  `json:"due_at"`
	EscalatedAt        *time.Time `json:"escalated_at,omitempty"`
	EscalatedToID      string     `json:"escalated_to_id,omitempty"`
	ConfidenceScore    *float64   `json:"confidence_score,omitempty"`
	Recommendation     string     `json:"recommendation,omitempty"`
	TargetMisses       int        `json:"target_misses"`
	EscalationFailedAt *time.Time `json:"escalation_failed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateRequest holds the fields needed to record a new approval item.
type CreateRequest struct {
	Title           string    `json:"title"`
	AssignedToID    string    `json:"assigned_to_id"`
	DueAt           time.Time `json:"due_at"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
	Recommendation  string    `json:"recommendation,omitempty"`
}
