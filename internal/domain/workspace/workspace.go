// Package workspace defines workspace-scoped escalation settings, thresholds,
// and membership as consumed by the engine.
package workspace

import "time"

// Default confidence thresholds applied when a workspace has none configured
// or the settings store is unavailable.
const (
	DefaultAutoApprove = 85
	DefaultQuickReview = 60
)

// MinCheckIntervalMinutes is the floor for per-workspace re-check intervals.
const MinCheckIntervalMinutes = 5

// DefaultCheckIntervalMinutes is used when a workspace does not set its own.
const DefaultCheckIntervalMinutes = 15

// Role is a workspace membership role.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Thresholds are the per-workspace routing boundaries. Invariant:
// AutoApprove > QuickReview.
type Thresholds struct {
	WorkspaceID string    `json:"workspace_id"`
	AutoApprove int       `json:"auto_approve"`
	QuickReview int       `json:"quick_review"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultThresholds returns the fallback thresholds for a workspace.
func DefaultThresholds(workspaceID string) Thresholds {
	return Thresholds{
		WorkspaceID: workspaceID,
		AutoApprove: DefaultAutoApprove,
		QuickReview: DefaultQuickReview,
	}
}

// EscalationConfig controls whether and how often a workspace is scanned for
// overdue approvals, and who receives escalated items when set explicitly.
type EscalationConfig struct {
	WorkspaceID          string     `json:"workspace_id"`
	EnableEscalation     bool       `json:"enable_escalation"`
	CheckIntervalMinutes int        `json:"check_interval_minutes"`
	TargetUserID         string     `json:"escalation_target_user_id,omitempty"`
	LastScannedAt        *time.Time `json:"last_scanned_at,omitempty"`
}

// Member is a workspace membership row, ordered by InvitedAt for
// deterministic target resolution.
type Member struct {
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	Role        Role      `json:"role"`
	InvitedAt   time.Time `json:"invited_at"`
}
