// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/greenlight-hq/greenlight/internal/domain/approval"
	"github.com/greenlight-hq/greenlight/internal/domain/escalation"
	"github.com/greenlight-hq/greenlight/internal/domain/workspace"
)

// Store is the port interface for database operations.
type Store interface {
	// Workspace settings
	GetThresholds(ctx context.Context, workspaceID string) (*workspace.Thresholds, error)
	UpsertThresholds(ctx context.Context, t workspace.Thresholds) error
	GetEscalationConfig(ctx context.Context, workspaceID string) (*workspace.EscalationConfig, error)
	UpdateEscalationConfig(ctx context.Context, c workspace.EscalationConfig) error
	ListEscalationEnabledWorkspaces(ctx context.Context) ([]workspace.EscalationConfig, error)
	RecordWorkspaceScan(ctx context.Context, workspaceID string, scannedAt time.Time) error

	// Membership (ordered by invited_at)
	ListMembersByRole(ctx context.Context, workspaceID string, role workspace.Role) ([]workspace.Member, error)

	// Approvals
	CreateApproval(ctx context.Context, workspaceID string, req approval.CreateRequest) (*approval.Item, error)
	GetApproval(ctx context.Context, id string) (*approval.Item, error)
	ListApprovals(ctx context.Context, workspaceID string) ([]approval.Item, error)
	FindOverdueApprovals(ctx context.Context, workspaceID string, now time.Time, limit int) ([]approval.Item, error)

	// EscalateApproval performs the conditional escalation update and writes
	// the audit entry in the same transaction. It reports false without error
	// when the item was already escalated by a concurrent execution.
	EscalateApproval(ctx context.Context, approvalID, targetUserID string, escalatedAt time.Time, audit escalation.AuditEntry) (bool, error)

	// RecordTargetMiss increments the consecutive target-resolution failure
	// count and, once maxMisses is reached, marks the item terminally failed
	// and writes the failure audit entry in the same transaction. It returns
	// the new miss count and whether the terminal state was entered.
	RecordTargetMiss(ctx context.Context, approvalID string, maxMisses int, audit escalation.AuditEntry) (int, bool, error)

	// Audit
	ListAuditByApproval(ctx context.Context, approvalID string) ([]escalation.AuditEntry, error)
}
