package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/greenlight-hq/greenlight/internal/domain/workspace"
)

// GetThresholds returns the configured thresholds for a workspace.
// Returns domain.ErrNotFound when the workspace has none configured.
func (s *Store) GetThresholds(ctx context.Context, workspaceID string) (*workspace.Thresholds, error) {
	var t workspace.Thresholds
	err := s.pool.QueryRow(ctx,
		`SELECT workspace_id, auto_approve, quick_review, updated_at
		 FROM workspace_thresholds WHERE workspace_id = $1`,
		workspaceID).Scan(&t.WorkspaceID, &t.AutoApprove, &t.QuickReview, &t.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get thresholds for workspace %s", workspaceID)
	}
	return &t, nil
}

// UpsertThresholds inserts or updates the thresholds for a workspace.
func (s *Store) UpsertThresholds(ctx context.Context, t workspace.Thresholds) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO workspace_thresholds (workspace_id, auto_approve, quick_review, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (workspace_id) DO UPDATE
		 SET auto_approve = EXCLUDED.auto_approve,
		     quick_review = EXCLUDED.quick_review,
		     updated_at = NOW()`,
		t.WorkspaceID, t.AutoApprove, t.QuickReview)
	if err != nil {
		return fmt.Errorf("upsert thresholds for workspace %s: %w", t.WorkspaceID, err)
	}
	return nil
}

// GetEscalationConfig returns the escalation settings for a workspace.
func (s *Store) GetEscalationConfig(ctx context.Context, workspaceID string) (*workspace.EscalationConfig, error) {
	var (
		c      workspace.EscalationConfig
		target *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, escalation_enabled, check_interval_minutes, escalation_target_user_id, last_scanned_at
		 FROM workspaces WHERE id = $1`,
		workspaceID).Scan(&c.WorkspaceID, &c.EnableEscalation, &c.CheckIntervalMinutes, &target, &c.LastScannedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get escalation config for workspace %s", workspaceID)
	}
	c.TargetUserID = orEmpty(target)
	return &c, nil
}

// UpdateEscalationConfig updates a workspace's escalation settings.
func (s *Store) UpdateEscalationConfig(ctx context.Context, c workspace.EscalationConfig) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE workspaces
		 SET escalation_enabled = $2,
		     check_interval_minutes = $3,
		     escalation_target_user_id = $4,
		     updated_at = NOW()
		 WHERE id = $1`,
		c.WorkspaceID, c.EnableEscalation, c.CheckIntervalMinutes, nullIfEmpty(c.TargetUserID))
	return execExpectOne(tag, err, "update escalation config for workspace %s", c.WorkspaceID)
}

// ListEscalationEnabledWorkspaces returns the escalation settings of every
// workspace with escalation turned on.
func (s *Store) ListEscalationEnabledWorkspaces(ctx context.Context) ([]workspace.EscalationConfig, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, escalation_enabled, check_interval_minutes, escalation_target_user_id, last_scanned_at
		 FROM workspaces WHERE escalation_enabled ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list escalation-enabled workspaces: %w", err)
	}
	defer rows.Close()

	var result []workspace.EscalationConfig
	for rows.Next() {
		var (
			c      workspace.EscalationConfig
			target *string
		)
		if err := rows.Scan(&c.WorkspaceID, &c.EnableEscalation, &c.CheckIntervalMinutes, &target, &c.LastScannedAt); err != nil {
			return nil, fmt.Errorf("scan workspace config: %w", err)
		}
		c.TargetUserID = orEmpty(target)
		result = append(result, c)
	}
	return result, rows.Err()
}

// RecordWorkspaceScan stamps the workspace's last successful scan time.
func (s *Store) RecordWorkspaceScan(ctx context.Context, workspaceID string, scannedAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE workspaces SET last_scanned_at = $2 WHERE id = $1`,
		workspaceID, scannedAt)
	return execExpectOne(tag, err, "record scan for workspace %s", workspaceID)
}

// ListMembersByRole returns workspace members holding the given role,
// ordered by invitation time for deterministic target resolution.
func (s *Store) ListMembersByRole(ctx context.Context, workspaceID string, role workspace.Role) ([]workspace.Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT workspace_id, user_id, role, invited_at
		 FROM workspace_members
		 WHERE workspace_id = $1 AND role = $2
		 ORDER BY invited_at`,
		workspaceID, string(role))
	if err != nil {
		return nil, fmt.Errorf("list %s members of workspace %s: %w", role, workspaceID, err)
	}
	defer rows.Close()

	var result []workspace.Member
	for rows.Next() {
		var m workspace.Member
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.InvitedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
