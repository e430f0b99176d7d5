package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/greenlight-hq/greenlight/internal/domain/escalation"
)

// insertAudit writes one audit entry inside an open transaction so the entry
// commits or rolls back together with the state transition it describes.
func insertAudit(ctx context.Context, tx pgx.Tx, e escalation.AuditEntry) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO escalation_audit
		 (id, approval_id, workspace_id, action, escalated_from, escalated_to, due_at, escalated_at, actor)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.ApprovalID, e.WorkspaceID, string(e.Action), e.EscalatedFrom,
		nullIfEmpty(e.EscalatedTo), e.DueAt, e.EscalatedAt, e.Actor)
	if err != nil {
		return fmt.Errorf("insert audit entry for approval %s: %w", e.ApprovalID, err)
	}
	return nil
}

// ListAuditByApproval returns the audit trail for one approval item, oldest first.
func (s *Store) ListAuditByApproval(ctx context.Context, approvalID string) ([]escalation.AuditEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, approval_id, workspace_id, action, escalated_from, escalated_to, due_at, escalated_at, actor, created_at
		 FROM escalation_audit WHERE approval_id = $1 ORDER BY created_at`,
		approvalID)
	if err != nil {
		return nil, fmt.Errorf("list audit for approval %s: %w", approvalID, err)
	}
	defer rows.Close()

	var result []escalation.AuditEntry
	for rows.Next() {
		var (
			e  escalation.AuditEntry
			to *string
		)
		if err := rows.Scan(&e.ID, &e.ApprovalID, &e.WorkspaceID, &e.Action,
			&e.EscalatedFrom, &to, &e.DueAt, &e.EscalatedAt, &e.Actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.EscalatedTo = orEmpty(to)
		result = append(result, e)
	}
	return result, rows.Err()
}
