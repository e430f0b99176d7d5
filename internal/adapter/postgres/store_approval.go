package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/greenlight-hq/greenlight/internal/domain/approval"
	"github.com/greenlight-hq/greenlight/internal/domain/escalation"
)

const approvalColumns = `id, workspace_id, title, status, assigned_to_id, due_at,
	escalated_at, escalated_to_id, confidence_score, recommendation,
	target_misses, escalation_failed_at, created_at, updated_at`

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

func scanApproval(row scannable) (*approval.Item, error) {
	var (
		item           approval.Item
		escalatedTo    *string
		recommendation *string
	)
	err := row.Scan(&item.ID, &item.WorkspaceID, &item.Title, &item.Status,
		&item.AssignedToID, &item.DueAt, &item.EscalatedAt, &escalatedTo,
		&item.ConfidenceScore, &recommendation, &item.TargetMisses,
		&item.EscalationFailedAt, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.EscalatedToID = orEmpty(escalatedTo)
	item.Recommendation = orEmpty(recommendation)
	return &item, nil
}

// CreateApproval records a new pending approval item in the workspace.
func (s *Store) CreateApproval(ctx context.Context, workspaceID string, req approval.CreateRequest) (*approval.Item, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO approvals (workspace_id, title, assigned_to_id, due_at, confidence_score, recommendation)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+approvalColumns,
		workspaceID, req.Title, req.AssignedToID, req.DueAt, req.ConfidenceScore, nullIfEmpty(req.Recommendation))

	item, err := scanApproval(row)
	if err != nil {
		return nil, fmt.Errorf("create approval in workspace %s: %w", workspaceID, err)
	}
	return item, nil
}

// GetApproval returns a single approval item by ID.
func (s *Store) GetApproval(ctx context.Context, id string) (*approval.Item, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+approvalColumns+` FROM approvals WHERE id = $1`, id)

	item, err := scanApproval(row)
	if err != nil {
		return nil, notFoundWrap(err, "get approval %s", id)
	}
	return item, nil
}

// ListApprovals returns all approval items in a workspace, newest first.
func (s *Store) ListApprovals(ctx context.Context, workspaceID string) ([]approval.Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+approvalColumns+` FROM approvals
		 WHERE workspace_id = $1 ORDER BY created_at DESC`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list approvals in workspace %s: %w", workspaceID, err)
	}
	defer rows.Close()

	var result []approval.Item
	for rows.Next() {
		item, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		result = append(result, *item)
	}
	return result, rows.Err()
}

// FindOverdueApprovals returns pending, unescalated items past their due time.
// Items that reached the terminal escalation-failed state are excluded.
func (s *Store) FindOverdueApprovals(ctx context.Context, workspaceID string, now time.Time, limit int) ([]approval.Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+approvalColumns+` FROM approvals
		 WHERE workspace_id = $1
		   AND status = 'pending'
		   AND due_at < $2
		   AND escalated_at IS NULL
		   AND escalation_failed_at IS NULL
		 ORDER BY due_at
		 LIMIT $3`,
		workspaceID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("find overdue approvals in workspace %s: %w", workspaceID, err)
	}
	defer rows.Close()

	var result []approval.Item
	for rows.Next() {
		item, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("scan overdue approval: %w", err)
		}
		result = append(result, *item)
	}
	return result, rows.Err()
}

// EscalateApproval performs the compare-and-swap escalation update and writes
// the audit entry in the same transaction. The guard `escalated_at IS NULL`
// makes concurrent executions race safely: exactly one sees an affected row.
func (s *Store) EscalateApproval(ctx context.Context, approvalID, targetUserID string, escalatedAt time.Time, audit escalation.AuditEntry) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin escalate tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	tag, err := tx.Exec(ctx,
		`UPDATE approvals
		 SET escalated_at = $2, escalated_to_id = $3, updated_at = NOW()
		 WHERE id = $1 AND escalated_at IS NULL`,
		approvalID, escalatedAt, targetUserID)
	if err != nil {
		return false, fmt.Errorf("escalate approval %s: %w", approvalID, err)
	}
	if tag.RowsAffected() == 0 {
		// Already escalated by a concurrent execution.
		return false, nil
	}

	if err := insertAudit(ctx, tx, audit); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit escalate tx: %w", err)
	}
	return true, nil
}

// RecordTargetMiss increments the consecutive target-resolution failure count
// for an un-escalated item. Once the count reaches maxMisses the item is
// marked terminally failed and the failure audit entry is written in the same
// transaction.
func (s *Store) RecordTargetMiss(ctx context.Context, approvalID string, maxMisses int, audit escalation.AuditEntry) (int, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("begin target-miss tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var misses int
	err = tx.QueryRow(ctx,
		`UPDATE approvals
		 SET target_misses = target_misses + 1, updated_at = NOW()
		 WHERE id = $1 AND escalated_at IS NULL AND escalation_failed_at IS NULL
		 RETURNING target_misses`,
		approvalID).Scan(&misses)
	if err != nil {
		return 0, false, notFoundWrap(err, "record target miss for approval %s", approvalID)
	}

	failed := misses >= maxMisses
	if failed {
		if _, err := tx.Exec(ctx,
			`UPDATE approvals SET escalation_failed_at = NOW() WHERE id = $1`,
			approvalID); err != nil {
			return 0, false, fmt.Errorf("mark approval %s escalation-failed: %w", approvalID, err)
		}
		if err := insertAudit(ctx, tx, audit); err != nil {
			return 0, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("commit target-miss tx: %w", err)
	}
	return misses, failed, nil
}
