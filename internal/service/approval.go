package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/greenlight-hq/greenlight/internal/domain"
	"github.com/greenlight-hq/greenlight/internal/domain/approval"
	"github.com/greenlight-hq/greenlight/internal/domain/escalation"
	"github.com/greenlight-hq/greenlight/internal/port/database"
)

// ApprovalService manages approval items and their audit trail.
type ApprovalService struct {
	store database.Store
}

// NewApprovalService creates an ApprovalService.
func NewApprovalService(store database.Store) *ApprovalService {
	return &ApprovalService{store: store}
}

// Create records a new pending approval item.
func (s *ApprovalService) Create(ctx context.Context, workspaceID string, req approval.CreateRequest) (*approval.Item, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if req.AssignedToID == "" {
		return nil, fmt.Errorf("assigned_to_id is required: %w", domain.ErrValidation)
	}
	if req.DueAt.IsZero() {
		return nil, fmt.Errorf("due_at is required: %w", domain.ErrValidation)
	}

	item, err := s.store.CreateApproval(ctx, workspaceID, req)
	if err != nil {
		return nil, fmt.Errorf("create approval: %w", err)
	}
	return item, nil
}

// Get retrieves an approval item by ID.
func (s *ApprovalService) Get(ctx context.Context, id string) (*approval.Item, error) {
	return s.store.GetApproval(ctx, id)
}

// List returns all approval items in a workspace.
func (s *ApprovalService) List(ctx context.Context, workspaceID string) ([]approval.Item, error) {
	return s.store.ListApprovals(ctx, workspaceID)
}

// Audit returns the escalation audit trail for an approval item, verifying
// the item exists first so a missing ID maps to a not-found error rather than
// an empty list.
func (s *ApprovalService) Audit(ctx context.Context, approvalID string) ([]escalation.AuditEntry, error) {
	if _, err := s.store.GetApproval(ctx, approvalID); err != nil {
		return nil, err
	}
	return s.store.ListAuditByApproval(ctx, approvalID)
}
