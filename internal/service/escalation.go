package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenlight-hq/greenlight/internal/adapter/otel"
	"github.com/greenlight-hq/greenlight/internal/adapter/ws"
	"github.com/greenlight-hq/greenlight/internal/domain/approval"
	"github.com/greenlight-hq/greenlight/internal/domain/escalation"
	"github.com/greenlight-hq/greenlight/internal/domain/workspace"
	"github.com/greenlight-hq/greenlight/internal/port/broadcast"
	"github.com/greenlight-hq/greenlight/internal/port/database"
	"github.com/greenlight-hq/greenlight/internal/port/messagequeue"
	"github.com/greenlight-hq/greenlight/internal/port/notifier"
)

// actorSystem marks audit entries written by the engine rather than a person.
const actorSystem = "system"

// EscalationService scans workspaces for overdue approvals and reassigns
// them. The per-item state transition is a conditional database update, so
// concurrent scans of the same workspace escalate each item at most once.
type EscalationService struct {
	store            database.Store
	queue            messagequeue.Queue
	hub              broadcast.Broadcaster
	notify           *NotificationService
	metrics          *otel.Metrics
	scanBatchSize    int
	maxTargetRetries int
}

// NewEscalationService creates an EscalationService.
func NewEscalationService(
	store database.Store,
	queue messagequeue.Queue,
	hub broadcast.Broadcaster,
	notify *NotificationService,
	metrics *otel.Metrics,
	scanBatchSize int,
	maxTargetRetries int,
) *EscalationService {
	return &EscalationService{
		store:            store,
		queue:            queue,
		hub:              hub,
		notify:           notify,
		metrics:          metrics,
		scanBatchSize:    scanBatchSize,
		maxTargetRetries: maxTargetRetries,
	}
}

// GetEscalationConfig returns the escalation settings for a workspace.
func (s *EscalationService) GetEscalationConfig(ctx context.Context, workspaceID string) (*workspace.EscalationConfig, error) {
	return s.store.GetEscalationConfig(ctx, workspaceID)
}

// UpdateEscalationConfig validates and stores escalation settings.
func (s *EscalationService) UpdateEscalationConfig(ctx context.Context, cfg workspace.EscalationConfig) error {
	if err := workspace.ValidateEscalationConfig(cfg); err != nil {
		return err
	}
	if err := s.store.UpdateEscalationConfig(ctx, cfg); err != nil {
		return fmt.Errorf("update escalation config: %w", err)
	}
	return nil
}

// ScanWorkspace processes every overdue pending approval in one workspace.
// It is idempotent: re-running it for the same tick finds nothing left to do
// because escalated items no longer match the overdue predicate.
func (s *EscalationService) ScanWorkspace(ctx context.Context, workspaceID, tickID string) (escalation.Summary, error) {
	ctx, span := otel.StartScanSpan(ctx, workspaceID, tickID)
	defer span.End()

	start := time.Now()
	var summary escalation.Summary

	cfg, err := s.store.GetEscalationConfig(ctx, workspaceID)
	if err != nil {
		return summary, fmt.Errorf("get escalation config: %w", err)
	}
	if !cfg.EnableEscalation {
		return summary, nil
	}

	now := time.Now().UTC()
	overdue, err := s.store.FindOverdueApprovals(ctx, workspaceID, now, s.scanBatchSize)
	if err != nil {
		return summary, fmt.Errorf("find overdue approvals: %w", err)
	}

	for i := range overdue {
		summary.Scanned++
		out, err := s.escalateOne(ctx, cfg, &overdue[i])
		if err != nil {
			slog.Error("escalation attempt failed",
				"approval_id", overdue[i].ID,
				"workspace_id", workspaceID,
				"error", err,
			)
			summary.Skipped++
			continue
		}
		if out.Escalated {
			summary.Escalated++
		} else {
			summary.Skipped++
			if s.metrics != nil {
				s.metrics.EscalationsSkipped.Add(ctx, 1)
			}
		}
	}

	if err := s.store.RecordWorkspaceScan(ctx, workspaceID, now); err != nil {
		slog.Warn("record workspace scan failed", "workspace_id", workspaceID, "error", err)
	}

	if s.metrics != nil {
		s.metrics.ScansCompleted.Add(ctx, 1)
		s.metrics.ScanDuration.Record(ctx, time.Since(start).Seconds())
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventScanCompleted, map[string]any{
			"workspace_id": workspaceID,
			"tick_id":      tickID,
			"scanned":      summary.Scanned,
			"escalated":    summary.Escalated,
			"skipped":      summary.Skipped,
		})
	}

	slog.Info("workspace scan completed",
		"workspace_id", workspaceID,
		"tick_id", tickID,
		"scanned", summary.Scanned,
		"escalated", summary.Escalated,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// escalateOne attempts the state transition for a single approval. The
// outcome reports false without error when the item lost the conditional
// update to a concurrent scan or when target resolution failed short of
// the retry cap.
func (s *EscalationService) escalateOne(ctx context.Context, cfg *workspace.EscalationConfig, item *approval.Item) (escalation.Outcome, error) {
	var out escalation.Outcome

	target, err := resolveTarget(ctx, s.store, cfg)
	if errors.Is(err, ErrNoEscalationTarget) {
		return out, s.recordTargetMiss(ctx, item)
	}
	if err != nil {
		return out, err
	}

	ctx, span := otel.StartEscalationSpan(ctx, item.ID, target)
	defer span.End()

	escalatedAt := time.Now().UTC()
	audit := escalation.AuditEntry{
		ID:            generateID(),
		ApprovalID:    item.ID,
		WorkspaceID:   item.WorkspaceID,
		Action:        escalation.ActionEscalated,
		EscalatedFrom: item.AssignedToID,
		EscalatedTo:   target,
		DueAt:         item.DueAt,
		EscalatedAt:   &escalatedAt,
		Actor:         actorSystem,
		CreatedAt:     escalatedAt,
	}

	won, err := s.store.EscalateApproval(ctx, item.ID, target, escalatedAt, audit)
	if err != nil {
		return out, fmt.Errorf("escalate approval: %w", err)
	}
	if !won {
		slog.Debug("approval already escalated by concurrent scan", "approval_id", item.ID)
		return out, nil
	}

	s.publishEscalated(ctx, item, target, escalatedAt)

	if s.metrics != nil {
		s.metrics.ApprovalsEscalated.Add(ctx, 1)
	}
	out.Escalated = true
	return out, nil
}

// publishEscalated emits the escalation side effects after the transition has
// committed. Event delivery failures are logged, never propagated, so a NATS
// or notifier outage cannot roll back an escalation.
func (s *EscalationService) publishEscalated(ctx context.Context, item *approval.Item, target string, escalatedAt time.Time) {
	event := escalation.Event{
		ApprovalID:    item.ID,
		WorkspaceID:   item.WorkspaceID,
		EscalatedFrom: item.AssignedToID,
		EscalatedTo:   target,
		DueAt:         item.DueAt,
		EscalatedAt:   escalatedAt,
	}

	if s.queue != nil {
		data, err := json.Marshal(event)
		if err == nil {
			err = s.queue.Publish(ctx, messagequeue.SubjectEscalationEvent, data)
		}
		if err != nil {
			slog.Error("publish escalation event failed", "approval_id", item.ID, "error", err)
		}
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventApprovalEscalated, event)
	}

	if s.notify != nil {
		s.notify.Notify(ctx, notifier.Notification{
			Title:   "Approval escalated",
			Message: fmt.Sprintf("%q was overdue and has been reassigned.", item.Title),
			Level:   "warning",
			Source:  ws.EventApprovalEscalated,
			UserID:  target,
			Fields: []notifier.Field{
				{Label: "Workspace", Value: item.WorkspaceID},
				{Label: "Due", Value: item.DueAt.Format(time.RFC3339)},
				{Label: "Reassigned from", Value: item.AssignedToID},
				{Label: "Reassigned to", Value: target},
			},
		})
	}
}

// recordTargetMiss books one failed target resolution. Once the miss count
// reaches the cap, the item enters the terminal escalation_failed state and
// drops out of future scans.
func (s *EscalationService) recordTargetMiss(ctx context.Context, item *approval.Item) error {
	now := time.Now().UTC()
	audit := escalation.AuditEntry{
		ID:            generateID(),
		ApprovalID:    item.ID,
		WorkspaceID:   item.WorkspaceID,
		Action:        escalation.ActionFailed,
		EscalatedFrom: item.AssignedToID,
		DueAt:         item.DueAt,
		Actor:         actorSystem,
		CreatedAt:     now,
	}

	misses, failed, err := s.store.RecordTargetMiss(ctx, item.ID, s.maxTargetRetries, audit)
	if err != nil {
		return fmt.Errorf("record target miss: %w", err)
	}

	if !failed {
		slog.Warn("no escalation target resolved",
			"approval_id", item.ID,
			"workspace_id", item.WorkspaceID,
			"misses", misses,
		)
		return nil
	}

	slog.Error("escalation abandoned after retry cap",
		"approval_id", item.ID,
		"workspace_id", item.WorkspaceID,
		"misses", misses,
	)

	if s.metrics != nil {
		s.metrics.EscalationsFailed.Add(ctx, 1)
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventEscalationFailed, map[string]any{
			"approval_id":  item.ID,
			"workspace_id": item.WorkspaceID,
			"misses":       misses,
		})
	}
	if s.notify != nil {
		s.notify.Notify(ctx, notifier.Notification{
			Title: "Escalation failed",
			Message: fmt.Sprintf("No escalation target could be resolved for %q after %d attempts. The item needs manual attention.",
				item.Title, misses),
			Level:  "error",
			Source: ws.EventEscalationFailed,
			Fields: []notifier.Field{
				{Label: "Workspace", Value: item.WorkspaceID},
				{Label: "Due", Value: item.DueAt.Format(time.RFC3339)},
				{Label: "Assigned to", Value: item.AssignedToID},
			},
		})
	}
	return nil
}
