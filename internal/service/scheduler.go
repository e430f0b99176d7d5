package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/greenlight-hq/greenlight/internal/config"
	"github.com/greenlight-hq/greenlight/internal/domain/escalation"
	"github.com/greenlight-hq/greenlight/internal/domain/workspace"
	"github.com/greenlight-hq/greenlight/internal/port/database"
	"github.com/greenlight-hq/greenlight/internal/port/messagequeue"
)

// SchedulerService drives periodic escalation scans. A single global ticker
// publishes one durable scan job per due workspace to JetStream; a bounded
// worker pool consumes the jobs. Jobs survive process restarts, and because
// scans are idempotent, at-least-once delivery is safe.
type SchedulerService struct {
	store      database.Store
	queue      messagequeue.Queue
	escalation *EscalationService
	cfg        config.Scheduler

	sem      *semaphore.Weighted
	stopTick chan struct{}
	tickOnce sync.Once
}

// NewSchedulerService creates a SchedulerService.
func NewSchedulerService(store database.Store, queue messagequeue.Queue, esc *EscalationService, cfg config.Scheduler) *SchedulerService {
	maxParallel := cfg.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &SchedulerService{
		store:      store,
		queue:      queue,
		escalation: esc,
		cfg:        cfg,
		sem:        semaphore.NewWeighted(int64(maxParallel)),
		stopTick:   make(chan struct{}),
	}
}

// Start subscribes the scan-job consumer and launches the ticker goroutine.
func (s *SchedulerService) Start(ctx context.Context) error {
	if _, err := s.queue.Subscribe(ctx, messagequeue.SubjectScanTick, s.handleTick); err != nil {
		return fmt.Errorf("subscribe scan ticks: %w", err)
	}

	go func() {
		ticker := time.NewTicker(s.cfg.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.enqueueDueWorkspaces(ctx)
			case <-s.stopTick:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	slog.Info("escalation scheduler started",
		"tick_interval", s.cfg.TickInterval,
		"max_parallel", s.cfg.MaxParallel,
	)
	return nil
}

// Stop stops the ticker. In-flight scan jobs finish on their own.
func (s *SchedulerService) Stop() {
	s.tickOnce.Do(func() {
		close(s.stopTick)
	})
}

// enqueueDueWorkspaces publishes one scan job for every escalation-enabled
// workspace whose per-workspace re-check interval has elapsed. All jobs in
// one pass share a tick ID.
func (s *SchedulerService) enqueueDueWorkspaces(ctx context.Context) {
	configs, err := s.store.ListEscalationEnabledWorkspaces(ctx)
	if err != nil {
		slog.Error("list escalation-enabled workspaces", "error", err)
		return
	}

	tickID := generateID()
	now := time.Now().UTC()
	enqueued := 0

	for i := range configs {
		if !scanDue(&configs[i], now) {
			continue
		}

		payload := messagequeue.ScanTickPayload{
			WorkspaceID: configs[i].WorkspaceID,
			TickID:      tickID,
			EnqueuedAt:  now,
		}
		data, err := json.Marshal(payload)
		if err != nil {
			slog.Error("marshal scan tick", "workspace_id", configs[i].WorkspaceID, "error", err)
			continue
		}
		if err := s.queue.Publish(ctx, messagequeue.SubjectScanTick, data); err != nil {
			slog.Error("publish scan tick", "workspace_id", configs[i].WorkspaceID, "error", err)
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		slog.Info("scan jobs enqueued", "tick_id", tickID, "count", enqueued)
	}
}

// handleTick consumes one durable scan job. The due-check runs again here:
// last_scanned_at may have advanced since the job was enqueued (a manual scan
// or a redelivered job), in which case the job is a no-op.
func (s *SchedulerService) handleTick(ctx context.Context, _ string, data []byte) error {
	var payload messagequeue.ScanTickPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("unmarshal scan tick: %w", err)
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	cfg, err := s.store.GetEscalationConfig(ctx, payload.WorkspaceID)
	if err != nil {
		return fmt.Errorf("get escalation config for tick: %w", err)
	}
	if !scanDue(cfg, time.Now().UTC()) {
		slog.Debug("scan tick skipped, workspace not due",
			"workspace_id", payload.WorkspaceID, "tick_id", payload.TickID)
		return nil
	}

	scanCtx, cancel := context.WithTimeout(ctx, s.cfg.WorkspaceTimeout)
	defer cancel()

	if _, err := s.escalation.ScanWorkspace(scanCtx, payload.WorkspaceID, payload.TickID); err != nil {
		return fmt.Errorf("scan workspace %s: %w", payload.WorkspaceID, err)
	}
	return nil
}

// TriggerScan runs a synchronous scan of every escalation-enabled workspace,
// regardless of re-check intervals, and returns the combined summary.
func (s *SchedulerService) TriggerScan(ctx context.Context) (escalation.Summary, error) {
	var total escalation.Summary

	configs, err := s.store.ListEscalationEnabledWorkspaces(ctx)
	if err != nil {
		return total, fmt.Errorf("list escalation-enabled workspaces: %w", err)
	}

	tickID := generateID()
	for i := range configs {
		summary, err := s.escalation.ScanWorkspace(ctx, configs[i].WorkspaceID, tickID)
		if err != nil {
			slog.Error("manual scan failed",
				"workspace_id", configs[i].WorkspaceID, "error", err)
			continue
		}
		total.Add(summary)
	}
	return total, nil
}

// scanDue reports whether a workspace's re-check interval has elapsed since
// its last recorded scan. A workspace never scanned is always due.
func scanDue(cfg *workspace.EscalationConfig, now time.Time) bool {
	if cfg.LastScannedAt == nil {
		return true
	}
	interval := cfg.CheckIntervalMinutes
	if interval < workspace.MinCheckIntervalMinutes {
		interval = workspace.DefaultCheckIntervalMinutes
	}
	return now.Sub(*cfg.LastScannedAt) >= time.Duration(interval)*time.Minute
}
