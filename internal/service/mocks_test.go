package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/greenlight-hq/greenlight/internal/domain"
	"github.com/greenlight-hq/greenlight/internal/domain/approval"
	"github.com/greenlight-hq/greenlight/internal/domain/escalation"
	"github.com/greenlight-hq/greenlight/internal/domain/workspace"
	"github.com/greenlight-hq/greenlight/internal/port/broadcast"
	"github.com/greenlight-hq/greenlight/internal/port/cache"
	"github.com/greenlight-hq/greenlight/internal/port/database"
	"github.com/greenlight-hq/greenlight/internal/port/messagequeue"
)

// Ensure mock types implement their interfaces at compile time.
var (
	_ database.Store        = (*mockStore)(nil)
	_ cache.Cache           = (*mockCache)(nil)
	_ messagequeue.Queue    = (*mockQueue)(nil)
	_ broadcast.Broadcaster = (*mockBroadcaster)(nil)
)

type mockStore struct {
	mu         sync.Mutex
	thresholds map[string]workspace.Thresholds
	escConfigs map[string]workspace.EscalationConfig
	members    []workspace.Member
	approvals  map[string]*approval.Item
	audits     []escalation.AuditEntry

	thresholdErr error
	escalateLost bool // simulate losing the conditional update
}

func newMockStore() *mockStore {
	return &mockStore{
		thresholds: make(map[string]workspace.Thresholds),
		escConfigs: make(map[string]workspace.EscalationConfig),
		approvals:  make(map[string]*approval.Item),
	}
}

func (m *mockStore) GetThresholds(_ context.Context, workspaceID string) (*workspace.Thresholds, error) {
	if m.thresholdErr != nil {
		return nil, m.thresholdErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.thresholds[workspaceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *mockStore) UpsertThresholds(_ context.Context, t workspace.Thresholds) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thresholds[t.WorkspaceID] = t
	return nil
}

func (m *mockStore) GetEscalationConfig(_ context.Context, workspaceID string) (*workspace.EscalationConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.escConfigs[workspaceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockStore) UpdateEscalationConfig(_ context.Context, c workspace.EscalationConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.escConfigs[c.WorkspaceID] = c
	return nil
}

func (m *mockStore) ListEscalationEnabledWorkspaces(_ context.Context) ([]workspace.EscalationConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []workspace.EscalationConfig
	for _, c := range m.escConfigs {
		if c.EnableEscalation {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkspaceID < out[j].WorkspaceID })
	return out, nil
}

func (m *mockStore) RecordWorkspaceScan(_ context.Context, workspaceID string, scannedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.escConfigs[workspaceID]
	c.LastScannedAt = &scannedAt
	m.escConfigs[workspaceID] = c
	return nil
}

func (m *mockStore) ListMembersByRole(_ context.Context, workspaceID string, role workspace.Role) ([]workspace.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []workspace.Member
	for _, mem := range m.members {
		if mem.WorkspaceID == workspaceID && mem.Role == role {
			out = append(out, mem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvitedAt.Before(out[j].InvitedAt) })
	return out, nil
}

func (m *mockStore) CreateApproval(_ context.Context, workspaceID string, req approval.CreateRequest) (*approval.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	item := &approval.Item{
		ID:              generateID(),
		WorkspaceID:     workspaceID,
		Title:           req.Title,
		Status:          approval.StatusPending,
		AssignedToID:    req.AssignedToID,
		DueAt:           req.DueAt,
		ConfidenceScore: req.ConfidenceScore,
		Recommendation:  req.Recommendation,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.approvals[item.ID] = item
	return item, nil
}

func (m *mockStore) GetApproval(_ context.Context, id string) (*approval.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.approvals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *mockStore) ListApprovals(_ context.Context, workspaceID string) ([]approval.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []approval.Item
	for _, item := range m.approvals {
		if item.WorkspaceID == workspaceID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockStore) FindOverdueApprovals(_ context.Context, workspaceID string, now time.Time, limit int) ([]approval.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []approval.Item
	for _, item := range m.approvals {
		if item.WorkspaceID != workspaceID || item.Status != approval.StatusPending {
			continue
		}
		if !item.DueAt.Before(now) || item.EscalatedAt != nil || item.EscalationFailedAt != nil {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockStore) EscalateApproval(_ context.Context, approvalID, targetUserID string, escalatedAt time.Time, audit escalation.AuditEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.approvals[approvalID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if m.escalateLost || item.EscalatedAt != nil {
		return false, nil
	}
	item.EscalatedAt = &escalatedAt
	item.EscalatedToID = targetUserID
	item.UpdatedAt = escalatedAt
	m.audits = append(m.audits, audit)
	return true, nil
}

func (m *mockStore) RecordTargetMiss(_ context.Context, approvalID string, maxMisses int, audit escalation.AuditEntry) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.approvals[approvalID]
	if !ok {
		return 0, false, domain.ErrNotFound
	}
	item.TargetMisses++
	if item.TargetMisses >= maxMisses {
		now := time.Now().UTC()
		item.EscalationFailedAt = &now
		m.audits = append(m.audits, audit)
		return item.TargetMisses, true, nil
	}
	return item.TargetMisses, false, nil
}

func (m *mockStore) ListAuditByApproval(_ context.Context, approvalID string) ([]escalation.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []escalation.AuditEntry
	for _, a := range m.audits {
		if a.ApprovalID == approvalID {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]byte)}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	m.deletes++
	return nil
}

type published struct {
	subject string
	data    []byte
}

type mockQueue struct {
	mu        sync.Mutex
	messages  []published
	handlers  map[string]messagequeue.Handler
	publishFn func(subject string, data []byte) error
}

func newMockQueue() *mockQueue {
	return &mockQueue{handlers: make(map[string]messagequeue.Handler)}
}

func (m *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	if m.publishFn != nil {
		if err := m.publishFn(subject, data); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, published{subject, data})
	return nil
}

func (m *mockQueue) Subscribe(_ context.Context, subject string, handler messagequeue.Handler) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[subject] = handler
	return func() {}, nil
}

func (m *mockQueue) Drain() error      { return nil }
func (m *mockQueue) Close() error      { return nil }
func (m *mockQueue) IsConnected() bool { return true }

func (m *mockQueue) bySubject(subject string) []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []published
	for _, p := range m.messages {
		if p.subject == subject {
			out = append(out, p)
		}
	}
	return out
}

type mockBroadcaster struct {
	mu     sync.Mutex
	events []struct {
		eventType string
		payload   any
	}
}

func (m *mockBroadcaster) BroadcastEvent(_ context.Context, eventType string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, struct {
		eventType string
		payload   any
	}{eventType, payload})
}

func (m *mockBroadcaster) count(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}
