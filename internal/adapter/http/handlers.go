package http

import (
	"net/http"
	"time"

	"github.com/greenlight-hq/greenlight/internal/adapter/ws"
	"github.com/greenlight-hq/greenlight/internal/domain/approval"
	"github.com/greenlight-hq/greenlight/internal/domain/confidence"
	"github.com/greenlight-hq/greenlight/internal/domain/escalation"
	"github.com/greenlight-hq/greenlight/internal/domain/workspace"
	"github.com/greenlight-hq/greenlight/internal/port/messagequeue"
	"github.com/greenlight-hq/greenlight/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Confidence *service.ConfidenceService
	Escalation *service.EscalationService
	Approvals  *service.ApprovalService
	Scheduler  *service.SchedulerService
	Hub        *ws.Hub
	Queue      messagequeue.Queue
}

// --- Confidence ---

type calculateRequest struct {
	Factors []confidence.Factor `json:"factors"`
}

// CalculateConfidence handles POST /api/workspaces/{id}/confidence.
func (h *Handlers) CalculateConfidence(w http.ResponseWriter, r *http.Request) {
	workspaceID := urlParam(r, "id")
	req, ok := readJSON[calculateRequest](w, r)
	if !ok {
		return
	}

	result, err := h.Confidence.Calculate(r.Context(), workspaceID, req.Factors)
	if err != nil {
		writeDomainError(w, err, "workspace not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Thresholds ---

// GetThresholds handles GET /api/workspaces/{id}/thresholds.
func (h *Handlers) GetThresholds(w http.ResponseWriter, r *http.Request) {
	t, err := h.Confidence.GetThresholds(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "workspace not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type thresholdsRequest struct {
	AutoApprove int `json:"auto_approve"`
	QuickReview int `json:"quick_review"`
}

// PutThresholds handles PUT /api/workspaces/{id}/thresholds.
func (h *Handlers) PutThresholds(w http.ResponseWriter, r *http.Request) {
	workspaceID := urlParam(r, "id")
	req, ok := readJSON[thresholdsRequest](w, r)
	if !ok {
		return
	}

	t := workspace.Thresholds{
		WorkspaceID: workspaceID,
		AutoApprove: req.AutoApprove,
		QuickReview: req.QuickReview,
	}
	if err := h.Confidence.PutThresholds(r.Context(), t); err != nil {
		writeDomainError(w, err, "workspace not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// --- Escalation config ---

// GetEscalationConfig handles GET /api/workspaces/{id}/escalation-config.
func (h *Handlers) GetEscalationConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Escalation.GetEscalationConfig(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "workspace not found")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

type escalationConfigRequest struct {
	EnableEscalation     bool   `json:"enable_escalation"`
	CheckIntervalMinutes int    `json:"check_interval_minutes"`
	TargetUserID         string `json:"escalation_target_user_id"`
}

// PutEscalationConfig handles PUT /api/workspaces/{id}/escalation-config.
func (h *Handlers) PutEscalationConfig(w http.ResponseWriter, r *http.Request) {
	workspaceID := urlParam(r, "id")
	req, ok := readJSON[escalationConfigRequest](w, r)
	if !ok {
		return
	}
	if req.CheckIntervalMinutes == 0 {
		req.CheckIntervalMinutes = workspace.DefaultCheckIntervalMinutes
	}

	cfg := workspace.EscalationConfig{
		WorkspaceID:          workspaceID,
		EnableEscalation:     req.EnableEscalation,
		CheckIntervalMinutes: req.CheckIntervalMinutes,
		TargetUserID:         req.TargetUserID,
	}
	if err := h.Escalation.UpdateEscalationConfig(r.Context(), cfg); err != nil {
		writeDomainError(w, err, "workspace not found")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// --- Approvals ---

// CreateApproval handles POST /api/workspaces/{id}/approvals.
func (h *Handlers) CreateApproval(w http.ResponseWriter, r *http.Request) {
	workspaceID := urlParam(r, "id")
	req, ok := readJSON[approval.CreateRequest](w, r)
	if !ok {
		return
	}

	item, err := h.Approvals.Create(r.Context(), workspaceID, req)
	if err != nil {
		writeDomainError(w, err, "workspace not found")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// ListApprovals handles GET /api/workspaces/{id}/approvals.
func (h *Handlers) ListApprovals(w http.ResponseWriter, r *http.Request) {
	items, err := h.Approvals.List(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "workspace not found")
		return
	}
	if items == nil {
		items = []approval.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetApproval handles GET /api/approvals/{id}.
func (h *Handlers) GetApproval(w http.ResponseWriter, r *http.Request) {
	item, err := h.Approvals.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "approval not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GetApprovalAudit handles GET /api/approvals/{id}/audit.
func (h *Handlers) GetApprovalAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Approvals.Audit(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "approval not found")
		return
	}
	if entries == nil {
		entries = []escalation.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Scans ---

type scanRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

// TriggerScan handles POST /api/escalations/scan. An empty body (or one
// without workspace_id) scans every escalation-enabled workspace.
func (h *Handlers) TriggerScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if r.ContentLength > 0 {
		var ok bool
		if req, ok = readJSON[scanRequest](w, r); !ok {
			return
		}
	}

	if req.WorkspaceID != "" {
		summary, err := h.Escalation.ScanWorkspace(r.Context(), req.WorkspaceID, "manual")
		if err != nil {
			writeDomainError(w, err, "workspace not found")
			return
		}
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := h.Scheduler.TriggerScan(r.Context())
	if err != nil {
		writeDomainError(w, err, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- Health ---

type healthResponse struct {
	Status        string    `json:"status"`
	NATSConnected bool      `json:"nats_connected"`
	WSConnections int       `json:"ws_connections"`
	Time          time.Time `json:"time"`
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		WSConnections: h.Hub.ConnectionCount(),
		Time:          time.Now().UTC(),
	}
	if h.Queue != nil {
		resp.NATSConnected = h.Queue.IsConnected()
	}
	writeJSON(w, http.StatusOK, resp)
}
