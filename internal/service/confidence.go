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
	"github.com/greenlight-hq/greenlight/internal/domain"
	"github.com/greenlight-hq/greenlight/internal/domain/confidence"
	"github.com/greenlight-hq/greenlight/internal/domain/workspace"
	"github.com/greenlight-hq/greenlight/internal/port/broadcast"
	"github.com/greenlight-hq/greenlight/internal/port/cache"
	"github.com/greenlight-hq/greenlight/internal/port/database"
)

// ConfidenceService computes confidence scores and manages workspace
// thresholds. Threshold lookups go through the tiered cache; a workspace
// without configured thresholds falls back to the defaults.
type ConfidenceService struct {
	store    database.Store
	cache    cache.Cache
	cacheTTL time.Duration
	hub      broadcast.Broadcaster
	metrics  *otel.Metrics
}

// NewConfidenceService creates a ConfidenceService.
func NewConfidenceService(store database.Store, c cache.Cache, cacheTTL time.Duration, hub broadcast.Broadcaster, metrics *otel.Metrics) *ConfidenceService {
	return &ConfidenceService{
		store:    store,
		cache:    c,
		cacheTTL: cacheTTL,
		hub:      hub,
		metrics:  metrics,
	}
}

// Calculate validates the factor set, resolves the workspace thresholds, and
// produces the scored result. Reasoning is attached only to full_review
// outcomes.
func (s *ConfidenceService) Calculate(ctx context.Context, workspaceID string, factors []confidence.Factor) (*confidence.Result, error) {
	ctx, span := otel.StartConfidenceSpan(ctx, workspaceID, len(factors))
	defer span.End()

	if err := confidence.ValidateFactors(factors); err != nil {
		return nil, err
	}

	thresholds := s.resolveThresholds(ctx, workspaceID)
	score := confidence.WeightedScore(factors)

	result := &confidence.Result{
		OverallScore: score,
		Factors:      factors,
		CalculatedAt: time.Now().UTC(),
	}

	switch {
	case score >= float64(thresholds.AutoApprove):
		result.Recommendation = confidence.RecommendApprove
	case score >= float64(thresholds.QuickReview):
		result.Recommendation = confidence.RecommendReview
	default:
		result.Recommendation = confidence.RecommendFullReview
		result.Reasoning = confidence.BuildReasoning(score, factors)
	}

	if s.metrics != nil {
		s.metrics.ConfidenceCalculations.Add(ctx, 1)
		s.metrics.ConfidenceScore.Record(ctx, score)
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventConfidenceComputed, map[string]any{
			"workspace_id":   workspaceID,
			"overall_score":  result.OverallScore,
			"recommendation": result.Recommendation,
		})
	}

	slog.Debug("confidence calculated",
		"workspace_id", workspaceID,
		"score", score,
		"recommendation", result.Recommendation,
		"factor_count", len(factors),
	)
	return result, nil
}

// GetThresholds returns the workspace thresholds, falling back to defaults
// when none are configured.
func (s *ConfidenceService) GetThresholds(ctx context.Context, workspaceID string) (*workspace.Thresholds, error) {
	t, err := s.store.GetThresholds(ctx, workspaceID)
	if errors.Is(err, domain.ErrNotFound) {
		def := workspace.DefaultThresholds(workspaceID)
		return &def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get thresholds: %w", err)
	}
	return t, nil
}

// PutThresholds validates and stores workspace thresholds, then invalidates
// the cached copy so the next calculation sees the new values.
func (s *ConfidenceService) PutThresholds(ctx context.Context, t workspace.Thresholds) error {
	if err := workspace.ValidateThresholds(t); err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.store.UpsertThresholds(ctx, t); err != nil {
		return fmt.Errorf("upsert thresholds: %w", err)
	}
	if err := s.cache.Delete(ctx, thresholdKey(t.WorkspaceID)); err != nil {
		slog.Warn("threshold cache invalidation failed", "workspace_id", t.WorkspaceID, "error", err)
	}
	return nil
}

// resolveThresholds loads thresholds through the cache. Any store or cache
// failure degrades to the defaults with a warning rather than failing the
// calculation.
func (s *ConfidenceService) resolveThresholds(ctx context.Context, workspaceID string) workspace.Thresholds {
	key := thresholdKey(workspaceID)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var t workspace.Thresholds
		if err := json.Unmarshal(data, &t); err == nil {
			return t
		}
	}

	t, err := s.store.GetThresholds(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Debug("no thresholds configured, using defaults",
				"workspace_id", workspaceID)
		} else {
			slog.Warn("threshold lookup failed, using defaults",
				"workspace_id", workspaceID, "error", err)
		}
		return workspace.DefaultThresholds(workspaceID)
	}

	if data, err := json.Marshal(t); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			slog.Debug("threshold cache set failed", "workspace_id", workspaceID, "error", err)
		}
	}
	return *t
}

func thresholdKey(workspaceID string) string {
	return "thresholds:" + workspaceID
}
