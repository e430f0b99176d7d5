package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/greenlight-hq/greenlight/internal/domain"
	"github.com/greenlight-hq/greenlight/internal/domain/confidence"
	"github.com/greenlight-hq/greenlight/internal/domain/workspace"
)

func newConfidenceService(store *mockStore) (*ConfidenceService, *mockCache, *mockBroadcaster) {
	c := newMockCache()
	hub := &mockBroadcaster{}
	return NewConfidenceService(store, c, 0, hub, nil), c, hub
}

func singleFactor(score float64) []confidence.Factor {
	return []confidence.Factor{
		{Factor: "test_coverage", Score: score, Weight: 1.0, Explanation: "coverage signal"},
	}
}

func TestCalculateRecommendationBands(t *testing.T) {
	svc, _, _ := newConfidenceService(newMockStore())
	ctx := context.Background()

	cases := []struct {
		score float64
		want  confidence.Recommendation
	}{
		{85.00, confidence.RecommendApprove},
		{84.99, confidence.RecommendReview},
		{60.00, confidence.RecommendReview},
		{59.99, confidence.RecommendFullReview},
		{100, confidence.RecommendApprove},
		{0, confidence.RecommendFullReview},
	}
	for _, tc := range cases {
		res, err := svc.Calculate(ctx, "ws-1", singleFactor(tc.score))
		if err != nil {
			t.Fatalf("score %.2f: %v", tc.score, err)
		}
		if res.Recommendation != tc.want {
			t.Errorf("score %.2f: expected %q, got %q", tc.score, tc.want, res.Recommendation)
		}
	}
}

func TestCalculateWeightedScore(t *testing.T) {
	svc, _, _ := newConfidenceService(newMockStore())

	factors := []confidence.Factor{
		{Factor: "test_coverage", Score: 40, Weight: 0.5, Explanation: "low coverage"},
		{Factor: "change_size", Score: 80, Weight: 0.3, Explanation: "small diff"},
		{Factor: "author_history", Score: 10, Weight: 0.2, Explanation: "new author", Concerning: true},
	}
	res, err := svc.Calculate(context.Background(), "ws-1", factors)
	if err != nil {
		t.Fatal(err)
	}
	if res.OverallScore != 46.00 {
		t.Errorf("expected 46.00, got %.2f", res.OverallScore)
	}
	if res.Recommendation != confidence.RecommendFullReview {
		t.Errorf("expected full_review, got %q", res.Recommendation)
	}
}

func TestCalculateTwoFactorExamples(t *testing.T) {
	svc, _, _ := newConfidenceService(newMockStore())
	ctx := context.Background()

	res, err := svc.Calculate(ctx, "ws-1", []confidence.Factor{
		{Factor: "test_coverage", Score: 90, Weight: 0.5, Explanation: "good coverage"},
		{Factor: "change_size", Score: 80, Weight: 0.5, Explanation: "small diff"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.OverallScore != 85.00 || res.Recommendation != confidence.RecommendApprove {
		t.Errorf("expected 85.00/approve, got %.2f/%q", res.OverallScore, res.Recommendation)
	}

	res, err = svc.Calculate(ctx, "ws-1", []confidence.Factor{
		{Factor: "test_coverage", Score: 50, Weight: 0.6, Explanation: "partial coverage"},
		{Factor: "change_size", Score: 40, Weight: 0.4, Explanation: "large diff"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.OverallScore != 46.00 || res.Recommendation != confidence.RecommendFullReview {
		t.Errorf("expected 46.00/full_review, got %.2f/%q", res.OverallScore, res.Recommendation)
	}
	for _, name := range []string{"test_coverage", "change_size"} {
		if !strings.Contains(res.Reasoning, name) {
			t.Errorf("reasoning should list %q, got %q", name, res.Reasoning)
		}
	}
}

func TestCalculateReasoningOnlyForFullReview(t *testing.T) {
	svc, _, _ := newConfidenceService(newMockStore())
	ctx := context.Background()

	res, err := svc.Calculate(ctx, "ws-1", singleFactor(90))
	if err != nil {
		t.Fatal(err)
	}
	if res.Reasoning != "" {
		t.Errorf("approve result should have no reasoning, got %q", res.Reasoning)
	}

	res, err = svc.Calculate(ctx, "ws-1", singleFactor(30))
	if err != nil {
		t.Fatal(err)
	}
	if res.Reasoning == "" {
		t.Fatal("full_review result should carry reasoning")
	}
	if !strings.Contains(res.Reasoning, "test_coverage") {
		t.Errorf("reasoning should name the low-scoring factor, got %q", res.Reasoning)
	}
}

func TestCalculateUsesWorkspaceThresholds(t *testing.T) {
	store := newMockStore()
	store.thresholds["ws-1"] = workspace.Thresholds{
		WorkspaceID: "ws-1",
		AutoApprove: 70,
		QuickReview: 40,
	}
	svc, _, _ := newConfidenceService(store)

	res, err := svc.Calculate(context.Background(), "ws-1", singleFactor(75))
	if err != nil {
		t.Fatal(err)
	}
	if res.Recommendation != confidence.RecommendApprove {
		t.Errorf("expected approve with custom thresholds, got %q", res.Recommendation)
	}
}

func TestCalculateFallsBackToDefaultsOnStoreError(t *testing.T) {
	store := newMockStore()
	store.thresholdErr = errors.New("connection refused")
	svc, _, _ := newConfidenceService(store)

	res, err := svc.Calculate(context.Background(), "ws-1", singleFactor(90))
	if err != nil {
		t.Fatal(err)
	}
	if res.Recommendation != confidence.RecommendApprove {
		t.Errorf("expected default thresholds (85) to apply, got %q", res.Recommendation)
	}
}

func TestCalculateRejectsInvalidFactors(t *testing.T) {
	svc, _, _ := newConfidenceService(newMockStore())
	ctx := context.Background()

	cases := [][]confidence.Factor{
		nil,
		{{Factor: "a", Score: 120, Weight: 1.0}},
		{{Factor: "a", Score: 50, Weight: 1.2}},
		{{Factor: "a", Score: 50, Weight: 0.5}}, // weights sum to 0.5
	}
	for i, factors := range cases {
		if _, err := svc.Calculate(ctx, "ws-1", factors); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

// captureLogs routes the default logger into a buffer for the test's duration.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestCalculateLogsFactorCount(t *testing.T) {
	buf := captureLogs(t)
	svc, _, _ := newConfidenceService(newMockStore())

	factors := []confidence.Factor{
		{Factor: "test_coverage", Score: 80, Weight: 0.5, Explanation: "coverage"},
		{Factor: "change_size", Score: 70, Weight: 0.5, Explanation: "diff size"},
	}
	if _, err := svc.Calculate(context.Background(), "ws-1", factors); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"factor_count":2`) {
		t.Errorf("calculation log should carry the factor count, got %s", buf.String())
	}
}

func TestUnconfiguredThresholdFallbackIsLogged(t *testing.T) {
	buf := captureLogs(t)
	svc, _, _ := newConfidenceService(newMockStore())

	if _, err := svc.Calculate(context.Background(), "ws-unset", singleFactor(50)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no thresholds configured") {
		t.Errorf("not-found fallback should be logged, got %s", buf.String())
	}
}

func TestCalculateCachesThresholds(t *testing.T) {
	store := newMockStore()
	store.thresholds["ws-1"] = workspace.Thresholds{WorkspaceID: "ws-1", AutoApprove: 90, QuickReview: 50}
	svc, c, _ := newConfidenceService(store)
	ctx := context.Background()

	if _, err := svc.Calculate(ctx, "ws-1", singleFactor(50)); err != nil {
		t.Fatal(err)
	}
	if c.sets != 1 {
		t.Fatalf("expected thresholds cached after first lookup, sets=%d", c.sets)
	}

	// Second calculation hits the cache, not the store.
	store.thresholdErr = errors.New("store must not be hit")
	res, err := svc.Calculate(ctx, "ws-1", singleFactor(95))
	if err != nil {
		t.Fatal(err)
	}
	if res.Recommendation != confidence.RecommendApprove {
		t.Errorf("expected cached thresholds to apply, got %q", res.Recommendation)
	}
}

func TestPutThresholdsInvalidatesCache(t *testing.T) {
	store := newMockStore()
	svc, c, _ := newConfidenceService(store)
	ctx := context.Background()

	err := svc.PutThresholds(ctx, workspace.Thresholds{WorkspaceID: "ws-1", AutoApprove: 80, QuickReview: 50})
	if err != nil {
		t.Fatal(err)
	}
	if c.deletes != 1 {
		t.Errorf("expected cache invalidation on update, deletes=%d", c.deletes)
	}

	got, err := svc.GetThresholds(ctx, "ws-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.AutoApprove != 80 || got.QuickReview != 50 {
		t.Errorf("stored thresholds not returned: %+v", got)
	}
}

func TestPutThresholdsRejectsInvertedBounds(t *testing.T) {
	svc, _, _ := newConfidenceService(newMockStore())

	err := svc.PutThresholds(context.Background(), workspace.Thresholds{
		WorkspaceID: "ws-1", AutoApprove: 50, QuickReview: 60,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetThresholdsDefaultsWhenUnset(t *testing.T) {
	svc, _, _ := newConfidenceService(newMockStore())

	got, err := svc.GetThresholds(context.Background(), "ws-unknown")
	if err != nil {
		t.Fatal(err)
	}
	if got.AutoApprove != workspace.DefaultAutoApprove || got.QuickReview != workspace.DefaultQuickReview {
		t.Errorf("expected defaults, got %+v", got)
	}
}
