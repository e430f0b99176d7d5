package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/greenlight-hq/greenlight/internal/domain"
	"github.com/greenlight-hq/greenlight/internal/domain/approval"
)

func TestCreateApprovalValidation(t *testing.T) {
	svc := NewApprovalService(newMockStore())
	ctx := context.Background()
	due := time.Now().UTC().Add(time.Hour)

	cases := []approval.CreateRequest{
		{AssignedToID: "u1", DueAt: due},               // missing title
		{Title: "   ", AssignedToID: "u1", DueAt: due}, // blank title
		{Title: "deploy", DueAt: due},                  // missing assignee
		{Title: "deploy", AssignedToID: "u1"},          // missing due date
	}
	for i, req := range cases {
		if _, err := svc.Create(ctx, "ws-1", req); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestCreateAndGetApproval(t *testing.T) {
	svc := NewApprovalService(newMockStore())
	ctx := context.Background()

	score := 72.5
	item, err := svc.Create(ctx, "ws-1", approval.CreateRequest{
		Title:           "merge release branch",
		AssignedToID:    "user-dev",
		DueAt:           time.Now().UTC().Add(time.Hour),
		ConfidenceScore: &score,
		Recommendation:  "review",
	})
	if err != nil {
		t.Fatal(err)
	}
	if item.Status != approval.StatusPending {
		t.Errorf("new items start pending, got %q", item.Status)
	}

	got, err := svc.Get(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ConfidenceScore == nil || *got.ConfidenceScore != 72.5 {
		t.Errorf("confidence score not persisted: %+v", got)
	}

	items, err := svc.List(ctx, "ws-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestAuditUnknownApproval(t *testing.T) {
	svc := NewApprovalService(newMockStore())
	if _, err := svc.Audit(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
