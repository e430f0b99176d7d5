package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "greenlight"

// StartScanSpan starts a span for a workspace escalation scan.
func StartScanSpan(ctx context.Context, workspaceID, tickID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "scan",
		trace.WithAttributes(
			attribute.String("workspace.id", workspaceID),
			attribute.String("tick.id", tickID),
		),
	)
}

// StartEscalationSpan starts a span for a single approval escalation.
func StartEscalationSpan(ctx context.Context, approvalID, targetUserID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "escalation",
		trace.WithAttributes(
			attribute.String("approval.id", approvalID),
			attribute.String("escalation.target", targetUserID),
		),
	)
}

// StartConfidenceSpan starts a span for a confidence calculation.
func StartConfidenceSpan(ctx context.Context, workspaceID string, factorCount int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "confidence",
		trace.WithAttributes(
			attribute.String("workspace.id", workspaceID),
			attribute.Int("confidence.factors", factorCount),
		),
	)
}
