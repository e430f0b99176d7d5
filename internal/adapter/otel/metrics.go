package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "greenlight"

// Metrics holds all Greenlight metric instruments.
type Metrics struct {
	ConfidenceCalculations metric.Int64Counter
	ScansCompleted         metric.Int64Counter
	ApprovalsEscalated     metric.Int64Counter
	EscalationsSkipped     metric.Int64Counter
	EscalationsFailed      metric.Int64Counter
	ConfidenceScore        metric.Float64Histogram
	ScanDuration           metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ConfidenceCalculations, err = meter.Int64Counter("greenlight.confidence.calculations",
		metric.WithDescription("Number of confidence calculations performed"))
	if err != nil {
		return nil, err
	}

	m.ScansCompleted, err = meter.Int64Counter("greenlight.scans.completed",
		metric.WithDescription("Number of workspace escalation scans completed"))
	if err != nil {
		return nil, err
	}

	m.ApprovalsEscalated, err = meter.Int64Counter("greenlight.approvals.escalated",
		metric.WithDescription("Number of approvals escalated"))
	if err != nil {
		return nil, err
	}

	m.EscalationsSkipped, err = meter.Int64Counter("greenlight.escalations.skipped",
		metric.WithDescription("Number of overdue approvals skipped during scans"))
	if err != nil {
		return nil, err
	}

	m.EscalationsFailed, err = meter.Int64Counter("greenlight.escalations.failed",
		metric.WithDescription("Number of approvals marked escalation-failed"))
	if err != nil {
		return nil, err
	}

	m.ConfidenceScore, err = meter.Float64Histogram("greenlight.confidence.score",
		metric.WithDescription("Distribution of computed confidence scores"))
	if err != nil {
		return nil, err
	}

	m.ScanDuration, err = meter.Float64Histogram("greenlight.scan.duration_seconds",
		metric.WithDescription("Workspace scan duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
