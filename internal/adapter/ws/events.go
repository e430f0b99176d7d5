package ws

import (
	"encoding/json"
	"time"
)

// Event names pushed to connected dashboards.
const (
	EventApprovalEscalated  = "approval.escalated"
	EventEscalationFailed   = "escalation.failed"
	EventScanCompleted      = "scan.completed"
	EventConfidenceComputed = "confidence.computed"
)

// Envelope wraps every pushed event. Payload carries the event-specific
// body; EmittedAt is stamped at broadcast time.
type Envelope struct {
	Event     string          `json:"event"`
	EmittedAt time.Time       `json:"emitted_at"`
	Payload   json.RawMessage `json:"payload"`
}
