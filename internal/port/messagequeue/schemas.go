package messagequeue

import (
	"time"

	"github.com/greenlight-hq/greenlight/internal/domain/escalation"
)

// EscalationEventPayload is the schema for escalations.event messages: the
// domain event itself is what goes over the wire.
type EscalationEventPayload = escalation.Event

// ScanTickPayload is the schema for escalations.tick messages. TickID is
// shared by every job published in the same scheduler pass, so a job is
// uniquely identified by (workspace_id, tick_id).
type ScanTickPayload struct {
	WorkspaceID string    `json:"workspace_id"`
	TickID      string    `json:"tick_id"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}
