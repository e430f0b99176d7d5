package workspace

import (
	"fmt"

	"github.com/greenlight-hq/greenlight/internal/domain"
)

// ValidateThresholds checks ranges and the ordering invariant
// AutoApprove > QuickReview.
func ValidateThresholds(t Thresholds) error {
	if t.AutoApprove < 0 || t.AutoApprove > 100 {
		return fmt.Errorf("auto_approve %d is outside [0,100]: %w", t.AutoApprove, domain.ErrValidation)
	}
	if t.QuickReview < 0 || t.QuickReview > 100 {
		return fmt.Errorf("quick_review %d is outside [0,100]: %w", t.QuickReview, domain.ErrValidation)
	}
	if t.AutoApprove <= t.QuickReview {
		return fmt.Errorf("auto_approve %d must be greater than quick_review %d: %w",
			t.AutoApprove, t.QuickReview, domain.ErrValidation)
	}
	return nil
}

// ValidateEscalationConfig checks the re-check interval floor.
func ValidateEscalationConfig(c EscalationConfig) error {
	if c.CheckIntervalMinutes < MinCheckIntervalMinutes {
		return fmt.Errorf("check_interval_minutes %d is below the minimum %d: %w",
			c.CheckIntervalMinutes, MinCheckIntervalMinutes, domain.ErrValidation)
	}
	return nil
}
