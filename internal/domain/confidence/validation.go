package confidence

import (
	"fmt"
	"math"

	"github.com/greenlight-hq/greenlight/internal/domain"
)

// ValidateFactors checks a factor set before scoring: non-empty, every score
// in [0,100], every weight in [0,1], and weights summing to 1.0 within
// WeightSumTolerance. The returned error names the violated constraint and
// wraps domain.ErrValidation.
func ValidateFactors(factors []Factor) error {
	if len(factors) == 0 {
		return fmt.Errorf("at least one factor is required: %w", domain.ErrValidation)
	}

	var weightSum float64
	for i, f := range factors {
		if f.Score < 0 || f.Score > 100 {
			return fmt.Errorf("factor %q (index %d) score %.2f is outside [0,100]: %w",
				f.Factor, i, f.Score, domain.ErrValidation)
		}
		if f.Weight < 0 || f.Weight > 1 {
			return fmt.Errorf("factor %q (index %d) weight %.4f is outside [0,1]: %w",
				f.Factor, i, f.Weight, domain.ErrValidation)
		}
		weightSum += f.Weight
	}

	if math.Abs(weightSum-1.0) > WeightSumTolerance {
		return fmt.Errorf("factor weights sum to %.4f, expected 1.0 ± %.3f: %w",
			weightSum, WeightSumTolerance, domain.ErrValidation)
	}

	return nil
}
