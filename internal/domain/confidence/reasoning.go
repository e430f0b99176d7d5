package confidence

import (
	"fmt"
	"strings"
)

// BuildReasoning renders the explanation attached to a full_review result:
// the overall score, every factor scoring below the concern line, and every
// factor flagged concerning, each with its explanation.
func BuildReasoning(overall float64, factors []Factor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall confidence %.2f is below the quick-review threshold.", overall)

	var low, concerning []Factor
	for _, f := range factors {
		if f.Score < factorConcernScore {
			low = append(low, f)
		}
		if f.Concerning {
			concerning = append(concerning, f)
		}
	}

	if len(low) > 0 {
		b.WriteString(" Low-scoring factors:")
		for _, f := range low {
			fmt.Fprintf(&b, " %s (%.0f): %s;", f.Factor, f.Score, f.Explanation)
		}
	}
	if len(concerning) > 0 {
		b.WriteString(" Concerning factors:")
		for _, f := range concerning {
			fmt.Fprintf(&b, " %s: %s;", f.Factor, f.Explanation)
		}
	}

	return strings.TrimSuffix(b.String(), ";")
}
