// Package confidence defines the weighted-signal scoring model for pending
// approvals: a set of factors is reduced to a single 0–100 score and a
// routing recommendation.
package confidence

import (
	"math"
	"time"
)

// Recommendation is the routing outcome of a confidence calculation.
type Recommendation string

const (
	// RecommendApprove routes the action straight through without review.
	RecommendApprove Recommendation = "approve"
	// RecommendReview routes the action to a quick human review.
	RecommendReview Recommendation = "review"
	// RecommendFullReview routes the action to a full review with reasoning.
	RecommendFullReview Recommendation = "full_review"
)

// factorConcernScore is the per-factor score below which a factor is called
// out in the generated reasoning.
const factorConcernScore = 60

// WeightSumTolerance is the allowed deviation of the factor weight sum from 1.0.
const WeightSumTolerance = 0.001

// Factor is a single weighted signal contributing to the overall score.
type Factor struct {
	Factor      string  `json:"factor"`
	Score       float64 `json:"score"`  // 0–100
	Weight      float64 `json:"weight"` // 0–1, weights sum to 1.0
	Explanation string  `json:"explanation"`
	Concerning  bool    `json:"concerning,omitempty"`
}

// Result is the immutable outcome of one calculation. It is produced fresh
// per call and never persisted by the engine itself.
type Result struct {
	OverallScore   float64        `json:"overall_score"` // 2-decimal
	Factors        []Factor       `json:"factors"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning,omitempty"`
	CalculatedAt   time.Time      `json:"calculated_at"`
}

// Round2 rounds to 2 decimal places using round-half-up.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// WeightedScore computes the weighted sum of factor scores.
// Validation of the factor set is the caller's responsibility.
func WeightedScore(factors []Factor) float64 {
	var sum float64
	for _, f := range factors {
		sum += f.Score * f.Weight
	}
	return Round2(sum)
}
