package types

import "time"

// StrategyReport is a per-intent aggregate of reasoning quality, fully
// recomputed (not incrementally updated) on each meta-learning run.
// Last-write-wins per intent. Reports have no owner; they are process-wide
// aggregate state.
type StrategyReport struct {
	Intent                string    `json:"intent"` // report key: the raw intent label
	LastAnalyzed          time.Time `json:"last_analyzed"`
	TotalInteractions     int       `json:"total_interactions"`
	PositiveFeedbackCount int       `json:"positive_feedback_count"`
	NegativeFeedbackCount int       `json:"negative_feedback_count"`
	AverageConfidence     float64   `json:"average_confidence"`
	PerformanceScore      float64   `json:"performance_score"` // in [0,1]
}
