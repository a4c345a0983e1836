// Package scoring provides the pure functions behind memory prioritisation:
// the importance weight blending feedback, usage, recency and emotional
// salience, the nightly multiplicative decay, and the per-intent performance
// score used by meta-learning.
package scoring

import (
	"math"
	"time"

	"github.com/scrypster/brahma/pkg/types"
)

const (
	// Importance-weight term coefficients. Feedback is heavily weighted.
	feedbackWeight  = 0.4
	retrievalWeight = 0.2
	recencyWeight   = 0.2
	emotionWeight   = 0.2

	// recencyWindow is the time constant of the recency exponential: the
	// recency term falls to 1/e after 30 days without retrieval.
	recencyWindow = 30 * 24 * time.Hour

	// DecayRate is the nightly multiplicative decay applied to importance
	// weights. A weight of 1.0 falls to roughly 0.5 after 34 applications.
	DecayRate = 0.98

	// ArchiveThreshold is the importance weight below which the decay sweep
	// archives an item. Archived items are kept, never deleted.
	ArchiveThreshold = 0.01
)

// ImportanceWeight computes the memory-priority score for item at the given
// instant:
//
//	0.4*avgFeedback + 0.2*log1p(retrievals) + 0.2*recency + 0.2*emotion
//
// where avgFeedback divides by max(feedback_count, 1) and recency is
// exp(-(now - last_retrieved)/30d), taken as 1.0 when the item has never been
// retrieved.
//
// The output is intentionally not clamped: the 0.4-weighted feedback term can
// push the result outside [0,1] under heavily skewed feedback. The archive
// threshold only compares on the low end, where the formula is well behaved.
func ImportanceWeight(item *types.MemoryItem, now time.Time) float64 {
	feedbackCount := item.FeedbackCount
	if feedbackCount < 1 {
		feedbackCount = 1
	}
	avgFeedback := float64(item.FeedbackScoreTotal) / float64(feedbackCount)

	retrievalScore := math.Log1p(float64(item.RetrievalCount))

	recencyScore := 1.0
	if item.LastRetrieved != nil {
		age := now.Sub(*item.LastRetrieved)
		if age < 0 {
			age = 0
		}
		recencyScore = math.Exp(-float64(age) / float64(recencyWindow))
	}

	emotionScore := item.EmotionScore
	if emotionScore == 0 && item.Graph != nil {
		emotionScore = EmotionScore(item.Graph)
	}

	return feedbackWeight*avgFeedback +
		retrievalWeight*retrievalScore +
		recencyWeight*recencyScore +
		emotionWeight*emotionScore
}

// EmotionScore derives an item's emotional salience as the mean intensity of
// the graph's Emotion nodes, or 0 when the graph has none.
func EmotionScore(g *types.KnowledgeGraph) float64 {
	emotions := g.EmotionNodes()
	if len(emotions) == 0 {
		return 0
	}
	var total float64
	for i := range emotions {
		total += emotions[i].EmotionIntensity()
	}
	return total / float64(len(emotions))
}

// Decay applies one nightly decay step to a weight.
func Decay(weight float64) float64 {
	return weight * DecayRate
}

// PerformanceScore combines average confidence 50/50 with a feedback term
// normalised from [-1,1] to [0,1]:
//
//	(avg(confidences) + (avg(feedbacks)+1)/2) / 2
//
// Callers must not invoke it with empty slices; intents with zero
// interactions are skipped entirely rather than reported as zero.
func PerformanceScore(confidences []float64, feedbacks []int) float64 {
	n := float64(len(confidences))

	var confTotal float64
	for _, c := range confidences {
		confTotal += c
	}
	avgConfidence := confTotal / n

	var fbTotal float64
	for _, f := range feedbacks {
		fbTotal += float64(f)
	}
	avgFeedback := fbTotal / float64(len(feedbacks))
	normalizedFeedback := (avgFeedback + 1) / 2

	return (avgConfidence + normalizedFeedback) / 2
}
