package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/scrypster/brahma/internal/scoring"
	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

// intentObservations accumulates the per-intent inputs of the performance
// score.
type intentObservations struct {
	confidences []float64
	feedbacks   []int
}

// RunMetaLearning scans all agent logs, groups them by intent label (raw
// string equality; labels are open tags, not an enum), joins each log to the
// chat message that references it to read its feedback (neutral when the
// link is broken), and overwrites each intent's strategy report in one batch.
//
// Intents with zero logs are skipped entirely; no zero or NaN report is ever
// written. Returns the number of intents reported.
func RunMetaLearning(ctx context.Context, logs store.AgentLogStore, messages store.MessageStore, reports store.StrategyReportStore) (int, error) {
	log.Println("Starting meta-learning analysis...")

	all, err := logs.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("meta-learning: failed to list agent logs: %w", err)
	}
	if len(all) == 0 {
		log.Println("meta-learning: no agent logs to analyze")
		return 0, nil
	}

	byIntent := make(map[string]*intentObservations)
	for _, entry := range all {
		if entry.Intent == "" {
			continue
		}

		obs := byIntent[entry.Intent]
		if obs == nil {
			obs = &intentObservations{}
			byIntent[entry.Intent] = obs
		}

		obs.confidences = append(obs.confidences, entry.ConfidenceScore)

		feedback := types.FeedbackNeutral
		msg, err := messages.FindByAgentLogID(ctx, entry.ID)
		switch {
		case err == nil:
			feedback = msg.Feedback
		case errors.Is(err, store.ErrNotFound):
			// Link breakage is tolerated; assume neutral.
		default:
			return 0, fmt.Errorf("meta-learning: failed to look up message for log %s: %w", entry.ID, err)
		}
		obs.feedbacks = append(obs.feedbacks, feedback)
	}

	now := time.Now()
	var out []*types.StrategyReport
	for intent, obs := range byIntent {
		if len(obs.confidences) == 0 {
			continue
		}

		var confTotal float64
		for _, c := range obs.confidences {
			confTotal += c
		}
		positive, negative := 0, 0
		for _, f := range obs.feedbacks {
			switch {
			case f > 0:
				positive++
			case f < 0:
				negative++
			}
		}

		out = append(out, &types.StrategyReport{
			Intent:                intent,
			LastAnalyzed:          now,
			TotalInteractions:     len(obs.confidences),
			PositiveFeedbackCount: positive,
			NegativeFeedbackCount: negative,
			AverageConfidence:     round4(confTotal / float64(len(obs.confidences))),
			PerformanceScore:      round4(scoring.PerformanceScore(obs.confidences, obs.feedbacks)),
		})
	}

	if err := reports.PutAll(ctx, out); err != nil {
		return 0, fmt.Errorf("meta-learning: failed to write strategy reports: %w", err)
	}

	log.Printf("Meta-learning analysis completed. Processed %d logs for %d unique intents.", len(all), len(out))
	return len(out), nil
}

// round4 rounds to four decimal places, matching the stored report precision.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
