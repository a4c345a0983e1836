package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/internal/store/sqlite"
	"github.com/scrypster/brahma/pkg/types"
)

// seedTurn appends one agent log and, unless feedback is nil, a linked AI
// message carrying that feedback value.
func seedTurn(t *testing.T, st *sqlite.Store, intent string, confidence float64, feedback *int) {
	t.Helper()
	ctx := context.Background()

	entry := &types.AgentLog{
		ID:              uuid.NewString(),
		UserID:          "user-a",
		SessionID:       "sess-1",
		Timestamp:       time.Now(),
		UserQuery:       "q",
		Intent:          intent,
		Emotion:         "neutral",
		ReasoningTrace:  "trace",
		FinalResponse:   "answer",
		ConfidenceScore: confidence,
		SynthesisLog:    "log",
	}
	require.NoError(t, st.AgentLogs().Append(ctx, entry))

	if feedback != nil {
		msg := &types.ChatMessage{
			ID:         uuid.NewString(),
			SessionID:  "sess-1",
			Sender:     types.SenderAI,
			Text:       "answer",
			Timestamp:  time.Now(),
			Feedback:   *feedback,
			AgentLogID: entry.ID,
		}
		require.NoError(t, st.Messages().Append(ctx, msg))
	}
}

func intPtr(v int) *int { return &v }

func TestRunMetaLearning_GroupsByIntent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedTurn(t, st, "question_answering", 0.8, intPtr(types.FeedbackUp))
	seedTurn(t, st, "question_answering", 0.6, intPtr(types.FeedbackDown))
	seedTurn(t, st, "greeting", 1.0, intPtr(types.FeedbackUp))

	reported, err := RunMetaLearning(ctx, st.AgentLogs(), st.Messages(), st.Reports())
	require.NoError(t, err)
	assert.Equal(t, 2, reported)

	qa, err := st.Reports().Get(ctx, "question_answering")
	require.NoError(t, err)
	assert.Equal(t, 2, qa.TotalInteractions)
	assert.Equal(t, 1, qa.PositiveFeedbackCount)
	assert.Equal(t, 1, qa.NegativeFeedbackCount)
	assert.InDelta(t, 0.7, qa.AverageConfidence, 1e-9)
	// (0.7 + (0+1)/2) / 2 = 0.6
	assert.InDelta(t, 0.6, qa.PerformanceScore, 1e-9)

	greeting, err := st.Reports().Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, 1, greeting.TotalInteractions)
	assert.InDelta(t, 1.0, greeting.PerformanceScore, 1e-9)
}

func TestRunMetaLearning_BrokenLinkIsNeutral(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Log with no message referencing it.
	seedTurn(t, st, "orphaned", 0.5, nil)

	reported, err := RunMetaLearning(ctx, st.AgentLogs(), st.Messages(), st.Reports())
	require.NoError(t, err)
	assert.Equal(t, 1, reported)

	r, err := st.Reports().Get(ctx, "orphaned")
	require.NoError(t, err)
	assert.Zero(t, r.PositiveFeedbackCount)
	assert.Zero(t, r.NegativeFeedbackCount)
	// (0.5 + 0.5) / 2 with neutral feedback.
	assert.InDelta(t, 0.5, r.PerformanceScore, 1e-9)
}

func TestRunMetaLearning_SkipsEmptyIntentLabels(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedTurn(t, st, "", 0.9, intPtr(types.FeedbackUp))
	seedTurn(t, st, "real_intent", 0.9, intPtr(types.FeedbackUp))

	reported, err := RunMetaLearning(ctx, st.AgentLogs(), st.Messages(), st.Reports())
	require.NoError(t, err)
	assert.Equal(t, 1, reported)

	_, err = st.Reports().Get(ctx, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunMetaLearning_NoLogs(t *testing.T) {
	st := newTestStore(t)
	reported, err := RunMetaLearning(context.Background(), st.AgentLogs(), st.Messages(), st.Reports())
	require.NoError(t, err)
	assert.Zero(t, reported)
}

func TestRunMetaLearning_RerunOverwritesReports(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedTurn(t, st, "qa", 0.4, intPtr(types.FeedbackDown))
	_, err := RunMetaLearning(ctx, st.AgentLogs(), st.Messages(), st.Reports())
	require.NoError(t, err)

	seedTurn(t, st, "qa", 1.0, intPtr(types.FeedbackUp))
	_, err = RunMetaLearning(ctx, st.AgentLogs(), st.Messages(), st.Reports())
	require.NoError(t, err)

	r, err := st.Reports().Get(ctx, "qa")
	require.NoError(t, err)
	assert.Equal(t, 2, r.TotalInteractions, "reports are fully recomputed, not accumulated")
	assert.InDelta(t, 0.7, r.AverageConfidence, 1e-9)
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.1235, round4(0.123456))
	assert.Equal(t, 0.5, round4(0.5))
	assert.Equal(t, 0.6667, round4(2.0/3.0))
}
