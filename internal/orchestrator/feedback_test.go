package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

// seedConversation creates a session (optionally bound to a memory item) with
// one AI message, returning the session and message.
func seedConversation(t *testing.T, env *testEnv, userID, itemID string) (*types.ChatSession, *types.ChatMessage) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	session := &types.ChatSession{
		ID:               uuid.NewString(),
		UserID:           userID,
		Title:            "test session",
		AssociatedItemID: itemID,
		CreatedAt:        now,
		LastMessageAt:    now,
	}
	require.NoError(t, env.store.Sessions().Create(ctx, session))

	msg := &types.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Sender:    types.SenderAI,
		Text:      "Answer.",
		Timestamp: now,
		Feedback:  types.FeedbackNeutral,
	}
	require.NoError(t, env.store.Messages().Append(ctx, msg))
	return session, msg
}

func getItem(t *testing.T, env *testEnv, id string) *types.MemoryItem {
	t.Helper()
	item, err := env.store.Items().Get(context.Background(), id)
	require.NoError(t, err)
	return item
}

func TestHandleFeedback_FirstRating(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env.store, "user-a")
	session, msg := seedConversation(t, env, "user-a", item.ID)
	ctx := context.Background()

	result, err := env.orch.HandleFeedback(ctx, FeedbackInput{
		UserID:    "user-a",
		SessionID: session.ID,
		MessageID: msg.ID,
		Value:     types.FeedbackUp,
	})
	require.NoError(t, err)
	require.NotNil(t, result.NewWeight)

	got := getItem(t, env, item.ID)
	assert.Equal(t, 1, got.FeedbackScoreTotal)
	assert.Equal(t, 1, got.FeedbackCount)
	assert.InDelta(t, *result.NewWeight, got.ImportanceWeight, 1e-9)

	updated, err := env.store.Messages().ListBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FeedbackUp, updated[0].Feedback)
}

func TestHandleFeedback_ToggleRetractsToNeutral(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env.store, "user-a")
	session, msg := seedConversation(t, env, "user-a", item.ID)
	ctx := context.Background()

	in := FeedbackInput{UserID: "user-a", SessionID: session.ID, MessageID: msg.ID, Value: types.FeedbackUp}
	_, err := env.orch.HandleFeedback(ctx, in)
	require.NoError(t, err)

	// Same value again: retract.
	_, err = env.orch.HandleFeedback(ctx, in)
	require.NoError(t, err)

	got := getItem(t, env, item.ID)
	assert.Equal(t, 0, got.FeedbackScoreTotal, "counters fully reversed")
	assert.Equal(t, 0, got.FeedbackCount)

	msgs, err := env.store.Messages().ListBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FeedbackNeutral, msgs[0].Feedback)
}

func TestHandleFeedback_SwitchDoesNotRecount(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env.store, "user-a")
	session, msg := seedConversation(t, env, "user-a", item.ID)
	ctx := context.Background()

	_, err := env.orch.HandleFeedback(ctx, FeedbackInput{
		UserID: "user-a", SessionID: session.ID, MessageID: msg.ID, Value: types.FeedbackUp,
	})
	require.NoError(t, err)

	// +1 -> -1: total moves by the delta (-2), count stays at 1.
	_, err = env.orch.HandleFeedback(ctx, FeedbackInput{
		UserID: "user-a", SessionID: session.ID, MessageID: msg.ID, Value: types.FeedbackDown,
	})
	require.NoError(t, err)

	got := getItem(t, env, item.ID)
	assert.Equal(t, -1, got.FeedbackScoreTotal)
	assert.Equal(t, 1, got.FeedbackCount)
}

func TestHandleFeedback_InvalidValue(t *testing.T) {
	env := newTestEnv(t)
	for _, v := range []int{0, 2, -2, 5} {
		_, err := env.orch.HandleFeedback(context.Background(), FeedbackInput{
			UserID: "user-a", SessionID: "s", MessageID: "m", Value: v,
		})
		assert.ErrorIs(t, err, store.ErrInvalidInput, "value %d", v)
	}
}

func TestHandleFeedback_ForeignSessionBlocked(t *testing.T) {
	env := newTestEnv(t)
	session, msg := seedConversation(t, env, "user-a", "")

	_, err := env.orch.HandleFeedback(context.Background(), FeedbackInput{
		UserID: "user-b", SessionID: session.ID, MessageID: msg.ID, Value: types.FeedbackUp,
	})
	assert.ErrorIs(t, err, store.ErrPermissionDenied)
}

func TestHandleFeedback_UserMessageRejected(t *testing.T) {
	env := newTestEnv(t)
	session, _ := seedConversation(t, env, "user-a", "")
	ctx := context.Background()

	userMsg := &types.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Sender:    types.SenderUser,
		Text:      "my question",
		Timestamp: time.Now(),
	}
	require.NoError(t, env.store.Messages().Append(ctx, userMsg))

	_, err := env.orch.HandleFeedback(ctx, FeedbackInput{
		UserID: "user-a", SessionID: session.ID, MessageID: userMsg.ID, Value: types.FeedbackUp,
	})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestHandleFeedback_NoAssociatedItem(t *testing.T) {
	env := newTestEnv(t)
	session, msg := seedConversation(t, env, "user-a", "")
	ctx := context.Background()

	result, err := env.orch.HandleFeedback(ctx, FeedbackInput{
		UserID: "user-a", SessionID: session.ID, MessageID: msg.ID, Value: types.FeedbackDown,
	})
	require.NoError(t, err)
	assert.Nil(t, result.NewWeight)

	msgs, err := env.store.Messages().ListBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FeedbackDown, msgs[0].Feedback)
}

func TestHandleFeedback_DeletedItemIsSuccess(t *testing.T) {
	env := newTestEnv(t)
	item := seedItem(t, env.store, "user-a")
	session, msg := seedConversation(t, env, "user-a", item.ID)
	ctx := context.Background()

	require.NoError(t, env.store.Items().Delete(ctx, item.ID))

	result, err := env.orch.HandleFeedback(ctx, FeedbackInput{
		UserID: "user-a", SessionID: session.ID, MessageID: msg.ID, Value: types.FeedbackUp,
	})
	require.NoError(t, err, "feedback on a deleted item's session still succeeds")
	assert.Nil(t, result.NewWeight)

	msgs, err := env.store.Messages().ListBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FeedbackUp, msgs[0].Feedback, "the message feedback still lands")
}

func TestHandleFeedback_UnknownMessage(t *testing.T) {
	env := newTestEnv(t)
	session, _ := seedConversation(t, env, "user-a", "")

	_, err := env.orch.HandleFeedback(context.Background(), FeedbackInput{
		UserID: "user-a", SessionID: session.ID, MessageID: "missing", Value: types.FeedbackUp,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
