package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

// newTestStore creates an in-memory store with the full schema applied.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testItem(id string) *types.MemoryItem {
	now := time.Now().UTC().Truncate(time.Second)
	return &types.MemoryItem{
		ID:         id,
		UserID:     "user-a",
		FileName:   "notes.txt",
		FileType:   types.FileTypeText,
		Status:     types.MemoryActive,
		Transcript: "Some project notes.",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestItems_PutGetRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	item := testItem("item-1")
	item.Graph = &types.KnowledgeGraph{
		Summary: "notes about a project",
		Nodes: []types.GraphNode{
			{ID: "n1", Label: "project", Type: types.NodeConcept},
		},
	}
	item.ImportanceWeight = 0.42
	item.EmotionScore = 0.3

	if err := st.Items().Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := st.Items().Get(ctx, "item-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserID != "user-a" || got.Transcript != item.Transcript {
		t.Errorf("fields did not round-trip: %+v", got)
	}
	if got.Graph == nil || got.Graph.Summary != "notes about a project" {
		t.Errorf("graph did not round-trip: %+v", got.Graph)
	}
	if got.ImportanceWeight != 0.42 || got.EmotionScore != 0.3 {
		t.Errorf("scores did not round-trip: %+v", got)
	}
	if got.LastRetrieved != nil {
		t.Error("LastRetrieved should be nil before any retrieval")
	}
}

func TestItems_PutUpsert(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	item := testItem("item-1")
	if err := st.Items().Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	item.Transcript = "updated text"
	item.Status = types.MemoryArchived
	if err := st.Items().Put(ctx, item); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := st.Items().Get(ctx, "item-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Transcript != "updated text" || got.Status != types.MemoryArchived {
		t.Errorf("upsert did not replace fields: %+v", got)
	}

	all, err := st.Items().List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("upsert must not duplicate rows, got %d", len(all))
	}
}

func TestItems_GetMissing(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Items().Get(context.Background(), "nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestItems_ValidationErrors(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.Items().Put(ctx, nil); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("nil item: expected ErrInvalidInput, got %v", err)
	}
	if err := st.Items().Put(ctx, &types.MemoryItem{UserID: "u"}); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("missing ID: expected ErrInvalidInput, got %v", err)
	}
	if err := st.Items().Put(ctx, &types.MemoryItem{ID: "i"}); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("missing user: expected ErrInvalidInput, got %v", err)
	}
}

func TestItems_TouchRetrieval(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	if err := st.Items().Put(ctx, testItem("item-1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		if err := st.Items().TouchRetrieval(ctx, "item-1", at); err != nil {
			t.Fatalf("TouchRetrieval failed: %v", err)
		}
	}

	got, err := st.Items().Get(ctx, "item-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.RetrievalCount != 3 {
		t.Errorf("expected retrieval count 3, got %d", got.RetrievalCount)
	}
	if got.LastRetrieved == nil || !got.LastRetrieved.Equal(at) {
		t.Errorf("LastRetrieved did not round-trip: %v", got.LastRetrieved)
	}

	if err := st.Items().TouchRetrieval(ctx, "missing", at); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing item, got %v", err)
	}
}

func TestItems_UpdateDecayAndDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	if err := st.Items().Put(ctx, testItem("item-1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := st.Items().UpdateDecay(ctx, "item-1", 0.005, true); err != nil {
		t.Fatalf("UpdateDecay failed: %v", err)
	}
	got, err := st.Items().Get(ctx, "item-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != types.MemoryArchived || got.ImportanceWeight != 0.005 {
		t.Errorf("decay write did not land: %+v", got)
	}

	if err := st.Items().Delete(ctx, "item-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := st.Items().Get(ctx, "item-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.Items().Delete(ctx, "item-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestSessionsAndMessages(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	session := &types.ChatSession{
		ID:            "sess-1",
		UserID:        "user-a",
		Title:         "volcano chat",
		CreatedAt:     now,
		LastMessageAt: now,
	}
	if err := st.Sessions().Create(ctx, session); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := st.Sessions().Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "volcano chat" || got.AssociatedItemID != "" {
		t.Errorf("session did not round-trip: %+v", got)
	}

	later := now.Add(time.Minute)
	if err := st.Sessions().BumpLastMessage(ctx, "sess-1", later); err != nil {
		t.Fatalf("BumpLastMessage failed: %v", err)
	}
	got, _ = st.Sessions().Get(ctx, "sess-1")
	if !got.LastMessageAt.Equal(later) {
		t.Errorf("expected LastMessageAt %v, got %v", later, got.LastMessageAt)
	}

	// Messages come back timestamp-ascending regardless of insert order.
	m2 := &types.ChatMessage{ID: "m2", SessionID: "sess-1", Sender: types.SenderAI, Text: "hi", Timestamp: now.Add(2 * time.Second), AgentLogID: "log-1"}
	m1 := &types.ChatMessage{ID: "m1", SessionID: "sess-1", Sender: types.SenderUser, Text: "hello", Timestamp: now.Add(time.Second)}
	for _, m := range []*types.ChatMessage{m2, m1} {
		if err := st.Messages().Append(ctx, m); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	msgs, err := st.Messages().ListBySession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("ListBySession failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m1" || msgs[1].ID != "m2" {
		t.Errorf("unexpected message order: %+v", msgs)
	}

	found, err := st.Messages().FindByAgentLogID(ctx, "log-1")
	if err != nil {
		t.Fatalf("FindByAgentLogID failed: %v", err)
	}
	if found.ID != "m2" {
		t.Errorf("expected m2, got %s", found.ID)
	}

	if _, err := st.Messages().FindByAgentLogID(ctx, ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("empty log id must be ErrNotFound, not a match on unlinked messages: %v", err)
	}
}

func TestAgentLogs_AppendList(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	entry := &types.AgentLog{
		ID:              "log-1",
		UserID:          "user-a",
		SessionID:       "sess-1",
		Timestamp:       time.Now().UTC().Truncate(time.Second),
		UserQuery:       "what is this?",
		Intent:          "question_answering",
		Emotion:         "curious",
		GraphContext:    &types.KnowledgeGraph{Summary: "ctx"},
		ReasoningTrace:  "trace",
		FinalResponse:   "answer",
		ConfidenceScore: 0.8,
		SynthesisLog:    "log",
	}
	if err := st.AgentLogs().Append(ctx, entry); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	all, err := st.AgentLogs().List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 log, got %d", len(all))
	}
	got := all[0]
	if got.Intent != "question_answering" || got.ConfidenceScore != 0.8 {
		t.Errorf("log did not round-trip: %+v", got)
	}
	if got.GraphContext == nil || got.GraphContext.Summary != "ctx" {
		t.Errorf("graph context did not round-trip: %+v", got.GraphContext)
	}
}

func TestReports_PutAllGet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	reports := []*types.StrategyReport{
		{Intent: "qa", LastAnalyzed: now, TotalInteractions: 2, PositiveFeedbackCount: 1, AverageConfidence: 0.7, PerformanceScore: 0.6},
		{Intent: "greeting", LastAnalyzed: now, TotalInteractions: 1, AverageConfidence: 1, PerformanceScore: 1},
	}
	if err := st.Reports().PutAll(ctx, reports); err != nil {
		t.Fatalf("PutAll failed: %v", err)
	}

	got, err := st.Reports().Get(ctx, "qa")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TotalInteractions != 2 || got.PerformanceScore != 0.6 {
		t.Errorf("report did not round-trip: %+v", got)
	}

	// PutAll is an upsert per intent.
	reports[0].PerformanceScore = 0.9
	if err := st.Reports().PutAll(ctx, reports[:1]); err != nil {
		t.Fatalf("second PutAll failed: %v", err)
	}
	got, _ = st.Reports().Get(ctx, "qa")
	if got.PerformanceScore != 0.9 {
		t.Errorf("expected overwritten score 0.9, got %f", got.PerformanceScore)
	}

	if _, err := st.Reports().Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunFeedbackTx_CommitAndRollback(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := st.Items().Put(ctx, testItem("item-1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	msg := &types.ChatMessage{ID: "m1", SessionID: "sess-1", Sender: types.SenderAI, Text: "hi", Timestamp: now}
	if err := st.Messages().Append(ctx, msg); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	err := st.RunFeedbackTx(ctx, func(tx store.FeedbackTx) error {
		if err := tx.SetMessageFeedback("sess-1", "m1", 1); err != nil {
			return err
		}
		item, err := tx.GetItem("item-1")
		if err != nil {
			return err
		}
		return tx.UpdateItemScores(item.ID, 1, 1, 0.5, now)
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	item, _ := st.Items().Get(ctx, "item-1")
	if item.FeedbackScoreTotal != 1 || item.FeedbackCount != 1 || item.ImportanceWeight != 0.5 {
		t.Errorf("committed scores missing: %+v", item)
	}

	// A failing closure rolls everything back.
	boom := errors.New("boom")
	err = st.RunFeedbackTx(ctx, func(tx store.FeedbackTx) error {
		if err := tx.SetMessageFeedback("sess-1", "m1", -1); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected closure error back, got %v", err)
	}

	msgs, _ := st.Messages().ListBySession(ctx, "sess-1")
	if msgs[0].Feedback != 1 {
		t.Errorf("rolled-back write leaked: feedback = %d", msgs[0].Feedback)
	}
}

func TestUpsertGraph(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	w := 0.7
	nodes := []types.GraphNode{
		{ID: "n1", Type: types.NodeConcept, Label: "proposal"},
		{ID: "n2", Type: types.NodeEmotion, Label: "excitement"},
	}
	edges := []types.GraphEdge{
		{Source: "n1", Target: "n2", Relationship: types.RelFeelsLike, Weight: &w},
		{Source: "n1", Target: "ghost", Relationship: types.RelRelatedTo},
	}

	// Replaying the identical graph must not duplicate anything.
	for i := 0; i < 2; i++ {
		if err := st.UpsertGraph(ctx, nodes, edges); err != nil {
			t.Fatalf("UpsertGraph failed: %v", err)
		}
	}

	var nodeCount, edgeCount int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM graph_nodes").Scan(&nodeCount); err != nil {
		t.Fatalf("count nodes: %v", err)
	}
	if err := st.db.QueryRow("SELECT COUNT(*) FROM graph_edges").Scan(&edgeCount); err != nil {
		t.Fatalf("count edges: %v", err)
	}
	if nodeCount != 2 {
		t.Errorf("expected 2 nodes, got %d", nodeCount)
	}
	if edgeCount != 1 {
		t.Errorf("expected 1 edge (dangling edge skipped), got %d", edgeCount)
	}
}
