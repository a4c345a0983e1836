package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/brahma/internal/perception"
	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

const graphOK = `{
	"summary": "A proposal for a new ML model.",
	"nodes": [
		{"id": "concept_proposal", "label": "proposal", "type": "Concept"},
		{"id": "emotion_excitement", "label": "excitement", "type": "Emotion", "metadata": {"intensity": 0.6}}
	],
	"edges": [
		{"source": "concept_proposal", "target": "emotion_excitement", "relationship": "feels-like"}
	]
}`

func TestProcessUpload_SupportedWithGraph(t *testing.T) {
	env := newTestEnv(t, graphOK)

	item, err := env.orch.ProcessUpload(context.Background(), UploadInput{
		UserID:   "user-a",
		FileName: "proposal.pdf",
		FileType: types.FileTypePDF,
	})
	require.NoError(t, err)

	require.NotNil(t, item.Graph)
	assert.Equal(t, "A proposal for a new ML model.", item.Graph.Summary)
	assert.InDelta(t, 0.6, item.EmotionScore, 1e-9)
	assert.Equal(t, types.MemoryActive, item.Status)
	assert.NotContains(t, item.Transcript, degradedExtractionPrefix)

	// The stored copy round-trips with the graph.
	stored, err := env.store.Items().Get(context.Background(), item.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Graph)
	assert.Len(t, stored.Graph.Nodes, 2)
	assert.Equal(t, item.Graph.Summary, stored.ContextText(), "graph summary is the context text")
}

func TestProcessUpload_UnsupportedSkipsGraphBuild(t *testing.T) {
	env := newTestEnv(t)

	item, err := env.orch.ProcessUpload(context.Background(), UploadInput{
		UserID:   "user-a",
		FileName: "archive.zip",
		FileType: types.FileTypeOther,
	})
	require.NoError(t, err)

	assert.Zero(t, env.gen.calls, "no LLM call for unsupported types")
	assert.Nil(t, item.Graph)
	assert.Contains(t, item.Transcript, perception.UnsupportedMarker)
	assert.Equal(t, types.MemoryActive, item.Status, "unsupported uploads are still stored")
}

func TestProcessUpload_GraphFailureDegradesToText(t *testing.T) {
	env := newTestEnv(t)
	env.gen.errs = []error{fmt.Errorf("model offline")}

	item, err := env.orch.ProcessUpload(context.Background(), UploadInput{
		UserID:   "user-a",
		FileName: "notes.md",
		FileType: types.FileTypeMD,
	})
	require.NoError(t, err, "a graph failure must not fail the upload")

	assert.Nil(t, item.Graph)
	assert.True(t, strings.HasPrefix(item.Transcript, degradedExtractionPrefix))
	assert.Contains(t, item.Transcript, "notes.md")
}

func TestProcessUpload_EmptyGraphKeepsPlainText(t *testing.T) {
	env := newTestEnv(t, "the model rambled instead of emitting JSON")

	item, err := env.orch.ProcessUpload(context.Background(), UploadInput{
		UserID:   "user-a",
		FileName: "notes.txt",
		FileType: types.FileTypeText,
	})
	require.NoError(t, err)

	assert.Nil(t, item.Graph)
	assert.False(t, strings.HasPrefix(item.Transcript, degradedExtractionPrefix),
		"an empty graph is not an error, so no degraded prefix")
}

func TestProcessUpload_InitialScoringBlock(t *testing.T) {
	env := newTestEnv(t)

	item, err := env.orch.ProcessUpload(context.Background(), UploadInput{
		UserID:   "user-a",
		FileName: "archive.zip",
		FileType: types.FileTypeOther,
	})
	require.NoError(t, err)

	assert.Zero(t, item.RetrievalCount)
	assert.Nil(t, item.LastRetrieved)
	assert.Zero(t, item.FeedbackScoreTotal)
	assert.Zero(t, item.FeedbackCount)
	// Fresh item, no feedback, no emotion: only the recency term.
	assert.InDelta(t, 0.2, item.ImportanceWeight, 1e-9)
}

func TestProcessUpload_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.orch.ProcessUpload(ctx, UploadInput{FileName: "a.txt", FileType: types.FileTypeText})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	_, err = env.orch.ProcessUpload(ctx, UploadInput{UserID: "user-a", FileType: types.FileTypeText})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}
