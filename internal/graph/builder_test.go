package graph

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/brahma/pkg/types"
)

type stubGenerator struct {
	response string
	err      error
}

func (g *stubGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	return g.response, g.err
}

func (g *stubGenerator) GetModel() string { return "stub" }

// recordingStore captures upserted graphs; optionally fails.
type recordingStore struct {
	mu    sync.Mutex
	nodes [][]types.GraphNode
	edges [][]types.GraphEdge
	err   error
}

func (s *recordingStore) UpsertGraph(ctx context.Context, nodes []types.GraphNode, edges []types.GraphEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.nodes = append(s.nodes, nodes)
	s.edges = append(s.edges, edges)
	return nil
}

func (s *recordingStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

const graphResponse = `{
	"summary": "Quarterly results.",
	"nodes": [
		{"id": "topic_earnings", "label": "earnings", "type": "Topic"},
		{"id": "emotion_pleased", "label": "pleased", "type": "Emotion"}
	],
	"edges": [
		{"source": "topic_earnings", "target": "emotion_pleased", "relationship": "feels-like"}
	]
}`

func TestBuilder_Build(t *testing.T) {
	sink := &recordingStore{}
	b := NewBuilder(&stubGenerator{response: graphResponse}, sink)

	g, err := b.Build(context.Background(), "some extracted text")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "Quarterly results.", g.Summary)
	assert.Len(t, g.Nodes, 2)

	b.Flush()
	require.Equal(t, 1, sink.calls())
	assert.Len(t, sink.nodes[0], 2)
	assert.Len(t, sink.edges[0], 1)
}

func TestBuilder_LLMErrorPropagates(t *testing.T) {
	sink := &recordingStore{}
	b := NewBuilder(&stubGenerator{err: fmt.Errorf("model offline")}, sink)

	g, err := b.Build(context.Background(), "text")
	assert.Error(t, err)
	assert.Nil(t, g)

	b.Flush()
	assert.Zero(t, sink.calls(), "no store write on LLM failure")
}

func TestBuilder_EmptyOutputIsNilNotError(t *testing.T) {
	sink := &recordingStore{}
	b := NewBuilder(&stubGenerator{response: "the model rambled"}, sink)

	g, err := b.Build(context.Background(), "text")
	require.NoError(t, err)
	assert.Nil(t, g)

	b.Flush()
	assert.Zero(t, sink.calls())
}

func TestBuilder_StoreFailureIsNonFatal(t *testing.T) {
	sink := &recordingStore{err: fmt.Errorf("graph database down")}
	b := NewBuilder(&stubGenerator{response: graphResponse}, sink)

	g, err := b.Build(context.Background(), "text")
	require.NoError(t, err, "the caller never sees store failures")
	assert.NotNil(t, g)
	b.Flush()
}

func TestBuilder_NilStoreUsesNoop(t *testing.T) {
	b := NewBuilder(&stubGenerator{response: graphResponse}, nil)
	g, err := b.Build(context.Background(), "text")
	require.NoError(t, err)
	assert.NotNil(t, g)
	b.Flush()
}
