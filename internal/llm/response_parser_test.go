package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	c, err := ParseClassification(`{"intent": "question_answering", "emotion": "curious"}`)
	require.NoError(t, err)
	assert.Equal(t, "question_answering", c.Intent)
	assert.Equal(t, "curious", c.Emotion)
}

func TestParseClassification_MarkdownFences(t *testing.T) {
	raw := "Here is the classification:\n```json\n{\"intent\": \"greeting\", \"emotion\": \"happy\"}\n```\nDone."
	c, err := ParseClassification(raw)
	require.NoError(t, err)
	assert.Equal(t, "greeting", c.Intent)
}

func TestParseClassification_MissingIntentFails(t *testing.T) {
	_, err := ParseClassification(`{"emotion": "sad"}`)
	assert.Error(t, err)

	_, err = ParseClassification("I could not classify this.")
	assert.Error(t, err)
}

func TestParseClassification_EmptyEmotionDefaultsNeutral(t *testing.T) {
	c, err := ParseClassification(`{"intent": "task_execution"}`)
	require.NoError(t, err)
	assert.Equal(t, "neutral", c.Emotion)
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	raw := `prefix {"intent": "qa", "emotion": "a } in a string"} suffix`
	c, err := ParseClassification(raw)
	require.NoError(t, err)
	assert.Equal(t, "a } in a string", c.Emotion)
}

func TestParseAction(t *testing.T) {
	name, args, ok := ParseAction(`Thought: I need the weather.
Action: getWeather({"location": "Paris"})`)
	require.True(t, ok)
	assert.Equal(t, "getWeather", name)
	assert.Equal(t, `{"location": "Paris"}`, args)
}

func TestParseAction_EmptyArgs(t *testing.T) {
	name, args, ok := ParseAction(`Action: getTime()`)
	require.True(t, ok)
	assert.Equal(t, "getTime", name)
	assert.Equal(t, "", args)
}

func TestParseAction_NoAction(t *testing.T) {
	_, _, ok := ParseAction(`{"finalResponse": "done"}`)
	assert.False(t, ok)
}

func TestParseReasoning(t *testing.T) {
	r := ParseReasoning(`{"reasoningTrace": "thought", "finalResponse": "Hello!", "confidenceScore": 0.9, "synthesisLog": "combined"}`)
	require.NotNil(t, r)
	assert.Equal(t, "Hello!", r.FinalResponse)
	assert.InDelta(t, 0.9, r.ConfidenceScore, 1e-9)
}

func TestParseReasoning_UnusableReturnsNil(t *testing.T) {
	assert.Nil(t, ParseReasoning("not json at all"))
	assert.Nil(t, ParseReasoning(`{"reasoningTrace": "thought"}`), "missing finalResponse")
	assert.Nil(t, ParseReasoning(""))
}

func TestParseReasoning_ClampsConfidence(t *testing.T) {
	high := ParseReasoning(`{"finalResponse": "x", "confidenceScore": 3.2}`)
	require.NotNil(t, high)
	assert.Equal(t, 1.0, high.ConfidenceScore)

	low := ParseReasoning(`{"finalResponse": "x", "confidenceScore": -0.5}`)
	require.NotNil(t, low)
	assert.Equal(t, 0.0, low.ConfidenceScore)
}

func TestParseGraph(t *testing.T) {
	raw := `{
		"summary": "A project proposal.",
		"nodes": [
			{"id": "n1", "label": "proposal", "type": "Concept"},
			{"id": "n2", "label": "excitement", "type": "Emotion"}
		],
		"edges": [
			{"source": "n1", "target": "n2", "relationship": "feels-like", "weight": 0.7}
		]
	}`
	g := ParseGraph(raw)
	require.NotNil(t, g)
	assert.Equal(t, "A project proposal.", g.Summary)
	assert.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)
	require.NotNil(t, g.Edges[0].Weight)
	assert.InDelta(t, 0.7, *g.Edges[0].Weight, 1e-9)
}

func TestParseGraph_DropsInvalidPieces(t *testing.T) {
	raw := `{
		"nodes": [
			{"id": "n1", "label": "ok", "type": "Topic"},
			{"id": "", "label": "no id", "type": "Topic"},
			{"id": "n3", "label": "bad type", "type": "Thing"}
		],
		"edges": [
			{"source": "n1", "target": "missing", "relationship": "related-to"},
			{"source": "n1", "target": "n1", "relationship": "invented-rel"},
			{"source": "n1", "target": "n1", "relationship": "related-to", "weight": 7.0}
		]
	}`
	g := ParseGraph(raw)
	require.NotNil(t, g)
	assert.Len(t, g.Nodes, 1)
	require.Len(t, g.Edges, 1)
	assert.Nil(t, g.Edges[0].Weight, "out-of-range weight is discarded, edge kept")
}

func TestParseGraph_NilForUnusable(t *testing.T) {
	assert.Nil(t, ParseGraph("no graph here"))
	assert.Nil(t, ParseGraph(`{"summary": "only prose"}`), "a graph with zero valid nodes is nil")
}
