package types

import "time"

// AgentLog is an immutable record of one orchestrator turn: the classified
// intent and emotion, the context snapshot used, the full reasoning trace,
// and the final response with its confidence. Written once per successful
// pipeline run; read by the meta-learning job; never mutated.
//
// Intent and emotion are open string tags emitted by the model, not enums.
// Downstream grouping keys by raw string equality.
type AgentLog struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	SessionID       string          `json:"session_id"`
	Timestamp       time.Time       `json:"timestamp"`
	UserQuery       string          `json:"user_query"`
	Intent          string          `json:"intent"`
	Emotion         string          `json:"emotion"`
	DocumentContext string          `json:"document_context,omitempty"`
	GraphContext    *KnowledgeGraph `json:"graph_context,omitempty"`
	ReasoningTrace  string          `json:"reasoning_trace"`
	FinalResponse   string          `json:"final_response"`
	ConfidenceScore float64         `json:"confidence_score"` // in [0,1]
	SynthesisLog    string          `json:"synthesis_log"`
}
