// Package agent implements the Brahma reasoning pipeline: an intent/emotion
// classification call followed by a protocol-driven reasoning call with a
// small fixed tool set. Every successful run appends one immutable agent log.
package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/brahma/internal/llm"
	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

const (
	// ApologyResponse is the canned degraded response returned when the
	// reasoning step yields no usable output.
	ApologyResponse = "I'm sorry, I encountered an issue while formulating my thoughts. Please try again."

	// FailedRunLogID is the sentinel agent-log ID attached to degraded
	// responses. No log document exists under this ID.
	FailedRunLogID = "failed-run"

	// maxToolIterations bounds the internal Action/Observation loop. The
	// loop is opaque to the orchestrator; only the final output shape is
	// contractual.
	maxToolIterations = 3
)

// Input carries one turn's worth of reasoning context.
type Input struct {
	UserID          string
	SessionID       string
	UserQuery       string
	DocumentContext string                   // legacy text fallback
	Graph           *types.KnowledgeGraph    // preferred context, may be nil
	History         []types.ChatHistoryEntry // timestamp-ascending
}

// Output is the pipeline result consumed by the orchestrator.
type Output struct {
	ResponseText    string
	AgentLogID      string
	DetectedEmotion string
}

// Pipeline runs the two sequential LLM calls of a reasoning turn.
type Pipeline struct {
	generator llm.TextGenerator
	tools     *ToolRegistry
	logs      store.AgentLogStore
}

// NewPipeline creates a reasoning pipeline. All three collaborators are
// required.
func NewPipeline(generator llm.TextGenerator, tools *ToolRegistry, logs store.AgentLogStore) (*Pipeline, error) {
	if generator == nil {
		return nil, fmt.Errorf("text generator is required")
	}
	if tools == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if logs == nil {
		return nil, fmt.Errorf("agent log store is required")
	}
	return &Pipeline{generator: generator, tools: tools, logs: logs}, nil
}

// Run executes classify then reason-and-respond.
//
// A classification failure is fatal to the turn and propagates. A reasoning
// failure is not: the pipeline degrades to the canned apology with the
// sentinel log ID and the emotion from the classification step.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Output, error) {
	classification, err := p.classify(ctx, in.UserQuery)
	if err != nil {
		return nil, fmt.Errorf("intent classification failed: %w", err)
	}

	result := p.reason(ctx, in, classification)
	if result == nil {
		log.Printf("agent: reasoning produced no usable output for session %s, returning degraded response", in.SessionID)
		return &Output{
			ResponseText:    ApologyResponse,
			AgentLogID:      FailedRunLogID,
			DetectedEmotion: classification.Emotion,
		}, nil
	}

	entry := &types.AgentLog{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		SessionID:       in.SessionID,
		Timestamp:       time.Now(),
		UserQuery:       in.UserQuery,
		Intent:          classification.Intent,
		Emotion:         classification.Emotion,
		DocumentContext: in.DocumentContext,
		GraphContext:    in.Graph,
		ReasoningTrace:  result.ReasoningTrace,
		FinalResponse:   result.FinalResponse,
		ConfidenceScore: result.ConfidenceScore,
		SynthesisLog:    result.SynthesisLog,
	}
	if err := p.logs.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to write agent log: %w", err)
	}

	return &Output{
		ResponseText:    result.FinalResponse,
		AgentLogID:      entry.ID,
		DetectedEmotion: classification.Emotion,
	}, nil
}

// classify runs the intent/emotion prompt. Labels are open string tags; no
// enum validation is applied.
func (p *Pipeline) classify(ctx context.Context, query string) (*llm.Classification, error) {
	raw, err := p.generator.Complete(ctx, llm.ClassificationPrompt(query))
	if err != nil {
		return nil, err
	}
	return llm.ParseClassification(raw)
}

// reason drives the protocol loop: call the reasoning prompt, execute at most
// one tool per iteration, feed the observation back, and stop on the first
// final JSON object. Returns nil when no usable output was produced within
// the iteration budget.
func (p *Pipeline) reason(ctx context.Context, in Input, c *llm.Classification) *llm.ReasoningResult {
	promptInput := llm.ReasoningPromptInput{
		UserQuery:       in.UserQuery,
		Intent:          c.Intent,
		Emotion:         c.Emotion,
		DocumentContext: in.DocumentContext,
		History:         in.History,
		ToolCatalog:     p.tools.Catalog(),
	}
	if in.Graph != nil {
		promptInput.GraphSummary = in.Graph.Summary
	}

	for i := 0; i <= maxToolIterations; i++ {
		raw, err := p.generator.Complete(ctx, llm.ReasoningPrompt(promptInput))
		if err != nil {
			log.Printf("agent: reasoning call failed: %v", err)
			return nil
		}

		if name, args, ok := llm.ParseAction(raw); ok && i < maxToolIterations {
			observation, toolErr := p.tools.Execute(ctx, name, args)
			if toolErr != nil {
				observation = fmt.Sprintf("%s failed: %v", name, toolErr)
			}
			promptInput.Observations = append(promptInput.Observations, fmt.Sprintf("%s -> %s", name, observation))
			continue
		}

		return llm.ParseReasoning(raw)
	}

	return nil
}
