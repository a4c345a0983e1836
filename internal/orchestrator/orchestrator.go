// Package orchestrator implements the Brahma conversation turn: session
// resolution, context gathering under explicit ownership checks, the
// reasoning pipeline, and transactional persistence of turn results.
//
// The document store is accessed with an all-access credential, so no lower
// layer enforces access rules; every ownership check here is deliberate and
// mandatory.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/brahma/internal/agent"
	"github.com/scrypster/brahma/internal/graph"
	"github.com/scrypster/brahma/internal/speech"
	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

const (
	// NewSessionID is the literal session identifier clients send to start a
	// fresh conversation.
	NewSessionID = "new"

	// TempSessionPrefix marks a client-generated placeholder id that must be
	// replaced with a real session, same as "new".
	TempSessionPrefix = "temp-"

	// titleWordLimit caps auto-derived session titles at the first five
	// words of the opening query.
	titleWordLimit = 5
)

// Orchestrator drives conversation turns, uploads, and feedback.
type Orchestrator struct {
	store    store.Store
	pipeline *agent.Pipeline
	builder  *graph.Builder
	tts      speech.Synthesizer
}

// New creates an Orchestrator. The store and pipeline are required; builder
// and tts may be nil when the corresponding side channels are disabled.
func New(st store.Store, pipeline *agent.Pipeline, builder *graph.Builder, tts speech.Synthesizer) (*Orchestrator, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("reasoning pipeline is required")
	}
	if tts == nil {
		tts = speech.Disabled{}
	}
	return &Orchestrator{store: st, pipeline: pipeline, builder: builder, tts: tts}, nil
}

// ChatInput is one user turn.
type ChatInput struct {
	UserID           string
	SessionID        string // "new", "temp-…", or an existing session id
	UserQuery        string
	AssociatedItemID string // memory item to use as context, if any
	SessionTitle     string // document-derived title for a new session
	Voice            string // TTS voice selector
}

// ChatOutput is the turn result returned to the caller.
type ChatOutput struct {
	ResponseText string
	AudioRef     string // empty when synthesis failed or is disabled
	SessionID    string // the real session id, especially for new sessions
}

// ProcessChat runs one conversation turn:
//
//	ResolveSession → PersistUserMessage → GatherContext → Reason →
//	PersistAIMessage → FinalizeSession
//
// Steps are strictly sequential; later steps depend on earlier side effects.
// Permission and validation failures propagate to the caller; writes that
// already committed stay committed (at-least-once with partial effects).
func (o *Orchestrator) ProcessChat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", store.ErrInvalidInput)
	}
	if strings.TrimSpace(in.UserQuery) == "" {
		return nil, fmt.Errorf("%w: query is required", store.ErrInvalidInput)
	}

	sessionID, err := o.resolveSession(ctx, in)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userMsg := &types.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    types.SenderUser,
		Text:      in.UserQuery,
		Timestamp: now,
	}
	if err := o.store.Messages().Append(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	docContext, itemGraph, err := o.gatherItemContext(ctx, in.UserID, in.AssociatedItemID)
	if err != nil {
		return nil, err
	}

	history, err := o.gatherHistory(ctx, in.UserID, sessionID)
	if err != nil {
		return nil, err
	}

	agentOut, err := o.pipeline.Run(ctx, agent.Input{
		UserID:          in.UserID,
		SessionID:       sessionID,
		UserQuery:       in.UserQuery,
		DocumentContext: docContext,
		Graph:           itemGraph,
		History:         history,
	})
	if err != nil {
		return nil, err
	}

	// Best-effort speech synthesis. Failure costs only the audio reference.
	audioRef := ""
	if agentOut.ResponseText != "" {
		ref, ttsErr := o.tts.Synthesize(ctx, agentOut.ResponseText, in.Voice)
		if ttsErr != nil {
			log.Printf("orchestrator: TTS failed for session %s, proceeding without audio: %v", sessionID, ttsErr)
		} else {
			audioRef = ref
		}
	}

	aiMsg := &types.ChatMessage{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		Sender:          types.SenderAI,
		Text:            agentOut.ResponseText,
		AudioRef:        audioRef,
		Timestamp:       time.Now(),
		Feedback:        types.FeedbackNeutral,
		AgentLogID:      agentOut.AgentLogID,
		DetectedEmotion: agentOut.DetectedEmotion,
	}
	if err := o.store.Messages().Append(ctx, aiMsg); err != nil {
		return nil, fmt.Errorf("failed to store AI message: %w", err)
	}

	if err := o.store.Sessions().BumpLastMessage(ctx, sessionID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to finalize session: %w", err)
	}

	return &ChatOutput{
		ResponseText: agentOut.ResponseText,
		AudioRef:     audioRef,
		SessionID:    sessionID,
	}, nil
}

// resolveSession validates the incoming session identifier, creating a new
// session for "new"/temporary ids. Any other placeholder value fails fast
// with a validation error; no guessing.
func (o *Orchestrator) resolveSession(ctx context.Context, in ChatInput) (string, error) {
	id := in.SessionID

	if id == NewSessionID || strings.HasPrefix(id, TempSessionPrefix) {
		title := deriveTitle(in.UserQuery)
		if in.AssociatedItemID != "" && in.SessionTitle != "" {
			title = in.SessionTitle
		}

		now := time.Now()
		session := &types.ChatSession{
			ID:               uuid.NewString(),
			UserID:           in.UserID,
			Title:            title,
			AssociatedItemID: in.AssociatedItemID,
			CreatedAt:        now,
			LastMessageAt:    now,
		}
		if err := o.store.Sessions().Create(ctx, session); err != nil {
			return "", fmt.Errorf("failed to create session: %w", err)
		}
		return session.ID, nil
	}

	if id == "" || id == "null" || id == "undefined" {
		return "", fmt.Errorf("%w: invalid session identifier %q", store.ErrInvalidInput, id)
	}

	return id, nil
}

// deriveTitle builds a session title from the first five words of the query,
// ellipsis-suffixed when the query is longer than that.
func deriveTitle(query string) string {
	words := strings.Fields(strings.TrimSpace(query))
	if len(words) > titleWordLimit {
		return strings.Join(words[:titleWordLimit], " ") + "..."
	}
	return strings.TrimSpace(query)
}

// gatherItemContext bumps retrieval metadata, then fetches the associated
// memory item under an ownership check. The increment commits before the
// read, so a concurrent reader sees the updated counter; that staleness is
// acceptable.
func (o *Orchestrator) gatherItemContext(ctx context.Context, userID, itemID string) (string, *types.KnowledgeGraph, error) {
	if itemID == "" {
		return "", nil, nil
	}

	if err := o.store.Items().TouchRetrieval(ctx, itemID, time.Now()); err != nil {
		return "", nil, fmt.Errorf("failed to update retrieval metadata: %w", err)
	}

	item, err := o.store.Items().Get(ctx, itemID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch memory item: %w", err)
	}

	if item.UserID != userID {
		log.Printf("SECURITY WARNING (BLOCKED): user %s attempted to access memory item %s they do not own", userID, itemID)
		return "", nil, fmt.Errorf("%w: you do not have permission to access the specified file context", store.ErrPermissionDenied)
	}

	context := item.ContextText()
	if context == "" {
		context = fmt.Sprintf("No text content available for %s.", item.FileName)
	}
	return context, item.Graph, nil
}

// gatherHistory fetches the full session message log, timestamp-ascending,
// after verifying session ownership.
func (o *Orchestrator) gatherHistory(ctx context.Context, userID, sessionID string) ([]types.ChatHistoryEntry, error) {
	session, err := o.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if session.UserID != userID {
		log.Printf("SECURITY WARNING (BLOCKED): user %s attempted to access session %s they do not own", userID, sessionID)
		return nil, fmt.Errorf("%w: you do not have permission to access the specified chat session", store.ErrPermissionDenied)
	}

	messages, err := o.store.Messages().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat history: %w", err)
	}

	history := make([]types.ChatHistoryEntry, 0, len(messages))
	for _, msg := range messages {
		history = append(history, types.ChatHistoryEntry{Sender: msg.Sender, Text: msg.Text})
	}
	return history, nil
}
