// Package store provides composable document-store interfaces for the Brahma
// core: memory items, chat sessions and their message logs, agent logs, and
// strategy reports.
//
// The interfaces are small and focused so backends can implement them
// independently and be composed as needed. Two backends ship with the
// repository: SQLite (default) and PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/scrypster/brahma/pkg/types"
)

// MemoryItemStore provides CRUD and the atomic scoring mutations for memory
// items.
type MemoryItemStore interface {
	// Put creates or updates a memory item (upsert semantics).
	Put(ctx context.Context, item *types.MemoryItem) error

	// Get retrieves a memory item by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*types.MemoryItem, error)

	// List returns all memory items. Used by the nightly decay sweep.
	List(ctx context.Context) ([]*types.MemoryItem, error)

	// TouchRetrieval atomically increments retrieval_count and sets
	// last_retrieved for the given item. The increment commits before any
	// subsequent Get, so a concurrent reader observes the updated counter.
	// Returns ErrNotFound if the item does not exist.
	TouchRetrieval(ctx context.Context, id string, at time.Time) error

	// UpdateDecay writes a decayed importance weight and, when archive is
	// true, flips the item's status to archived in the same write.
	UpdateDecay(ctx context.Context, id string, weight float64, archive bool) error

	// Delete removes a memory item permanently. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// SessionStore manages chat session documents.
type SessionStore interface {
	// Create persists a new session. The caller assigns the ID.
	Create(ctx context.Context, session *types.ChatSession) error

	// Get retrieves a session by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*types.ChatSession, error)

	// BumpLastMessage sets the session's lastMessageAt. Last-write-wins
	// across concurrent turns in the same session.
	BumpLastMessage(ctx context.Context, id string, at time.Time) error
}

// MessageStore manages a session's append-only message log.
type MessageStore interface {
	// Append adds a message to its session's log.
	Append(ctx context.Context, msg *types.ChatMessage) error

	// ListBySession returns all messages of a session, timestamp-ascending.
	ListBySession(ctx context.Context, sessionID string) ([]*types.ChatMessage, error)

	// FindByAgentLogID returns the single message referencing the given
	// agent log (at most one match expected). Returns ErrNotFound when the
	// link is broken; callers tolerate that.
	FindByAgentLogID(ctx context.Context, agentLogID string) (*types.ChatMessage, error)
}

// AgentLogStore manages the immutable per-turn agent logs.
type AgentLogStore interface {
	// Append writes one agent log. Logs are never mutated.
	Append(ctx context.Context, entry *types.AgentLog) error

	// List returns all agent logs. Used by the meta-learning batch job.
	List(ctx context.Context) ([]*types.AgentLog, error)
}

// StrategyReportStore manages per-intent strategy reports.
type StrategyReportStore interface {
	// PutAll overwrites the given reports in one batch, keyed by intent.
	PutAll(ctx context.Context, reports []*types.StrategyReport) error

	// Get retrieves the report for an intent. Returns ErrNotFound if absent.
	Get(ctx context.Context, intent string) (*types.StrategyReport, error)
}

// FeedbackTx is the view of a store transaction available to the feedback
// handler. All reads and writes inside one FeedbackTx commit atomically; the
// transaction spans the message document and the memory-item document it
// touches.
type FeedbackTx interface {
	// GetMessage reads a message inside the transaction.
	GetMessage(sessionID, messageID string) (*types.ChatMessage, error)

	// SetMessageFeedback updates a message's feedback field.
	SetMessageFeedback(sessionID, messageID string, value int) error

	// GetItem reads a memory item inside the transaction.
	// Returns ErrNotFound if the item was deleted concurrently.
	GetItem(id string) (*types.MemoryItem, error)

	// UpdateItemScores writes the feedback counters and recomputed
	// importance weight of a memory item.
	UpdateItemScores(id string, feedbackTotal, feedbackCount int, weight float64, updatedAt time.Time) error
}

// Store is the composite document store consumed by the orchestrator and the
// batch jobs.
type Store interface {
	Items() MemoryItemStore
	Sessions() SessionStore
	Messages() MessageStore
	AgentLogs() AgentLogStore
	Reports() StrategyReportStore

	// RunFeedbackTx executes fn inside a single store transaction. If fn
	// returns an error the transaction is rolled back and the error is
	// returned unchanged.
	RunFeedbackTx(ctx context.Context, fn func(tx FeedbackTx) error) error

	// Close releases any resources held by the store.
	Close() error
}
