// Package sqlite implements the Brahma document store on SQLite. It is the
// default backend: a single local file, no external services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

// Store implements store.Store (and graph.Store) on a single SQLite database.
type Store struct {
	db *sql.DB

	items    *itemStore
	sessions *sessionStore
	messages *messageStore
	logs     *agentLogStore
	reports  *reportStore
}

// New opens (or creates) the SQLite database at dsn, configures WAL mode, and
// creates the schema.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Using a single open
	// connection serialises writes and avoids SQLITE_BUSY errors under
	// concurrent load. WAL mode allows concurrent readers to proceed without
	// blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Wait instead of failing with an immediate SQLITE_BUSY when the
	// connection is held by another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &Store{db: db}
	s.items = &itemStore{db: db}
	s.sessions = &sessionStore{db: db}
	s.messages = &messageStore{db: db}
	s.logs = &agentLogStore{db: db}
	s.reports = &reportStore{db: db}
	return s, nil
}

func (s *Store) Items() store.MemoryItemStore       { return s.items }
func (s *Store) Sessions() store.SessionStore       { return s.sessions }
func (s *Store) Messages() store.MessageStore       { return s.messages }
func (s *Store) AgentLogs() store.AgentLogStore     { return s.logs }
func (s *Store) Reports() store.StrategyReportStore { return s.reports }

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunFeedbackTx executes fn inside a single SQL transaction spanning the
// message row and the memory-item row it touches.
func (s *Store) RunFeedbackTx(ctx context.Context, fn func(tx store.FeedbackTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&feedbackTx{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// feedbackTx adapts a sql.Tx to the store.FeedbackTx interface.
type feedbackTx struct {
	tx *sql.Tx
}

func (t *feedbackTx) GetMessage(sessionID, messageID string) (*types.ChatMessage, error) {
	row := t.tx.QueryRow(`
		SELECT id, session_id, sender, text, audio_ref, timestamp, feedback, agent_log_id, detected_emotion
		FROM chat_messages WHERE id = ? AND session_id = ?`, messageID, sessionID)
	return scanMessage(row)
}

func (t *feedbackTx) SetMessageFeedback(sessionID, messageID string, value int) error {
	res, err := t.tx.Exec(`UPDATE chat_messages SET feedback = ? WHERE id = ? AND session_id = ?`,
		value, messageID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	return requireRow(res)
}

func (t *feedbackTx) GetItem(id string) (*types.MemoryItem, error) {
	row := t.tx.QueryRow(itemSelect+` WHERE id = ?`, id)
	return scanItem(row)
}

func (t *feedbackTx) UpdateItemScores(id string, feedbackTotal, feedbackCount int, weight float64, updatedAt time.Time) error {
	res, err := t.tx.Exec(`
		UPDATE memory_items
		SET feedback_score_total = ?, feedback_count = ?, importance_weight = ?, updated_at = ?
		WHERE id = ?`,
		feedbackTotal, feedbackCount, weight, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update item scores: %w", err)
	}
	return requireRow(res)
}

// requireRow maps a zero-row UPDATE/DELETE to store.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}
