package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

const messageSelect = `
	SELECT id, session_id, sender, text, audio_ref, "timestamp", feedback, agent_log_id, detected_emotion
	FROM chat_messages`

type sessionStore struct {
	db *sql.DB
}

func (s *sessionStore) Create(ctx context.Context, session *types.ChatSession) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return fmt.Errorf("%w: session ID and user ID are required", store.ErrInvalidInput)
	}

	var associatedItemID interface{}
	if session.AssociatedItemID != "" {
		associatedItemID = session.AssociatedItemID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, user_id, title, associated_item_id, created_at, last_message_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		session.ID, session.UserID, session.Title, associatedItemID,
		session.CreatedAt, session.LastMessageAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to create session: %w", err)
	}
	return nil
}

func (s *sessionStore) Get(ctx context.Context, id string) (*types.ChatSession, error) {
	var (
		session          types.ChatSession
		associatedItemID sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, associated_item_id, created_at, last_message_at
		FROM chat_sessions WHERE id = $1`, id).Scan(
		&session.ID, &session.UserID, &session.Title, &associatedItemID,
		&session.CreatedAt, &session.LastMessageAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get session: %w", err)
	}
	session.AssociatedItemID = associatedItemID.String
	return &session, nil
}

func (s *sessionStore) BumpLastMessage(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE chat_sessions SET last_message_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to bump last message: %w", err)
	}
	return requireRow(res)
}

type messageStore struct {
	db *sql.DB
}

func (s *messageStore) Append(ctx context.Context, msg *types.ChatMessage) error {
	if msg == nil || msg.ID == "" || msg.SessionID == "" {
		return fmt.Errorf("%w: message ID and session ID are required", store.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, session_id, sender, text, audio_ref, "timestamp", feedback, agent_log_id, detected_emotion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		msg.ID, msg.SessionID, string(msg.Sender), msg.Text, msg.AudioRef,
		msg.Timestamp, msg.Feedback, msg.AgentLogID, msg.DetectedEmotion)
	if err != nil {
		return fmt.Errorf("postgres: failed to append message: %w", err)
	}
	return nil
}

func (s *messageStore) ListBySession(ctx context.Context, sessionID string) ([]*types.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		messageSelect+` WHERE session_id = $1 ORDER BY "timestamp"`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*types.ChatMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (s *messageStore) FindByAgentLogID(ctx context.Context, agentLogID string) (*types.ChatMessage, error) {
	if agentLogID == "" {
		return nil, store.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		messageSelect+` WHERE agent_log_id = $1 LIMIT 1`, agentLogID)
	return scanMessage(row)
}

func scanMessage(row scanner) (*types.ChatMessage, error) {
	var (
		msg    types.ChatMessage
		sender string
	)
	err := row.Scan(&msg.ID, &msg.SessionID, &sender, &msg.Text, &msg.AudioRef,
		&msg.Timestamp, &msg.Feedback, &msg.AgentLogID, &msg.DetectedEmotion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan message: %w", err)
	}
	msg.Sender = types.Sender(sender)
	return &msg, nil
}
