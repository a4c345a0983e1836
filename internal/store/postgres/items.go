package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

const itemSelect = `
	SELECT id, user_id, file_name, file_type, status, transcript, graph_json,
	       retrieval_count, last_retrieved, importance_weight, emotion_score,
	       feedback_score_total, feedback_count, created_at, updated_at
	FROM memory_items`

type itemStore struct {
	db *sql.DB
}

func (s *itemStore) Put(ctx context.Context, item *types.MemoryItem) error {
	if item == nil {
		return store.ErrInvalidInput
	}
	if item.ID == "" {
		return fmt.Errorf("%w: item ID is required", store.ErrInvalidInput)
	}
	if item.UserID == "" {
		return fmt.Errorf("%w: item user ID is required", store.ErrInvalidInput)
	}

	var graphJSON []byte
	if item.Graph != nil {
		var err error
		graphJSON, err = json.Marshal(item.Graph)
		if err != nil {
			return fmt.Errorf("postgres: failed to marshal graph: %w", err)
		}
	}

	var lastRetrieved interface{}
	if item.LastRetrieved != nil {
		lastRetrieved = *item.LastRetrieved
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memory_items (
			id, user_id, file_name, file_type, status, transcript, graph_json,
			retrieval_count, last_retrieved, importance_weight, emotion_score,
			feedback_score_total, feedback_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT(id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			file_name = EXCLUDED.file_name,
			file_type = EXCLUDED.file_type,
			status = EXCLUDED.status,
			transcript = EXCLUDED.transcript,
			graph_json = EXCLUDED.graph_json,
			retrieval_count = EXCLUDED.retrieval_count,
			last_retrieved = EXCLUDED.last_retrieved,
			importance_weight = EXCLUDED.importance_weight,
			emotion_score = EXCLUDED.emotion_score,
			feedback_score_total = EXCLUDED.feedback_score_total,
			feedback_count = EXCLUDED.feedback_count,
			updated_at = EXCLUDED.updated_at`,
		item.ID, item.UserID, item.FileName, string(item.FileType), string(item.Status),
		item.Transcript, nullBytes(graphJSON),
		item.RetrievalCount, lastRetrieved, item.ImportanceWeight, item.EmotionScore,
		item.FeedbackScoreTotal, item.FeedbackCount, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to store memory item: %w", err)
	}
	return nil
}

func (s *itemStore) Get(ctx context.Context, id string) (*types.MemoryItem, error) {
	row := s.db.QueryRowContext(ctx, itemSelect+` WHERE id = $1`, id)
	return scanItem(row)
}

func (s *itemStore) List(ctx context.Context) ([]*types.MemoryItem, error) {
	rows, err := s.db.QueryContext(ctx, itemSelect+` ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list memory items: %w", err)
	}
	defer rows.Close()

	var items []*types.MemoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *itemStore) TouchRetrieval(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE memory_items
		SET retrieval_count = retrieval_count + 1, last_retrieved = $1, updated_at = $1
		WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to touch retrieval: %w", err)
	}
	return requireRow(res)
}

func (s *itemStore) UpdateDecay(ctx context.Context, id string, weight float64, archive bool) error {
	status := types.MemoryActive
	if archive {
		status = types.MemoryArchived
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE memory_items SET importance_weight = $1, status = $2 WHERE id = $3`,
		weight, string(status), id)
	if err != nil {
		return fmt.Errorf("postgres: failed to update decay: %w", err)
	}
	return requireRow(res)
}

func (s *itemStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete memory item: %w", err)
	}
	return requireRow(res)
}

func scanItem(row scanner) (*types.MemoryItem, error) {
	var (
		item          types.MemoryItem
		fileType      string
		status        string
		graphJSON     sql.NullString
		lastRetrieved sql.NullTime
	)

	err := row.Scan(
		&item.ID, &item.UserID, &item.FileName, &fileType, &status,
		&item.Transcript, &graphJSON,
		&item.RetrievalCount, &lastRetrieved, &item.ImportanceWeight, &item.EmotionScore,
		&item.FeedbackScoreTotal, &item.FeedbackCount, &item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan memory item: %w", err)
	}

	item.FileType = types.FileType(fileType)
	item.Status = types.MemoryStatus(status)
	if lastRetrieved.Valid {
		t := lastRetrieved.Time
		item.LastRetrieved = &t
	}
	if graphJSON.Valid && graphJSON.String != "" {
		var g types.KnowledgeGraph
		if err := json.Unmarshal([]byte(graphJSON.String), &g); err != nil {
			return nil, fmt.Errorf("postgres: failed to unmarshal graph: %w", err)
		}
		item.Graph = &g
	}
	return &item, nil
}

func nullBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
