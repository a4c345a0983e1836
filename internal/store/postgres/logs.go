package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

type agentLogStore struct {
	db *sql.DB
}

func (s *agentLogStore) Append(ctx context.Context, entry *types.AgentLog) error {
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("%w: agent log ID is required", store.ErrInvalidInput)
	}

	var graphJSON []byte
	if entry.GraphContext != nil {
		var err error
		graphJSON, err = json.Marshal(entry.GraphContext)
		if err != nil {
			return fmt.Errorf("postgres: failed to marshal graph context: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_logs (
			id, user_id, session_id, "timestamp", user_query, intent, emotion,
			document_context, graph_json, reasoning_trace, final_response,
			confidence_score, synthesis_log
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.ID, entry.UserID, entry.SessionID, entry.Timestamp, entry.UserQuery,
		entry.Intent, entry.Emotion, entry.DocumentContext, nullBytes(graphJSON),
		entry.ReasoningTrace, entry.FinalResponse, entry.ConfidenceScore, entry.SynthesisLog)
	if err != nil {
		return fmt.Errorf("postgres: failed to append agent log: %w", err)
	}
	return nil
}

func (s *agentLogStore) List(ctx context.Context) ([]*types.AgentLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, session_id, "timestamp", user_query, intent, emotion,
		       document_context, graph_json, reasoning_trace, final_response,
		       confidence_score, synthesis_log
		FROM agent_logs ORDER BY "timestamp"`)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list agent logs: %w", err)
	}
	defer rows.Close()

	var entries []*types.AgentLog
	for rows.Next() {
		var (
			entry     types.AgentLog
			graphJSON sql.NullString
		)
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.SessionID, &entry.Timestamp,
			&entry.UserQuery, &entry.Intent, &entry.Emotion, &entry.DocumentContext,
			&graphJSON, &entry.ReasoningTrace, &entry.FinalResponse,
			&entry.ConfidenceScore, &entry.SynthesisLog)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan agent log: %w", err)
		}
		if graphJSON.Valid && graphJSON.String != "" {
			var g types.KnowledgeGraph
			if err := json.Unmarshal([]byte(graphJSON.String), &g); err != nil {
				return nil, fmt.Errorf("postgres: failed to unmarshal graph context: %w", err)
			}
			entry.GraphContext = &g
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

type reportStore struct {
	db *sql.DB
}

func (s *reportStore) PutAll(ctx context.Context, reports []*types.StrategyReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range reports {
		if r == nil || r.Intent == "" {
			return fmt.Errorf("%w: report intent is required", store.ErrInvalidInput)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO strategy_reports (
				intent, last_analyzed, total_interactions,
				positive_feedback_count, negative_feedback_count,
				average_confidence, performance_score
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT(intent) DO UPDATE SET
				last_analyzed = EXCLUDED.last_analyzed,
				total_interactions = EXCLUDED.total_interactions,
				positive_feedback_count = EXCLUDED.positive_feedback_count,
				negative_feedback_count = EXCLUDED.negative_feedback_count,
				average_confidence = EXCLUDED.average_confidence,
				performance_score = EXCLUDED.performance_score`,
			r.Intent, r.LastAnalyzed, r.TotalInteractions,
			r.PositiveFeedbackCount, r.NegativeFeedbackCount,
			r.AverageConfidence, r.PerformanceScore)
		if err != nil {
			return fmt.Errorf("postgres: failed to store strategy report %q: %w", r.Intent, err)
		}
	}
	return tx.Commit()
}

func (s *reportStore) Get(ctx context.Context, intent string) (*types.StrategyReport, error) {
	var r types.StrategyReport
	err := s.db.QueryRowContext(ctx, `
		SELECT intent, last_analyzed, total_interactions,
		       positive_feedback_count, negative_feedback_count,
		       average_confidence, performance_score
		FROM strategy_reports WHERE intent = $1`, intent).Scan(
		&r.Intent, &r.LastAnalyzed, &r.TotalInteractions,
		&r.PositiveFeedbackCount, &r.NegativeFeedbackCount,
		&r.AverageConfidence, &r.PerformanceScore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get strategy report: %w", err)
	}
	return &r, nil
}
