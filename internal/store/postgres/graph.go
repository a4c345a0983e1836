package postgres

import (
	"context"
	"fmt"

	"github.com/scrypster/brahma/pkg/types"
)

// UpsertGraph implements graph.Store. Same semantics as the SQLite backend:
// nodes merge by id, edges merge by (source, target, relationship), dangling
// edges are skipped.
func (s *Store) UpsertGraph(ctx context.Context, nodes []types.GraphNode, edges []types.GraphEdge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, n := range nodes {
		if n.ID == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO graph_nodes (id, type, label, description)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT(id) DO UPDATE SET
				type = EXCLUDED.type,
				label = EXCLUDED.label,
				description = EXCLUDED.description`,
			n.ID, string(n.Type), n.Label, n.Description)
		if err != nil {
			return fmt.Errorf("postgres: failed to upsert graph node %q: %w", n.ID, err)
		}
	}

	for _, e := range edges {
		var exists int
		err := tx.QueryRowContext(ctx, `
			SELECT (EXISTS(SELECT 1 FROM graph_nodes WHERE id = $1))::int
			     + (EXISTS(SELECT 1 FROM graph_nodes WHERE id = $2))::int`,
			e.Source, e.Target).Scan(&exists)
		if err != nil {
			return fmt.Errorf("postgres: failed to check edge endpoints: %w", err)
		}
		if exists < 2 {
			continue
		}

		var weight interface{}
		if e.Weight != nil {
			weight = *e.Weight
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO graph_edges (source, target, relationship, description, weight)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT(source, target, relationship) DO UPDATE SET
				description = EXCLUDED.description,
				weight = EXCLUDED.weight`,
			e.Source, e.Target, string(e.Relationship), e.Description, weight)
		if err != nil {
			return fmt.Errorf("postgres: failed to upsert graph edge %s->%s: %w", e.Source, e.Target, err)
		}
	}

	return tx.Commit()
}
