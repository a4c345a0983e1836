package sqlite

import (
	"context"
	"fmt"

	"github.com/scrypster/brahma/pkg/types"
)

// UpsertGraph implements graph.Store. Nodes merge by id, edges merge by
// (source, target, relationship); replaying the same graph is a no-op. Edges
// whose endpoints are not present after the node pass are skipped.
func (s *Store) UpsertGraph(ctx context.Context, nodes []types.GraphNode, edges []types.GraphEdge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, n := range nodes {
		if n.ID == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO graph_nodes (id, type, label, description)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				type = excluded.type,
				label = excluded.label,
				description = excluded.description`,
			n.ID, string(n.Type), n.Label, n.Description)
		if err != nil {
			return fmt.Errorf("failed to upsert graph node %q: %w", n.ID, err)
		}
	}

	for _, e := range edges {
		// Only connect nodes that exist; a dangling edge is dropped, not an
		// error.
		var exists int
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM graph_nodes WHERE id = ?)
			     + EXISTS(SELECT 1 FROM graph_nodes WHERE id = ?)`,
			e.Source, e.Target).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check edge endpoints: %w", err)
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
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(source, target, relationship) DO UPDATE SET
				description = excluded.description,
				weight = excluded.weight`,
			e.Source, e.Target, string(e.Relationship), e.Description, weight)
		if err != nil {
			return fmt.Errorf("failed to upsert graph edge %s->%s: %w", e.Source, e.Target, err)
		}
	}

	return tx.Commit()
}
