package graph

import (
	"context"

	"github.com/scrypster/brahma/pkg/types"
)

// Store is the external graph-database sink. Upserts are idempotent:
// MERGE-by-id for nodes and MERGE-by-(source, target, type) for
// relationships, so rebuilding the same graph from the same content does not
// duplicate anything. An edge whose endpoints are missing is silently
// no-opped, not an error.
//
// Store failures are non-fatal to callers; the builder only logs them.
type Store interface {
	UpsertGraph(ctx context.Context, nodes []types.GraphNode, edges []types.GraphEdge) error
}

// NoopStore discards all writes. Used when no graph database is configured.
type NoopStore struct{}

// UpsertGraph implements Store by doing nothing.
func (NoopStore) UpsertGraph(ctx context.Context, nodes []types.GraphNode, edges []types.GraphEdge) error {
	return nil
}

var _ Store = NoopStore{}
