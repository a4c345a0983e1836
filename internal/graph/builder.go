// Package graph turns extracted text into a knowledge graph via one
// structured LLM call and forwards the result to an external graph store as a
// best-effort, detached write.
package graph

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/scrypster/brahma/internal/llm"
	"github.com/scrypster/brahma/pkg/types"
)

// storeWriteTimeout bounds each detached graph-store write. The caller's
// critical path never waits on it.
const storeWriteTimeout = 10 * time.Second

// Builder builds knowledge graphs from raw text.
type Builder struct {
	generator llm.TextGenerator
	store     Store
	pending   sync.WaitGroup
}

// NewBuilder creates a Builder. Passing a nil store disables graph-database
// forwarding (a NoopStore is substituted).
func NewBuilder(generator llm.TextGenerator, store Store) *Builder {
	if store == nil {
		store = NoopStore{}
	}
	return &Builder{generator: generator, store: store}
}

// Build performs exactly one structured LLM call over text and returns the
// resulting graph, or nil when the model's output is empty or
// schema-incompatible. Callers must treat nil gracefully, not as an error.
// A non-nil error means the LLM call itself failed; callers degrade to
// text-only context in that case.
//
// On success the (nodes, edges) set is forwarded to the graph store on a
// detached goroutine. A store failure never fails or delays the caller; it is
// logged and dropped.
func (b *Builder) Build(ctx context.Context, text string) (*types.KnowledgeGraph, error) {
	raw, err := b.generator.Complete(ctx, llm.OntologyPrompt(text))
	if err != nil {
		return nil, err
	}

	g := llm.ParseGraph(raw)
	if g == nil {
		return nil, nil
	}

	b.pending.Add(1)
	go func(nodes []types.GraphNode, edges []types.GraphEdge) {
		defer b.pending.Done()

		// Detached from the caller's context: the write outlives the request.
		writeCtx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
		defer cancel()

		if err := b.store.UpsertGraph(writeCtx, nodes, edges); err != nil {
			log.Printf("graph: store write failed (non-fatal): %v", err)
		}
	}(g.Nodes, g.Edges)

	return g, nil
}

// Flush blocks until all detached store writes have completed. Used by
// shutdown and tests; request paths never call it.
func (b *Builder) Flush() {
	b.pending.Wait()
}
