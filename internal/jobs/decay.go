// Package jobs holds the externally triggered batch jobs: the nightly memory
// decay sweep and the meta-learning analysis. Both are full-scan jobs that
// run to completion within one invocation and are safe to re-run.
package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/scrypster/brahma/internal/scoring"
	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

// RunDecaySweep applies one decay step to every memory item and archives
// items whose weight falls below the archive threshold. The weight update and
// status flip are atomic per item, not across items: a crash mid-sweep leaves
// some items decayed and others not, which is acceptable because the job is
// idempotent per invocation and safe to re-run.
//
// Returns the number of items processed.
func RunDecaySweep(ctx context.Context, items store.MemoryItemStore) (int, error) {
	log.Println("Starting nightly memory decay sweep...")

	all, err := items.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("decay sweep: failed to list memory items: %w", err)
	}

	processed := 0
	for _, item := range all {
		newWeight := scoring.Decay(item.ImportanceWeight)

		// Archived items keep decaying but never un-archive.
		archive := item.Status == types.MemoryArchived || newWeight < scoring.ArchiveThreshold
		if archive && item.Status != types.MemoryArchived {
			log.Printf("decay sweep: archiving memory item %s (new weight: %g)", item.ID, newWeight)
		}

		if err := items.UpdateDecay(ctx, item.ID, newWeight, archive); err != nil {
			return processed, fmt.Errorf("decay sweep: failed to update item %s: %w", item.ID, err)
		}
		processed++
	}

	log.Printf("Nightly memory decay sweep completed. Processed %d items.", processed)
	return processed, nil
}
