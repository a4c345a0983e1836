package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/brahma/internal/perception"
	"github.com/scrypster/brahma/internal/scoring"
	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

// degradedExtractionPrefix is prepended to the transcript when graph
// generation errors out; the upload still succeeds with text-only context.
const degradedExtractionPrefix = "(A system error occurred during knowledge graph generation, so context is limited to the basic text.)\n\n"

// UploadInput describes a processed upload. The file bytes themselves live in
// blob storage and are irrelevant here: perception is simulated from the
// declared type.
type UploadInput struct {
	UserID   string
	FileName string
	FileType types.FileType
}

// ProcessUpload runs the ingestion path: simulate perception, build the
// knowledge graph for supported types, and persist the resulting memory item
// with its initial scoring block.
//
// Unsupported file types skip graph building entirely. A graph-build failure
// degrades to text-only context rather than failing the upload.
func (o *Orchestrator) ProcessUpload(ctx context.Context, in UploadInput) (*types.MemoryItem, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", store.ErrInvalidInput)
	}
	if in.FileName == "" {
		return nil, fmt.Errorf("%w: file name is required", store.ErrInvalidInput)
	}

	extracted := perception.Simulate(in.FileName, in.FileType)

	var itemGraph *types.KnowledgeGraph
	transcript := extracted.Text

	if extracted.Supported && o.builder != nil {
		g, err := o.builder.Build(ctx, extracted.Text)
		switch {
		case err != nil:
			log.Printf("orchestrator: graph generation failed for %s: %v", in.FileName, err)
			transcript = degradedExtractionPrefix + extracted.Text
		case g == nil:
			log.Printf("orchestrator: ontology generation returned empty graph for %s, keeping text only", in.FileName)
		default:
			itemGraph = g
		}
	}

	now := time.Now()
	item := &types.MemoryItem{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		FileName:   in.FileName,
		FileType:   in.FileType,
		Status:     types.MemoryActive,
		Transcript: transcript,
		Graph:      itemGraph,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if itemGraph != nil {
		item.EmotionScore = scoring.EmotionScore(itemGraph)
	}
	item.ImportanceWeight = scoring.ImportanceWeight(item, now)

	if err := o.store.Items().Put(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to store memory item: %w", err)
	}

	return item, nil
}
