package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/scrypster/brahma/internal/scoring"
	"github.com/scrypster/brahma/internal/store"
	"github.com/scrypster/brahma/pkg/types"
)

// FeedbackInput identifies the message being rated and the rating.
type FeedbackInput struct {
	UserID    string
	SessionID string
	MessageID string
	Value     int // +1 or -1
}

// FeedbackResult reports the applied transition.
type FeedbackResult struct {
	// NewWeight is the recomputed importance weight of the associated memory
	// item, when one was updated.
	NewWeight *float64
}

// HandleFeedback applies one feedback event to an AI message and, when the
// session has an associated memory item, to that item's scoring counters.
//
// The ownership check runs outside the transaction; the message update and
// the memory-item counter update run inside a single transaction so
// concurrent feedback cannot lose updates. Toggle semantics: resubmitting the
// current value retracts it to neutral and reverses the item's counters.
// A concurrently deleted memory item is treated as success; the message
// feedback still lands, the memory update is skipped.
func (o *Orchestrator) HandleFeedback(ctx context.Context, in FeedbackInput) (*FeedbackResult, error) {
	if in.Value != types.FeedbackUp && in.Value != types.FeedbackDown {
		return nil, fmt.Errorf("%w: feedback value must be +1 or -1", store.ErrInvalidInput)
	}

	session, err := o.store.Sessions().Get(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if session.UserID != in.UserID {
		log.Printf("SECURITY WARNING (BLOCKED): user %s attempted to rate a message in session %s they do not own", in.UserID, in.SessionID)
		return nil, fmt.Errorf("%w: you do not own this chat session", store.ErrPermissionDenied)
	}

	result := &FeedbackResult{}

	err = o.store.RunFeedbackTx(ctx, func(tx store.FeedbackTx) error {
		msg, err := tx.GetMessage(in.SessionID, in.MessageID)
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}
		if msg.Sender != types.SenderAI {
			return fmt.Errorf("%w: feedback can only be given on AI messages", store.ErrInvalidInput)
		}

		oldValue := msg.Feedback
		now := time.Now()

		// Same value twice: retract to neutral and reverse the item counters.
		if in.Value == oldValue {
			if err := tx.SetMessageFeedback(in.SessionID, in.MessageID, types.FeedbackNeutral); err != nil {
				return err
			}
			if session.AssociatedItemID == "" {
				return nil
			}

			item, err := tx.GetItem(session.AssociatedItemID)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}

			total := item.FeedbackScoreTotal - in.Value
			count := item.FeedbackCount - 1
			if count < 0 {
				count = 0
			}
			item.FeedbackScoreTotal = total
			item.FeedbackCount = count
			weight := scoring.ImportanceWeight(item, now)
			result.NewWeight = &weight
			return tx.UpdateItemScores(item.ID, total, count, weight, now)
		}

		if err := tx.SetMessageFeedback(in.SessionID, in.MessageID, in.Value); err != nil {
			return err
		}

		if session.AssociatedItemID == "" {
			return nil
		}

		item, err := tx.GetItem(session.AssociatedItemID)
		if errors.Is(err, store.ErrNotFound) {
			// Item deleted concurrently; the message feedback still stands.
			return nil
		}
		if err != nil {
			return err
		}

		delta := in.Value - oldValue
		item.FeedbackScoreTotal += delta
		if oldValue == types.FeedbackNeutral {
			// Count a message's feedback only once, on its first rating.
			item.FeedbackCount++
		}

		weight := scoring.ImportanceWeight(item, now)
		result.NewWeight = &weight
		return tx.UpdateItemScores(item.ID, item.FeedbackScoreTotal, item.FeedbackCount, weight, now)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
