package types

import "time"

// Sender identifies the author of a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Feedback values on an AI message. Neutral is the initial state; submitting
// the same value twice retracts it back to neutral (toggle semantics).
const (
	FeedbackDown    = -1
	FeedbackNeutral = 0
	FeedbackUp      = 1
)

// ChatSession groups the messages of one conversation. Sessions are
// exclusively owned by one user; the owner field is checked on every
// read/write.
type ChatSession struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Title            string    `json:"title"`
	AssociatedItemID string    `json:"associated_item_id,omitempty"` // MemoryItem used as context, if any
	CreatedAt        time.Time `json:"created_at"`
	LastMessageAt    time.Time `json:"last_message_at"` // bumped on every turn
}

// ChatMessage is one message in a session's append-only log. Feedback is only
// mutable on ai-authored messages.
type ChatMessage struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Sender          Sender    `json:"sender"`
	Text            string    `json:"text"`
	AudioRef        string    `json:"audio_ref,omitempty"` // durable reference to synthesized speech
	Timestamp       time.Time `json:"timestamp"`
	Feedback        int       `json:"feedback"` // -1, 0, or +1
	AgentLogID      string    `json:"agent_log_id,omitempty"`
	DetectedEmotion string    `json:"detected_emotion,omitempty"`
}

// ChatHistoryEntry is the minimal view of a message passed to the reasoning
// pipeline as conversation history.
type ChatHistoryEntry struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}
