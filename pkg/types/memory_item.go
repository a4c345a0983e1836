package types

import "time"

// FileType is the declared type of an uploaded file. Perception is simulated,
// so the declared type (not file content) decides which canned extraction
// branch runs.
type FileType string

const (
	FileTypeVideo FileType = "video"
	FileTypeAudio FileType = "audio"
	FileTypePDF   FileType = "pdf"
	FileTypeText  FileType = "text"
	FileTypeMD    FileType = "md"
	FileTypeOther FileType = "other"
)

// MemoryStatus is the lifecycle status of a memory item.
type MemoryStatus string

const (
	// MemoryActive is the normal status for a retrievable memory item.
	MemoryActive MemoryStatus = "active"

	// MemoryArchived is set by the nightly decay sweep when the importance
	// weight falls below the archive threshold. Archived items are never
	// hard-deleted by decay.
	MemoryArchived MemoryStatus = "archived"
)

// MemoryItem is a processed upload: the extracted (simulated) text, the
// knowledge graph built from it, and the mutable memory-scoring block that
// drives context retrieval priority.
type MemoryItem struct {
	ID       string   `json:"id"`
	UserID   string   `json:"user_id"` // owner; checked on every read/write
	FileName string   `json:"file_name"`
	FileType FileType `json:"file_type"`

	Status     MemoryStatus    `json:"status"`
	Transcript string          `json:"transcript"`      // simulated extracted text
	Graph      *KnowledgeGraph `json:"graph,omitempty"` // nil when extraction was unsupported or graph building failed

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Memory-scoring block. RetrievalCount and LastRetrieved are bumped
	// atomically on every use as chat context. ImportanceWeight is recomputed
	// on feedback and decayed nightly. EmotionScore is derived once from the
	// graph's emotion nodes and cached here.
	RetrievalCount     int        `json:"retrieval_count"`
	LastRetrieved      *time.Time `json:"last_retrieved,omitempty"`
	ImportanceWeight   float64    `json:"importance_weight"`
	EmotionScore       float64    `json:"emotion_score"`
	FeedbackScoreTotal int        `json:"feedback_score_total"` // signed sum of +1/-1 feedback
	FeedbackCount      int        `json:"feedback_count"`       // number of messages with non-neutral feedback
}

// ContextText returns the text used as chat context for this item. The graph
// summary is preferred over the raw transcript when both exist.
func (m *MemoryItem) ContextText() string {
	if m.Graph != nil && m.Graph.Summary != "" {
		return m.Graph.Summary
	}
	return m.Transcript
}
