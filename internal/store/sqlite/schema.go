package sqlite

// Schema creates all tables used by the Brahma document store. Executed at
// open; every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS memory_items (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    file_name            TEXT NOT NULL,
    file_type            TEXT NOT NULL,
    status               TEXT NOT NULL DEFAULT 'active',
    transcript           TEXT NOT NULL DEFAULT '',
    graph_json           TEXT,
    retrieval_count      INTEGER NOT NULL DEFAULT 0,
    last_retrieved       TIMESTAMP,
    importance_weight    REAL NOT NULL DEFAULT 0,
    emotion_score        REAL NOT NULL DEFAULT 0,
    feedback_score_total INTEGER NOT NULL DEFAULT 0,
    feedback_count       INTEGER NOT NULL DEFAULT 0,
    created_at           TIMESTAMP NOT NULL,
    updated_at           TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memory_items_user ON memory_items(user_id);
CREATE INDEX IF NOT EXISTS idx_memory_items_status ON memory_items(status);

CREATE TABLE IF NOT EXISTS chat_sessions (
    id                 TEXT PRIMARY KEY,
    user_id            TEXT NOT NULL,
    title              TEXT NOT NULL,
    associated_item_id TEXT,
    created_at         TIMESTAMP NOT NULL,
    last_message_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_sessions_user ON chat_sessions(user_id);

CREATE TABLE IF NOT EXISTS chat_messages (
    id               TEXT PRIMARY KEY,
    session_id       TEXT NOT NULL,
    sender           TEXT NOT NULL,
    text             TEXT NOT NULL,
    audio_ref        TEXT NOT NULL DEFAULT '',
    timestamp        TIMESTAMP NOT NULL,
    feedback         INTEGER NOT NULL DEFAULT 0,
    agent_log_id     TEXT NOT NULL DEFAULT '',
    detected_emotion TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_chat_messages_agent_log ON chat_messages(agent_log_id);

CREATE TABLE IF NOT EXISTS agent_logs (
    id               TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL,
    session_id       TEXT NOT NULL,
    timestamp        TIMESTAMP NOT NULL,
    user_query       TEXT NOT NULL,
    intent           TEXT NOT NULL,
    emotion          TEXT NOT NULL,
    document_context TEXT NOT NULL DEFAULT '',
    graph_json       TEXT,
    reasoning_trace  TEXT NOT NULL,
    final_response   TEXT NOT NULL,
    confidence_score REAL NOT NULL,
    synthesis_log    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_agent_logs_intent ON agent_logs(intent);

CREATE TABLE IF NOT EXISTS strategy_reports (
    intent                  TEXT PRIMARY KEY,
    last_analyzed           TIMESTAMP NOT NULL,
    total_interactions      INTEGER NOT NULL,
    positive_feedback_count INTEGER NOT NULL,
    negative_feedback_count INTEGER NOT NULL,
    average_confidence      REAL NOT NULL,
    performance_score       REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS graph_nodes (
    id          TEXT PRIMARY KEY,
    type        TEXT NOT NULL,
    label       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS graph_edges (
    source       TEXT NOT NULL,
    target       TEXT NOT NULL,
    relationship TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    weight       REAL,
    PRIMARY KEY (source, target, relationship)
);
`
