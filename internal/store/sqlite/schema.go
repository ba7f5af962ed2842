package sqlite

import (
	"context"
	"database/sql"
)

// schemaDDL is applied on open. Kept aligned with the Postgres migrations;
// JSON columns are stored as TEXT.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
        user_id   TEXT PRIMARY KEY,
        email     TEXT NOT NULL UNIQUE,
        role      TEXT NOT NULL,
        full_name TEXT NOT NULL DEFAULT '',
        elder_id  TEXT
    )`,
	`CREATE TABLE IF NOT EXISTS memories (
        memory_id       TEXT PRIMARY KEY,
        elder_id        TEXT NOT NULL,
        raw_text        TEXT NOT NULL,
        memory_type     TEXT NOT NULL DEFAULT 'other',
        tags            TEXT NOT NULL DEFAULT '[]',
        structured_json TEXT NOT NULL DEFAULT '{}',
        image_url       TEXT,
        created_at      TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_memories_elder_created
        ON memories (elder_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS questions (
        question_id   TEXT PRIMARY KEY,
        elder_id      TEXT NOT NULL,
        question_text TEXT NOT NULL,
        answer_text   TEXT,
        created_at    TEXT NOT NULL,
        answered_at   TEXT
    )`,
	`CREATE INDEX IF NOT EXISTS idx_questions_elder_created
        ON questions (elder_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS caregiver_elder_links (
        caregiver_user_id TEXT NOT NULL,
        elder_user_id     TEXT NOT NULL,
        created_at        TEXT NOT NULL,
        PRIMARY KEY (caregiver_user_id, elder_user_id)
    )`,
	`CREATE TABLE IF NOT EXISTS daily_summaries (
        elder_id     TEXT NOT NULL,
        summary_date TEXT NOT NULL,
        summary_text TEXT NOT NULL,
        created_at   TEXT NOT NULL,
        PRIMARY KEY (elder_id, summary_date)
    )`,
}

// ApplySchema creates all tables when they do not exist yet.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
