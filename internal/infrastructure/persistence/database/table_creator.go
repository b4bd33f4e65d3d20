// Package database provides schema creation for the embedded store
package database

import (
	"fmt"

	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
)

var tableStatements = []struct {
	name string
	ddl  string
}{
	{
		name: "events",
		ddl: `CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			session_id TEXT NOT NULL,
			user_id TEXT,
			payload TEXT,
			context TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "preferences",
		ddl: `CREATE TABLE IF NOT EXISTS preferences (
			user_id TEXT PRIMARY KEY,
			content_types TEXT,
			genres TEXT,
			interaction_style TEXT,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "content_items",
		ddl: `CREATE TABLE IF NOT EXISTS content_items (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT,
			tags TEXT,
			rating REAL DEFAULT 0,
			popularity INTEGER DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "feedback",
		ddl: `CREATE TABLE IF NOT EXISTS feedback (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			content_id TEXT NOT NULL,
			action TEXT NOT NULL,
			duration_ms INTEGER DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "counters",
		ddl: `CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_events_user_id ON events(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_session_id ON events(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_user_id ON feedback(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_content_items_category ON content_items(category)`,
}

// CreateTables creates all pulse tables and indexes if they do not exist.
func CreateTables(db *DB, logger *logging.ChanneledLogger) error {
	for _, table := range tableStatements {
		if _, err := db.Exec(table.ddl); err != nil {
			if logger != nil {
				logger.Database().Error("Failed to create table", "table", table.name, "error", err.Error())
			}
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
		if logger != nil {
			logger.Database().Debug("Table ready", "table", table.name)
		}
	}

	for _, ddl := range indexStatements {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if logger != nil {
		logger.Database().Info("Database schema ready", "tables", len(tableStatements))
	}
	return nil
}
