package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// InitDB opens the sqlite database and ensures all tables exist.
func InitDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := CreateTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateTables creates the schema if it is not present yet.
func CreateTables(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS guilds (
	    id TEXT NOT NULL PRIMARY KEY,
	    name TEXT NOT NULL DEFAULT '',
	    icon TEXT NOT NULL DEFAULT '',
	    created_at INTEGER NOT NULL,
	    updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS guild_configs (
	    id INTEGER PRIMARY KEY AUTOINCREMENT,
	    guild_id TEXT NOT NULL UNIQUE REFERENCES guilds(id),
	    timeout_log_enabled INTEGER NOT NULL DEFAULT 0,
	    timeout_log_channel_id TEXT NOT NULL DEFAULT '',
	    timeout_log_add_template TEXT NOT NULL DEFAULT '',
	    timeout_log_remove_template TEXT NOT NULL DEFAULT '',
	    ban_log_enabled INTEGER NOT NULL DEFAULT 0,
	    ban_log_channel_id TEXT NOT NULL DEFAULT '',
	    ban_log_message_template TEXT NOT NULL DEFAULT '',
	    warn_log_enabled INTEGER NOT NULL DEFAULT 0,
	    warn_log_channel_id TEXT NOT NULL DEFAULT '',
	    warn_log_message_template TEXT NOT NULL DEFAULT '',
	    welcome_enabled INTEGER NOT NULL DEFAULT 0,
	    welcome_channel_id TEXT NOT NULL DEFAULT '',
	    welcome_message_template TEXT NOT NULL DEFAULT '',
	    created_at INTEGER NOT NULL,
	    updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS punishment_logs (
	    id INTEGER PRIMARY KEY AUTOINCREMENT,
	    guild_id TEXT NOT NULL,
	    type TEXT NOT NULL,
	    target_id TEXT NOT NULL,
	    executor_id TEXT NOT NULL,
	    reason TEXT NOT NULL DEFAULT '',
	    expires_at INTEGER NOT NULL DEFAULT 0,
	    removed_at INTEGER NOT NULL DEFAULT 0,
	    removed_by TEXT NOT NULL DEFAULT '',
	    created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_punishment_logs_guild_target
	    ON punishment_logs (guild_id, target_id, type);

	CREATE TABLE IF NOT EXISTS users (
	    id TEXT NOT NULL PRIMARY KEY,
	    username TEXT NOT NULL DEFAULT '',
	    avatar TEXT NOT NULL DEFAULT '',
	    access_token TEXT NOT NULL DEFAULT '',
	    refresh_token TEXT NOT NULL DEFAULT '',
	    created_at INTEGER NOT NULL,
	    updated_at INTEGER NOT NULL
	);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
