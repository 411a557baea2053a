package database

import (
	"fmt"
	"sort"
	"time"

	"modguard/model"

	"github.com/jmoiron/sqlx"
)

// guildConfigColumns maps the JSON field names accepted on config writes to
// their columns. Keys outside this map (ids, timestamps, relation payloads,
// typos) are silently dropped; that is sanitization, not validation.
var guildConfigColumns = map[string]string{
	"timeoutLogEnabled":        "timeout_log_enabled",
	"timeoutLogChannelId":      "timeout_log_channel_id",
	"timeoutLogAddTemplate":    "timeout_log_add_template",
	"timeoutLogRemoveTemplate": "timeout_log_remove_template",
	"banLogEnabled":            "ban_log_enabled",
	"banLogChannelId":          "ban_log_channel_id",
	"banLogMessageTemplate":    "ban_log_message_template",
	"warnLogEnabled":           "warn_log_enabled",
	"warnLogChannelId":         "warn_log_channel_id",
	"warnLogMessageTemplate":   "warn_log_message_template",
	"welcomeEnabled":           "welcome_enabled",
	"welcomeChannelId":         "welcome_channel_id",
	"welcomeMessageTemplate":   "welcome_message_template",
}

// EnsureGuild creates or refreshes the guild row. Creation is idempotent
// under concurrent callers.
func EnsureGuild(db *sqlx.DB, guildID, name, icon string) error {
	now := time.Now().Unix()
	query := `INSERT INTO guilds (id, name, icon, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET name = excluded.name, icon = excluded.icon, updated_at = excluded.updated_at`
	if _, err := db.Exec(query, guildID, name, icon, now, now); err != nil {
		return fmt.Errorf("failed to ensure guild %s: %w", guildID, err)
	}
	return nil
}

// GetGuildConfig returns the guild's config, creating the guild row and a
// default config row if either is missing.
func GetGuildConfig(db *sqlx.DB, guildID string) (*model.GuildConfig, error) {
	now := time.Now().Unix()

	// INSERT OR IGNORE keeps concurrent first reads idempotent.
	if _, err := db.Exec(`INSERT OR IGNORE INTO guilds (id, created_at, updated_at) VALUES (?, ?, ?)`, guildID, now, now); err != nil {
		return nil, fmt.Errorf("failed to ensure guild %s: %w", guildID, err)
	}

	createSQL := `INSERT OR IGNORE INTO guild_configs
	    (guild_id, timeout_log_add_template, timeout_log_remove_template,
	     ban_log_message_template, warn_log_message_template, welcome_message_template,
	     created_at, updated_at)
	    VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(createSQL, guildID,
		model.DefaultTimeoutAddTemplate, model.DefaultTimeoutRemoveTemplate,
		model.DefaultBanTemplate, model.DefaultWarnTemplate, model.DefaultWelcomeTemplate,
		now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create default config for guild %s: %w", guildID, err)
	}

	var config model.GuildConfig
	if err := db.Get(&config, `SELECT * FROM guild_configs WHERE guild_id = ?`, guildID); err != nil {
		return nil, fmt.Errorf("failed to get config for guild %s: %w", guildID, err)
	}
	return &config, nil
}

// UpsertGuildConfig merges the supplied fields into the guild's config,
// creating it with defaults first if absent, and returns the full record.
func UpsertGuildConfig(db *sqlx.DB, guildID string, updates map[string]interface{}) (*model.GuildConfig, error) {
	if _, err := GetGuildConfig(db, guildID); err != nil {
		return nil, err
	}

	setClauses := make([]string, 0, len(updates))
	args := make([]interface{}, 0, len(updates)+2)

	keys := make([]string, 0, len(updates))
	for key := range updates {
		if _, ok := guildConfigColumns[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		setClauses = append(setClauses, guildConfigColumns[key]+" = ?")
		args = append(args, updates[key])
	}

	if len(setClauses) > 0 {
		query := "UPDATE guild_configs SET "
		for i, clause := range setClauses {
			if i > 0 {
				query += ", "
			}
			query += clause
		}
		query += ", updated_at = ? WHERE guild_id = ?"
		args = append(args, time.Now().Unix(), guildID)

		if _, err := db.Exec(query, args...); err != nil {
			return nil, fmt.Errorf("failed to update config for guild %s: %w", guildID, err)
		}
	}

	var config model.GuildConfig
	if err := db.Get(&config, `SELECT * FROM guild_configs WHERE guild_id = ?`, guildID); err != nil {
		return nil, fmt.Errorf("failed to get config for guild %s: %w", guildID, err)
	}
	return &config, nil
}
