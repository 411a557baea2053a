package database

import (
	"fmt"
	"time"

	"modguard/model"

	"github.com/jmoiron/sqlx"
)

// AddPunishmentLog appends a punishment record and returns it with its
// assigned id.
func AddPunishmentLog(db *sqlx.DB, entry *model.PunishmentLog) (*model.PunishmentLog, error) {
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	query := `INSERT INTO punishment_logs (guild_id, type, target_id, executor_id, reason, expires_at, removed_at, removed_by, created_at)
	          VALUES (:guild_id, :type, :target_id, :executor_id, :reason, :expires_at, :removed_at, :removed_by, :created_at)`
	result, err := db.NamedExec(query, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to insert punishment log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read punishment log id: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// RemoveActiveTimeout finds the most recently created active timeout for the
// target in the guild, marks it removed, and returns the updated row.
// Returns (nil, nil) when no active timeout exists; nothing is mutated then.
func RemoveActiveTimeout(db *sqlx.DB, guildID, targetID, removedBy string) (*model.PunishmentLog, error) {
	return removeActivePunishment(db, guildID, targetID, model.PunishmentTimeout, removedBy)
}

func removeActivePunishment(db *sqlx.DB, guildID, targetID string, ptype model.PunishmentType, removedBy string) (*model.PunishmentLog, error) {
	now := time.Now().Unix()

	var entry model.PunishmentLog
	query := `SELECT * FROM punishment_logs
	          WHERE guild_id = ? AND target_id = ? AND type = ?
	          AND removed_at = 0 AND (expires_at = 0 OR expires_at > ?)
	          ORDER BY created_at DESC, id DESC LIMIT 1`
	err := db.Get(&entry, query, guildID, targetID, string(ptype), now)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active %s for user %s: %w", ptype, targetID, err)
	}

	update := `UPDATE punishment_logs SET removed_at = ?, removed_by = ? WHERE id = ?`
	if _, err := db.Exec(update, now, removedBy, entry.ID); err != nil {
		return nil, fmt.Errorf("failed to mark punishment %d removed: %w", entry.ID, err)
	}

	entry.RemovedAt = now
	entry.RemovedBy = removedBy
	return &entry, nil
}

// GetActivePunishments returns the guild's punishments still in force,
// newest first, optionally filtered by type.
func GetActivePunishments(db *sqlx.DB, guildID string, ptype model.PunishmentType) ([]model.PunishmentLog, error) {
	now := time.Now().Unix()
	query := `SELECT * FROM punishment_logs
	          WHERE guild_id = ? AND removed_at = 0 AND (expires_at = 0 OR expires_at > ?)`
	args := []interface{}{guildID, now}

	if ptype != "" {
		query += " AND type = ?"
		args = append(args, string(ptype))
	}
	query += " ORDER BY created_at DESC, id DESC"

	var entries []model.PunishmentLog
	if err := db.Select(&entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get active punishments for guild %s: %w", guildID, err)
	}
	return entries, nil
}

// HasActivePunishment reports whether the target has an in-force punishment
// of the given type in the guild.
func HasActivePunishment(db *sqlx.DB, guildID, targetID string, ptype model.PunishmentType) (bool, error) {
	now := time.Now().Unix()
	var count int
	query := `SELECT COUNT(*) FROM punishment_logs
	          WHERE guild_id = ? AND target_id = ? AND type = ?
	          AND removed_at = 0 AND (expires_at = 0 OR expires_at > ?)`
	if err := db.Get(&count, query, guildID, targetID, string(ptype), now); err != nil {
		return false, fmt.Errorf("failed to count active punishments for user %s: %w", targetID, err)
	}
	return count > 0, nil
}

// PunishmentQuery filters GetPunishments. Zero values mean "no filter";
// Limit defaults to 50.
type PunishmentQuery struct {
	Type     model.PunishmentType
	TargetID string
	Limit    int
	Offset   int
}

// GetPunishments returns the guild's punishment history, newest first.
func GetPunishments(db *sqlx.DB, guildID string, q PunishmentQuery) ([]model.PunishmentLog, error) {
	query := `SELECT * FROM punishment_logs WHERE guild_id = ?`
	args := []interface{}{guildID}

	if q.Type != "" {
		query += " AND type = ?"
		args = append(args, string(q.Type))
	}
	if q.TargetID != "" {
		query += " AND target_id = ?"
		args = append(args, q.TargetID)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	var entries []model.PunishmentLog
	if err := db.Select(&entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get punishments for guild %s: %w", guildID, err)
	}
	return entries, nil
}

// ProcessExpiredPunishments marks punishments whose expiry has passed as
// removed by SYSTEM and returns the rows it closed.
func ProcessExpiredPunishments(db *sqlx.DB) ([]model.PunishmentLog, error) {
	now := time.Now().Unix()

	var expired []model.PunishmentLog
	query := `SELECT * FROM punishment_logs
	          WHERE removed_at = 0 AND expires_at != 0 AND expires_at <= ?
	          ORDER BY expires_at ASC`
	if err := db.Select(&expired, query, now); err != nil {
		return nil, fmt.Errorf("failed to get expired punishments: %w", err)
	}

	for i := range expired {
		update := `UPDATE punishment_logs SET removed_at = ?, removed_by = ? WHERE id = ?`
		if _, err := db.Exec(update, now, model.SystemRemover, expired[i].ID); err != nil {
			return nil, fmt.Errorf("failed to close expired punishment %d: %w", expired[i].ID, err)
		}
		expired[i].RemovedAt = now
		expired[i].RemovedBy = model.SystemRemover
	}
	return expired, nil
}
