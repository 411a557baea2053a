package model

// PunishmentType enumerates the moderation actions tracked in the
// punishment log.
type PunishmentType string

const (
	PunishmentTimeout PunishmentType = "TIMEOUT"
	PunishmentBan     PunishmentType = "BAN"
	PunishmentWarn    PunishmentType = "WARN"
	PunishmentKick    PunishmentType = "KICK"
	PunishmentMute    PunishmentType = "MUTE"
)

// SystemRemover marks punishments closed automatically on expiry rather
// than by a moderator.
const SystemRemover = "SYSTEM"

// PunishmentLog is one row of the append-only punishment trail. Removal is
// recorded as a mutation (removed_at/removed_by), never as a new row.
// Timestamps are unix seconds; zero means unset.
type PunishmentLog struct {
	ID         int64          `db:"id" json:"id"`
	GuildID    string         `db:"guild_id" json:"guildId"`
	Type       PunishmentType `db:"type" json:"type"`
	TargetID   string         `db:"target_id" json:"targetId"`
	ExecutorID string         `db:"executor_id" json:"executorId"`
	Reason     string         `db:"reason" json:"reason"`
	ExpiresAt  int64          `db:"expires_at" json:"expiresAt"`
	RemovedAt  int64          `db:"removed_at" json:"removedAt"`
	RemovedBy  string         `db:"removed_by" json:"removedBy"`
	CreatedAt  int64          `db:"created_at" json:"createdAt"`
}

// Active reports whether the punishment is still in force at the given
// unix time: never removed and either open-ended or not yet expired.
func (p *PunishmentLog) Active(now int64) bool {
	if p.RemovedAt != 0 {
		return false
	}
	return p.ExpiresAt == 0 || p.ExpiresAt > now
}
