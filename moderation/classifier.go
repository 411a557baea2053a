// Package moderation turns platform audit-log entries into notifications
// and punishment-log rows.
package moderation

import (
	"time"

	"modguard/utils"

	"github.com/bwmarrin/discordgo"
)

// EventKind tags the classification result of one audit-log entry.
type EventKind int

const (
	// Ignore means the entry does not concern this pipeline. It is a
	// normal outcome, not an error.
	Ignore EventKind = iota
	TimeoutAdded
	TimeoutRemoved
	BanAdded
)

func (k EventKind) String() string {
	switch k {
	case TimeoutAdded:
		return "timeout_added"
	case TimeoutRemoved:
		return "timeout_removed"
	case BanAdded:
		return "ban_added"
	default:
		return "ignore"
	}
}

// UnknownID substitutes a missing actor or target id; a partial audit entry
// is still logged best-effort rather than dropped.
const UnknownID = "unknown"

// Event is a classified audit-log entry carrying the fields needed for
// rendering and persistence. ExpiresAt is set only for TimeoutAdded.
type Event struct {
	Kind       EventKind
	GuildID    string
	TargetID   string
	ExecutorID string
	Reason     string
	ExpiresAt  time.Time
}

// Classify inspects a single audit-log entry and determines what, if
// anything, the notification pipeline should do with it. Action kinds other
// than member-ban-add and member-update, and member updates without a
// communication_disabled_until change, come back as Ignore.
func Classify(entry *discordgo.GuildAuditLogEntryCreate, now time.Time) Event {
	if entry == nil || entry.AuditLogEntry == nil || entry.ActionType == nil {
		return Event{Kind: Ignore}
	}

	event := Event{
		Kind:       Ignore,
		GuildID:    entry.GuildID,
		TargetID:   orUnknown(entry.TargetID),
		ExecutorID: orUnknown(entry.UserID),
		Reason:     utils.CleanReason(entry.Reason),
	}

	switch *entry.ActionType {
	case discordgo.AuditLogActionMemberBanAdd:
		event.Kind = BanAdded
		return event

	case discordgo.AuditLogActionMemberUpdate:
		change := findTimeoutChange(entry.Changes)
		if change == nil {
			return Event{Kind: Ignore}
		}

		raw, ok := change.NewValue.(string)
		if !ok || raw == "" {
			event.Kind = TimeoutRemoved
			return event
		}
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Event{Kind: Ignore}
		}
		if until.After(now) {
			event.Kind = TimeoutAdded
			event.ExpiresAt = until
		} else {
			event.Kind = TimeoutRemoved
		}
		return event

	default:
		return Event{Kind: Ignore}
	}
}

func findTimeoutChange(changes []*discordgo.AuditLogChange) *discordgo.AuditLogChange {
	for _, change := range changes {
		if change != nil && change.Key != nil && *change.Key == discordgo.AuditLogChangeKeyCommunicationDisabledUntil {
			return change
		}
	}
	return nil
}

func orUnknown(id string) string {
	if id == "" {
		return UnknownID
	}
	return id
}
