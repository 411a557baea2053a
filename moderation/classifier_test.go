package moderation

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func auditEntry(action discordgo.AuditLogAction, changes ...*discordgo.AuditLogChange) *discordgo.GuildAuditLogEntryCreate {
	return &discordgo.GuildAuditLogEntryCreate{
		AuditLogEntry: &discordgo.AuditLogEntry{
			ActionType: &action,
			TargetID:   "U1",
			UserID:     "M1",
			Reason:     "spam",
			Changes:    changes,
		},
		GuildID: "G1",
	}
}

func timeoutChange(newValue interface{}) *discordgo.AuditLogChange {
	key := discordgo.AuditLogChangeKeyCommunicationDisabledUntil
	return &discordgo.AuditLogChange{Key: &key, NewValue: newValue}
}

func TestClassifyTimeoutAdded(t *testing.T) {
	until := testNow.Add(10 * time.Minute)
	entry := auditEntry(discordgo.AuditLogActionMemberUpdate, timeoutChange(until.Format(time.RFC3339)))

	event := Classify(entry, testNow)
	assert.Equal(t, TimeoutAdded, event.Kind)
	assert.Equal(t, "G1", event.GuildID)
	assert.Equal(t, "U1", event.TargetID)
	assert.Equal(t, "M1", event.ExecutorID)
	assert.Equal(t, "spam", event.Reason)
	assert.True(t, event.ExpiresAt.Equal(until))
}

func TestClassifyTimeoutRemovedOnAbsentValue(t *testing.T) {
	event := Classify(auditEntry(discordgo.AuditLogActionMemberUpdate, timeoutChange(nil)), testNow)
	assert.Equal(t, TimeoutRemoved, event.Kind)
	assert.Equal(t, "U1", event.TargetID)
	assert.Equal(t, "M1", event.ExecutorID)
}

func TestClassifyTimeoutRemovedOnPastValue(t *testing.T) {
	past := testNow.Add(-time.Hour).Format(time.RFC3339)
	event := Classify(auditEntry(discordgo.AuditLogActionMemberUpdate, timeoutChange(past)), testNow)
	assert.Equal(t, TimeoutRemoved, event.Kind)
}

func TestClassifyBanAdded(t *testing.T) {
	event := Classify(auditEntry(discordgo.AuditLogActionMemberBanAdd), testNow)
	assert.Equal(t, BanAdded, event.Kind)
	assert.Equal(t, "U1", event.TargetID)
	assert.Equal(t, "M1", event.ExecutorID)
	assert.Equal(t, "spam", event.Reason)
}

func TestClassifyIgnoresMemberUpdateWithoutTimeoutChange(t *testing.T) {
	otherKey := discordgo.AuditLogChangeKeyNick
	change := &discordgo.AuditLogChange{Key: &otherKey, NewValue: "newnick"}
	event := Classify(auditEntry(discordgo.AuditLogActionMemberUpdate, change), testNow)
	assert.Equal(t, Ignore, event.Kind)
}

func TestClassifyIgnoresUnrelatedActions(t *testing.T) {
	event := Classify(auditEntry(discordgo.AuditLogActionChannelCreate), testNow)
	assert.Equal(t, Ignore, event.Kind)

	event = Classify(auditEntry(discordgo.AuditLogActionMemberKick), testNow)
	assert.Equal(t, Ignore, event.Kind)
}

func TestClassifyIgnoresUnparseableTimeoutValue(t *testing.T) {
	event := Classify(auditEntry(discordgo.AuditLogActionMemberUpdate, timeoutChange("not-a-timestamp")), testNow)
	assert.Equal(t, Ignore, event.Kind)
}

func TestClassifySubstitutesUnknownForMissingIDs(t *testing.T) {
	action := discordgo.AuditLogActionMemberBanAdd
	entry := &discordgo.GuildAuditLogEntryCreate{
		AuditLogEntry: &discordgo.AuditLogEntry{ActionType: &action},
		GuildID:       "G1",
	}
	event := Classify(entry, testNow)
	assert.Equal(t, BanAdded, event.Kind)
	assert.Equal(t, UnknownID, event.TargetID)
	assert.Equal(t, UnknownID, event.ExecutorID)
	assert.Equal(t, "No reason provided", event.Reason)
}

func TestClassifyNilEntry(t *testing.T) {
	assert.Equal(t, Ignore, Classify(nil, testNow).Kind)
	assert.Equal(t, Ignore, Classify(&discordgo.GuildAuditLogEntryCreate{AuditLogEntry: &discordgo.AuditLogEntry{}}, testNow).Kind)
}
