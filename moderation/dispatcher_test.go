package moderation

import (
	"fmt"
	"testing"
	"time"

	"modguard/cache"
	"modguard/model"
	"modguard/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	channelID string
	content   string
}

type fakeSender struct {
	knownChannels map[string]bool
	dmChannels    map[string]string
	sent          []sentMessage
	sendErr       error
}

func (f *fakeSender) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if !f.knownChannels[channelID] {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content})
	return &discordgo.Message{}, nil
}

func (f *fakeSender) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	channelID, ok := f.dmChannels[recipientID]
	if !ok {
		return nil, fmt.Errorf("cannot open DM with %s", recipientID)
	}
	return &discordgo.Channel{ID: channelID, Type: discordgo.ChannelTypeDM}, nil
}

func newTestDispatcher(t *testing.T, config *model.GuildConfig, sender *fakeSender) *Dispatcher {
	t.Helper()
	db, err := database.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	configCache := cache.New(func(guildID string) (*model.GuildConfig, error) {
		return config, nil
	})
	return NewDispatcher(sender, configCache, db)
}

func timeoutAddedEvent(expiresAt time.Time) Event {
	return Event{
		Kind:       TimeoutAdded,
		GuildID:    "G1",
		TargetID:   "U1",
		ExecutorID: "M1",
		Reason:     "spam",
		ExpiresAt:  expiresAt,
	}
}

func TestHandleTimeoutAddedSendsAndPersists(t *testing.T) {
	sender := &fakeSender{knownChannels: map[string]bool{"C1": true}}
	d := newTestDispatcher(t, &model.GuildConfig{
		GuildID:               "G1",
		TimeoutLogEnabled:     true,
		TimeoutLogChannelID:   "C1",
		TimeoutLogAddTemplate: "{executor} muted {target} until {timestamp}",
	}, sender)

	d.Handle(timeoutAddedEvent(time.Unix(1700000000, 0)))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "C1", sender.sent[0].channelID)
	assert.Equal(t, "<@M1> muted <@U1> until <t:1700000000:F>", sender.sent[0].content)

	rows, err := database.GetPunishments(d.db, "G1", database.PunishmentQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.PunishmentTimeout, rows[0].Type)
	assert.Equal(t, "U1", rows[0].TargetID)
	assert.Equal(t, "M1", rows[0].ExecutorID)
	assert.Equal(t, int64(1700000000), rows[0].ExpiresAt)
}

func TestHandleTimeoutAddedDMsTarget(t *testing.T) {
	sender := &fakeSender{
		knownChannels: map[string]bool{"C1": true},
		dmChannels:    map[string]string{"U1": "D1"},
	}
	d := newTestDispatcher(t, &model.GuildConfig{
		GuildID:               "G1",
		TimeoutLogEnabled:     true,
		TimeoutLogChannelID:   "C1",
		TimeoutLogAddTemplate: "{executor} muted {target}",
	}, sender)

	d.Handle(timeoutAddedEvent(time.Unix(1700000000, 0)))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "C1", sender.sent[0].channelID)
	assert.Equal(t, "D1", sender.sent[1].channelID)
	assert.Equal(t, "You have been timed out until <t:1700000000:F> for **spam**.", sender.sent[1].content)
}

func TestHandleBanAddedDoesNotDMTarget(t *testing.T) {
	sender := &fakeSender{
		knownChannels: map[string]bool{"C2": true},
		dmChannels:    map[string]string{"U1": "D1"},
	}
	d := newTestDispatcher(t, &model.GuildConfig{
		GuildID:               "G1",
		BanLogEnabled:         true,
		BanLogChannelID:       "C2",
		BanLogMessageTemplate: "{target} banned",
	}, sender)

	d.Handle(Event{Kind: BanAdded, GuildID: "G1", TargetID: "U1", ExecutorID: "M1", Reason: "raiding"})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "C2", sender.sent[0].channelID)
}

func TestHandleTimeoutAddedDisabledStillPersists(t *testing.T) {
	sender := &fakeSender{knownChannels: map[string]bool{"C1": true}}
	d := newTestDispatcher(t, &model.GuildConfig{
		GuildID:               "G1",
		TimeoutLogEnabled:     false,
		TimeoutLogChannelID:   "C1",
		TimeoutLogAddTemplate: "{executor} muted {target}",
	}, sender)

	d.Handle(timeoutAddedEvent(time.Now().Add(time.Hour)))

	assert.Empty(t, sender.sent)
	rows, err := database.GetPunishments(d.db, "G1", database.PunishmentQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestHandleMissingChannelStillPersists(t *testing.T) {
	sender := &fakeSender{knownChannels: map[string]bool{}}
	d := newTestDispatcher(t, &model.GuildConfig{
		GuildID:               "G1",
		TimeoutLogEnabled:     true,
		TimeoutLogChannelID:   "gone",
		TimeoutLogAddTemplate: "{executor} muted {target}",
	}, sender)

	d.Handle(timeoutAddedEvent(time.Now().Add(time.Hour)))

	assert.Empty(t, sender.sent)
	rows, err := database.GetPunishments(d.db, "G1", database.PunishmentQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestHandleSendFailureStillPersists(t *testing.T) {
	sender := &fakeSender{knownChannels: map[string]bool{"C1": true}, sendErr: fmt.Errorf("rate limited")}
	d := newTestDispatcher(t, &model.GuildConfig{
		GuildID:               "G1",
		TimeoutLogEnabled:     true,
		TimeoutLogChannelID:   "C1",
		TimeoutLogAddTemplate: "{executor} muted {target}",
	}, sender)

	d.Handle(timeoutAddedEvent(time.Now().Add(time.Hour)))

	rows, err := database.GetPunishments(d.db, "G1", database.PunishmentQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestHandleTimeoutRemovedClosesActiveEntry(t *testing.T) {
	sender := &fakeSender{knownChannels: map[string]bool{"C1": true}}
	d := newTestDispatcher(t, &model.GuildConfig{
		GuildID:                  "G1",
		TimeoutLogEnabled:        true,
		TimeoutLogChannelID:      "C1",
		TimeoutLogRemoveTemplate: "{executor} unmuted {target}",
	}, sender)

	_, err := database.AddPunishmentLog(d.db, &model.PunishmentLog{
		GuildID:    "G1",
		Type:       model.PunishmentTimeout,
		TargetID:   "U1",
		ExecutorID: "M1",
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	d.Handle(Event{Kind: TimeoutRemoved, GuildID: "G1", TargetID: "U1", ExecutorID: "M2"})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "<@M2> unmuted <@U1>", sender.sent[0].content)

	rows, err := database.GetPunishments(d.db, "G1", database.PunishmentQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotZero(t, rows[0].RemovedAt)
	assert.Equal(t, "M2", rows[0].RemovedBy)
}

func TestHandleBanAddedSendsAndPersists(t *testing.T) {
	sender := &fakeSender{knownChannels: map[string]bool{"C2": true}}
	d := newTestDispatcher(t, &model.GuildConfig{
		GuildID:               "G1",
		BanLogEnabled:         true,
		BanLogChannelID:       "C2",
		BanLogMessageTemplate: "{target} banned by {executor} for {reason}",
	}, sender)

	d.Handle(Event{Kind: BanAdded, GuildID: "G1", TargetID: "U1", ExecutorID: "M1", Reason: "raiding"})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "<@U1> banned by <@M1> for raiding", sender.sent[0].content)

	rows, err := database.GetPunishments(d.db, "G1", database.PunishmentQuery{Type: model.PunishmentBan})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].ExpiresAt)
}

func TestHandleIgnoreDoesNothing(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(t, &model.GuildConfig{GuildID: "G1"}, sender)

	d.Handle(Event{Kind: Ignore, GuildID: "G1"})

	assert.Empty(t, sender.sent)
	rows, err := database.GetPunishments(d.db, "G1", database.PunishmentQuery{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
