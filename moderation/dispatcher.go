package moderation

import (
	"fmt"
	"log"
	"time"

	"modguard/cache"
	"modguard/model"
	"modguard/utils"
	"modguard/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// MessageSender is the slice of the Discord session the dispatcher needs.
// *discordgo.Session satisfies it.
type MessageSender interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Dispatcher reacts to classified moderation events: it renders and sends the
// configured notification, and records the punishment. The two side effects
// are independent and both best-effort; a send failure never blocks
// persistence and a persistence failure never blocks the send.
type Dispatcher struct {
	sender MessageSender
	cache  *cache.GuildConfigCache
	db     *sqlx.DB
}

// NewDispatcher wires the dispatcher to its collaborators.
func NewDispatcher(sender MessageSender, configCache *cache.GuildConfigCache, db *sqlx.DB) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		cache:  configCache,
		db:     db,
	}
}

// Handle processes one classified event. Errors are logged and swallowed so
// one failing guild never stops the event loop.
func (d *Dispatcher) Handle(event Event) {
	if event.Kind == Ignore {
		return
	}

	config, err := d.cache.Get(event.GuildID)
	if err != nil {
		log.Printf("[Moderation] Failed to load config for guild %s: %v", event.GuildID, err)
		// Still record the action; notification settings are advisory.
		d.persist(event)
		return
	}

	d.notify(event, config)
	if event.Kind == TimeoutAdded {
		d.dmTarget(event)
	}
	d.persist(event)
}

// dmTarget tells the timed-out user what happened. Users with closed DMs
// just miss the notice.
func (d *Dispatcher) dmTarget(event Event) {
	if event.TargetID == UnknownID {
		return
	}
	dm, err := d.sender.UserChannelCreate(event.TargetID)
	if err != nil {
		log.Printf("[Moderation] Cannot open DM with user %s: %v", event.TargetID, err)
		return
	}
	message := fmt.Sprintf("You have been timed out until %s for **%s**.",
		utils.DiscordTimestamp(event.ExpiresAt, "F"), event.Reason)
	if _, err := d.sender.ChannelMessageSend(dm.ID, message); err != nil {
		log.Printf("[Moderation] Failed to DM user %s: %v", event.TargetID, err)
	}
}

func (d *Dispatcher) notify(event Event, config *model.GuildConfig) {
	var enabled bool
	var channelID, template string

	switch event.Kind {
	case TimeoutAdded:
		enabled, channelID, template = config.TimeoutLogEnabled, config.TimeoutLogChannelID, config.TimeoutLogAddTemplate
	case TimeoutRemoved:
		enabled, channelID, template = config.TimeoutLogEnabled, config.TimeoutLogChannelID, config.TimeoutLogRemoveTemplate
	case BanAdded:
		enabled, channelID, template = config.BanLogEnabled, config.BanLogChannelID, config.BanLogMessageTemplate
	}

	if !enabled || channelID == "" || template == "" {
		return
	}

	// The configured channel may have been deleted since; check at use time.
	if _, err := d.sender.Channel(channelID); err != nil {
		log.Printf("[Moderation] Log channel %s for guild %s not available: %v", channelID, event.GuildID, err)
		return
	}

	message := utils.RenderTemplate(template, d.templateVars(event))
	if _, err := d.sender.ChannelMessageSend(channelID, message); err != nil {
		log.Printf("[Moderation] Failed to send %s notification for guild %s: %v", event.Kind, event.GuildID, err)
	}
}

func (d *Dispatcher) templateVars(event Event) map[string]string {
	vars := map[string]string{
		"target":     utils.Mention(event.TargetID),
		"targetId":   event.TargetID,
		"executor":   utils.Mention(event.ExecutorID),
		"executorId": event.ExecutorID,
		"reason":     event.Reason,
	}
	if event.Kind == TimeoutAdded {
		vars["timestamp"] = utils.DiscordTimestamp(event.ExpiresAt, "F")
		vars["duration"] = utils.HumanDuration(time.Until(event.ExpiresAt))
	}
	return vars
}

func (d *Dispatcher) persist(event Event) {
	switch event.Kind {
	case TimeoutAdded:
		entry := &model.PunishmentLog{
			GuildID:    event.GuildID,
			Type:       model.PunishmentTimeout,
			TargetID:   event.TargetID,
			ExecutorID: event.ExecutorID,
			Reason:     event.Reason,
			ExpiresAt:  event.ExpiresAt.Unix(),
		}
		if _, err := database.AddPunishmentLog(d.db, entry); err != nil {
			log.Printf("[Moderation] Failed to persist timeout for guild %s: %v", event.GuildID, err)
		}

	case TimeoutRemoved:
		removed, err := database.RemoveActiveTimeout(d.db, event.GuildID, event.TargetID, event.ExecutorID)
		if err != nil {
			log.Printf("[Moderation] Failed to close timeout for user %s in guild %s: %v", event.TargetID, event.GuildID, err)
			return
		}
		if removed == nil {
			log.Printf("[Moderation] No active timeout to close for user %s in guild %s", event.TargetID, event.GuildID)
		}

	case BanAdded:
		entry := &model.PunishmentLog{
			GuildID:    event.GuildID,
			Type:       model.PunishmentBan,
			TargetID:   event.TargetID,
			ExecutorID: event.ExecutorID,
			Reason:     event.Reason,
		}
		if _, err := database.AddPunishmentLog(d.db, entry); err != nil {
			log.Printf("[Moderation] Failed to persist ban for guild %s: %v", event.GuildID, err)
		}
	}
}
