package handlers

import (
	"fmt"
	"log"
	"time"

	"modguard/bot"
	"modguard/model"
	"modguard/utils"
	"modguard/utils/database"

	"github.com/bwmarrin/discordgo"
)

const maxTimeout = 28 * 24 * time.Hour

// HandleTimeout implements /timeout. The resulting member update flows back
// through the audit-log pipeline, which does the logging and persistence.
func HandleTimeout(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := parseModerationOptions(s, i)
	if opts.target == nil {
		utils.SendErrorResponse(s, i, "No target user supplied.")
		return
	}

	duration, err := utils.ParseDuration(opts.duration)
	if err != nil {
		utils.SendErrorResponse(s, i, "Invalid duration. Use forms like `10m`, `2h` or `7d`.")
		return
	}
	if duration <= 0 || duration > maxTimeout {
		utils.SendErrorResponse(s, i, "Duration must be positive and at most 28 days.")
		return
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Error deferring timeout response: %v", err)
		return
	}

	until := time.Now().Add(duration)
	err = s.GuildMemberTimeout(i.GuildID, opts.target.ID, &until, discordgo.WithAuditLogReason(opts.reason))
	if err != nil {
		log.Printf("Error timing out user %s in guild %s: %v", opts.target.ID, i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to time out the member.")
		return
	}

	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("⏲️ Timed out %s for %s.", opts.target.Mention(), utils.HumanDuration(duration)))
}

// HandleBan implements /ban. Persistence and notification happen in the
// audit-log pipeline once Discord emits the ban entry.
func HandleBan(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := parseModerationOptions(s, i)
	if opts.target == nil {
		utils.SendErrorResponse(s, i, "No target user supplied.")
		return
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Error deferring ban response: %v", err)
		return
	}

	if err := s.GuildBanCreateWithReason(i.GuildID, opts.target.ID, opts.reason, 0); err != nil {
		log.Printf("Error banning user %s in guild %s: %v", opts.target.ID, i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to ban the member.")
		return
	}

	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("🔨 Banned %s.", opts.target.Mention()))
}

// HandleWarn implements /warn. Warnings have no platform-side action, so
// notification and persistence run here rather than in the audit pipeline;
// both are best-effort and independent, send first.
func HandleWarn(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := parseModerationOptions(s, i)
	if opts.target == nil {
		utils.SendErrorResponse(s, i, "No target user supplied.")
		return
	}
	executorID := moderatorID(i)
	reason := utils.CleanReason(opts.reason)

	config, err := b.ConfigCache.Get(i.GuildID)
	if err != nil {
		log.Printf("Error loading config for guild %s: %v", i.GuildID, err)
	} else if config.WarnLogEnabled && config.WarnLogChannelID != "" && config.WarnLogMessageTemplate != "" {
		if _, err := s.Channel(config.WarnLogChannelID); err != nil {
			log.Printf("Warn log channel %s for guild %s not available: %v", config.WarnLogChannelID, i.GuildID, err)
		} else {
			message := utils.RenderTemplate(config.WarnLogMessageTemplate, map[string]string{
				"target":     utils.Mention(opts.target.ID),
				"targetId":   opts.target.ID,
				"executor":   utils.Mention(executorID),
				"executorId": executorID,
				"reason":     reason,
			})
			if _, err := s.ChannelMessageSend(config.WarnLogChannelID, message); err != nil {
				log.Printf("Failed to send warn notification for guild %s: %v", i.GuildID, err)
			}
		}
	}

	_, err = database.AddPunishmentLog(b.DB, &model.PunishmentLog{
		GuildID:    i.GuildID,
		Type:       model.PunishmentWarn,
		TargetID:   opts.target.ID,
		ExecutorID: executorID,
		Reason:     reason,
	})
	if err != nil {
		log.Printf("Error saving warning for guild %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to save the warning.")
		return
	}

	utils.SendSimpleResponse(s, i, fmt.Sprintf("⚠️ Warned %s: %s", opts.target.Mention(), reason))
}

type moderationOptions struct {
	target   *discordgo.User
	duration string
	reason   string
}

func parseModerationOptions(s *discordgo.Session, i *discordgo.InteractionCreate) moderationOptions {
	var opts moderationOptions
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			opts.target = opt.UserValue(s)
		case "duration":
			opts.duration = opt.StringValue()
		case "reason":
			opts.reason = opt.StringValue()
		}
	}
	return opts
}

func moderatorID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return "unknown"
}
