package handlers

import (
	"fmt"
	"log"
	"strings"

	"modguard/bot"
	"modguard/commands"
	"modguard/utils"
	"modguard/utils/database"

	"github.com/bwmarrin/discordgo"
)

// HandleConfig implements /config view and /config update.
func HandleConfig(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.GuildID == "" {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "view":
		handleConfigView(s, i, b)
	case "update":
		handleConfigUpdate(s, i, b, options[0].Options)
	}
}

func handleConfigView(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	config, err := b.ConfigCache.Get(i.GuildID)
	if err != nil {
		log.Printf("Error loading config for guild %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Could not load the configuration for this server.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "🔧 Server Configuration",
		Color: 0x00B0F4,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Timeout Logging", Value: enabledLabel(config.TimeoutLogEnabled, config.TimeoutLogChannelID), Inline: true},
			{Name: "Ban Logging", Value: enabledLabel(config.BanLogEnabled, config.BanLogChannelID), Inline: true},
			{Name: "Warning Logging", Value: enabledLabel(config.WarnLogEnabled, config.WarnLogChannelID), Inline: true},
			{Name: "Welcome Messages", Value: enabledLabel(config.WelcomeEnabled, config.WelcomeChannelID), Inline: true},
		},
	}
	utils.SendEmbedResponse(s, i, embed)
}

func enabledLabel(enabled bool, channelID string) string {
	if !enabled {
		return "❌ Disabled"
	}
	if channelID == "" {
		return "✅ Enabled (no channel set)"
	}
	return "✅ Enabled in <#" + channelID + ">"
}

func handleConfigUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, options []*discordgo.ApplicationCommandInteractionDataOption) {
	var field, rawValue string
	for _, opt := range options {
		switch opt.Name {
		case "field":
			field = opt.StringValue()
		case "value":
			rawValue = opt.StringValue()
		}
	}

	if _, ok := commands.ConfigFields[field]; !ok {
		utils.SendErrorResponse(s, i, "Unknown configuration field.")
		return
	}

	var value interface{}
	if strings.HasSuffix(field, "Enabled") {
		switch strings.ToLower(rawValue) {
		case "true":
			value = true
		case "false":
			value = false
		default:
			utils.SendErrorResponse(s, i, "Value must be either `true` or `false`.")
			return
		}
	} else {
		value = rawValue
	}

	config, err := database.UpsertGuildConfig(b.DB, i.GuildID, map[string]interface{}{field: value})
	if err != nil {
		log.Printf("Error updating config for guild %s: %v", i.GuildID, err)
		utils.SendErrorResponse(s, i, "Failed to update the configuration.")
		return
	}

	// Keep cache and store in agreement, then push to the dashboard.
	b.ConfigCache.Set(i.GuildID, config)
	b.BroadcastConfigUpdate(i.GuildID, config)

	utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ Updated `%s` to `%s`.", field, rawValue))
}
