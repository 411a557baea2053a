package handlers

import (
	"log"

	"modguard/bot"
	"modguard/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleWelcome greets newly joined members in the configured channel.
func HandleWelcome(s *discordgo.Session, m *discordgo.GuildMemberAdd, b *bot.Bot) {
	if m.User == nil || m.User.Bot {
		return
	}

	config, err := b.ConfigCache.Get(m.GuildID)
	if err != nil {
		log.Printf("[Welcome] Error loading config for guild %s: %v", m.GuildID, err)
		return
	}
	if !config.WelcomeEnabled || config.WelcomeChannelID == "" || config.WelcomeMessageTemplate == "" {
		return
	}

	guildName := m.GuildID
	if guild, err := s.State.Guild(m.GuildID); err == nil {
		guildName = guild.Name
	}

	message := utils.RenderTemplate(config.WelcomeMessageTemplate, map[string]string{
		"user":     utils.Mention(m.User.ID),
		"userId":   m.User.ID,
		"username": m.User.Username,
		"guild":    guildName,
	})

	if _, err := s.ChannelMessageSend(config.WelcomeChannelID, message); err != nil {
		log.Printf("[Welcome] Failed to send welcome message in guild %s: %v", m.GuildID, err)
	}
}
