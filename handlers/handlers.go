package handlers

import (
	"log"
	"strings"
	"time"

	"modguard/bot"
	"modguard/moderation"
	"modguard/utils/database"

	"github.com/bwmarrin/discordgo"
)

// Register wires all gateway handlers onto the bot session.
func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"ping": HandlePing,
		"help": HandleHelp,
		"stats": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleStats(s, i, b)
		},
		"config": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleConfig(s, i, b)
		},
		"timeout": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleTimeout(s, i, b)
		},
		"ban": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleBan(s, i, b)
		},
		"warn": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleWarn(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})

	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})

	b.Session.AddHandler(func(s *discordgo.Session, e *discordgo.GuildAuditLogEntryCreate) {
		event := moderation.Classify(e, time.Now())
		if event.Kind == moderation.Ignore {
			return
		}
		log.Printf("[AuditLog] %s in guild %s (target %s)", event.Kind, event.GuildID, event.TargetID)
		b.Dispatcher.Handle(event)
	})

	b.Session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		HandleGuildCreate(s, g, b)
	})

	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		HandleWelcome(s, m, b)
	})

	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		if strings.TrimSpace(m.Content) == "!help" {
			if _, err := s.ChannelMessageSend(m.ChannelID, helpText); err != nil {
				log.Printf("Failed to send prefix help: %v", err)
			}
		}
	})
}

const helpText = "**Commands**\n" +
	"`/ping` — gateway latency\n" +
	"`/stats` — bot and host statistics\n" +
	"`/config view` — show this server's configuration\n" +
	"`/config update` — change a configuration field\n" +
	"`/timeout` — time out a member\n" +
	"`/ban` — ban a member\n" +
	"`/warn` — warn a member"

// HandleGuildCreate keeps the guild row's name and icon current so the
// dashboard guild list has something to show.
func HandleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate, b *bot.Bot) {
	if err := database.EnsureGuild(b.DB, g.ID, g.Name, g.Icon); err != nil {
		log.Printf("[Guild] Failed to record guild %s: %v", g.ID, err)
	}
}

// HandlePing reports the heartbeat latency.
func HandlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "🏓 Pong! " + s.HeartbeatLatency().String(),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to ping: %v", err)
	}
}

// HandleHelp lists the available commands.
func HandleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: helpText,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to help: %v", err)
	}
}
