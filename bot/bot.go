package bot

import (
	"log"

	"modguard/cache"
	"modguard/model"
	"modguard/moderation"
	"modguard/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// ConfigBroadcaster pushes config changes to connected dashboard clients.
// The WebSocket hub implements it; a nil broadcaster disables pushes.
type ConfigBroadcaster interface {
	BroadcastConfigUpdate(guildID string, config *model.GuildConfig)
}

type Bot struct {
	Session            *discordgo.Session
	Config             *model.Config
	DB                 *sqlx.DB
	ConfigCache        *cache.GuildConfigCache
	Dispatcher         *moderation.Dispatcher
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	broadcaster ConfigBroadcaster
	scheduler   *Scheduler
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentGuildModeration
	dg.StateEnabled = true

	configCache := cache.New(func(guildID string) (*model.GuildConfig, error) {
		return database.GetGuildConfig(db, guildID)
	})

	b := &Bot{
		Session:     dg,
		Config:      cfg,
		DB:          db,
		ConfigCache: configCache,
		Dispatcher:  moderation.NewDispatcher(dg, configCache, db),
	}
	b.scheduler = NewScheduler(b)
	return b, nil
}

// SetBroadcaster attaches the dashboard push channel. Must be called before
// Run.
func (b *Bot) SetBroadcaster(broadcaster ConfigBroadcaster) {
	b.broadcaster = broadcaster
}

// BroadcastConfigUpdate forwards a config change to the dashboard, if a
// push channel is attached.
func (b *Bot) BroadcastConfigUpdate(guildID string, config *model.GuildConfig) {
	if b.broadcaster != nil {
		b.broadcaster.BroadcastConfigUpdate(guildID, config)
	}
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	b.Session.Close()
}
