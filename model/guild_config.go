package model

// Default message templates applied when a guild's config row is first
// created. Placeholders use {name} syntax; unknown placeholders are left
// verbatim when rendered.
const (
	DefaultTimeoutAddTemplate    = "{target} has been timed out by {executor} until {timestamp} for **{reason}**."
	DefaultTimeoutRemoveTemplate = "{target}'s timeout has been removed by {executor}."
	DefaultBanTemplate           = "{target} has been banned by {executor} for **{reason}**."
	DefaultWarnTemplate          = "{target} has been warned by {executor} for **{reason}**."
	DefaultWelcomeTemplate       = "Welcome to {guild}, {user}!"
)

// Guild is a Discord guild the bot is a member of.
type Guild struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Icon      string `db:"icon" json:"icon"`
	CreatedAt int64  `db:"created_at" json:"createdAt"`
	UpdatedAt int64  `db:"updated_at" json:"updatedAt"`
}

// GuildConfig holds a guild's moderation-logging and welcome settings.
// JSON names match the dashboard API's wire format.
type GuildConfig struct {
	ID      int64  `db:"id" json:"id"`
	GuildID string `db:"guild_id" json:"guildId"`

	TimeoutLogEnabled        bool   `db:"timeout_log_enabled" json:"timeoutLogEnabled"`
	TimeoutLogChannelID      string `db:"timeout_log_channel_id" json:"timeoutLogChannelId"`
	TimeoutLogAddTemplate    string `db:"timeout_log_add_template" json:"timeoutLogAddTemplate"`
	TimeoutLogRemoveTemplate string `db:"timeout_log_remove_template" json:"timeoutLogRemoveTemplate"`

	BanLogEnabled         bool   `db:"ban_log_enabled" json:"banLogEnabled"`
	BanLogChannelID       string `db:"ban_log_channel_id" json:"banLogChannelId"`
	BanLogMessageTemplate string `db:"ban_log_message_template" json:"banLogMessageTemplate"`

	WarnLogEnabled         bool   `db:"warn_log_enabled" json:"warnLogEnabled"`
	WarnLogChannelID       string `db:"warn_log_channel_id" json:"warnLogChannelId"`
	WarnLogMessageTemplate string `db:"warn_log_message_template" json:"warnLogMessageTemplate"`

	WelcomeEnabled         bool   `db:"welcome_enabled" json:"welcomeEnabled"`
	WelcomeChannelID       string `db:"welcome_channel_id" json:"welcomeChannelId"`
	WelcomeMessageTemplate string `db:"welcome_message_template" json:"welcomeMessageTemplate"`

	CreatedAt int64 `db:"created_at" json:"createdAt"`
	UpdatedAt int64 `db:"updated_at" json:"updatedAt"`
}
