package commands

import (
	"github.com/bwmarrin/discordgo"
)

// ConfigFields lists the settings editable through /config update, keyed by
// the same field names the dashboard API accepts.
var ConfigFields = map[string]string{
	"timeoutLogEnabled":        "Enable timeout logging (true/false)",
	"timeoutLogChannelId":      "Timeout log channel id",
	"timeoutLogAddTemplate":    "Timeout added message template",
	"timeoutLogRemoveTemplate": "Timeout removed message template",
	"banLogEnabled":            "Enable ban logging (true/false)",
	"banLogChannelId":          "Ban log channel id",
	"banLogMessageTemplate":    "Ban message template",
	"warnLogEnabled":           "Enable warning logging (true/false)",
	"warnLogChannelId":         "Warning log channel id",
	"warnLogMessageTemplate":   "Warning message template",
	"welcomeEnabled":           "Enable welcome messages (true/false)",
	"welcomeChannelId":         "Welcome channel id",
	"welcomeMessageTemplate":   "Welcome message template",
}

// Generate builds the application command set registered on startup.
func Generate() []*discordgo.ApplicationCommand {
	moderateMembers := int64(discordgo.PermissionModerateMembers)
	banMembers := int64(discordgo.PermissionBanMembers)
	manageServer := int64(discordgo.PermissionManageServer)

	fieldChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(ConfigFields))
	for _, field := range orderedConfigFields {
		fieldChoices = append(fieldChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  ConfigFields[field],
			Value: field,
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check the bot's gateway latency",
		},
		{
			Name:        "help",
			Description: "Show the available commands",
		},
		{
			Name:        "stats",
			Description: "Show bot and host statistics",
		},
		{
			Name:                     "config",
			Description:              "View or edit this server's configuration",
			DefaultMemberPermissions: &manageServer,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "Show the current guild configuration",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "update",
					Description: "Update a specific config field",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "field",
							Description: "Which setting to update",
							Required:    true,
							Choices:     fieldChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "value",
							Description: "New value",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     "timeout",
			Description:              "Time out a member",
			DefaultMemberPermissions: &moderateMembers,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to time out",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "Duration, e.g. 10m, 2h, 7d (max 28d)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for the timeout",
					Required:    false,
				},
			},
		},
		{
			Name:                     "ban",
			Description:              "Ban a member",
			DefaultMemberPermissions: &banMembers,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to ban",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for the ban",
					Required:    false,
				},
			},
		},
		{
			Name:                     "warn",
			Description:              "Warn a member",
			DefaultMemberPermissions: &moderateMembers,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The member to warn",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for the warning",
					Required:    true,
				},
			},
		},
	}
}

// orderedConfigFields fixes the choice ordering; map iteration would
// reshuffle the command payload on every registration.
var orderedConfigFields = []string{
	"timeoutLogEnabled",
	"timeoutLogChannelId",
	"timeoutLogAddTemplate",
	"timeoutLogRemoveTemplate",
	"banLogEnabled",
	"banLogChannelId",
	"banLogMessageTemplate",
	"warnLogEnabled",
	"warnLogChannelId",
	"warnLogMessageTemplate",
	"welcomeEnabled",
	"welcomeChannelId",
	"welcomeMessageTemplate",
}
