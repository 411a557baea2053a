package model

// Config holds the application configuration assembled at startup from the
// environment and the optional config file.
type Config struct {
	BotToken         string
	AppID            string
	LogChannelID     string
	DatabasePath     string
	DeveloperUserIDs []string

	API APIConfig
}

// IsDeveloper reports whether the user is on the developer allowlist. An
// empty allowlist means no restriction.
func (c *Config) IsDeveloper(userID string) bool {
	if len(c.DeveloperUserIDs) == 0 {
		return true
	}
	for _, id := range c.DeveloperUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// APIConfig configures the dashboard HTTP/WebSocket server.
type APIConfig struct {
	ListenAddr          string
	AllowedOrigins      []string
	JWTSecret           string
	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string
}
