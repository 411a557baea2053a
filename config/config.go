package config

import (
	"log"
	"os"
	"strings"

	"modguard/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load assembles the configuration from the environment and the optional
// config.yaml. Secrets come from the environment only; the config file
// carries the API server settings.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	logChannelID := os.Getenv("LOG_CHANNEL_ID")
	if logChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, operator logging will be disabled")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Error: JWT_SECRET environment variable not set")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./data")
	v.SetDefault("api.listen_addr", ":3001")
	v.SetDefault("api.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("database.path", "./data/modguard.db")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Println("Warning: config.yaml not found, using defaults")
	}

	cfg := &model.Config{
		BotToken:         token,
		AppID:            appID,
		LogChannelID:     logChannelID,
		DatabasePath:     v.GetString("database.path"),
		DeveloperUserIDs: splitList(os.Getenv("DEVELOPER_USER_IDS")),
		API: model.APIConfig{
			ListenAddr:          v.GetString("api.listen_addr"),
			AllowedOrigins:      v.GetStringSlice("api.allowed_origins"),
			JWTSecret:           jwtSecret,
			DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
			DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
			DiscordRedirectURI:  os.Getenv("DISCORD_REDIRECT_URI"),
		},
	}

	return cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
