package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"modguard/api/middleware"
	"modguard/cache"
	"modguard/model"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/rs/cors"
)

// Server is the dashboard HTTP and WebSocket API.
type Server struct {
	cfg        model.APIConfig
	httpServer *http.Server
	hub        *Hub
}

// New assembles the router, handlers and WebSocket hub. The discord session
// is the bot's gateway session, used for channel and role lookups.
func New(cfg model.APIConfig, db *sqlx.DB, configCache *cache.GuildConfigCache, session *discordgo.Session) *Server {
	auth := middleware.NewJWTAuthMiddleware(cfg.JWTSecret, db)
	hub := NewHub(auth)
	h := NewHandler(cfg, db, configCache, session, hub)

	router := mux.NewRouter()
	router.HandleFunc("/api/auth/discord", h.handleDiscordAuth).Methods(http.MethodPost)
	router.HandleFunc("/api/users/@me", auth.WithAuth(h.handleCurrentUser)).Methods(http.MethodGet)
	router.HandleFunc("/api/guilds", auth.WithAuth(h.handleListGuilds)).Methods(http.MethodGet)
	router.HandleFunc("/api/guilds/{guildId}", auth.WithAuth(h.handleGetGuildConfig)).Methods(http.MethodGet)
	router.HandleFunc("/api/guilds/{guildId}", auth.WithAuth(h.handleUpdateGuildConfig)).Methods(http.MethodPut)
	router.HandleFunc("/api/guilds/{guildId}/channels", auth.WithAuth(h.handleListChannels)).Methods(http.MethodGet)
	router.HandleFunc("/api/guilds/{guildId}/roles", auth.WithAuth(h.handleListRoles)).Methods(http.MethodGet)
	router.HandleFunc("/api/guilds/{guildId}/punishments", auth.WithAuth(h.handleListPunishments)).Methods(http.MethodGet)
	router.HandleFunc("/ws", hub.ServeWS)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      corsHandler.Handler(router),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		hub: hub,
	}
}

// Hub returns the WebSocket hub so the bot can push config updates.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("[API] Listening on %s", s.cfg.ListenAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes WebSocket connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.CloseAll()
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
