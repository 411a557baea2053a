package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"modguard/api/middleware"
	"modguard/cache"
	"modguard/model"
	"modguard/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
)

const (
	discordTokenURL  = "https://discord.com/api/oauth2/token"
	sessionTokenTTL  = 7 * 24 * time.Hour
	defaultPageLimit = 50
)

// Handler serves the dashboard REST endpoints.
type Handler struct {
	cfg     model.APIConfig
	db      *sqlx.DB
	cache   *cache.GuildConfigCache
	session *discordgo.Session
	hub     *Hub

	// Overridable for tests; default implementations talk to Discord.
	tokenURL      string
	fetchIdentity func(accessToken string) (*discordgo.User, error)
	userGuilds    func(accessToken string) ([]*discordgo.UserGuild, error)
}

func NewHandler(cfg model.APIConfig, db *sqlx.DB, configCache *cache.GuildConfigCache, session *discordgo.Session, hub *Hub) *Handler {
	return &Handler{
		cfg:           cfg,
		db:            db,
		cache:         configCache,
		session:       session,
		hub:           hub,
		tokenURL:      discordTokenURL,
		fetchIdentity: fetchIdentity,
		userGuilds:    fetchUserGuilds,
	}
}

func fetchIdentity(accessToken string) (*discordgo.User, error) {
	s, err := discordgo.New("Bearer " + accessToken)
	if err != nil {
		return nil, err
	}
	return s.User("@me")
}

func fetchUserGuilds(accessToken string) ([]*discordgo.UserGuild, error) {
	s, err := discordgo.New("Bearer " + accessToken)
	if err != nil {
		return nil, err
	}
	return s.UserGuilds(200, "", "", false)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// handleDiscordAuth exchanges an OAuth2 authorization code for a dashboard
// session token.
func (h *Handler) handleDiscordAuth(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	resp, err := http.PostForm(h.tokenURL, url.Values{
		"client_id":     {h.cfg.DiscordClientID},
		"client_secret": {h.cfg.DiscordClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {body.Code},
		"redirect_uri":  {h.cfg.DiscordRedirectURI},
	})
	if err != nil {
		log.Printf("[API] OAuth token exchange failed: %v", err)
		writeError(w, http.StatusBadGateway, "token exchange failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[API] OAuth token exchange returned status %d", resp.StatusCode)
		writeError(w, http.StatusUnauthorized, "invalid authorization code")
		return
	}

	var tokens tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil || tokens.AccessToken == "" {
		writeError(w, http.StatusBadGateway, "malformed token response")
		return
	}

	identity, err := h.fetchIdentity(tokens.AccessToken)
	if err != nil {
		log.Printf("[API] Failed to fetch identity: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch user identity")
		return
	}

	user := &model.User{
		ID:           identity.ID,
		Username:     identity.Username,
		Avatar:       identity.Avatar,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if err := database.UpsertUser(h.db, user); err != nil {
		log.Printf("[API] Failed to save user %s: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	sessionToken, err := h.signSessionToken(user.ID)
	if err != nil {
		log.Printf("[API] Failed to sign session token: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": sessionToken,
		"user":  user,
	})
}

func (h *Handler) signSessionToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
	})
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.UserFromContext(r.Context()))
}

type guildSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// handleListGuilds returns the guilds the user can manage and the bot is a
// member of.
func (h *Handler) handleListGuilds(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	guilds, err := h.userGuilds(user.AccessToken)
	if err != nil {
		log.Printf("[API] Failed to list guilds for user %s: %v", user.ID, err)
		writeError(w, http.StatusBadGateway, "failed to fetch guild list")
		return
	}

	manageable := make([]guildSummary, 0)
	for _, g := range guilds {
		if !canManage(g.Permissions) {
			continue
		}
		if !h.botInGuild(g.ID) {
			continue
		}
		manageable = append(manageable, guildSummary{ID: g.ID, Name: g.Name, Icon: g.Icon})
	}
	writeJSON(w, http.StatusOK, manageable)
}

func (h *Handler) botInGuild(guildID string) bool {
	if h.session == nil || h.session.State == nil {
		return false
	}
	_, err := h.session.State.Guild(guildID)
	return err == nil
}

// requireGuildAccess resolves the guild from the route and verifies the
// user can manage it. It writes the error response on failure.
func (h *Handler) requireGuildAccess(w http.ResponseWriter, r *http.Request) (string, bool) {
	guildID := mux.Vars(r)["guildId"]
	if guildID == "" {
		writeError(w, http.StatusBadRequest, "missing guild id")
		return "", false
	}
	user := middleware.UserFromContext(r.Context())

	guilds, err := h.userGuilds(user.AccessToken)
	if err != nil {
		log.Printf("[API] Failed to list guilds for user %s: %v", user.ID, err)
		writeError(w, http.StatusBadGateway, "failed to verify guild access")
		return "", false
	}
	for _, g := range guilds {
		if g.ID == guildID && canManage(g.Permissions) {
			return guildID, true
		}
	}
	writeError(w, http.StatusForbidden, fmt.Sprintf("no access to guild %s", guildID))
	return "", false
}

func canManage(permissions int64) bool {
	return permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageServer) != 0
}
