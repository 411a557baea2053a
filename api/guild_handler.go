package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"modguard/model"
	"modguard/utils/database"

	"github.com/bwmarrin/discordgo"
)

func (h *Handler) handleGetGuildConfig(w http.ResponseWriter, r *http.Request) {
	guildID, ok := h.requireGuildAccess(w, r)
	if !ok {
		return
	}

	config, err := h.cache.Get(guildID)
	if err != nil {
		log.Printf("[API] Failed to load config for guild %s: %v", guildID, err)
		writeError(w, http.StatusInternalServerError, "failed to load guild config")
		return
	}
	writeJSON(w, http.StatusOK, config)
}

// handleUpdateGuildConfig merges the supplied fields into the guild config.
// Unknown and structural fields in the body are dropped, not rejected.
func (h *Handler) handleUpdateGuildConfig(w http.ResponseWriter, r *http.Request) {
	guildID, ok := h.requireGuildAccess(w, r)
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	config, err := database.UpsertGuildConfig(h.db, guildID, updates)
	if err != nil {
		log.Printf("[API] Failed to update config for guild %s: %v", guildID, err)
		writeError(w, http.StatusInternalServerError, "failed to update guild config")
		return
	}

	h.cache.Set(guildID, config)
	if h.hub != nil {
		h.hub.BroadcastConfigUpdate(guildID, config)
	}
	writeJSON(w, http.StatusOK, config)
}

type channelSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

func (h *Handler) handleListChannels(w http.ResponseWriter, r *http.Request) {
	guildID, ok := h.requireGuildAccess(w, r)
	if !ok {
		return
	}

	if !h.botInGuild(guildID) {
		writeError(w, http.StatusNotFound, "guild not found")
		return
	}

	channels, err := h.session.GuildChannels(guildID)
	if err != nil {
		log.Printf("[API] Failed to list channels for guild %s: %v", guildID, err)
		writeError(w, http.StatusBadGateway, "failed to fetch channels")
		return
	}

	// The dashboard only targets text-capable channels.
	out := make([]channelSummary, 0, len(channels))
	for _, c := range channels {
		if c.Type != discordgo.ChannelTypeGuildText && c.Type != discordgo.ChannelTypeGuildNews {
			continue
		}
		out = append(out, channelSummary{ID: c.ID, Name: c.Name, Position: c.Position})
	}
	writeJSON(w, http.StatusOK, out)
}

type roleSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    int    `json:"color"`
	Position int    `json:"position"`
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	guildID, ok := h.requireGuildAccess(w, r)
	if !ok {
		return
	}

	if !h.botInGuild(guildID) {
		writeError(w, http.StatusNotFound, "guild not found")
		return
	}

	roles, err := h.session.GuildRoles(guildID)
	if err != nil {
		log.Printf("[API] Failed to list roles for guild %s: %v", guildID, err)
		writeError(w, http.StatusBadGateway, "failed to fetch roles")
		return
	}

	out := make([]roleSummary, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleSummary{ID: role.ID, Name: role.Name, Color: role.Color, Position: role.Position})
	}
	writeJSON(w, http.StatusOK, out)
}

// punishmentEntry adds the computed in-force flag to a history row.
type punishmentEntry struct {
	model.PunishmentLog
	Active bool `json:"active"`
}

func (h *Handler) handleListPunishments(w http.ResponseWriter, r *http.Request) {
	guildID, ok := h.requireGuildAccess(w, r)
	if !ok {
		return
	}

	q := database.PunishmentQuery{Limit: defaultPageLimit}
	params := r.URL.Query()
	if t := params.Get("type"); t != "" {
		q.Type = model.PunishmentType(t)
	}
	q.TargetID = params.Get("target")
	if v := params.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Limit = n
		}
	}
	if v := params.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			q.Offset = n
		}
	}

	var punishments []model.PunishmentLog
	var err error
	if params.Get("active") == "true" {
		punishments, err = database.GetActivePunishments(h.db, guildID, q.Type)
	} else {
		punishments, err = database.GetPunishments(h.db, guildID, q)
	}
	if err != nil {
		log.Printf("[API] Failed to list punishments for guild %s: %v", guildID, err)
		writeError(w, http.StatusInternalServerError, "failed to load punishment history")
		return
	}

	now := time.Now().Unix()
	out := make([]punishmentEntry, 0, len(punishments))
	for _, p := range punishments {
		out = append(out, punishmentEntry{PunishmentLog: p, Active: p.Active(now)})
	}
	writeJSON(w, http.StatusOK, out)
}
