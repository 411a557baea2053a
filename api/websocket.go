package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"modguard/api/middleware"
	"modguard/model"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsClient struct {
	conn   *websocket.Conn
	writeM sync.Mutex
	userID string
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.writeM.Lock()
	defer c.writeM.Unlock()
	return c.conn.WriteJSON(v)
}

type inboundMessage struct {
	Type    string `json:"type"`
	GuildID string `json:"guildId"`
}

// Hub tracks WebSocket clients and their per-guild subscriptions. Clients
// authenticate with a session token and then subscribe to guild rooms.
type Hub struct {
	auth *middleware.JWTAuthMiddleware

	mu    sync.RWMutex
	rooms map[string]map[*wsClient]bool
}

func NewHub(auth *middleware.JWTAuthMiddleware) *Hub {
	return &Hub{
		auth:  auth,
		rooms: make(map[string]map[*wsClient]bool),
	}
}

// ServeWS upgrades the connection and runs the read loop until the client
// disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	userID, err := h.auth.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	client := &wsClient{conn: conn, userID: userID}
	log.Printf("[WS] Client connected for user %s", userID)

	defer func() {
		h.removeClient(client)
		conn.Close()
		log.Printf("[WS] Client disconnected for user %s", userID)
	}()

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error for user %s: %v", userID, err)
			}
			return
		}

		switch msg.Type {
		case "subscribe":
			if msg.GuildID != "" {
				h.subscribe(client, msg.GuildID)
				log.Printf("[WS] User %s subscribed to guild %s (%d watching)", userID, msg.GuildID, h.SubscriberCount(msg.GuildID))
				if err := client.writeJSON(map[string]string{"type": "subscribed", "guildId": msg.GuildID}); err != nil {
					log.Printf("[WS] Failed to ack subscription for user %s: %v", userID, err)
				}
			}
		case "unsubscribe":
			if msg.GuildID != "" {
				h.unsubscribe(client, msg.GuildID)
			}
		}
	}
}

func (h *Hub) subscribe(c *wsClient, guildID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[guildID]
	if !ok {
		room = make(map[*wsClient]bool)
		h.rooms[guildID] = room
	}
	room[c] = true
}

func (h *Hub) unsubscribe(c *wsClient, guildID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[guildID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, guildID)
		}
	}
}

func (h *Hub) removeClient(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for guildID, room := range h.rooms {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, guildID)
		}
	}
}

// BroadcastConfigUpdate pushes the new config to every client subscribed to
// the guild. Failed writes drop the client on its next read.
func (h *Hub) BroadcastConfigUpdate(guildID string, config *model.GuildConfig) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":    "configUpdate",
		"guildId": guildID,
		"config":  config,
	})
	if err != nil {
		log.Printf("[WS] Failed to encode config update for guild %s: %v", guildID, err)
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.rooms[guildID]))
	for c := range h.rooms[guildID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.writeM.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, payload)
		c.writeM.Unlock()
		if err != nil {
			log.Printf("[WS] Failed to push config update to user %s: %v", c.userID, err)
		}
	}
}

// SubscriberCount reports how many clients are watching a guild.
func (h *Hub) SubscriberCount(guildID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[guildID])
}

// CloseAll disconnects every client, typically during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[*wsClient]bool)
	for _, room := range h.rooms {
		for c := range room {
			if !seen[c] {
				seen[c] = true
				c.conn.Close()
			}
		}
	}
	h.rooms = make(map[string]map[*wsClient]bool)
}
