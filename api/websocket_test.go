package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"modguard/api/middleware"
	"modguard/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(middleware.NewJWTAuthMiddleware("ws-secret", nil))
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return hub, srv
}

func wsToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("ws-secret"))
	require.NoError(t, err)
	return signed
}

func dialHub(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	return conn
}

func TestHubSubscribeAndBroadcast(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dialHub(t, srv, wsToken(t, "U1"))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "guildId": "G1"}))

	var ack map[string]string
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "subscribed", ack["type"])
	assert.Equal(t, "G1", ack["guildId"])
	assert.Equal(t, 1, hub.SubscriberCount("G1"))

	hub.BroadcastConfigUpdate("G1", &model.GuildConfig{GuildID: "G1", TimeoutLogEnabled: true})

	var update struct {
		Type    string            `json:"type"`
		GuildID string            `json:"guildId"`
		Config  model.GuildConfig `json:"config"`
	}
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "configUpdate", update.Type)
	assert.Equal(t, "G1", update.GuildID)
	assert.Equal(t, "G1", update.Config.GuildID)
	assert.True(t, update.Config.TimeoutLogEnabled)
}

func TestHubBroadcastOnlyReachesSubscribedGuild(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dialHub(t, srv, wsToken(t, "U1"))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "guildId": "G1"}))
	var ack map[string]string
	require.NoError(t, conn.ReadJSON(&ack))

	hub.BroadcastConfigUpdate("G2", &model.GuildConfig{GuildID: "G2"})
	hub.BroadcastConfigUpdate("G1", &model.GuildConfig{GuildID: "G1"})

	// The first frame after the ack must be the G1 update, not G2's.
	var update struct {
		GuildID string `json:"guildId"`
	}
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "G1", update.GuildID)
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dialHub(t, srv, wsToken(t, "U1"))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "guildId": "G1"}))
	var ack map[string]string
	require.NoError(t, conn.ReadJSON(&ack))
	require.Equal(t, 1, hub.SubscriberCount("G1"))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "unsubscribe", "guildId": "G1"}))
	assert.Eventually(t, func() bool {
		return hub.SubscriberCount("G1") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubDisconnectCleansUpRooms(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dialHub(t, srv, wsToken(t, "U1"))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "guildId": "G1"}))
	var ack map[string]string
	require.NoError(t, conn.ReadJSON(&ack))
	require.Equal(t, 1, hub.SubscriberCount("G1"))

	conn.Close()
	assert.Eventually(t, func() bool {
		return hub.SubscriberCount("G1") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsMissingOrInvalidToken(t *testing.T) {
	_, srv := newHubServer(t)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=not-a-token"
	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
