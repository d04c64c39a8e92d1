package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) BetUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var upd BetUpdate
	require.NoError(t, json.Unmarshal(raw, &upd))
	return upd
}

func TestSubscribeReceivesOnlyOwnBet(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", BetID: 7}))

	// ping/pong confirma que o subscribe anterior já foi processado
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))
	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])

	hub.Broadcast(BetUpdate{BetID: 3, Payload: "other"})
	hub.Broadcast(BetUpdate{BetID: 7, Payload: "mine"})

	upd := readUpdate(t, conn)
	assert.Equal(t, int64(7), upd.BetID)
	assert.Equal(t, "mine", upd.Payload)
}

func TestWildcardSubscriptionReceivesAll(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", BetID: 0}))
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))
	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))

	hub.Broadcast(BetUpdate{BetID: 42, Payload: "anything"})

	upd := readUpdate(t, conn)
	assert.Equal(t, int64(42), upd.BetID)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", BetID: 9}))
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "unsubscribe", BetID: 9}))
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))
	var pong map[string]string
	require.NoError(t, conn.ReadJSON(&pong))

	hub.Broadcast(BetUpdate{BetID: 9, Payload: "late"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err) // timeout: nada deve chegar
}
