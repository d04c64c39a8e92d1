package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub gerencia conexões WebSocket e assinaturas de atualizações de apostas
// subs: mapeia betID para o conjunto de conexões inscritas
// O betID 0 funciona como curinga e recebe toda atualização publicada
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// betID -> set of connections
	subs map[int64]map[*websocket.Conn]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[int64]map[*websocket.Conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe em apostas e responde a pings
// Cada cliente pode se inscrever em múltiplos betIDs
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.BetID]; !ok {
				h.subs[msg.BetID] = make(map[*websocket.Conn]struct{})
			}
			h.subs[msg.BetID][conn] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.BetID]; ok {
				delete(m, conn)
				if len(m) == 0 {
					delete(h.subs, msg.BetID)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = conn.WriteJSON(map[string]string{"type": "pong"})
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for _, set := range h.subs {
		delete(set, conn)
	}
	h.mu.Unlock()
}

// Broadcast envia uma atualização para todos os clientes inscritos no betID
// correspondente, mais os inscritos no curinga 0
func (h *Hub) Broadcast(update BetUpdate) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs[update.BetID])+len(h.subs[0]))
	for c := range h.subs[update.BetID] {
		conns = append(conns, c)
	}
	if update.BetID != 0 {
		for c := range h.subs[0] {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for _, c := range conns {
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}
