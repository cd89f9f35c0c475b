// Package websocket connects seated players to their match: one hub fans
// server envelopes out to every connection in a match, and a message handler
// turns inbound client messages into session commands.
package websocket

import (
	"sync"

	"github.com/lqviet/boardflow/internal/logger"
)

// Hub maintains the set of active clients grouped by match and fans
// envelopes out to them.
type Hub struct {
	// Registered clients by match_id -> client set
	matches map[string]map[*Client]bool

	broadcast  chan *broadcastMessage
	register   chan *Client
	unregister chan *Client

	handler *MessageHandler

	mu sync.RWMutex
}

type broadcastMessage struct {
	MatchID       string
	Envelope      *ServerEnvelope
	ExcludeClient *Client
}

// NewHub creates a hub. handler may be nil while wiring; set it with
// SetHandler before serving connections.
func NewHub(handler *MessageHandler) *Hub {
	return &Hub{
		matches:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *broadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		handler:    handler,
	}
}

// SetHandler sets the message handler for the hub.
func (h *Hub) SetHandler(handler *MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.matches[client.MatchID] == nil {
				h.matches[client.MatchID] = make(map[*Client]bool)
			}
			h.matches[client.MatchID][client] = true
			total := len(h.matches[client.MatchID])
			h.mu.Unlock()
			logger.Log.Infow("ws client registered",
				"match_id", client.MatchID, "player_id", client.PlayerID, "total", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if match, ok := h.matches[client.MatchID]; ok {
				if _, ok := match[client]; ok {
					delete(match, client)
					close(client.send)
					if len(match) == 0 {
						delete(h.matches, client.MatchID)
					}
				}
			}
			h.mu.Unlock()
			logger.Log.Infow("ws client unregistered",
				"match_id", client.MatchID, "player_id", client.PlayerID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.matches[msg.MatchID] {
				if msg.ExcludeClient != nil && client == msg.ExcludeClient {
					continue
				}
				select {
				case client.send <- msg.Envelope:
				default:
					close(client.send)
					delete(h.matches[msg.MatchID], client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastEnvelope sends an envelope to all clients in a match.
func (h *Hub) BroadcastEnvelope(matchID string, envelope *ServerEnvelope) {
	h.broadcast <- &broadcastMessage{MatchID: matchID, Envelope: envelope}
}

// BroadcastEnvelopeExcept sends an envelope to all clients in a match except one.
func (h *Hub) BroadcastEnvelopeExcept(matchID string, envelope *ServerEnvelope, exclude *Client) {
	h.broadcast <- &broadcastMessage{MatchID: matchID, Envelope: envelope, ExcludeClient: exclude}
}

// Clients returns the clients currently connected to a match. Used for
// per-player state pushes where each connection gets its own view.
func (h *Hub) Clients(matchID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	match := h.matches[matchID]
	out := make([]*Client, 0, len(match))
	for c := range match {
		out = append(out, c)
	}
	return out
}

// MatchClientCount returns the number of clients connected to a match.
func (h *Hub) MatchClientCount(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.matches[matchID])
}
