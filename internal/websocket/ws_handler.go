package websocket

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lqviet/boardflow/internal/auth"
	"github.com/lqviet/boardflow/internal/logger"
	"github.com/lqviet/boardflow/internal/store"
)

// rateLimitKeyFromRequest returns a key for rate limiting (client IP).
func rateLimitKeyFromRequest(r *http.Request) string {
	if x := r.Header.Get("X-Real-IP"); x != "" {
		return x
	}
	if x := r.Header.Get("X-Forwarded-For"); x != "" {
		return x
	}
	return r.RemoteAddr
}

// WSHandler upgrades authenticated match connections.
type WSHandler struct {
	hub         *Hub
	matches     *store.MatchStore
	tokenSecret []byte
}

// NewWSHandler creates a WSHandler. tokenSecret must be set; connections are
// rejected without a verifiable token.
func NewWSHandler(hub *Hub, matches *store.MatchStore, tokenSecret []byte) *WSHandler {
	return &WSHandler{hub: hub, matches: matches, tokenSecret: tokenSecret}
}

// HandleMatchWebSocket handles GET /ws/matches/{code}. The client sends its
// token via query param or Authorization header; the token binds the
// connection to one seated player.
func (h *WSHandler) HandleMatchWebSocket(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		const prefix = "Bearer "
		if v := r.Header.Get("Authorization"); strings.HasPrefix(v, prefix) {
			token = strings.TrimSpace(v[len(prefix):])
		}
	}
	if token == "" || len(h.tokenSecret) == 0 {
		http.Error(w, "missing or invalid token", http.StatusUnauthorized)
		return
	}
	claims, err := auth.VerifyToken(token, h.tokenSecret)
	if err != nil {
		logger.Log.Infow("ws auth failed", "code", code, "err", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	match, err := h.matches.GetMatchByCode(r.Context(), code)
	if err != nil {
		logger.Log.Infow("ws match not found", "code", code, "err", err)
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	if match.ID != claims.MatchID {
		http.Error(w, "match does not match token", http.StatusUnauthorized)
		return
	}
	player, err := h.matches.GetPlayer(r.Context(), claims.PlayerID)
	if err != nil || player.MatchID != match.ID {
		http.Error(w, "player not in match", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warnw("ws upgrade failed", "err", err)
		return
	}

	// Background context: the request context dies when this handler returns
	// but the connection lives on.
	client := &Client{
		hub:          h.hub,
		conn:         conn,
		send:         make(chan *ServerEnvelope, 256),
		MatchID:      match.ID,
		PlayerID:     player.ID,
		DisplayName:  player.DisplayName,
		RateLimitKey: rateLimitKeyFromRequest(r),
		ctx:          context.Background(),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
