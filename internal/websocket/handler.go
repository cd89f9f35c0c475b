package websocket

import (
	"context"

	"github.com/lqviet/boardflow/internal/logger"
	"github.com/lqviet/boardflow/internal/ratelimit"
	"github.com/lqviet/boardflow/internal/session"
)

// MessageHandler turns inbound client messages into session commands and
// routes the results back through the hub.
type MessageHandler struct {
	hub     *Hub
	manager *session.Manager
	limiter ratelimit.Limiter
}

// NewMessageHandler creates a handler. hub may be nil while wiring the hub
// itself. limiter is optional; when set, chat is rate-limited per client key.
func NewMessageHandler(hub *Hub, manager *session.Manager, limiter ratelimit.Limiter) *MessageHandler {
	return &MessageHandler{hub: hub, manager: manager, limiter: limiter}
}

// HandleMessage validates and dispatches one client message.
func (h *MessageHandler) HandleMessage(ctx context.Context, client *Client, msg *ClientMessage) {
	if msg == nil {
		sendError(client, "invalid message")
		return
	}
	if len(msg.Type) > MaxClientMessageTypeLength || !ValidClientMessageTypes[msg.Type] {
		sendError(client, "unsupported message type")
		return
	}
	switch msg.Type {
	case ClientMessageTypeChat:
		h.handleChat(client, msg)
	case ClientMessageTypeSyncState:
		h.handleSyncState(ctx, client)
	default:
		h.handleCommand(ctx, client, msg)
	}
}

// handleCommand maps start/move/end_turn/end_phase/set_phase onto the session
// manager and broadcasts what came back.
func (h *MessageHandler) handleCommand(ctx context.Context, client *Client, msg *ClientMessage) {
	cmd := session.Command{Kind: msg.Type}
	if msg.Payload != nil {
		if t, ok := msg.Payload["type"].(string); ok {
			cmd.Type = t
		}
		if args, ok := msg.Payload["args"].([]interface{}); ok {
			cmd.Args = args
		}
		if p, ok := msg.Payload["phase"].(string); ok {
			cmd.Phase = p
		}
	}

	result := h.manager.Apply(ctx, client.MatchID, client.PlayerID, cmd)
	if result.Error != nil {
		logger.Log.Infow("command rejected",
			"match_id", client.MatchID, "player_id", client.PlayerID,
			"kind", cmd.Kind, "err", result.Error)
		sendError(client, result.Error.Error())
		return
	}

	if h.hub != nil {
		for _, ev := range result.Events {
			h.hub.BroadcastEnvelope(client.MatchID, &ServerEnvelope{
				Type: ServerTypeEvent, Event: ev.Event, Payload: ev.Payload,
			})
		}
	}
	h.pushStates(ctx, client.MatchID)
}

// pushStates sends each connected client its own view of the latest state.
// Views differ per player when the game redacts hidden information.
func (h *MessageHandler) pushStates(ctx context.Context, matchID string) {
	if h.hub == nil {
		return
	}
	for _, c := range h.hub.Clients(matchID) {
		state, err := h.manager.StateFor(ctx, matchID, c.PlayerID)
		if err != nil || state == nil {
			continue
		}
		c.enqueue(&ServerEnvelope{Type: ServerTypeState, Event: ServerEventState, Payload: state})
	}
}

// handleSyncState sends the requesting client its current view, plus the
// declared move names for UI building.
func (h *MessageHandler) handleSyncState(ctx context.Context, client *Client) {
	state, err := h.manager.StateFor(ctx, client.MatchID, client.PlayerID)
	if err != nil {
		sendError(client, "failed to load state")
		return
	}
	if state == nil {
		state = map[string]interface{}{"status": "waiting"}
	}
	if names, err := h.manager.MoveNames(ctx, client.MatchID); err == nil {
		state["move_names"] = names
	}
	client.enqueue(&ServerEnvelope{Type: ServerTypeState, Event: ServerEventState, Payload: state})
}

// handleChat broadcasts a chat message to the other clients in the match.
// Chat is transient; it is not persisted with the match events.
func (h *MessageHandler) handleChat(client *Client, msg *ClientMessage) {
	if h.limiter != nil && client.RateLimitKey != "" {
		if allowed, _ := h.limiter.Allow(client.RateLimitKey); !allowed {
			sendError(client, "rate limit exceeded; try again later")
			return
		}
	}
	var message string
	if msg.Payload != nil {
		if m, ok := msg.Payload["message"].(string); ok {
			message = m
		}
	}
	if len(message) > MaxChatMessageLength {
		message = message[:MaxChatMessageLength]
	}
	if message == "" {
		return
	}
	if h.hub != nil {
		h.hub.BroadcastEnvelopeExcept(client.MatchID, &ServerEnvelope{
			Type:  ServerTypeEvent,
			Event: ServerEventChat,
			Payload: map[string]interface{}{
				"display_name": client.DisplayName,
				"message":      message,
			},
		}, client)
	}
}

func sendError(client *Client, message string) {
	client.enqueue(&ServerEnvelope{
		Type:    ServerTypeError,
		Payload: map[string]interface{}{"message": message},
	})
}
