package websocket

// ClientMessage is the envelope for messages from client to server.
// Types: "start" | "move" | "end_turn" | "end_phase" | "set_phase" |
// "sync_state" | "chat"
type ClientMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ServerEnvelope is the envelope for messages from server to client.
// Type: "event" | "state" | "error"
type ServerEnvelope struct {
	Type    string                 `json:"type"`
	Event   string                 `json:"event,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Client message types.
const (
	ClientMessageTypeStart     = "start"
	ClientMessageTypeMove      = "move"
	ClientMessageTypeEndTurn   = "end_turn"
	ClientMessageTypeEndPhase  = "end_phase"
	ClientMessageTypeSetPhase  = "set_phase"
	ClientMessageTypeSyncState = "sync_state"
	ClientMessageTypeChat      = "chat"
)

// Server envelope types.
const (
	ServerTypeEvent = "event"
	ServerTypeState = "state"
	ServerTypeError = "error"
)

// Server event names not produced by the session layer itself.
const (
	ServerEventChat  = "chat"
	ServerEventState = "state"
)

// MaxChatMessageLength caps chat payloads.
const MaxChatMessageLength = 2000

// MaxClientMessageTypeLength limits the "type" field to prevent abuse.
const MaxClientMessageTypeLength = 64

// ValidClientMessageTypes are the only allowed values for ClientMessage.Type.
var ValidClientMessageTypes = map[string]bool{
	ClientMessageTypeStart:     true,
	ClientMessageTypeMove:      true,
	ClientMessageTypeEndTurn:   true,
	ClientMessageTypeEndPhase:  true,
	ClientMessageTypeSetPhase:  true,
	ClientMessageTypeSyncState: true,
	ClientMessageTypeChat:      true,
}
