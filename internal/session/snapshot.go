package session

import (
	"github.com/lqviet/boardflow/internal/flow"
)

// Snapshot is the persisted form of one match: the opaque game state, the
// flow context, and the seat order mapping engine seats ("0".."N-1") to the
// match players' IDs.
type Snapshot struct {
	GameName string
	G        interface{}
	Ctx      flow.Ctx
	Seats    []string
	Status   string // in_progress | finished
	Version  int
}

// ToMap serializes the snapshot for a JSONB store row.
func (s *Snapshot) ToMap() map[string]interface{} {
	if s == nil {
		return nil
	}
	return map[string]interface{}{
		"game":    s.GameName,
		"g":       s.G,
		"ctx":     ctxToMap(s.Ctx),
		"seats":   s.Seats,
		"status":  s.Status,
		"version": s.Version,
	}
}

// SnapshotFromMap reconstructs a Snapshot from a store row (values arrive as
// generic JSON after decoding).
func SnapshotFromMap(m map[string]interface{}) *Snapshot {
	if m == nil {
		return nil
	}
	s := &Snapshot{}
	if v, ok := m["game"].(string); ok {
		s.GameName = v
	}
	s.G = m["g"]
	if v, ok := m["ctx"].(map[string]interface{}); ok {
		s.Ctx = ctxFromMap(v)
	}
	if v, ok := stringSlice(m["seats"]); ok {
		s.Seats = v
	}
	if v, ok := m["status"].(string); ok {
		s.Status = v
	}
	if v, ok := floatToInt(m["version"]); ok {
		s.Version = v
	}
	return s
}

// SeatOf maps a match player ID to the engine-side seat label, or "" when
// the player holds no seat.
func (s *Snapshot) SeatOf(playerID string) string {
	for i, id := range s.Seats {
		if id == playerID && i < len(s.Ctx.PlayOrder) {
			return s.Ctx.PlayOrder[i]
		}
	}
	return ""
}

func ctxToMap(c flow.Ctx) map[string]interface{} {
	return map[string]interface{}{
		"current_player": c.CurrentPlayer,
		"play_order":     c.PlayOrder,
		"play_order_pos": c.PlayOrderPos,
		"phase":          c.Phase,
		"turn":           c.Turn,
	}
}

func ctxFromMap(m map[string]interface{}) flow.Ctx {
	var c flow.Ctx
	if v, ok := m["current_player"].(string); ok {
		c.CurrentPlayer = v
	}
	if v, ok := stringSlice(m["play_order"]); ok {
		c.PlayOrder = v
	}
	if v, ok := floatToInt(m["play_order_pos"]); ok {
		c.PlayOrderPos = v
	}
	if v, ok := m["phase"].(string); ok {
		c.Phase = v
	}
	if v, ok := floatToInt(m["turn"]); ok {
		c.Turn = v
	}
	return c
}

func floatToInt(a interface{}) (int, bool) {
	switch v := a.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func stringSlice(a interface{}) ([]string, bool) {
	switch v := a.(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}
