package flow

import "strconv"

// Ctx tracks which phase is active and whose turn it is. It is a value: the
// engine never mutates a Ctx in place, every transition returns a new one.
type Ctx struct {
	// CurrentPlayer is PlayOrder[PlayOrderPos], kept in sync by the engine.
	// It is never set independently. When an author-supplied turn-order rule
	// walks out of range, CurrentPlayer is empty until the next phase entry
	// recomputes the position.
	CurrentPlayer string `json:"current_player"`

	// PlayOrder is the ordered list of participating player IDs.
	PlayOrder []string `json:"play_order"`

	// PlayOrderPos is the index into PlayOrder identifying the current player.
	PlayOrderPos int `json:"play_order_pos"`

	// Phase is the active phase ID, or empty when no phase is active and only
	// global moves resolve.
	Phase string `json:"phase"`

	// Turn counts completed turns since the active phase was entered.
	Turn int `json:"turn"`

	// PlayerID identifies the player who submitted the move currently being
	// executed. Set only for the duration of a ProcessMove invocation.
	PlayerID string `json:"player_id,omitempty"`
}

// NewContext builds the initial context for numPlayers seats. Seats are
// named "0".."N-1" in order; no phase is active until Start enters one.
func NewContext(numPlayers int) Ctx {
	order := make([]string, numPlayers)
	for i := range order {
		order[i] = strconv.Itoa(i)
	}
	ctx := Ctx{PlayOrder: order}
	ctx.CurrentPlayer = playerAt(ctx)
	return ctx
}

// playerAt reads PlayOrder at PlayOrderPos. Positions come from author code
// and are used unvalidated; out of range reads as empty.
func playerAt(ctx Ctx) string {
	if ctx.PlayOrderPos < 0 || ctx.PlayOrderPos >= len(ctx.PlayOrder) {
		return ""
	}
	return ctx.PlayOrder[ctx.PlayOrderPos]
}
