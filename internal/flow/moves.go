package flow

// MoveFn executes a move against the current game state and returns the
// replacement state. The engine treats the state as opaque: it is whatever
// Setup produced, threaded through every successful move since.
type MoveFn func(g interface{}, ctx Ctx, args ...interface{}) interface{}

// Move is one entry in a MoveTable: an executable plus optional metadata.
// Metadata is passed through untouched for collaborators (a UI listing
// commands, a bot reading hints); the engine never reads or invokes it.
// A Move with a nil Fn still occupies its name but executes as a no-op.
type Move struct {
	Fn       MoveFn
	Metadata map[string]interface{}
}

// MoveTable maps move names to their entries.
type MoveTable map[string]Move

// Fn wraps a bare function as a Move, the short declaration form.
func Fn(fn MoveFn) Move { return Move{Fn: fn} }

// Action is an externally submitted move request.
type Action struct {
	Type     string        `json:"type"`
	Args     []interface{} `json:"args,omitempty"`
	PlayerID string        `json:"player_id,omitempty"`
}

// getMove resolves name in the current context. The active phase's table
// shadows the global one; a miss in both returns ok=false.
func (g *Game) getMove(ctx Ctx, name string) (Move, bool) {
	if ctx.Phase != "" {
		if i, ok := g.phaseIndex[ctx.Phase]; ok {
			if mv, ok := g.Phases[i].Moves[name]; ok {
				return mv, true
			}
		}
	}
	mv, ok := g.Moves[name]
	return mv, ok
}
