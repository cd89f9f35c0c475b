// Package flow is the turn and phase control engine for turn-based games.
// A Game describes phases, moves, and turn-order rules declaratively; the
// engine drives an opaque, immutable game state through legal transitions in
// response to submitted moves and control events (EndTurn, EndPhase,
// SetPhase). Every operation is a pure function over a (state, Ctx) snapshot
// and returns new values; serializing access to the authoritative snapshot
// is the caller's job (see the session package).
package flow

import "sort"

// Phase overrides moves and the turn order for part of the game. Phases are
// declared in order on the Game; at most one declares Start (the first wins).
// Next names the phase an unparameterized EndPhase enters; empty means
// EndPhase leaves to the no-phase state where only global moves resolve.
type Phase struct {
	ID        string
	Start     bool
	Next      string
	Moves     MoveTable
	TurnOrder *TurnOrder
}

// Game describes a turn-based game. Fill the exported fields and pass the
// value through New before use; the transition methods require a normalized
// game.
type Game struct {
	// Name identifies the game to collaborators (stores, registries).
	Name string

	// Setup produces the initial state. The engine never inspects the
	// state's shape beyond threading it through moves and PlayerView.
	Setup func(ctx Ctx) interface{}

	// Moves is the global move table; a phase table shadows it by name.
	Moves MoveTable

	// Phases in declaration order. May be empty for phase-less games.
	Phases []Phase

	// PlayerView filters the state down to what playerID may see. The engine
	// never calls it itself; collaborators do, per recipient.
	PlayerView func(g interface{}, ctx Ctx, playerID string) interface{}

	// Plugins wrap move execution and augment setup, in declaration order.
	Plugins []Plugin

	phaseIndex map[string]int
	moveNames  []string
	normalized bool
}

// New normalizes a game descriptor in place: defaults for absent fields, the
// derived move-name list, and the phase index. Passing an already normalized
// game returns it unchanged, so a descriptor can travel through the
// normalizer any number of times without being re-wrapped.
func New(g *Game) *Game {
	if g.normalized {
		return g
	}
	if g.Name == "" {
		g.Name = "default"
	}
	if g.Setup == nil {
		g.Setup = func(Ctx) interface{} { return map[string]interface{}{} }
	}
	if g.Moves == nil {
		g.Moves = MoveTable{}
	}
	if g.PlayerView == nil {
		g.PlayerView = func(state interface{}, _ Ctx, _ string) interface{} { return state }
	}
	g.phaseIndex = make(map[string]int, len(g.Phases))
	for i := range g.Phases {
		g.phaseIndex[g.Phases[i].ID] = i
	}
	g.moveNames = collectMoveNames(g.Moves, g.Phases)
	g.normalized = true
	return g
}

// MoveNames returns every declared move name, de-duplicated: global names
// first, then each phase's additions in phase declaration order. The list is
// computed once at normalization; callers must not modify it.
func (g *Game) MoveNames() []string {
	return g.moveNames
}

// ProcessMove resolves action.Type against the active phase's move table,
// falling back to the global table, and executes it through the plugin
// pipeline with ctx extended by the submitting player's ID. An unknown name,
// or an entry without an executable, returns the state unchanged: unresolved
// moves are ignored rather than crashing a running session. Failures raised
// inside author-supplied code are not recovered here.
func (g *Game) ProcessMove(state interface{}, action Action, ctx Ctx) interface{} {
	mv, ok := g.getMove(ctx, action.Type)
	if !ok || mv.Fn == nil {
		return state
	}
	fn := wrap(mv.Fn, g.Plugins)
	ctx.PlayerID = action.PlayerID
	return fn(state, ctx, action.Args...)
}

// collectMoveNames builds the ordered, de-duplicated union of move names.
// Map iteration order is not stable in Go, so names are sorted within each
// table; tables keep their declaration order relative to each other.
func collectMoveNames(global MoveTable, phases []Phase) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(t MoveTable) {
		for _, name := range sortedNames(t) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	add(global)
	for i := range phases {
		add(phases[i].Moves)
	}
	if names == nil {
		names = []string{}
	}
	return names
}

func sortedNames(t MoveTable) []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
