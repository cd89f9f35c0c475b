package flow

import (
	"errors"
	"fmt"
)

// ErrUnknownPhase is returned by SetPhase for a phase ID the game does not
// declare. This is a configuration error surfaced to the caller, never
// silently mapped to the no-phase state.
var ErrUnknownPhase = errors.New("flow: unknown phase")

// Start produces the initial state and context for numPlayers seats: Setup
// runs first, then each plugin's Setup in declaration order, then the phase
// marked Start (if any) is entered. Without a start phase the game begins in
// the no-phase state and only global moves resolve.
func (g *Game) Start(numPlayers int) (interface{}, Ctx) {
	ctx := NewContext(numPlayers)
	state := g.Setup(ctx)
	state = setupPlugins(state, ctx, g.Plugins)
	for i := range g.Phases {
		if g.Phases[i].Start {
			ctx = g.enterPhase(state, ctx, &g.Phases[i])
			break
		}
	}
	return state, ctx
}

// EndTurn advances to the next player per the active phase's turn order (the
// default rule when none is declared) and bumps the turn counter. The phase
// does not change.
func (g *Game) EndTurn(state interface{}, ctx Ctx) Ctx {
	pos := g.activeTurnOrder(ctx).next(state, ctx)
	ctx.PlayOrderPos = pos
	ctx.CurrentPlayer = playerAt(ctx)
	ctx.Turn++
	return ctx
}

// EndPhase leaves the active phase: into its declared Next when set,
// otherwise into the no-phase state. When no phase is active it is a no-op.
func (g *Game) EndPhase(state interface{}, ctx Ctx) Ctx {
	if ctx.Phase == "" {
		return ctx
	}
	var next *Phase
	if i, ok := g.phaseIndex[ctx.Phase]; ok {
		if id := g.Phases[i].Next; id != "" {
			if j, ok := g.phaseIndex[id]; ok {
				next = &g.Phases[j]
			}
		}
	}
	return g.enterPhase(state, ctx, next)
}

// SetPhase unconditionally enters the named phase, bypassing any Next chain,
// with the usual phase-entry effects. Naming an undeclared phase is rejected.
func (g *Game) SetPhase(state interface{}, ctx Ctx, phaseID string) (Ctx, error) {
	i, ok := g.phaseIndex[phaseID]
	if !ok {
		return ctx, fmt.Errorf("%w: %q", ErrUnknownPhase, phaseID)
	}
	return g.enterPhase(state, ctx, &g.Phases[i]), nil
}

// enterPhase makes ph the active phase (nil for the no-phase state): the
// turn counter resets and the phase's First rule picks the position. First
// always runs on entry, so a position computed by a Next rule just before
// the transition is superseded and never observed.
func (g *Game) enterPhase(state interface{}, ctx Ctx, ph *Phase) Ctx {
	if ph == nil {
		ctx.Phase = ""
	} else {
		ctx.Phase = ph.ID
	}
	ctx.Turn = 0
	ctx.PlayOrderPos = phaseTurnOrder(ph).first(state, ctx)
	ctx.CurrentPlayer = playerAt(ctx)
	return ctx
}

// activeTurnOrder returns the rule for the phase ctx is in.
func (g *Game) activeTurnOrder(ctx Ctx) TurnOrder {
	if ctx.Phase != "" {
		if i, ok := g.phaseIndex[ctx.Phase]; ok {
			return phaseTurnOrder(&g.Phases[i])
		}
	}
	return DefaultTurnOrder
}

func phaseTurnOrder(ph *Phase) TurnOrder {
	if ph == nil || ph.TurnOrder == nil {
		return DefaultTurnOrder
	}
	return *ph.TurnOrder
}
