package flow

// TurnOrder decides which seat acts first when a phase is entered and which
// seat acts next when a turn ends. Both functions receive a read-only
// snapshot of the game state and context and return an index into
// ctx.PlayOrder. Results are used as-is: the engine does not range-check
// them, so a rule that walks outside the play order shows up as an empty
// CurrentPlayer until the next phase entry recomputes the position via First.
type TurnOrder struct {
	First func(g interface{}, ctx Ctx) int
	Next  func(g interface{}, ctx Ctx) int
}

// DefaultTurnOrder seats position 0 first and rotates forward one seat per
// turn, wrapping at the end of the play order. It applies whenever a phase
// (or the no-phase state) declares no rule of its own.
var DefaultTurnOrder = TurnOrder{
	First: func(interface{}, Ctx) int { return 0 },
	Next: func(_ interface{}, ctx Ctx) int {
		if len(ctx.PlayOrder) == 0 {
			return 0
		}
		return (ctx.PlayOrderPos + 1) % len(ctx.PlayOrder)
	},
}

// first runs the rule's First, falling back to the default for a partial rule.
func (t TurnOrder) first(g interface{}, ctx Ctx) int {
	if t.First == nil {
		return DefaultTurnOrder.First(g, ctx)
	}
	return t.First(g, ctx)
}

// next runs the rule's Next, falling back to the default for a partial rule.
func (t TurnOrder) next(g interface{}, ctx Ctx) int {
	if t.Next == nil {
		return DefaultTurnOrder.Next(g, ctx)
	}
	return t.Next(g, ctx)
}
