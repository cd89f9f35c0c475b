package games

import "github.com/lqviet/boardflow/internal/flow"

// CardDraft exercises the wider descriptor surface: two phases with their own
// move tables and turn orders, a global move available in both, a redacting
// player view, and a move-log plugin. Drafting runs in reverse seat order
// (last seat picks first), play runs forward.
func CardDraft() *flow.Game {
	reverse := flow.TurnOrder{
		First: func(_ interface{}, ctx flow.Ctx) int { return len(ctx.PlayOrder) - 1 },
		Next: func(_ interface{}, ctx flow.Ctx) int {
			if ctx.PlayOrderPos <= 0 {
				return len(ctx.PlayOrder) - 1
			}
			return ctx.PlayOrderPos - 1
		},
	}

	return &flow.Game{
		Name:  "card-draft",
		Setup: cardDraftSetup,
		Moves: flow.MoveTable{
			"concede": flow.Fn(concede),
		},
		Phases: []flow.Phase{
			{
				ID:        "draft",
				Start:     true,
				Next:      "play",
				TurnOrder: &reverse,
				Moves: flow.MoveTable{
					"pick": {
						Fn:       pickCard,
						Metadata: map[string]interface{}{"description": "take a card from the table"},
					},
				},
			},
			{
				ID: "play",
				Moves: flow.MoveTable{
					"play_card": {
						Fn:       playCard,
						Metadata: map[string]interface{}{"description": "score a card from your hand"},
					},
				},
			},
		},
		PlayerView: cardDraftView,
		Plugins:    []flow.Plugin{MoveLog()},
	}
}

func cardDraftSetup(ctx flow.Ctx) interface{} {
	table := make([]interface{}, 0, 3*len(ctx.PlayOrder))
	for i := 0; i < 3*len(ctx.PlayOrder); i++ {
		table = append(table, float64(i+1))
	}
	hands := make(map[string]interface{}, len(ctx.PlayOrder))
	scores := make(map[string]interface{}, len(ctx.PlayOrder))
	for _, p := range ctx.PlayOrder {
		hands[p] = []interface{}{}
		scores[p] = float64(0)
	}
	return map[string]interface{}{
		"table":    table,
		"hands":    hands,
		"scores":   scores,
		"conceded": "",
	}
}

// pickCard moves table[idx] into the submitting player's hand.
func pickCard(g interface{}, ctx flow.Ctx, args ...interface{}) interface{} {
	state, ok := g.(map[string]interface{})
	if !ok || len(args) == 0 || ctx.PlayerID == "" {
		return g
	}
	idx, ok := asInt(args[0])
	table, tok := state["table"].([]interface{})
	if !ok || !tok || idx < 0 || idx >= len(table) {
		return g
	}
	card := table[idx]

	next := cloneStringKeyed(state)
	nextTable := append(append([]interface{}(nil), table[:idx]...), table[idx+1:]...)
	next["table"] = nextTable
	next["hands"] = withCardAppended(state["hands"], ctx.PlayerID, card)
	return next
}

// playCard removes hand[idx] and adds its value to the player's score.
func playCard(g interface{}, ctx flow.Ctx, args ...interface{}) interface{} {
	state, ok := g.(map[string]interface{})
	if !ok || len(args) == 0 || ctx.PlayerID == "" {
		return g
	}
	idx, ok := asInt(args[0])
	if !ok {
		return g
	}
	hands, hok := state["hands"].(map[string]interface{})
	if !hok {
		return g
	}
	hand, hok := hands[ctx.PlayerID].([]interface{})
	if !hok || idx < 0 || idx >= len(hand) {
		return g
	}
	card := hand[idx]
	value, _ := asInt(card)

	next := cloneStringKeyed(state)
	nextHands := cloneStringKeyed(hands)
	nextHands[ctx.PlayerID] = append(append([]interface{}(nil), hand[:idx]...), hand[idx+1:]...)
	next["hands"] = nextHands

	scores, sok := state["scores"].(map[string]interface{})
	if sok {
		nextScores := cloneStringKeyed(scores)
		prev, _ := asInt(nextScores[ctx.PlayerID])
		nextScores[ctx.PlayerID] = float64(prev + value)
		next["scores"] = nextScores
	}
	return next
}

// concede is available in every phase through the global table.
func concede(g interface{}, ctx flow.Ctx, _ ...interface{}) interface{} {
	state, ok := g.(map[string]interface{})
	if !ok || ctx.PlayerID == "" {
		return g
	}
	next := cloneStringKeyed(state)
	next["conceded"] = ctx.PlayerID
	return next
}

// cardDraftView hides the other players' hands, exposing only their size.
func cardDraftView(g interface{}, _ flow.Ctx, playerID string) interface{} {
	state, ok := g.(map[string]interface{})
	if !ok {
		return g
	}
	hands, ok := state["hands"].(map[string]interface{})
	if !ok {
		return g
	}
	redacted := make(map[string]interface{}, len(hands))
	for p, h := range hands {
		if p == playerID {
			redacted[p] = h
			continue
		}
		if cards, ok := h.([]interface{}); ok {
			redacted[p] = map[string]interface{}{"count": float64(len(cards))}
		} else {
			redacted[p] = map[string]interface{}{"count": float64(0)}
		}
	}
	view := cloneStringKeyed(state)
	view["hands"] = redacted
	return view
}

func withCardAppended(hands interface{}, playerID string, card interface{}) map[string]interface{} {
	m, ok := hands.(map[string]interface{})
	if !ok {
		m = map[string]interface{}{}
	}
	next := cloneStringKeyed(m)
	hand, _ := m[playerID].([]interface{})
	next[playerID] = append(append([]interface{}(nil), hand...), card)
	return next
}

// MoveLog is a plugin that seeds a move log at setup and appends one entry
// per executed move, recording who moved in which phase. It only engages for
// map states; anything else passes through untouched.
func MoveLog() flow.Plugin {
	return flow.Plugin{
		Setup: func(g interface{}, _ flow.Ctx) interface{} {
			state, ok := g.(map[string]interface{})
			if !ok {
				return g
			}
			next := cloneStringKeyed(state)
			next["move_log"] = []interface{}{}
			return next
		},
		FnWrap: func(inner flow.MoveFn) flow.MoveFn {
			return func(g interface{}, ctx flow.Ctx, args ...interface{}) interface{} {
				out := inner(g, ctx, args...)
				state, ok := out.(map[string]interface{})
				if !ok {
					return out
				}
				log, _ := state["move_log"].([]interface{})
				next := cloneStringKeyed(state)
				next["move_log"] = append(append([]interface{}(nil), log...), map[string]interface{}{
					"player": ctx.PlayerID,
					"phase":  ctx.Phase,
					"turn":   float64(ctx.Turn),
				})
				return next
			}
		},
	}
}
