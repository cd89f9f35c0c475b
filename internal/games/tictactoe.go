package games

import "github.com/lqviet/boardflow/internal/flow"

// TicTacToe is a minimal two-player descriptor: one global move, no phases,
// default turn order. State shape stays JSON-plain so it survives snapshot
// round trips (indices arrive as float64 after decoding).
func TicTacToe() *flow.Game {
	return &flow.Game{
		Name: "tic-tac-toe",
		Setup: func(flow.Ctx) interface{} {
			cells := make([]interface{}, 9)
			for i := range cells {
				cells[i] = ""
			}
			return map[string]interface{}{"cells": cells, "winner": ""}
		},
		Moves: flow.MoveTable{
			"click_cell": {
				Fn: clickCell,
				Metadata: map[string]interface{}{
					"description": "claim an empty cell",
					"args":        []interface{}{"cell index 0-8"},
				},
			},
		},
	}
}

// clickCell claims the cell for the submitting player. Already-claimed cells
// and malformed indices leave the state as-is; the flow engine treats every
// returned value as the authoritative replacement.
func clickCell(g interface{}, ctx flow.Ctx, args ...interface{}) interface{} {
	state, ok := g.(map[string]interface{})
	if !ok || len(args) == 0 {
		return g
	}
	idx, ok := asInt(args[0])
	if !ok || idx < 0 || idx > 8 {
		return g
	}
	cells, ok := state["cells"].([]interface{})
	if !ok || cells[idx] != "" {
		return g
	}
	next := cloneStringKeyed(state)
	nextCells := append([]interface{}(nil), cells...)
	nextCells[idx] = ctx.PlayerID
	next["cells"] = nextCells
	next["winner"] = tictactoeWinner(nextCells)
	return next
}

var tictactoeLines = [][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func tictactoeWinner(cells []interface{}) string {
	for _, line := range tictactoeLines {
		a, b, c := cells[line[0]], cells[line[1]], cells[line[2]]
		if a != "" && a == b && b == c {
			if s, ok := a.(string); ok {
				return s
			}
		}
	}
	return ""
}

// asInt accepts both native ints and the float64 a JSON decode produces.
func asInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

// cloneStringKeyed shallow-copies a map state; moves replace nested values
// they change rather than mutating them.
func cloneStringKeyed(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
