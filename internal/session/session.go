// Package session owns the authoritative (state, context) snapshot of every
// running match and serializes all operations against it. The flow engine is
// pure and defines no ordering of its own; this layer is the loop that holds
// the latest snapshot, applies one command at a time, and persists the
// result.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lqviet/boardflow/internal/flow"
	"github.com/lqviet/boardflow/internal/store"
)

// Command kinds accepted by Apply.
const (
	CommandStart    = "start"
	CommandMove     = "move"
	CommandEndTurn  = "end_turn"
	CommandEndPhase = "end_phase"
	CommandSetPhase = "set_phase"
)

// Command is one externally submitted operation against a match.
type Command struct {
	Kind  string        `json:"kind"`
	Type  string        `json:"type,omitempty"`  // move name, Kind == move
	Args  []interface{} `json:"args,omitempty"`  // move arguments
	Phase string        `json:"phase,omitempty"` // target phase, Kind == set_phase
}

// BroadcastEvent is emitted for collaborators (the websocket hub) after a
// command is applied.
type BroadcastEvent struct {
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

// Result carries the applied command's outcome: the new snapshot and the
// events to broadcast, or the error that rejected it.
type Result struct {
	Snapshot *Snapshot
	Events   []BroadcastEvent
	Error    error
}

// SnapshotStore is the persistence surface the manager needs for match state
// (implemented by store.MatchStore).
type SnapshotStore interface {
	GetLatestSnapshot(ctx context.Context, matchID string) (map[string]interface{}, error)
	CreateSnapshot(ctx context.Context, matchID string, state map[string]interface{}) (int32, error)
	UpdateMatchStatus(ctx context.Context, matchID string, status string, endedAt *time.Time) error
	GetMatchGameName(ctx context.Context, matchID string) (string, error)
	GetSeatPlayerIDs(ctx context.Context, matchID string) ([]string, error)
}

// EventStore appends match events (implemented by store.MatchEventStore).
type EventStore interface {
	CreateMatchEvent(ctx context.Context, req store.CreateMatchEventRequest) (*store.MatchEvent, error)
}

// Manager applies commands to matches, one at a time per match.
type Manager struct {
	store  SnapshotStore
	events EventStore
	lookup func(name string) (*flow.Game, bool)

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a manager. lookup resolves a match's game name to its
// descriptor (normally games.Lookup).
func NewManager(st SnapshotStore, events EventStore, lookup func(string) (*flow.Game, bool)) *Manager {
	return &Manager{
		store:  st,
		events: events,
		lookup: lookup,
		locks:  make(map[string]*sync.Mutex),
	}
}

// matchLock returns the mutex serializing one match's commands.
func (m *Manager) matchLock(matchID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[matchID] = l
	}
	return l
}

// Apply runs one command against the match and persists the outcome. An
// unknown move name is accepted and leaves the state unchanged; an unknown
// phase on set_phase is rejected as a configuration error; everything the
// game's own functions raise propagates to the caller.
func (m *Manager) Apply(ctx context.Context, matchID, playerID string, cmd Command) Result {
	lock := m.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	raw, err := m.store.GetLatestSnapshot(ctx, matchID)
	if err != nil {
		return Result{Error: fmt.Errorf("get snapshot: %w", err)}
	}
	snap := SnapshotFromMap(raw)

	if snap == nil || snap.GameName == "" {
		if cmd.Kind != CommandStart {
			return Result{Error: fmt.Errorf("match not started; send start first")}
		}
		return m.start(ctx, matchID)
	}
	if snap.Status == "finished" {
		return Result{Error: fmt.Errorf("match already finished")}
	}

	game, ok := m.lookup(snap.GameName)
	if !ok {
		return Result{Error: fmt.Errorf("unknown game %q", snap.GameName)}
	}

	var events []BroadcastEvent
	switch cmd.Kind {
	case CommandStart:
		return Result{Error: fmt.Errorf("match already started")}

	case CommandMove:
		seat := snap.SeatOf(playerID)
		if seat == "" {
			return Result{Error: fmt.Errorf("player not seated in match")}
		}
		action := flow.Action{Type: cmd.Type, Args: cmd.Args, PlayerID: seat}
		snap.G = game.ProcessMove(snap.G, action, snap.Ctx)
		events = append(events, BroadcastEvent{
			Event:   "move_applied",
			Payload: map[string]interface{}{"type": cmd.Type, "player_id": playerID},
		})

	case CommandEndTurn:
		snap.Ctx = game.EndTurn(snap.G, snap.Ctx)
		events = append(events, turnEvent("turn_ended", snap))

	case CommandEndPhase:
		snap.Ctx = game.EndPhase(snap.G, snap.Ctx)
		events = append(events, turnEvent("phase_ended", snap))

	case CommandSetPhase:
		next, err := game.SetPhase(snap.G, snap.Ctx, cmd.Phase)
		if err != nil {
			return Result{Error: err}
		}
		snap.Ctx = next
		events = append(events, turnEvent("phase_set", snap))

	default:
		return Result{Error: fmt.Errorf("unknown command kind %q", cmd.Kind)}
	}

	if err := m.persist(ctx, matchID, playerID, cmd, snap); err != nil {
		return Result{Error: err}
	}
	return Result{Snapshot: snap, Events: events}
}

// start bootstraps the match: seats come from the store in join order, the
// game's Start produces the initial state and context.
func (m *Manager) start(ctx context.Context, matchID string) Result {
	name, err := m.store.GetMatchGameName(ctx, matchID)
	if err != nil {
		return Result{Error: fmt.Errorf("get match game: %w", err)}
	}
	game, ok := m.lookup(name)
	if !ok {
		return Result{Error: fmt.Errorf("unknown game %q", name)}
	}
	seats, err := m.store.GetSeatPlayerIDs(ctx, matchID)
	if err != nil {
		return Result{Error: fmt.Errorf("get seats: %w", err)}
	}
	if len(seats) == 0 {
		return Result{Error: fmt.Errorf("cannot start match without players")}
	}

	g, fctx := game.Start(len(seats))
	snap := &Snapshot{
		GameName: name,
		G:        g,
		Ctx:      fctx,
		Seats:    seats,
		Status:   "in_progress",
	}
	version, err := m.store.CreateSnapshot(ctx, matchID, snap.ToMap())
	if err != nil {
		return Result{Error: fmt.Errorf("create initial snapshot: %w", err)}
	}
	snap.Version = int(version)
	if err := m.store.UpdateMatchStatus(ctx, matchID, "in_progress", nil); err != nil {
		return Result{Error: fmt.Errorf("update match status: %w", err)}
	}

	ev := BroadcastEvent{Event: "match_started", Payload: map[string]interface{}{
		"game":           name,
		"phase":          fctx.Phase,
		"current_player": seatPlayerID(snap, fctx.CurrentPlayer),
	}}
	return Result{Snapshot: snap, Events: []BroadcastEvent{ev}}
}

// persist appends the command as a match event and writes the new snapshot.
func (m *Manager) persist(ctx context.Context, matchID, playerID string, cmd Command, snap *Snapshot) error {
	payload := map[string]interface{}{"kind": cmd.Kind}
	if cmd.Type != "" {
		payload["type"] = cmd.Type
	}
	if cmd.Args != nil {
		payload["args"] = cmd.Args
	}
	if cmd.Phase != "" {
		payload["phase"] = cmd.Phase
	}
	var pid *string
	if playerID != "" {
		pid = &playerID
	}
	if _, err := m.events.CreateMatchEvent(ctx, store.CreateMatchEventRequest{
		MatchID:  matchID,
		PlayerID: pid,
		Type:     cmd.Kind,
		Payload:  payload,
	}); err != nil {
		return fmt.Errorf("persist event: %w", err)
	}
	version, err := m.store.CreateSnapshot(ctx, matchID, snap.ToMap())
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	snap.Version = int(version)
	return nil
}

// StateFor loads the latest snapshot and filters it through the game's
// player view for the given player. Players outside the match get the
// spectator view (empty seat).
func (m *Manager) StateFor(ctx context.Context, matchID, playerID string) (map[string]interface{}, error) {
	raw, err := m.store.GetLatestSnapshot(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	snap := SnapshotFromMap(raw)
	if snap == nil || snap.GameName == "" {
		return nil, nil
	}
	game, ok := m.lookup(snap.GameName)
	if !ok {
		return nil, fmt.Errorf("unknown game %q", snap.GameName)
	}
	seat := snap.SeatOf(playerID)
	view := game.PlayerView(snap.G, snap.Ctx, seat)
	return map[string]interface{}{
		"game":           snap.GameName,
		"g":              view,
		"ctx":            ctxToMap(snap.Ctx),
		"current_player": seatPlayerID(snap, snap.Ctx.CurrentPlayer),
		"version":        snap.Version,
		"status":         snap.Status,
	}, nil
}

// MoveNames lists the commands a match's game declares, for clients building
// their UI.
func (m *Manager) MoveNames(ctx context.Context, matchID string) ([]string, error) {
	name, err := m.store.GetMatchGameName(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match game: %w", err)
	}
	game, ok := m.lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown game %q", name)
	}
	return game.MoveNames(), nil
}

// turnEvent reports the flow position after a control command.
func turnEvent(event string, snap *Snapshot) BroadcastEvent {
	return BroadcastEvent{Event: event, Payload: map[string]interface{}{
		"phase":          snap.Ctx.Phase,
		"turn":           snap.Ctx.Turn,
		"current_player": seatPlayerID(snap, snap.Ctx.CurrentPlayer),
	}}
}

// seatPlayerID maps an engine seat label back to the match player ID.
func seatPlayerID(snap *Snapshot, seat string) string {
	for i, label := range snap.Ctx.PlayOrder {
		if label == seat && i < len(snap.Seats) {
			return snap.Seats[i]
		}
	}
	return ""
}
