package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lqviet/boardflow/internal/flow"
	"github.com/lqviet/boardflow/internal/games"
	"github.com/lqviet/boardflow/internal/store"
)

// Minimal fakes, no DB.
type fakeSnapshotStore struct {
	snapshot map[string]interface{}
	game     string
	seats    []string
	version  int32
	status   string
}

func (f *fakeSnapshotStore) GetLatestSnapshot(_ context.Context, _ string) (map[string]interface{}, error) {
	return f.snapshot, nil
}
func (f *fakeSnapshotStore) CreateSnapshot(_ context.Context, _ string, state map[string]interface{}) (int32, error) {
	f.snapshot = state
	f.version++
	return f.version, nil
}
func (f *fakeSnapshotStore) UpdateMatchStatus(_ context.Context, _ string, status string, _ *time.Time) error {
	f.status = status
	return nil
}
func (f *fakeSnapshotStore) GetMatchGameName(_ context.Context, _ string) (string, error) {
	return f.game, nil
}
func (f *fakeSnapshotStore) GetSeatPlayerIDs(_ context.Context, _ string) ([]string, error) {
	return f.seats, nil
}

type fakeEventStore struct {
	events []store.CreateMatchEventRequest
}

func (f *fakeEventStore) CreateMatchEvent(_ context.Context, req store.CreateMatchEventRequest) (*store.MatchEvent, error) {
	f.events = append(f.events, req)
	return &store.MatchEvent{ID: "fake-id", MatchID: req.MatchID, Type: req.Type}, nil
}

func newTestManager(game string, seats []string) (*Manager, *fakeSnapshotStore, *fakeEventStore) {
	st := &fakeSnapshotStore{game: game, seats: seats}
	ev := &fakeEventStore{}
	return NewManager(st, ev, games.Lookup), st, ev
}

func TestApply_RequiresStart(t *testing.T) {
	m, _, _ := newTestManager("tic-tac-toe", []string{"p1", "p2"})
	res := m.Apply(context.Background(), "m1", "p1", Command{Kind: CommandMove, Type: "click_cell"})
	if res.Error == nil {
		t.Fatal("expected error before start")
	}
}

func TestApply_StartBootstraps(t *testing.T) {
	m, st, _ := newTestManager("tic-tac-toe", []string{"p1", "p2"})
	res := m.Apply(context.Background(), "m1", "p1", Command{Kind: CommandStart})
	if res.Error != nil {
		t.Fatalf("start: %v", res.Error)
	}
	if res.Snapshot == nil || res.Snapshot.Status != "in_progress" {
		t.Fatalf("expected in_progress snapshot, got %+v", res.Snapshot)
	}
	if st.status != "in_progress" {
		t.Errorf("expected match status update, got %q", st.status)
	}
	if len(res.Events) != 1 || res.Events[0].Event != "match_started" {
		t.Errorf("expected match_started event, got %v", res.Events)
	}
	if got := res.Events[0].Payload["current_player"]; got != "p1" {
		t.Errorf("expected first seat p1 to act, got %v", got)
	}

	again := m.Apply(context.Background(), "m1", "p1", Command{Kind: CommandStart})
	if again.Error == nil {
		t.Error("expected second start to be rejected")
	}
}

func TestApply_MoveRoundTripsThroughSnapshot(t *testing.T) {
	m, _, ev := newTestManager("tic-tac-toe", []string{"p1", "p2"})
	ctx := context.Background()
	m.Apply(ctx, "m1", "p1", Command{Kind: CommandStart})

	res := m.Apply(ctx, "m1", "p1", Command{Kind: CommandMove, Type: "click_cell", Args: []interface{}{4}})
	if res.Error != nil {
		t.Fatalf("move: %v", res.Error)
	}
	cells := res.Snapshot.G.(map[string]interface{})["cells"].([]interface{})
	if cells[4] != "0" {
		t.Errorf("expected seat 0 on cell 4, got %v", cells[4])
	}
	if len(ev.events) == 0 || ev.events[len(ev.events)-1].Type != CommandMove {
		t.Error("expected move event persisted")
	}
	if res.Snapshot.Version != 2 {
		t.Errorf("expected snapshot version 2, got %d", res.Snapshot.Version)
	}
}

func TestApply_UnknownMoveIsAcceptedNoop(t *testing.T) {
	m, _, _ := newTestManager("tic-tac-toe", []string{"p1", "p2"})
	ctx := context.Background()
	started := m.Apply(ctx, "m1", "p1", Command{Kind: CommandStart})
	before := started.Snapshot.G.(map[string]interface{})["cells"].([]interface{})

	res := m.Apply(ctx, "m1", "p1", Command{Kind: CommandMove, Type: "no_such_move"})
	if res.Error != nil {
		t.Fatalf("expected unknown move to be accepted, got %v", res.Error)
	}
	after := res.Snapshot.G.(map[string]interface{})["cells"].([]interface{})
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("expected state unchanged for unknown move")
		}
	}
}

func TestApply_ControlCommands(t *testing.T) {
	m, _, _ := newTestManager("card-draft", []string{"p1", "p2", "p3"})
	ctx := context.Background()
	m.Apply(ctx, "m1", "p1", Command{Kind: CommandStart})

	res := m.Apply(ctx, "m1", "p1", Command{Kind: CommandEndTurn})
	if res.Error != nil {
		t.Fatalf("end turn: %v", res.Error)
	}
	// card-draft drafts in reverse order: seat 2 first, then seat 1 == p2.
	if got := res.Events[0].Payload["current_player"]; got != "p2" {
		t.Errorf("expected p2 after first end turn, got %v", got)
	}

	res = m.Apply(ctx, "m1", "p1", Command{Kind: CommandEndPhase})
	if res.Error != nil {
		t.Fatalf("end phase: %v", res.Error)
	}
	if res.Snapshot.Ctx.Phase != "play" {
		t.Errorf("expected play phase, got %q", res.Snapshot.Ctx.Phase)
	}

	res = m.Apply(ctx, "m1", "p1", Command{Kind: CommandSetPhase, Phase: "draft"})
	if res.Error != nil {
		t.Fatalf("set phase: %v", res.Error)
	}
	if res.Snapshot.Ctx.Phase != "draft" {
		t.Errorf("expected draft phase, got %q", res.Snapshot.Ctx.Phase)
	}

	res = m.Apply(ctx, "m1", "p1", Command{Kind: CommandSetPhase, Phase: "nope"})
	if !errors.Is(res.Error, flow.ErrUnknownPhase) {
		t.Errorf("expected ErrUnknownPhase, got %v", res.Error)
	}
}

func TestApply_UnseatedPlayerRejected(t *testing.T) {
	m, _, _ := newTestManager("tic-tac-toe", []string{"p1", "p2"})
	ctx := context.Background()
	m.Apply(ctx, "m1", "p1", Command{Kind: CommandStart})
	res := m.Apply(ctx, "m1", "intruder", Command{Kind: CommandMove, Type: "click_cell", Args: []interface{}{0}})
	if res.Error == nil {
		t.Error("expected rejection for player without a seat")
	}
}

func TestStateFor_AppliesPlayerView(t *testing.T) {
	m, _, _ := newTestManager("card-draft", []string{"p1", "p2"})
	ctx := context.Background()
	m.Apply(ctx, "m1", "p1", Command{Kind: CommandStart})
	// seat 1 (p2) drafts first in reverse order.
	m.Apply(ctx, "m1", "p2", Command{Kind: CommandMove, Type: "pick", Args: []interface{}{0}})

	view, err := m.StateFor(ctx, "m1", "p1")
	if err != nil {
		t.Fatalf("state for: %v", err)
	}
	hands := view["g"].(map[string]interface{})["hands"].(map[string]interface{})
	if _, ok := hands["1"].(map[string]interface{}); !ok {
		t.Errorf("expected opponent hand redacted for p1, got %v", hands["1"])
	}
	if view["current_player"] == "" {
		t.Error("expected current player resolved to a match player id")
	}
}

func TestMoveNames(t *testing.T) {
	m, _, _ := newTestManager("card-draft", nil)
	names, err := m.MoveNames(context.Background(), "m1")
	if err != nil {
		t.Fatalf("move names: %v", err)
	}
	want := map[string]bool{"concede": false, "pick": false, "play_card": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("expected move %q in %v", n, names)
		}
	}
}
