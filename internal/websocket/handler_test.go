package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/lqviet/boardflow/internal/games"
	"github.com/lqviet/boardflow/internal/ratelimit"
	"github.com/lqviet/boardflow/internal/session"
	"github.com/lqviet/boardflow/internal/store"
)

// In-memory stand-ins for the match store, same shape the session tests use.
type fakeSnapshotStore struct {
	snapshot map[string]interface{}
	game     string
	seats    []string
	version  int32
}

func (f *fakeSnapshotStore) GetLatestSnapshot(_ context.Context, _ string) (map[string]interface{}, error) {
	return f.snapshot, nil
}
func (f *fakeSnapshotStore) CreateSnapshot(_ context.Context, _ string, state map[string]interface{}) (int32, error) {
	f.snapshot = state
	f.version++
	return f.version, nil
}
func (f *fakeSnapshotStore) UpdateMatchStatus(_ context.Context, _ string, _ string, _ *time.Time) error {
	return nil
}
func (f *fakeSnapshotStore) GetMatchGameName(_ context.Context, _ string) (string, error) {
	return f.game, nil
}
func (f *fakeSnapshotStore) GetSeatPlayerIDs(_ context.Context, _ string) ([]string, error) {
	return f.seats, nil
}

type fakeEventStore struct{}

func (fakeEventStore) CreateMatchEvent(_ context.Context, req store.CreateMatchEventRequest) (*store.MatchEvent, error) {
	return &store.MatchEvent{ID: "ev", MatchID: req.MatchID, Type: req.Type}, nil
}

// newTestHandler wires a running hub to a manager over fakes and registers
// one client per seat.
func newTestHandler(t *testing.T, game string, seats []string) (*MessageHandler, map[string]*Client) {
	t.Helper()
	manager := session.NewManager(&fakeSnapshotStore{game: game, seats: seats}, fakeEventStore{}, games.Lookup)
	hub := NewHub(nil)
	handler := NewMessageHandler(hub, manager, nil)
	hub.SetHandler(handler)
	go hub.Run()

	clients := make(map[string]*Client, len(seats))
	for _, pid := range seats {
		c := newTestClient(hub, "m1", pid)
		hub.register <- c
		clients[pid] = c
	}
	time.Sleep(10 * time.Millisecond)
	return handler, clients
}

// recv drains envelopes until one with the given type arrives.
func recv(t *testing.T, c *Client, envType string) *ServerEnvelope {
	t.Helper()
	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case env := <-c.send:
			if env.Type == envType {
				return env
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q envelope", envType)
			return nil
		}
	}
}

func TestHandleMessage_RejectsUnknownType(t *testing.T) {
	handler, clients := newTestHandler(t, "tic-tac-toe", []string{"p1", "p2"})

	handler.HandleMessage(context.Background(), clients["p1"], &ClientMessage{Type: "bogus"})

	env := recv(t, clients["p1"], ServerTypeError)
	if env.Payload["message"] != "unsupported message type" {
		t.Fatalf("got %v", env.Payload)
	}
}

func TestHandleMessage_StartBroadcastsAndPushesStates(t *testing.T) {
	handler, clients := newTestHandler(t, "tic-tac-toe", []string{"p1", "p2"})
	ctx := context.Background()

	handler.HandleMessage(ctx, clients["p1"], &ClientMessage{Type: ClientMessageTypeStart})
	time.Sleep(20 * time.Millisecond)

	for pid, c := range clients {
		env := recv(t, c, ServerTypeEvent)
		if env.Event != "match_started" {
			t.Errorf("%s: want match_started, got %q", pid, env.Event)
		}
		state := recv(t, c, ServerTypeState)
		if state.Payload["status"] != "in_progress" {
			t.Errorf("%s: want in_progress state, got %v", pid, state.Payload["status"])
		}
	}
}

func TestHandleMessage_MoveFlowsThroughSession(t *testing.T) {
	handler, clients := newTestHandler(t, "tic-tac-toe", []string{"p1", "p2"})
	ctx := context.Background()

	handler.HandleMessage(ctx, clients["p1"], &ClientMessage{Type: ClientMessageTypeStart})
	time.Sleep(20 * time.Millisecond)
	handler.HandleMessage(ctx, clients["p1"], &ClientMessage{
		Type:    ClientMessageTypeMove,
		Payload: map[string]interface{}{"type": "click_cell", "args": []interface{}{4}},
	})
	time.Sleep(20 * time.Millisecond)

	env := recv(t, clients["p2"], ServerTypeEvent)
	for env.Event != "move_applied" {
		env = recv(t, clients["p2"], ServerTypeEvent)
	}
	if env.Payload["player_id"] != "p1" {
		t.Fatalf("want move by p1, got %v", env.Payload)
	}
}

func TestHandleMessage_StateViewsDifferPerPlayer(t *testing.T) {
	handler, clients := newTestHandler(t, "card-draft", []string{"p1", "p2"})
	ctx := context.Background()

	handler.HandleMessage(ctx, clients["p1"], &ClientMessage{Type: ClientMessageTypeStart})
	time.Sleep(20 * time.Millisecond)
	// seat 1 (p2) drafts first in reverse order
	handler.HandleMessage(ctx, clients["p2"], &ClientMessage{
		Type:    ClientMessageTypeMove,
		Payload: map[string]interface{}{"type": "pick", "args": []interface{}{0}},
	})
	time.Sleep(20 * time.Millisecond)

	// p1 must see p2's hand redacted to a count
	var state *ServerEnvelope
	for {
		state = recv(t, clients["p1"], ServerTypeState)
		hands, ok := state.Payload["g"].(map[string]interface{})["hands"].(map[string]interface{})
		if !ok {
			continue
		}
		if _, redacted := hands["1"].(map[string]interface{}); !redacted {
			t.Fatalf("want redacted opponent hand, got %v", hands["1"])
		}
		break
	}
}

func TestHandleMessage_SyncStateIncludesMoveNames(t *testing.T) {
	handler, clients := newTestHandler(t, "tic-tac-toe", []string{"p1", "p2"})
	ctx := context.Background()

	handler.HandleMessage(ctx, clients["p1"], &ClientMessage{Type: ClientMessageTypeStart})
	time.Sleep(20 * time.Millisecond)
	handler.HandleMessage(ctx, clients["p1"], &ClientMessage{Type: ClientMessageTypeSyncState})

	var state *ServerEnvelope
	for {
		state = recv(t, clients["p1"], ServerTypeState)
		if _, ok := state.Payload["move_names"]; ok {
			break
		}
	}
	names, _ := state.Payload["move_names"].([]string)
	if len(names) != 1 || names[0] != "click_cell" {
		t.Fatalf("want [click_cell], got %v", names)
	}
}

func TestHandleMessage_ChatBroadcastsToOthers(t *testing.T) {
	handler, clients := newTestHandler(t, "tic-tac-toe", []string{"p1", "p2"})
	clients["p1"].DisplayName = "Alice"

	handler.HandleMessage(context.Background(), clients["p1"], &ClientMessage{
		Type:    ClientMessageTypeChat,
		Payload: map[string]interface{}{"message": "gg"},
	})
	time.Sleep(20 * time.Millisecond)

	env := recv(t, clients["p2"], ServerTypeEvent)
	if env.Event != ServerEventChat || env.Payload["message"] != "gg" || env.Payload["display_name"] != "Alice" {
		t.Fatalf("got %v", env)
	}

	select {
	case <-clients["p1"].send:
		t.Fatal("sender should not receive its own chat")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandleMessage_ChatRateLimited(t *testing.T) {
	handler, clients := newTestHandler(t, "tic-tac-toe", []string{"p1", "p2"})
	handler.limiter = ratelimit.NewInMemory(1, time.Minute)
	clients["p1"].RateLimitKey = "1.2.3.4"

	ctx := context.Background()
	handler.HandleMessage(ctx, clients["p1"], &ClientMessage{
		Type: ClientMessageTypeChat, Payload: map[string]interface{}{"message": "one"},
	})
	handler.HandleMessage(ctx, clients["p1"], &ClientMessage{
		Type: ClientMessageTypeChat, Payload: map[string]interface{}{"message": "two"},
	})

	env := recv(t, clients["p1"], ServerTypeError)
	if env.Payload["message"] != "rate limit exceeded; try again later" {
		t.Fatalf("got %v", env.Payload)
	}
}

func TestHandleMessage_CommandErrorGoesToSenderOnly(t *testing.T) {
	handler, clients := newTestHandler(t, "tic-tac-toe", []string{"p1", "p2"})

	// Move before start is rejected by the session layer.
	handler.HandleMessage(context.Background(), clients["p1"], &ClientMessage{
		Type:    ClientMessageTypeMove,
		Payload: map[string]interface{}{"type": "click_cell", "args": []interface{}{0}},
	})

	recv(t, clients["p1"], ServerTypeError)
	select {
	case <-clients["p2"].send:
		t.Fatal("errors should not be broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}
