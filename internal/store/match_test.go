package store

import (
	"context"
	"errors"
	"testing"
)

func TestCreateAndGetMatch(t *testing.T) {
	pool := SetupTestDB(t)
	defer pool.Close()

	s := NewMatchStore(pool)
	ctx := context.Background()

	t.Run("success without password", func(t *testing.T) {
		resp, err := s.CreateMatch(ctx, CreateMatchRequest{
			GameName:    "tic-tac-toe",
			DisplayName: "Host",
			Settings:    map[string]interface{}{"max_players": 2},
		})
		if err != nil {
			t.Fatalf("CreateMatch failed: %v", err)
		}
		if resp.Match == nil || resp.Match.ID == "" {
			t.Fatal("expected match with ID")
		}
		if len(resp.Match.Code) != 6 {
			t.Errorf("expected 6-character code, got %q", resp.Match.Code)
		}
		if resp.Match.HasPass {
			t.Error("expected no password flag")
		}
		if resp.Player == nil || !resp.Player.IsHost || resp.Player.Seat != 0 {
			t.Errorf("expected host at seat 0, got %+v", resp.Player)
		}

		got, err := s.GetMatchByCode(ctx, resp.Match.Code)
		if err != nil {
			t.Fatalf("GetMatchByCode failed: %v", err)
		}
		if got.ID != resp.Match.ID || got.GameName != "tic-tac-toe" {
			t.Errorf("round trip mismatch: %+v", got)
		}
	})

	t.Run("missing game name", func(t *testing.T) {
		if _, err := s.CreateMatch(ctx, CreateMatchRequest{DisplayName: "x"}); err == nil {
			t.Error("expected error without game_name")
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := s.GetMatchByCode(ctx, "ZZZZZZ"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestJoinMatch(t *testing.T) {
	pool := SetupTestDB(t)
	defer pool.Close()

	s := NewMatchStore(pool)
	ctx := context.Background()

	created, err := s.CreateMatch(ctx, CreateMatchRequest{
		GameName:    "card-draft",
		DisplayName: "Host",
		Password:    "secret",
	})
	if err != nil {
		t.Fatalf("CreateMatch failed: %v", err)
	}

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := s.JoinMatch(ctx, JoinMatchRequest{Code: created.Match.Code, Password: "nope", DisplayName: "Eve"})
		if err == nil {
			t.Error("expected error for wrong password")
		}
	})

	t.Run("seats assigned in join order", func(t *testing.T) {
		joined, err := s.JoinMatch(ctx, JoinMatchRequest{Code: created.Match.Code, Password: "secret", DisplayName: "P2"})
		if err != nil {
			t.Fatalf("JoinMatch failed: %v", err)
		}
		if joined.Player.Seat != 1 {
			t.Errorf("expected seat 1, got %d", joined.Player.Seat)
		}

		seats, err := s.GetSeatPlayerIDs(ctx, created.Match.ID)
		if err != nil {
			t.Fatalf("GetSeatPlayerIDs failed: %v", err)
		}
		if len(seats) != 2 || seats[0] != created.Player.ID || seats[1] != joined.Player.ID {
			t.Errorf("unexpected seat order: %v", seats)
		}
	})

	t.Run("started match rejects join", func(t *testing.T) {
		if err := s.UpdateMatchStatus(ctx, created.Match.ID, "in_progress", nil); err != nil {
			t.Fatalf("UpdateMatchStatus failed: %v", err)
		}
		_, err := s.JoinMatch(ctx, JoinMatchRequest{Code: created.Match.Code, Password: "secret", DisplayName: "Late"})
		if err == nil {
			t.Error("expected error joining a started match")
		}
	})
}

func TestSnapshots(t *testing.T) {
	pool := SetupTestDB(t)
	defer pool.Close()

	s := NewMatchStore(pool)
	ctx := context.Background()

	created, err := s.CreateMatch(ctx, CreateMatchRequest{GameName: "tic-tac-toe", DisplayName: "Host"})
	if err != nil {
		t.Fatalf("CreateMatch failed: %v", err)
	}
	matchID := created.Match.ID

	if snap, err := s.GetLatestSnapshot(ctx, matchID); err != nil || snap != nil {
		t.Fatalf("expected no snapshot yet, got %v err %v", snap, err)
	}

	v1, err := s.CreateSnapshot(ctx, matchID, map[string]interface{}{"version": 1, "g": "a"})
	if err != nil {
		t.Fatalf("CreateSnapshot failed: %v", err)
	}
	v2, err := s.CreateSnapshot(ctx, matchID, map[string]interface{}{"version": 2, "g": "b"})
	if err != nil {
		t.Fatalf("CreateSnapshot failed: %v", err)
	}
	if v1 != 1 || v2 != 2 {
		t.Errorf("expected versions 1 and 2, got %d and %d", v1, v2)
	}

	snap, err := s.GetLatestSnapshot(ctx, matchID)
	if err != nil {
		t.Fatalf("GetLatestSnapshot failed: %v", err)
	}
	if snap["g"] != "b" {
		t.Errorf("expected latest snapshot, got %v", snap)
	}
}

func TestMatchEvents(t *testing.T) {
	pool := SetupTestDB(t)
	defer pool.Close()

	matches := NewMatchStore(pool)
	events := NewMatchEventStore(pool)
	ctx := context.Background()

	created, err := matches.CreateMatch(ctx, CreateMatchRequest{GameName: "tic-tac-toe", DisplayName: "Host"})
	if err != nil {
		t.Fatalf("CreateMatch failed: %v", err)
	}

	playerID := created.Player.ID
	ev, err := events.CreateMatchEvent(ctx, CreateMatchEventRequest{
		MatchID:  created.Match.ID,
		PlayerID: &playerID,
		Type:     "move",
		Payload:  map[string]interface{}{"type": "click_cell", "args": []interface{}{4}},
	})
	if err != nil {
		t.Fatalf("CreateMatchEvent failed: %v", err)
	}
	if ev.ID == "" || ev.Type != "move" {
		t.Errorf("unexpected event: %+v", ev)
	}

	all, err := events.GetMatchEvents(ctx, created.Match.ID)
	if err != nil {
		t.Fatalf("GetMatchEvents failed: %v", err)
	}
	if len(all) != 1 || all[0].Payload["type"] != "click_cell" {
		t.Errorf("unexpected events: %+v", all)
	}
}
