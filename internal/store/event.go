package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchEvent is one row of the append-only match event log.
type MatchEvent struct {
	ID        string                 `json:"id"`
	MatchID   string                 `json:"match_id"`
	PlayerID  *string                `json:"player_id,omitempty"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

// CreateMatchEventRequest carries the data for appending an event.
type CreateMatchEventRequest struct {
	MatchID  string                 `json:"match_id"`
	PlayerID *string                `json:"player_id,omitempty"`
	Type     string                 `json:"type"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

// MatchEventStore handles database operations for match events.
type MatchEventStore struct {
	pool *pgxpool.Pool
}

// NewMatchEventStore creates a MatchEventStore on the given pool.
func NewMatchEventStore(pool *pgxpool.Pool) *MatchEventStore {
	return &MatchEventStore{pool: pool}
}

// CreateMatchEvent appends one event.
func (s *MatchEventStore) CreateMatchEvent(ctx context.Context, req CreateMatchEventRequest) (*MatchEvent, error) {
	matchUUID, err := stringToUUID(req.MatchID)
	if err != nil {
		return nil, fmt.Errorf("invalid match_id: %w", err)
	}
	var playerUUID pgtype.UUID
	if req.PlayerID != nil && *req.PlayerID != "" {
		playerUUID, err = stringToUUID(*req.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("invalid player_id: %w", err)
		}
	}

	payloadJSON := []byte("{}")
	if len(req.Payload) > 0 {
		payloadJSON, err = json.Marshal(req.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
	}

	ev := &MatchEvent{MatchID: req.MatchID, PlayerID: req.PlayerID, Type: req.Type, Payload: req.Payload}
	var id pgtype.UUID
	err = s.pool.QueryRow(ctx, `
		INSERT INTO match_events (match_id, player_id, type, payload_json)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		matchUUID, playerUUID, req.Type, payloadJSON).Scan(&id, &ev.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create match event: %w", err)
	}
	ev.ID = uuidToString(id)
	if ev.Payload == nil {
		ev.Payload = map[string]interface{}{}
	}
	return ev, nil
}

// GetMatchEvents returns all events for a match in insertion order.
func (s *MatchEventStore) GetMatchEvents(ctx context.Context, matchID string) ([]MatchEvent, error) {
	matchUUID, err := stringToUUID(matchID)
	if err != nil {
		return nil, fmt.Errorf("invalid match_id: %w", err)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, match_id, player_id, type, payload_json, created_at
		FROM match_events WHERE match_id = $1 ORDER BY created_at`, matchUUID)
	if err != nil {
		return nil, fmt.Errorf("get match events: %w", err)
	}
	defer rows.Close()

	var events []MatchEvent
	for rows.Next() {
		var ev MatchEvent
		var id, mid, pid pgtype.UUID
		var payloadJSON []byte
		if err := rows.Scan(&id, &mid, &pid, &ev.Type, &payloadJSON, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match event: %w", err)
		}
		ev.ID = uuidToString(id)
		ev.MatchID = uuidToString(mid)
		if pid.Valid {
			s := uuidToString(pid)
			ev.PlayerID = &s
		}
		if err := json.Unmarshal(payloadJSON, &ev.Payload); err != nil {
			ev.Payload = map[string]interface{}{}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
