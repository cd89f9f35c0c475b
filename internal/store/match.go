// Package store persists matches, their players, state snapshots, and the
// append-only event log in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound is returned when a match or player does not exist.
var ErrNotFound = errors.New("store: not found")

// Match represents one hosted game instance.
type Match struct {
	ID        string                 `json:"id"`
	Code      string                 `json:"code"`
	GameName  string                 `json:"game_name"`
	Status    string                 `json:"status"` // waiting | in_progress | finished
	Settings  map[string]interface{} `json:"settings"`
	HasPass   bool                   `json:"has_password"`
	CreatedAt time.Time              `json:"created_at"`
	EndedAt   *time.Time             `json:"ended_at,omitempty"`
}

// MatchPlayer is one seated player. Seat order is join order and determines
// the engine's play order.
type MatchPlayer struct {
	ID          string    `json:"id"`
	MatchID     string    `json:"match_id"`
	DisplayName string    `json:"display_name"`
	Seat        int       `json:"seat"`
	IsHost      bool      `json:"is_host"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateMatchRequest carries the data for a new match.
type CreateMatchRequest struct {
	GameName    string                 `json:"game_name"`
	DisplayName string                 `json:"display_name"`
	Password    string                 `json:"password,omitempty"`
	Settings    map[string]interface{} `json:"settings,omitempty"`
}

// CreateMatchResponse is returned after creating a match: the match plus the
// host's player row.
type CreateMatchResponse struct {
	Match  *Match       `json:"match"`
	Player *MatchPlayer `json:"player"`
}

// JoinMatchRequest carries the data for joining by code.
type JoinMatchRequest struct {
	Code        string `json:"code"`
	Password    string `json:"password,omitempty"`
	DisplayName string `json:"display_name"`
}

// JoinMatchResponse is returned after joining.
type JoinMatchResponse struct {
	Match  *Match       `json:"match"`
	Player *MatchPlayer `json:"player"`
}

// MatchStore handles database operations for matches and their snapshots.
type MatchStore struct {
	pool *pgxpool.Pool
}

// NewMatchStore creates a MatchStore on the given pool.
func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{pool: pool}
}

// CreateMatch creates the match row and seats the creator as host (seat 0).
func (s *MatchStore) CreateMatch(ctx context.Context, req CreateMatchRequest) (*CreateMatchResponse, error) {
	if req.GameName == "" {
		return nil, fmt.Errorf("game_name is required")
	}
	if req.DisplayName == "" {
		return nil, fmt.Errorf("display_name is required")
	}

	var passwordHash *string
	if req.Password != "" {
		hash, err := hashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	}

	settingsJSON := []byte("{}")
	if len(req.Settings) > 0 {
		var err error
		settingsJSON, err = json.Marshal(req.Settings)
		if err != nil {
			return nil, fmt.Errorf("marshal settings: %w", err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	match := &Match{}
	code := generateMatchCode()
	row := tx.QueryRow(ctx, `
		INSERT INTO matches (code, game_name, status, password_hash, settings)
		VALUES ($1, $2, 'waiting', $3, $4)
		RETURNING id, code, game_name, status, created_at`,
		code, req.GameName, passwordHash, settingsJSON)
	var matchUUID pgtype.UUID
	if err := row.Scan(&matchUUID, &match.Code, &match.GameName, &match.Status, &match.CreatedAt); err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	match.ID = uuidToString(matchUUID)
	match.Settings = req.Settings
	match.HasPass = passwordHash != nil

	player, err := insertPlayer(ctx, tx, matchUUID, req.DisplayName, 0, true)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &CreateMatchResponse{Match: match, Player: player}, nil
}

// GetMatchByCode returns the match with the given join code.
func (s *MatchStore) GetMatchByCode(ctx context.Context, code string) (*Match, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, code, game_name, status, password_hash, settings, created_at, ended_at
		FROM matches WHERE code = $1`, code)
	return scanMatch(row)
}

// GetMatchByID returns the match with the given ID.
func (s *MatchStore) GetMatchByID(ctx context.Context, matchID string) (*Match, error) {
	matchUUID, err := stringToUUID(matchID)
	if err != nil {
		return nil, fmt.Errorf("invalid match_id: %w", err)
	}
	row := s.pool.QueryRow(ctx, `
		SELECT id, code, game_name, status, password_hash, settings, created_at, ended_at
		FROM matches WHERE id = $1`, matchUUID)
	return scanMatch(row)
}

// JoinMatch verifies the password (if any) and seats a new player at the next
// seat. Matches that already started reject new seats.
func (s *MatchStore) JoinMatch(ctx context.Context, req JoinMatchRequest) (*JoinMatchResponse, error) {
	if req.DisplayName == "" {
		return nil, fmt.Errorf("display_name is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT id, code, game_name, status, password_hash, settings, created_at, ended_at
		FROM matches WHERE code = $1 FOR UPDATE`, req.Code)
	match, passwordHash, err := scanMatchWithHash(row)
	if err != nil {
		return nil, err
	}
	if match.Status != "waiting" {
		return nil, fmt.Errorf("match already started")
	}
	if passwordHash != nil {
		if bcrypt.CompareHashAndPassword([]byte(*passwordHash), []byte(req.Password)) != nil {
			return nil, fmt.Errorf("invalid password")
		}
	}

	matchUUID, err := stringToUUID(match.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid match id: %w", err)
	}

	var nextSeat int
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(seat), -1) + 1 FROM match_players WHERE match_id = $1`,
		matchUUID).Scan(&nextSeat); err != nil {
		return nil, fmt.Errorf("next seat: %w", err)
	}

	player, err := insertPlayer(ctx, tx, matchUUID, req.DisplayName, nextSeat, false)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &JoinMatchResponse{Match: match, Player: player}, nil
}

// GetMatchGameName returns the game a match plays.
func (s *MatchStore) GetMatchGameName(ctx context.Context, matchID string) (string, error) {
	matchUUID, err := stringToUUID(matchID)
	if err != nil {
		return "", fmt.Errorf("invalid match_id: %w", err)
	}
	var name string
	err = s.pool.QueryRow(ctx, `SELECT game_name FROM matches WHERE id = $1`, matchUUID).Scan(&name)
	if err == pgx.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get match game: %w", err)
	}
	return name, nil
}

// GetSeatPlayerIDs returns player IDs in seat order.
func (s *MatchStore) GetSeatPlayerIDs(ctx context.Context, matchID string) ([]string, error) {
	matchUUID, err := stringToUUID(matchID)
	if err != nil {
		return nil, fmt.Errorf("invalid match_id: %w", err)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM match_players WHERE match_id = $1 ORDER BY seat`, matchUUID)
	if err != nil {
		return nil, fmt.Errorf("get seats: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		ids = append(ids, uuidToString(id))
	}
	return ids, rows.Err()
}

// GetMatchPlayers returns all players in a match in seat order.
func (s *MatchStore) GetMatchPlayers(ctx context.Context, matchID string) ([]MatchPlayer, error) {
	matchUUID, err := stringToUUID(matchID)
	if err != nil {
		return nil, fmt.Errorf("invalid match_id: %w", err)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, match_id, display_name, seat, is_host, created_at
		FROM match_players WHERE match_id = $1 ORDER BY seat`, matchUUID)
	if err != nil {
		return nil, fmt.Errorf("get match players: %w", err)
	}
	defer rows.Close()
	var players []MatchPlayer
	for rows.Next() {
		var p MatchPlayer
		var id, mid pgtype.UUID
		if err := rows.Scan(&id, &mid, &p.DisplayName, &p.Seat, &p.IsHost, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match player: %w", err)
		}
		p.ID = uuidToString(id)
		p.MatchID = uuidToString(mid)
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetPlayer returns one match player row.
func (s *MatchStore) GetPlayer(ctx context.Context, playerID string) (*MatchPlayer, error) {
	playerUUID, err := stringToUUID(playerID)
	if err != nil {
		return nil, fmt.Errorf("invalid player_id: %w", err)
	}
	p := &MatchPlayer{}
	var id, matchUUID pgtype.UUID
	err = s.pool.QueryRow(ctx, `
		SELECT id, match_id, display_name, seat, is_host, created_at
		FROM match_players WHERE id = $1`, playerUUID).
		Scan(&id, &matchUUID, &p.DisplayName, &p.Seat, &p.IsHost, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	p.ID = uuidToString(id)
	p.MatchID = uuidToString(matchUUID)
	return p, nil
}

// UpdateMatchStatus updates the match's status and optionally ended_at.
func (s *MatchStore) UpdateMatchStatus(ctx context.Context, matchID string, status string, endedAt *time.Time) error {
	matchUUID, err := stringToUUID(matchID)
	if err != nil {
		return fmt.Errorf("invalid match_id: %w", err)
	}
	var endAt pgtype.Timestamptz
	if endedAt != nil {
		endAt = pgtype.Timestamptz{Time: *endedAt, Valid: true}
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE matches SET status = $2, ended_at = $3, updated_at = now() WHERE id = $1`,
		matchUUID, status, endAt)
	if err != nil {
		return fmt.Errorf("update match status: %w", err)
	}
	return nil
}

// GetLatestSnapshot returns the latest state snapshot as a map, or nil when
// none exists yet.
func (s *MatchStore) GetLatestSnapshot(ctx context.Context, matchID string) (map[string]interface{}, error) {
	matchUUID, err := stringToUUID(matchID)
	if err != nil {
		return nil, fmt.Errorf("invalid match_id: %w", err)
	}
	var stateJSON []byte
	err = s.pool.QueryRow(ctx, `
		SELECT state_json FROM match_snapshots
		WHERE match_id = $1 ORDER BY version DESC LIMIT 1`, matchUUID).Scan(&stateJSON)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	var out map[string]interface{}
	if len(stateJSON) > 0 {
		if err := json.Unmarshal(stateJSON, &out); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
	}
	return out, nil
}

// CreateSnapshot writes a new snapshot with the next version number and
// returns that version.
func (s *MatchStore) CreateSnapshot(ctx context.Context, matchID string, state map[string]interface{}) (int32, error) {
	matchUUID, err := stringToUUID(matchID)
	if err != nil {
		return 0, fmt.Errorf("invalid match_id: %w", err)
	}
	data := []byte("{}")
	if len(state) > 0 {
		data, err = json.Marshal(state)
		if err != nil {
			return 0, fmt.Errorf("marshal state: %w", err)
		}
	}
	var version int32
	err = s.pool.QueryRow(ctx, `
		INSERT INTO match_snapshots (match_id, version, state_json)
		VALUES ($1, (SELECT COALESCE(MAX(version), 0) + 1 FROM match_snapshots WHERE match_id = $1), $2)
		RETURNING version`, matchUUID, data).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	return version, nil
}

func insertPlayer(ctx context.Context, tx pgx.Tx, matchUUID pgtype.UUID, displayName string, seat int, isHost bool) (*MatchPlayer, error) {
	p := &MatchPlayer{DisplayName: displayName, Seat: seat, IsHost: isHost}
	var id pgtype.UUID
	err := tx.QueryRow(ctx, `
		INSERT INTO match_players (match_id, display_name, seat, is_host)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		matchUUID, displayName, seat, isHost).Scan(&id, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create match player: %w", err)
	}
	p.ID = uuidToString(id)
	p.MatchID = uuidToString(matchUUID)
	return p, nil
}

func scanMatch(row pgx.Row) (*Match, error) {
	m, _, err := scanMatchWithHash(row)
	return m, err
}

func scanMatchWithHash(row pgx.Row) (*Match, *string, error) {
	m := &Match{}
	var id pgtype.UUID
	var passwordHash *string
	var settingsJSON []byte
	var endedAt pgtype.Timestamptz
	err := row.Scan(&id, &m.Code, &m.GameName, &m.Status, &passwordHash, &settingsJSON, &m.CreatedAt, &endedAt)
	if err == pgx.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get match: %w", err)
	}
	m.ID = uuidToString(id)
	m.HasPass = passwordHash != nil
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &m.Settings); err != nil {
			m.Settings = map[string]interface{}{}
		}
	}
	if endedAt.Valid {
		t := endedAt.Time
		m.EndedAt = &t
	}
	return m, passwordHash, nil
}

// generateMatchCode generates a human-readable join code. Confusable
// characters (0/O, 1/I) are excluded.
func generateMatchCode() string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 6
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = charset[r.Intn(len(charset))]
	}
	return string(code)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// uuidToString converts pgtype.UUID to its canonical string form.
func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	id, err := uuid.FromBytes(u.Bytes[:])
	if err != nil {
		return ""
	}
	return id.String()
}

// stringToUUID parses a UUID string into pgtype.UUID.
func stringToUUID(s string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	var u pgtype.UUID
	copy(u.Bytes[:], id[:])
	u.Valid = true
	return u, nil
}
