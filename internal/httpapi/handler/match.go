package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lqviet/boardflow/internal/auth"
	"github.com/lqviet/boardflow/internal/games"
	"github.com/lqviet/boardflow/internal/logger"
	"github.com/lqviet/boardflow/internal/session"
	"github.com/lqviet/boardflow/internal/store"
)

// Validation limits for match endpoints.
const (
	DisplayNameMinLen = 1
	DisplayNameMaxLen = 64
	PasswordMaxLen    = 128
)

// matchCodePattern matches 6-char codes from the generator's charset
// (A-Z excluding I,O; 2-9).
var matchCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

// MatchHandler handles match-related HTTP requests.
type MatchHandler struct {
	matches     *store.MatchStore
	manager     *session.Manager
	tokenSecret []byte
}

// NewMatchHandler creates a MatchHandler. If tokenSecret is non-empty,
// create/join responses include a WebSocket auth token.
func NewMatchHandler(matches *store.MatchStore, manager *session.Manager, tokenSecret []byte) *MatchHandler {
	return &MatchHandler{matches: matches, manager: manager, tokenSecret: tokenSecret}
}

// MatchResponse is returned from create and join: the match, the caller's
// player row, and the WebSocket token binding them.
type MatchResponse struct {
	Match     *store.Match       `json:"match"`
	Player    *store.MatchPlayer `json:"player"`
	Token     string             `json:"token,omitempty"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
}

// GetMatchResponse is returned from GET by code.
type GetMatchResponse struct {
	Match     *store.Match           `json:"match"`
	Players   []store.MatchPlayer    `json:"players"`
	MoveNames []string               `json:"move_names,omitempty"`
	State     map[string]interface{} `json:"state,omitempty"`
}

func validateDisplayName(displayName string) string {
	s := strings.TrimSpace(displayName)
	if len(s) < DisplayNameMinLen {
		return "display_name is required"
	}
	if len(s) > DisplayNameMaxLen {
		return fmt.Sprintf("display_name must be at most %d characters", DisplayNameMaxLen)
	}
	return ""
}

func validatePasswordLength(password string) string {
	if len(password) > PasswordMaxLen {
		return fmt.Sprintf("password must be at most %d characters", PasswordMaxLen)
	}
	return ""
}

func validateMatchCode(code string) bool {
	return len(code) == 6 && matchCodePattern.MatchString(code)
}

// CreateMatch handles POST /api/matches
//
// @Summary      Create match
// @Description  Create a new match for a registered game. The requester becomes the host at seat 0.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        body  body      store.CreateMatchRequest  true  "Request body"
// @Success      201   {object}  MatchResponse
// @Failure      400   {string}  string  "Bad request (unknown game, invalid display_name, or body)"
// @Failure      500   {string}  string  "Server error"
// @Router       /api/matches [post]
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req store.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, ok := games.Lookup(req.GameName); !ok {
		http.Error(w, fmt.Sprintf("unknown game %q", req.GameName), http.StatusBadRequest)
		return
	}
	if msg := validateDisplayName(req.DisplayName); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if msg := validatePasswordLength(req.Password); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	created, err := h.matches.CreateMatch(r.Context(), req)
	if err != nil {
		logger.Log.Errorw("create match failed", "request_id", requestID(r), "err", err)
		http.Error(w, "failed to create match", http.StatusInternalServerError)
		return
	}

	resp := &MatchResponse{Match: created.Match, Player: created.Player}
	if err := h.attachToken(resp); err != nil {
		logger.Log.Errorw("generate token failed", "request_id", requestID(r), "err", err)
		http.Error(w, "failed to create match", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusCreated, resp)
}

// JoinMatch handles POST /api/matches/{code}/join
//
// @Summary      Join match
// @Description  Join a waiting match by code. The player takes the next seat.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        code  path      string                  true  "Match code (6 alphanumeric)"
// @Param        body  body      store.JoinMatchRequest  true  "Request body (code in path, not body)"
// @Success      200   {object}  MatchResponse
// @Failure      400   {string}  string  "Bad request"
// @Failure      401   {string}  string  "Invalid password"
// @Failure      404   {string}  string  "Match not found"
// @Failure      409   {string}  string  "Match already started"
// @Failure      500   {string}  string  "Server error"
// @Router       /api/matches/{code}/join [post]
func (h *MatchHandler) JoinMatch(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !validateMatchCode(code) {
		http.Error(w, "invalid match code format", http.StatusBadRequest)
		return
	}

	var req store.JoinMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Code = code

	if msg := validateDisplayName(req.DisplayName); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if msg := validatePasswordLength(req.Password); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	joined, err := h.matches.JoinMatch(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "match not found", http.StatusNotFound)
		case err.Error() == "invalid password":
			http.Error(w, "invalid password", http.StatusUnauthorized)
		case err.Error() == "match already started":
			http.Error(w, "match already started", http.StatusConflict)
		default:
			logger.Log.Errorw("join match failed", "request_id", requestID(r), "err", err)
			http.Error(w, "failed to join match", http.StatusInternalServerError)
		}
		return
	}

	resp := &MatchResponse{Match: joined.Match, Player: joined.Player}
	if err := h.attachToken(resp); err != nil {
		logger.Log.Errorw("generate token failed", "request_id", requestID(r), "err", err)
		http.Error(w, "failed to join match", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// GetMatch handles GET /api/matches/{code}
//
// @Summary      Get match
// @Description  Get match details, seated players, declared moves, and the spectator view of the latest state. No authentication required.
// @Tags         matches
// @Produce      json
// @Param        code  path      string  true  "Match code (6 alphanumeric)"
// @Success      200   {object}  GetMatchResponse
// @Failure      400   {string}  string  "Invalid match code"
// @Failure      404   {string}  string  "Match not found"
// @Failure      500   {string}  string  "Server error"
// @Router       /api/matches/{code} [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !validateMatchCode(code) {
		http.Error(w, "invalid match code format", http.StatusBadRequest)
		return
	}

	match, err := h.matches.GetMatchByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}
		logger.Log.Errorw("get match failed", "request_id", requestID(r), "err", err)
		http.Error(w, "failed to get match", http.StatusInternalServerError)
		return
	}

	players, err := h.matches.GetMatchPlayers(r.Context(), match.ID)
	if err != nil {
		logger.Log.Errorw("get match players failed", "request_id", requestID(r), "err", err)
		http.Error(w, "failed to get match", http.StatusInternalServerError)
		return
	}

	resp := &GetMatchResponse{Match: match, Players: players}
	if names, err := h.manager.MoveNames(r.Context(), match.ID); err == nil {
		resp.MoveNames = names
	}
	// Spectator view: empty player ID gets the fully redacted state.
	if state, err := h.manager.StateFor(r.Context(), match.ID, ""); err == nil && state != nil {
		resp.State = state
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// attachToken signs a WebSocket token for the player when a secret is set.
func (h *MatchHandler) attachToken(resp *MatchResponse) error {
	if len(h.tokenSecret) == 0 {
		return nil
	}
	token, expiresAt, err := auth.GenerateToken(resp.Match.ID, resp.Player.ID, h.tokenSecret, auth.DefaultTokenExpiry)
	if err != nil {
		return err
	}
	resp.Token = token
	resp.ExpiresAt = &expiresAt
	return nil
}
