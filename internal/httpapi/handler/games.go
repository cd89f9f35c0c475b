package handler

import (
	"net/http"

	"github.com/lqviet/boardflow/internal/games"
)

// gamesResponse is the JSON body for GET /api/games.
type gamesResponse struct {
	Games []gameInfo `json:"games"`
}

type gameInfo struct {
	Name      string   `json:"name"`
	MoveNames []string `json:"move_names"`
}

// ListGames handles GET /api/games.
//
// @Summary      List games
// @Description  List the registered game types and the moves each declares.
// @Tags         games
// @Produce      json
// @Success      200  {object}  gamesResponse
// @Router       /api/games [get]
func ListGames(w http.ResponseWriter, r *http.Request) {
	resp := gamesResponse{Games: []gameInfo{}}
	for _, name := range games.Names() {
		g, ok := games.Lookup(name)
		if !ok {
			continue
		}
		resp.Games = append(resp.Games, gameInfo{Name: name, MoveNames: g.MoveNames()})
	}
	writeJSON(w, r, http.StatusOK, resp)
}
