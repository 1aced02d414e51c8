package api

import (
	"net/http"

	"bracketrank/internal/models"
	"bracketrank/internal/store"
	"bracketrank/internal/webview"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	store store.Store
}

func NewMatchHandler(s store.Store) *MatchHandler {
	return &MatchHandler{store: s}
}

// @Summary Get a player's match history in a region
// @Tags Matches
// @Produce json
// @Param region path string true "Region id"
// @Param playerId path string true "Player id"
// @Param opponent query string false "Restrict to matches against this player id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/matches/{playerId} [get]
func (h *MatchHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	region := c.Param("region")
	playerID := c.Param("playerId")
	opponent := c.Query("opponent")

	tournaments, err := h.store.GetAllTournaments(ctx, []string{playerID}, []string{region}, store.OpAnd)
	if err != nil {
		fail(c, err)
		return
	}

	type matchView struct {
		TournamentID string                 `json:"tournament_id"`
		Match        map[string]interface{} `json:"match"`
	}

	var out []matchView
	for _, t := range tournaments {
		for _, m := range t.Matches {
			if !m.ContainsPlayer(playerID) {
				continue
			}
			if opponent != "" && !matchesOpponent(m, playerID, opponent) {
				continue
			}
			out = append(out, matchView{TournamentID: t.ID, Match: webview.EncodeMatch(m)})
		}
	}

	success(c, http.StatusOK, gin.H{"matches": out})
}

func matchesOpponent(m models.Match, playerID, opponent string) bool {
	if m.Winner == playerID {
		return m.Loser == opponent
	}
	return m.Winner == opponent
}
