package api

import (
	"net/http"

	"bracketrank/internal/live"
	"bracketrank/internal/pending"
	"bracketrank/internal/webview"

	"github.com/gin-gonic/gin"
)

type PendingTournamentHandler struct {
	pending *pending.Service
	live    *live.Manager
}

func NewPendingTournamentHandler(p *pending.Service, lm *live.Manager) *PendingTournamentHandler {
	return &PendingTournamentHandler{pending: p, live: lm}
}

type aliasMapEntry struct {
	PlayerAlias string `json:"player_alias" binding:"required"`
	PlayerID    string `json:"player_id"`
}

type setAliasMappingRequest struct {
	AliasToIDMap []aliasMapEntry `json:"alias_to_id_map" binding:"required"`
}

// @Summary Edit a pending tournament's alias-to-player mappings
// @Description Admin-only. An empty player_id clears the mapping back to unresolved.
// @Tags PendingTournaments
// @Accept json
// @Produce json
// @Param region path string true "Region id"
// @Param id path string true "Pending tournament id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/pending_tournaments/{id} [put]
func (h *PendingTournamentHandler) SetAliasMappings(c *gin.Context) {
	id := c.Param("id")

	var req setAliasMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	for _, entry := range req.AliasToIDMap {
		if entry.PlayerID == "" {
			if err := h.pending.DeleteAliasMapping(ctx, id, entry.PlayerAlias); err != nil {
				fail(c, err)
				return
			}
			continue
		}
		if err := h.pending.SetAliasMapping(ctx, id, entry.PlayerAlias, entry.PlayerID); err != nil {
			fail(c, err)
			return
		}
	}

	pt, err := h.pending.GetByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if h.live != nil {
		h.live.Publish(live.EventAliasMappingChanged, c.Param("region"), gin.H{"pending_tournament_id": id})
	}
	success(c, http.StatusOK, webview.EncodePendingTournament(*pt))
}
