package api

import (
	"net/http"
	"strings"

	"bracketrank/internal/players"
	"bracketrank/internal/webview"

	"github.com/gin-gonic/gin"
)

type PlayerHandler struct {
	players *players.Service
}

func NewPlayerHandler(p *players.Service) *PlayerHandler {
	return &PlayerHandler{players: p}
}

type updatePlayerRequest struct {
	Name    *string  `json:"name"`
	Aliases []string `json:"aliases"`
	Regions []string `json:"regions"`
}

// @Summary List players
// @Description Lists players in a region, or resolves a single alias, or lists across all regions
// @Tags Players
// @Produce json
// @Param region path string true "Region id"
// @Param alias query string false "Exact alias to resolve within the region"
// @Param query query string false "Case-insensitive substring match on player name"
// @Param all query bool false "List across all regions instead of just this one"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/players [get]
func (h *PlayerHandler) List(c *gin.Context) {
	region := c.Param("region")
	ctx := c.Request.Context()

	if alias := c.Query("alias"); alias != "" {
		p, err := h.players.GetByAlias(ctx, alias, region)
		if err != nil {
			fail(c, err)
			return
		}
		var out []map[string]interface{}
		if p != nil {
			out = append(out, webview.EncodePlayer(*p))
		}
		success(c, http.StatusOK, gin.H{"players": out})
		return
	}

	listRegion := region
	if c.Query("all") == "true" {
		listRegion = ""
	}

	ps, err := h.players.List(ctx, listRegion)
	if err != nil {
		fail(c, err)
		return
	}

	if q := strings.ToLower(c.Query("query")); q != "" {
		filtered := ps[:0]
		for _, p := range ps {
			if strings.Contains(strings.ToLower(p.Name), q) {
				filtered = append(filtered, p)
			}
		}
		ps = filtered
	}

	out := make([]map[string]interface{}, 0, len(ps))
	for _, p := range ps {
		out = append(out, webview.EncodePlayer(p))
	}
	success(c, http.StatusOK, gin.H{"players": out})
}

// @Summary Get a player
// @Tags Players
// @Produce json
// @Param region path string true "Region id"
// @Param id path string true "Player id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/players/{id} [get]
func (h *PlayerHandler) Get(c *gin.Context) {
	p, err := h.players.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, webview.EncodePlayer(*p))
}

// @Summary Update a player
// @Description Admin-only. Updates name/aliases/regions in place.
// @Tags Players
// @Accept json
// @Produce json
// @Param region path string true "Region id"
// @Param id path string true "Player id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/players/{id} [put]
func (h *PlayerHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.players.GetByID(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	var req updatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Aliases != nil {
		p.Aliases = req.Aliases
	}
	if req.Regions != nil {
		p.Regions = req.Regions
	}

	if err := h.players.EnsureAlias(ctx, p, strings.ToLower(p.Name)); err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, webview.EncodePlayer(*p))
}
