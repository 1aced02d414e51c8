package api

import (
	"net/http"
	"time"

	"bracketrank/internal/config"
	"bracketrank/internal/live"
	"bracketrank/internal/ranking"
	"bracketrank/internal/webview"

	"github.com/gin-gonic/gin"
)

type RankingHandler struct {
	ranking *ranking.Pipeline
	config  *config.Config
	live    *live.Manager
}

func NewRankingHandler(r *ranking.Pipeline, cfg *config.Config, lm *live.Manager) *RankingHandler {
	return &RankingHandler{ranking: r, config: cfg, live: lm}
}

// @Summary Get the latest ranking
// @Tags Rankings
// @Produce json
// @Param region path string true "Region id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/rankings [get]
func (h *RankingHandler) Get(c *gin.Context) {
	r, err := h.ranking.Latest(c.Request.Context(), c.Param("region"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, webview.EncodeRanking(*r))
}

// @Summary Regenerate the ranking
// @Description Admin-only. Replays every tournament in the region per §4.7 and materializes a new snapshot.
// @Tags Rankings
// @Produce json
// @Param region path string true "Region id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/rankings [post]
func (h *RankingHandler) Generate(c *gin.Context) {
	region := c.Param("region")
	params := h.config.ActivityParamsFor(region)

	r, err := h.ranking.Generate(c.Request.Context(), region, time.Now(), params.DayLimit, params.NumTourneys)
	if err != nil {
		fail(c, err)
		return
	}
	if h.live != nil {
		h.live.Publish(live.EventRankingGenerated, region, gin.H{"ranking_id": r.ID})
	}
	success(c, http.StatusOK, webview.EncodeRanking(*r))
}
