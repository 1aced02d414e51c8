package api

import (
	"net/http"
	"time"

	"bracketrank/internal/live"
	"bracketrank/internal/models"
	"bracketrank/internal/pending"
	"bracketrank/internal/scraper"
	"bracketrank/internal/store"
	"bracketrank/internal/webview"
	"bracketrank/pkg/errors"

	"github.com/gin-gonic/gin"
)

type TournamentHandler struct {
	store   store.Store
	pending *pending.Service
	live    *live.Manager
}

func NewTournamentHandler(s store.Store, p *pending.Service, lm *live.Manager) *TournamentHandler {
	return &TournamentHandler{store: s, pending: p, live: lm}
}

type createTournamentRequest struct {
	Type    string              `json:"type" binding:"required"`
	Name    string              `json:"name"`
	Date    time.Time           `json:"date"`
	Raw     string              `json:"data"`
	Players []string            `json:"players"`
	Matches []scraperMatchInput `json:"matches"`
}

type scraperMatchInput struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
}

// @Summary List canonical tournaments
// @Tags Tournaments
// @Produce json
// @Param region path string true "Region id"
// @Param includePending query string false "also list this region's pending tournaments (this route has no admin check)"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/tournaments [get]
func (h *TournamentHandler) List(c *gin.Context) {
	region := c.Param("region")
	ctx := c.Request.Context()

	tournaments, err := h.store.GetAllTournaments(ctx, nil, []string{region}, store.OpAnd)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]map[string]interface{}, 0, len(tournaments))
	for _, t := range tournaments {
		out = append(out, webview.EncodeTournament(t))
	}

	resp := gin.H{"tournaments": out}

	if c.Query("includePending") == "true" {
		pendings, err := h.pending.List(ctx, []string{region})
		if err != nil {
			fail(c, err)
			return
		}
		pout := make([]map[string]interface{}, 0, len(pendings))
		for _, p := range pendings {
			pout = append(pout, webview.EncodePendingTournament(p))
		}
		resp["pending_tournaments"] = pout
	}

	success(c, http.StatusOK, resp)
}

// @Summary Create a pending tournament from a scraped bracket
// @Description Admin-only. Dispatches to the scraper matching body.type and stages a PendingTournament.
// @Tags Tournaments
// @Accept json
// @Produce json
// @Param region path string true "Region id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/tournaments [post]
func (h *TournamentHandler) Create(c *gin.Context) {
	region := c.Param("region")

	var req createTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	matches := make([]scraper.Match, 0, len(req.Matches))
	for _, m := range req.Matches {
		matches = append(matches, scraper.Match{Winner: m.Winner, Loser: m.Loser})
	}

	var sourceType models.SourceType
	var sc scraper.Scraper
	switch req.Type {
	case string(models.SourceTIO):
		sourceType = models.SourceTIO
		sc = &scraper.TIOScraper{Name: req.Name, Date: req.Date, Raw: req.Raw, Players: req.Players, Matches: matches}
	case string(models.SourceChallonge):
		sourceType = models.SourceChallonge
		sc = &scraper.ChallongeScraper{Name: req.Name, Date: req.Date, Raw: req.Raw, Players: req.Players, Matches: matches}
	case string(models.SourceSmashGG):
		sourceType = models.SourceSmashGG
		sc = &scraper.SmashGGScraper{Name: req.Name, Date: req.Date, Raw: req.Raw, Players: req.Players, Matches: matches}
	default:
		fail(c, errors.Validation("unknown scraper type: "+req.Type, nil))
		return
	}

	pt, err := h.pending.CreateFromScraper(c.Request.Context(), sourceType, sc, []string{region})
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"id": pt.ID})
}

// @Summary Get a tournament (canonical or pending)
// @Tags Tournaments
// @Produce json
// @Param region path string true "Region id"
// @Param id path string true "Tournament id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/tournaments/{id} [get]
func (h *TournamentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	t, err := h.store.GetTournamentByID(ctx, id)
	if err != nil {
		fail(c, errors.Internal(err))
		return
	}
	if t != nil {
		success(c, http.StatusOK, webview.EncodeTournament(*t))
		return
	}

	pt, err := h.store.GetPendingTournamentByID(ctx, id)
	if err != nil {
		fail(c, errors.Internal(err))
		return
	}
	if pt != nil {
		success(c, http.StatusOK, webview.EncodePendingTournament(*pt))
		return
	}

	fail(c, errors.NotFound("tournament not found: "+id))
}

// @Summary Delete a canonical tournament
// @Description Admin-only.
// @Tags Tournaments
// @Produce json
// @Param region path string true "Region id"
// @Param id path string true "Tournament id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/tournaments/{id} [delete]
func (h *TournamentHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteTournament(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, errors.Internal(err))
		return
	}
	success(c, http.StatusOK, gin.H{"status": "deleted"})
}

type updateTournamentRequest struct {
	Name    *string        `json:"name"`
	Matches []models.Match `json:"matches"`
	Players []string       `json:"players"`
}

// @Summary Edit a canonical tournament's contents
// @Description Admin-only. Directly rewrites name/players/matches without touching orig_ids.
// @Tags Tournaments
// @Accept json
// @Produce json
// @Param region path string true "Region id"
// @Param id path string true "Tournament id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/tournaments/{id} [put]
func (h *TournamentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	t, err := h.store.GetTournamentByID(ctx, c.Param("id"))
	if err != nil {
		fail(c, errors.Internal(err))
		return
	}
	if t == nil {
		fail(c, errors.NotFound("tournament not found: "+c.Param("id")))
		return
	}

	var req updateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Players != nil {
		t.Players = req.Players
	}
	if req.Matches != nil {
		t.Matches = req.Matches
	}

	if err := h.store.UpdateTournament(ctx, t); err != nil {
		fail(c, errors.Internal(err))
		return
	}
	success(c, http.StatusOK, webview.EncodeTournament(*t))
}

// @Summary Finalize a pending tournament into a canonical one
// @Description Admin-only.
// @Tags Tournaments
// @Produce json
// @Param region path string true "Region id"
// @Param id path string true "Pending tournament id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/tournaments/{id}/finalize [post]
func (h *TournamentHandler) Finalize(c *gin.Context) {
	t, err := h.pending.Finalize(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if h.live != nil {
		region := ""
		if len(t.Regions) > 0 {
			region = t.Regions[0]
		}
		h.live.Publish(live.EventTournamentFinalized, region, gin.H{"tournament_id": t.ID})
	}
	success(c, http.StatusOK, webview.EncodeTournament(*t))
}
