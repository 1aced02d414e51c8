package api

import (
	"net/http"

	"bracketrank/internal/live"
	"bracketrank/internal/merge"
	"bracketrank/internal/store"
	"bracketrank/internal/webview"

	"github.com/gin-gonic/gin"
)

type MergeHandler struct {
	store store.Store
	merge *merge.Engine
	live  *live.Manager
}

func NewMergeHandler(s store.Store, m *merge.Engine, lm *live.Manager) *MergeHandler {
	return &MergeHandler{store: s, merge: m, live: lm}
}

type createMergeRequest struct {
	SourcePlayerID string `json:"source_player_id" binding:"required"`
	TargetPlayerID string `json:"target_player_id" binding:"required"`
}

// @Summary List merges
// @Tags Merges
// @Produce json
// @Param region path string true "Region id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/merges [get]
func (h *MergeHandler) List(c *gin.Context) {
	merges, err := h.store.GetAllMerges(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]map[string]interface{}, 0, len(merges))
	for _, m := range merges {
		out = append(out, webview.EncodeMerge(m))
	}
	success(c, http.StatusOK, gin.H{"merges": out})
}

// @Summary Apply a merge
// @Description Admin-only. Merges source_player_id into target_player_id (§4.4).
// @Tags Merges
// @Accept json
// @Produce json
// @Param region path string true "Region id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/merges [put]
func (h *MergeHandler) Create(c *gin.Context) {
	var req createMergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user := currentUser(c)
	region := c.Param("region")
	mg, err := h.merge.Apply(c.Request.Context(), region, user.Username, req.SourcePlayerID, req.TargetPlayerID)
	if err != nil {
		fail(c, err)
		return
	}
	if h.live != nil {
		h.live.Publish(live.EventMergeApplied, region, gin.H{"merge_id": mg.ID, "source_player_id": req.SourcePlayerID, "target_player_id": req.TargetPlayerID})
	}
	success(c, http.StatusOK, gin.H{"status": "success", "id": mg.ID})
}

// @Summary Undo a merge
// @Description Admin-only.
// @Tags Merges
// @Produce json
// @Param region path string true "Region id"
// @Param id path string true "Merge id"
// @Success 200 {object} map[string]interface{}
// @Router /{region}/merges/{id} [delete]
func (h *MergeHandler) Undo(c *gin.Context) {
	region, mergeID := c.Param("region"), c.Param("id")
	if err := h.merge.Undo(c.Request.Context(), region, mergeID); err != nil {
		fail(c, err)
		return
	}
	if h.live != nil {
		h.live.Publish(live.EventMergeUndone, region, gin.H{"merge_id": mergeID})
	}
	success(c, http.StatusOK, gin.H{"status": "success"})
}
