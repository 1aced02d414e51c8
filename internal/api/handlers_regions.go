package api

import (
	"net/http"

	"bracketrank/internal/store"
	"bracketrank/internal/webview"

	"github.com/gin-gonic/gin"
)

type RegionHandler struct {
	store store.Store
}

func NewRegionHandler(s store.Store) *RegionHandler {
	return &RegionHandler{store: s}
}

// @Summary List regions
// @Description Returns every configured region, sorted by display name
// @Tags Regions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /regions [get]
func (h *RegionHandler) List(c *gin.Context) {
	regions, err := h.store.GetAllRegions(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	encoded := make([]map[string]interface{}, 0, len(regions))
	for _, r := range regions {
		encoded = append(encoded, webview.EncodeRegion(r))
	}
	success(c, http.StatusOK, gin.H{"regions": encoded})
}
