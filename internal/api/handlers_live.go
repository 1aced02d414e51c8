package api

import (
	"net/http"

	"bracketrank/internal/live"
	"bracketrank/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type LiveHandler struct {
	live     *live.Manager
	upgrader websocket.Upgrader
}

func NewLiveHandler(m *live.Manager) *LiveHandler {
	return &LiveHandler{
		live: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// @Summary Subscribe to region events over a websocket
// @Description Supplemental real-time channel, not part of the core HTTP API (§6): pushes ranking_generated, alias_mapping_changed, tournament_finalized, merge_applied and merge_undone events for the region.
// @Tags Live
// @Param region path string true "Region id"
// @Success 101 {string} string "switching protocols"
// @Router /{region}/live [get]
func (h *LiveHandler) Subscribe(c *gin.Context) {
	region := c.Param("region")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sub := &live.Subscriber{
		ID:     uuid.NewString(),
		Region: region,
		Conn:   conn,
		Send:   make(chan live.Event, 8),
	}
	h.live.Register(sub)
	go sub.WriteLoop()

	defer h.live.Unregister(sub)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		h.live.Ping(sub.ID)
	}
}
