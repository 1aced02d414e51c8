package api

import (
	"net/http"

	"bracketrank/internal/auth"
	"bracketrank/internal/config"
	"bracketrank/pkg/errors"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	auth   *auth.Service
	config *config.Config
}

func NewSessionHandler(a *auth.Service, cfg *config.Config) *SessionHandler {
	return &SessionHandler{auth: a, config: cfg}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary Log in
// @Description Issues a session_id cookie on success. Username-existence is not distinguishable from a bad password (§7).
// @Tags Session
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /users/session [put]
func (h *SessionHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.SetCookie(h.config.SessionCookieName, session.ID, 0, "/", "", true, true)
	success(c, http.StatusOK, gin.H{"status": "success"})
}

// @Summary Log out
// @Tags Session
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /users/session [delete]
func (h *SessionHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(h.config.SessionCookieName)
	if err == nil && token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			fail(c, err)
			return
		}
	}
	c.SetCookie(h.config.SessionCookieName, "", -1, "/", "", true, true)
	success(c, http.StatusOK, gin.H{"status": "success"})
}

// @Summary Whoami
// @Tags Session
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /users/session [get]
func (h *SessionHandler) Whoami(c *gin.Context) {
	token, err := c.Cookie(h.config.SessionCookieName)
	if err != nil || token == "" {
		fail(c, errors.Unauthorized("no session token provided"))
		return
	}
	user, err := h.auth.RequireUser(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{
		"username":      user.Username,
		"admin_regions": user.AdminRegions,
		"admin_level":   user.AdminLevel,
	})
}
