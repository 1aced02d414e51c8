package api

import (
	"bracketrank/internal/models"

	"github.com/gin-gonic/gin"
)

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	u, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return u
}
