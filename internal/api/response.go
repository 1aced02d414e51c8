package api

import (
	"net/http"

	"bracketrank/pkg/errors"

	"github.com/gin-gonic/gin"
)

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, err error) {
	appErr := errors.As(err)
	c.JSON(appErr.HTTPStatus(), appErr.ToResponse())
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errors.Validation(message, nil).ToResponse())
}
