package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/soundrift/soundrift/internal/apperr"
	"github.com/soundrift/soundrift/pkg/logger"
)

// respondError writes the structured JSON error body for err. Every failure
// response carries an `error` field and, when a cause exists, a `detail`.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= 500 {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, apperr.Body(err))
}
