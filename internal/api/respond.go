package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/apperr"
	"github.com/domo-app/domo-server/internal/service"
	"github.com/domo-app/domo-server/pkg/logger"
)

// respondError maps domain errors onto HTTP statuses. Anything outside
// the apperr taxonomy is a 500 with a generic body; the detail stays in
// the log.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr.Error()})
		return
	}

	logger.WithTrace(c.Request.Context(), log).Error("Unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
