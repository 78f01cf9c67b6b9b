package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/service"
)

type UserTagHandler struct {
	rates  *service.UserTagService
	logger *zap.Logger
}

func NewUserTagHandler(rates *service.UserTagService, logger *zap.Logger) *UserTagHandler {
	return &UserTagHandler{rates: rates, logger: logger}
}

// Rates returns the per-tag percentage of actual-vs-expected time.
// Tags with no history read as 100.
func (h *UserTagHandler) Rates(c *gin.Context) {
	percents, err := h.rates.RatePercents(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": percents})
}
