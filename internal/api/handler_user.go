package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/model"
	"github.com/domo-app/domo-server/internal/service"
)

type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

func (h *UserHandler) Info(c *gin.Context) {
	u, err := h.users.Info(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Coin(c *gin.Context) {
	coin, err := h.users.Coin(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coin": coin})
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), userID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type onboardingRequest struct {
	DetailPreference string   `json:"detail_preference" binding:"required"`
	WorkPace         string   `json:"work_pace" binding:"required"`
	InterestedTags   []string `json:"interested_tags"`
}

func (h *UserHandler) Onboarding(c *gin.Context) {
	var req onboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pref, err := model.ParseTaskDetailPreference(req.DetailPreference)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pace, err := model.ParseWorkPace(req.WorkPace)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.Onboarding(c.Request.Context(), userID(c), service.OnboardingInput{
		DetailPreference: pref,
		WorkPace:         pace,
		InterestedTags:   req.InterestedTags,
	}); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type detailPreferenceRequest struct {
	DetailPreference string `json:"detail_preference" binding:"required"`
}

func (h *UserHandler) UpdateDetailPreference(c *gin.Context) {
	var req detailPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pref, err := model.ParseTaskDetailPreference(req.DetailPreference)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateDetailPreference(c.Request.Context(), userID(c), pref); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type workPaceRequest struct {
	WorkPace string `json:"work_pace" binding:"required"`
}

func (h *UserHandler) UpdateWorkPace(c *gin.Context) {
	var req workPaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pace, err := model.ParseWorkPace(req.WorkPace)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateWorkPace(c.Request.Context(), userID(c), pace); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) DrawItem(c *gin.Context) {
	item, err := h.users.DrawItem(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *UserHandler) StoreItems(c *gin.Context) {
	items, err := h.users.StoreItems(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *UserHandler) LatestEquipped(c *gin.Context) {
	item, err := h.users.LatestEquipped(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
