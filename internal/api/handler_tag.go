package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/service"
)

type TagHandler struct {
	tags   *service.TagService
	logger *zap.Logger
}

func NewTagHandler(tags *service.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{tags: tags, logger: logger}
}

type createTagRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *TagHandler) Create(c *gin.Context) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.tags.Create(c.Request.Context(), userID(c), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *TagHandler) Delete(c *gin.Context) {
	tagID, err := strconv.Atoi(c.Param("tagId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag id"})
		return
	}

	if err := h.tags.Delete(c.Request.Context(), userID(c), tagID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
