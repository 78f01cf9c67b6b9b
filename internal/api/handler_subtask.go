package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/model"
	"github.com/domo-app/domo-server/internal/service"
)

type SubTaskHandler struct {
	subtasks *service.SubTaskService
	logger   *zap.Logger
}

func NewSubTaskHandler(subtasks *service.SubTaskService, logger *zap.Logger) *SubTaskHandler {
	return &SubTaskHandler{subtasks: subtasks, logger: logger}
}

func subTaskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("subTaskId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subtask id"})
		return 0, false
	}
	return id, true
}

type addSubTaskRequest struct {
	Order        int    `json:"order"`
	Name         string `json:"name" binding:"required"`
	ExpectedTime int    `json:"expected_time"`
	Tag          string `json:"tag" binding:"required"`
}

func (h *SubTaskHandler) Add(c *gin.Context) {
	pid, ok := projectID(c)
	if !ok {
		return
	}
	var req addSubTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.subtasks.Add(c.Request.Context(), userID(c), pid, service.AddSubTaskInput{
		Order:        req.Order,
		Name:         req.Name,
		ExpectedTime: req.ExpectedTime,
		Tag:          model.SubTaskTag(req.Tag),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *SubTaskHandler) List(c *gin.Context) {
	pid, ok := projectID(c)
	if !ok {
		return
	}
	subtasks, err := h.subtasks.List(c.Request.Context(), userID(c), pid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtasks": subtasks})
}

type updateSubTaskRequest struct {
	Order        *int    `json:"order"`
	Name         *string `json:"name"`
	ExpectedTime *int    `json:"expected_time"`
	Tag          *string `json:"tag"`
}

func (h *SubTaskHandler) Update(c *gin.Context) {
	id, ok := subTaskID(c)
	if !ok {
		return
	}
	var req updateSubTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.UpdateSubTaskInput{
		Order:        req.Order,
		Name:         req.Name,
		ExpectedTime: req.ExpectedTime,
	}
	if req.Tag != nil {
		tag := model.SubTaskTag(*req.Tag)
		in.Tag = &tag
	}

	if err := h.subtasks.Update(c.Request.Context(), userID(c), id, in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type actualTimeRequest struct {
	ActualTime int `json:"actual_time"`
}

func (h *SubTaskHandler) RecordActualTime(c *gin.Context) {
	id, ok := subTaskID(c)
	if !ok {
		return
	}
	var req actualTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.subtasks.RecordActualTime(c.Request.Context(), userID(c), id, req.ActualTime); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubTaskHandler) Delete(c *gin.Context) {
	id, ok := subTaskID(c)
	if !ok {
		return
	}
	if err := h.subtasks.Delete(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubTaskHandler) MarkDone(c *gin.Context) {
	id, ok := subTaskID(c)
	if !ok {
		return
	}
	status, err := h.subtasks.MarkDone(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_status": status})
}

func (h *SubTaskHandler) MarkUndone(c *gin.Context) {
	id, ok := subTaskID(c)
	if !ok {
		return
	}
	status, err := h.subtasks.MarkUndone(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_status": status})
}

type bulkCreateRequest struct {
	SubTasks []addSubTaskRequest `json:"subtasks" binding:"required"`
}

func (h *SubTaskHandler) BulkCreate(c *gin.Context) {
	pid, ok := projectID(c)
	if !ok {
		return
	}
	var req bulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	drafts := make([]model.SubTaskDraft, 0, len(req.SubTasks))
	for _, st := range req.SubTasks {
		drafts = append(drafts, model.SubTaskDraft{
			Order:        st.Order,
			Name:         st.Name,
			ExpectedTime: st.ExpectedTime,
			Tag:          model.SubTaskTag(st.Tag),
		})
	}

	if err := h.subtasks.BulkCreate(c.Request.Context(), userID(c), pid, drafts, "manual"); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusCreated)
}

type bulkUpdateEntry struct {
	ID           int    `json:"id" binding:"required"`
	Order        int    `json:"order"`
	Name         string `json:"name" binding:"required"`
	ExpectedTime int    `json:"expected_time"`
	Tag          string `json:"tag" binding:"required"`
}

type bulkUpdateRequest struct {
	SubTasks []bulkUpdateEntry `json:"subtasks" binding:"required"`
}

func (h *SubTaskHandler) BulkUpdate(c *gin.Context) {
	pid, ok := projectID(c)
	if !ok {
		return
	}
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make([]service.BulkSubTaskUpdate, 0, len(req.SubTasks))
	for _, st := range req.SubTasks {
		updates = append(updates, service.BulkSubTaskUpdate{
			SubTaskID: st.ID,
			Draft: model.SubTaskDraft{
				Order:        st.Order,
				Name:         st.Name,
				ExpectedTime: st.ExpectedTime,
				Tag:          model.SubTaskTag(st.Tag),
			},
		})
	}

	if err := h.subtasks.BulkApplyUpdates(c.Request.Context(), userID(c), pid, updates); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubTaskHandler) Aggregates(c *gin.Context) {
	pid, ok := projectID(c)
	if !ok {
		return
	}
	agg, err := h.subtasks.Aggregates(c.Request.Context(), userID(c), pid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":             agg.Count,
		"done_count":        agg.DoneCount,
		"sum_expected_time": agg.SumExpectedTime,
	})
}
