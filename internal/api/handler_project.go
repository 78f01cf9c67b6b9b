package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/service"
)

const dateLayout = "2006-01-02"

type ProjectHandler struct {
	projects *service.ProjectService
	logger   *zap.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

func projectID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return 0, false
	}
	return id, true
}

type createProjectRequest struct {
	TagName     string `json:"tag_name" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Requirement string `json:"requirement"`
	Deadline    string `json:"deadline" binding:"required"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deadline, err := time.Parse(dateLayout, req.Deadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deadline must be YYYY-MM-DD"})
		return
	}

	id, err := h.projects.Create(c.Request.Context(), userID(c), service.CreateProjectInput{
		TagName:     req.TagName,
		Name:        req.Name,
		Description: req.Description,
		Requirement: req.Requirement,
		Deadline:    deadline,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type updateProjectRequest struct {
	TagName     *string `json:"tag_name"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Requirement *string `json:"requirement"`
	Deadline    *string `json:"deadline"`
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.UpdateProjectInput{
		TagName:     req.TagName,
		Name:        req.Name,
		Description: req.Description,
		Requirement: req.Requirement,
	}
	if req.Deadline != nil {
		deadline, err := time.Parse(dateLayout, *req.Deadline)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "deadline must be YYYY-MM-DD"})
			return
		}
		in.Deadline = &deadline
	}

	if err := h.projects.Update(c.Request.Context(), userID(c), id, in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List handles the project index, with optional ?tags=1,2&sort=deadline
// filtering.
func (h *ProjectHandler) List(c *gin.Context) {
	uid := userID(c)

	tagsParam := c.Query("tags")
	sortBy := c.Query("sort")
	if tagsParam == "" && sortBy == "" {
		projects, err := h.projects.List(c.Request.Context(), uid)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": projects})
		return
	}

	var tagIDs []int
	if tagsParam != "" {
		for _, raw := range strings.Split(tagsParam, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag id in tags filter"})
				return
			}
			tagIDs = append(tagIDs, id)
		}
	}

	projects, err := h.projects.ListFiltered(c.Request.Context(), uid, tagIDs, sortBy)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) ListCompleted(c *gin.Context) {
	projects, err := h.projects.ListCompleted(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) Recent(c *gin.Context) {
	p, err := h.projects.Recent(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) RefreshExpectedTime(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	minutes, err := h.projects.RefreshExpectedTime(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expected_time": minutes})
}

func (h *ProjectHandler) RefreshProgressRate(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	rate, err := h.projects.RefreshProgressRate(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress_rate": rate})
}

type completeProjectRequest struct {
	Level string `json:"level"`
}

func (h *ProjectHandler) Complete(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	var req completeProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coin, err := h.projects.CompleteAndReward(c.Request.Context(), userID(c), id, req.Level)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coin": coin})
}

func (h *ProjectHandler) PredictLevel(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	level, err := h.projects.PredictLevel(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"level": level})
}

func (h *ProjectHandler) GenerateSubTasks(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	drafts, err := h.projects.GenerateSubTasks(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtasks": drafts})
}

func (h *ProjectHandler) GenerateAndSaveSubTasks(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	drafts, err := h.projects.GenerateAndSaveSubTasks(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subtasks": drafts})
}
