package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	UserTag *UserTagHandler
	Tag     *TagHandler
	Project *ProjectHandler
	SubTask *SubTaskHandler
}

// NewRouter wires the HTTP surface. Everything under the authed group
// requires a bearer token.
func NewRouter(h Handlers, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)

	authed := r.Group("/", AuthMiddleware(jwtSecret))

	users := authed.Group("/users/me")
	{
		users.GET("", h.User.Info)
		users.DELETE("", h.User.Delete)
		users.GET("/coin", h.User.Coin)
		users.POST("/onboarding", h.User.Onboarding)
		users.PATCH("/detail-preference", h.User.UpdateDetailPreference)
		users.PATCH("/work-pace", h.User.UpdateWorkPace)
		users.PATCH("/password", h.Auth.ChangePassword)
		users.GET("/tag-rates", h.UserTag.Rates)
		users.GET("/items", h.User.StoreItems)
		users.POST("/items/draw", h.User.DrawItem)
		users.GET("/items/equipped", h.User.LatestEquipped)
	}

	tags := authed.Group("/project-tags")
	{
		tags.POST("", h.Tag.Create)
		tags.GET("", h.Tag.List)
		tags.DELETE("/:tagId", h.Tag.Delete)
	}

	projects := authed.Group("/projects")
	{
		projects.POST("", h.Project.Create)
		projects.GET("", h.Project.List)
		projects.GET("/completed", h.Project.ListCompleted)
		projects.GET("/recent", h.Project.Recent)
		projects.GET("/:projectId", h.Project.Get)
		projects.PATCH("/:projectId", h.Project.Update)
		projects.DELETE("/:projectId", h.Project.Delete)
		projects.POST("/:projectId/expected-time", h.Project.RefreshExpectedTime)
		projects.POST("/:projectId/progress", h.Project.RefreshProgressRate)
		projects.POST("/:projectId/complete", h.Project.Complete)
		projects.POST("/:projectId/level", h.Project.PredictLevel)
		projects.POST("/:projectId/subtasks/generate", h.Project.GenerateSubTasks)
		projects.POST("/:projectId/subtasks/generate-save", h.Project.GenerateAndSaveSubTasks)

		projects.POST("/:projectId/subtasks", h.SubTask.Add)
		projects.GET("/:projectId/subtasks", h.SubTask.List)
		projects.POST("/:projectId/subtasks/bulk", h.SubTask.BulkCreate)
		projects.PATCH("/:projectId/subtasks/bulk", h.SubTask.BulkUpdate)
		projects.GET("/:projectId/subtasks/aggregates", h.SubTask.Aggregates)
	}

	subtasks := authed.Group("/subtasks")
	{
		subtasks.PATCH("/:subTaskId", h.SubTask.Update)
		subtasks.DELETE("/:subTaskId", h.SubTask.Delete)
		subtasks.POST("/:subTaskId/done", h.SubTask.MarkDone)
		subtasks.POST("/:subTaskId/undone", h.SubTask.MarkUndone)
		subtasks.POST("/:subTaskId/actual-time", h.SubTask.RecordActualTime)
	}

	return r
}
