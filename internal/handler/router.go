package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aicte-approval-api/internal/middleware"
	"github.com/noah-isme/aicte-approval-api/internal/models"
)

// RouterDependencies collects the handlers mounted by RegisterRoutes.
type RouterDependencies struct {
	Tokens       middleware.TokenValidator
	Applications *ApplicationHandler
	Assignments  *AssignmentHandler
	Documents    *DocumentHandler
	Dashboard    *DashboardHandler
	Metrics      *MetricsHandler
}

// RegisterRoutes mounts the operational endpoints at the root and the
// workflow API under /api/v1.
func RegisterRoutes(r *gin.Engine, deps RouterDependencies) {
	r.GET("/health", deps.Metrics.Health)
	r.GET("/ready", deps.Metrics.Ready)
	r.GET("/metrics", deps.Metrics.Prometheus)

	var (
		admin       = middleware.RequireRoles(models.RoleAdmin)
		applicants  = middleware.RequireRoles(models.RoleInstitution, models.RoleAdmin)
		reviewers   = middleware.RequireRoles(models.RoleAdmin, models.RoleEvaluator)
		anyoneKnown = middleware.RequireRoles(models.RoleAdmin, models.RoleInstitution, models.RoleEvaluator)
	)

	api := r.Group("/api/v1", middleware.JWT(deps.Tokens), anyoneKnown)

	apps := api.Group("/applications")
	apps.POST("", applicants, deps.Applications.Create)
	apps.GET("", deps.Applications.List)
	apps.GET("/:id", deps.Applications.Get)
	apps.GET("/:id/history", deps.Applications.History)
	apps.POST("/:id/submit", applicants, deps.Applications.Submit)
	apps.POST("/:id/advance", admin, deps.Applications.Advance)
	apps.POST("/:id/status", admin, deps.Applications.SetStatus)
	apps.POST("/:id/stages/advance", admin, deps.Applications.AdvanceStage)
	apps.POST("/:id/assignments", admin, deps.Assignments.Assign)
	apps.GET("/:id/documents/progress", deps.Documents.Progress)

	api.POST("/documents/:id/review", reviewers, deps.Documents.Review)

	api.GET("/assignments", reviewers, deps.Assignments.List)
	api.POST("/assignments/:id/evaluations", reviewers, deps.Assignments.RecordEvaluation)

	api.GET("/dashboard", deps.Dashboard.Stats)
	api.GET("/tracker", deps.Dashboard.Tracker)
	api.GET("/tracker/export", deps.Dashboard.Export)
}
