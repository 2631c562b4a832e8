package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/MICA1991/financelitracy-quiz/internal/app/controllers"
	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
	"github.com/MICA1991/financelitracy-quiz/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	healthController *controllers.HealthController,
	reportController *controllers.ReportController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// Health check endpoint (public)
	v1.GET("/health", healthController.Health)

	// --- Admin reporting, read only ---
	admin := v1.Group("/admin")
	admin.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/dashboard", reportController.GetDashboard)

		stats := admin.Group("/stats")
		{
			stats.GET("/levels", reportController.GetLevelStats)
			stats.GET("/questions", reportController.GetQuestionStats)
		}

		sessions := admin.Group("/sessions")
		{
			sessions.GET("", reportController.ListSessions)
			sessions.GET("/:id", reportController.GetSessionDetail)
		}

		students := admin.Group("/students")
		{
			students.GET("", reportController.ListStudents)
			students.GET("/:id", reportController.GetStudentReport)
		}

		admin.GET("/export/sessions", reportController.ExportSessions)
	}
}
