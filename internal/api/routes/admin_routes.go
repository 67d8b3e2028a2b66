package routes

import (
	"freelance-marketplace/internal/api/handlers"
	"freelance-marketplace/internal/api/middleware"
	"freelance-marketplace/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes registers the admin console. Non-admins are turned away before the handlers run.
func RegisterAdminRoutes(rg *gin.RouterGroup, adminHandler handlers.AdminHandlerInterface, authMiddleware gin.HandlerFunc) {
	admin := rg.Group("/admin")
	admin.Use(authMiddleware, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/jobs", adminHandler.ListJobs)
		admin.GET("/payments", adminHandler.ListPayments)
		admin.GET("/inbox", adminHandler.Inbox)
		admin.PUT("/verify/:userId", adminHandler.VerifyUser)
		admin.PUT("/payments/:id", adminHandler.SetPaymentStatus)
		admin.PUT("/jobs/:id/cancel", adminHandler.CancelJob)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
		admin.DELETE("/jobs/:id", adminHandler.DeleteJob)
	}
}
