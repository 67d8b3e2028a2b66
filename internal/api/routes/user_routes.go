package routes

import (
	"freelance-marketplace/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers account and session routes. Only logout needs a token.
func RegisterAuthRoutes(rg *gin.RouterGroup, authHandler handlers.AuthHandlerInterface, authMiddleware gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authMiddleware, authHandler.Logout)
	}
}

// RegisterUserRoutes registers profile and review routes.
func RegisterUserRoutes(
	rg *gin.RouterGroup,
	userHandler handlers.UserHandlerInterface,
	reviewHandler handlers.ReviewHandlerInterface,
	authMiddleware gin.HandlerFunc,
) {
	users := rg.Group("/users")
	users.Use(authMiddleware)
	{
		users.GET("/profile", userHandler.GetMyProfile)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.GET("/:id", userHandler.GetProfile)
	}

	reviews := rg.Group("/reviews")
	reviews.Use(authMiddleware)
	{
		reviews.POST("", reviewHandler.AddReview)
		reviews.GET("/:userId", reviewHandler.ListReviews)
	}
}
