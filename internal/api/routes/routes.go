package routes

import (
	"context"
	"log"
	"net/http"

	"freelance-marketplace/internal/api/docs"
	"freelance-marketplace/internal/api/handlers"
	"freelance-marketplace/internal/api/middleware"
	"freelance-marketplace/internal/app"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up the API routes by calling resource-specific registration functions
func RegisterRoutes(router *gin.Engine, app *app.Application) {
	apiV1 := router.Group("/api/v1")

	svc := app.Services
	v := app.Validator

	var streamer handlers.MessageStreamer
	if app.Streamer != nil {
		streamer = app.Streamer
	}

	authHandler := handlers.NewAuthHandler(svc.Users, v)
	userHandler := handlers.NewUserHandler(svc.Users, v)
	jobHandler := handlers.NewJobHandler(svc.Jobs, v)
	proposalHandler := handlers.NewProposalHandler(svc.Proposals, v)
	escrowHandler := handlers.NewEscrowHandler(svc.Escrow, v)
	reviewHandler := handlers.NewReviewHandler(svc.Reviews, v)
	messageHandler := handlers.NewMessageHandler(svc.Messages, streamer, v)
	contactHandler := handlers.NewContactHandler(svc.Contacts, v)
	adminHandler := handlers.NewAdminHandler(svc.Admin, svc.Jobs, svc.Escrow, svc.Messages, v)

	authMiddleware := middleware.JWTAuthMiddleware(svc.Users)

	RegisterAuthRoutes(apiV1, authHandler, authMiddleware)
	RegisterUserRoutes(apiV1, userHandler, reviewHandler, authMiddleware)
	RegisterJobRoutes(apiV1, jobHandler, proposalHandler, escrowHandler, authMiddleware)
	RegisterMessageRoutes(apiV1, messageHandler, authMiddleware)
	RegisterContactRoutes(apiV1, contactHandler, middleware.OptionalAuth(svc.Users), authMiddleware)
	RegisterAdminRoutes(apiV1, adminHandler, authMiddleware)

	router.GET("/health", handlers.NewHealthHandler(healthChecks(app)).HealthCheck)

	log.Println("Configuring Swagger UI handler")
	router.GET("/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", docs.Raw())
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/openapi.yaml")))
}

func healthChecks(app *app.Application) map[string]handlers.HealthCheckFunc {
	checks := map[string]handlers.HealthCheckFunc{}
	if app.DBPool != nil {
		checks["database"] = app.DBPool.Ping
	}
	if app.RedisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return app.RedisClient.Ping(ctx).Err()
		}
	}
	return checks
}
