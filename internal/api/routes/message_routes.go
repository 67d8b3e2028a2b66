package routes

import (
	"freelance-marketplace/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes registers messaging routes. The stream endpoint accepts the
// token as ?access_token= since browsers cannot set headers on websocket upgrades.
func RegisterMessageRoutes(rg *gin.RouterGroup, messageHandler handlers.MessageHandlerInterface, authMiddleware gin.HandlerFunc) {
	messages := rg.Group("/messages")
	messages.Use(authMiddleware)
	{
		messages.POST("", messageHandler.SendJobMessage)
		messages.POST("/direct", messageHandler.SendDirectMessage)
		messages.GET("/inbox", messageHandler.Inbox)
		messages.GET("/direct/:userId", messageHandler.DirectConversation)
		messages.GET("/job/:jobId/:userId", messageHandler.JobConversation)
		messages.GET("/stream", messageHandler.Stream)
	}
}
