package routes

import (
	"freelance-marketplace/internal/api/handlers"
	"freelance-marketplace/internal/api/middleware"
	"freelance-marketplace/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterContactRoutes registers the contact form. Submitting is public; a token,
// when sent, links the message to the account.
func RegisterContactRoutes(rg *gin.RouterGroup, contactHandler handlers.ContactHandlerInterface, optionalAuth, authMiddleware gin.HandlerFunc) {
	contact := rg.Group("/contact")
	contact.POST("", optionalAuth, contactHandler.SubmitContact)
	contact.GET("/my-messages", authMiddleware, contactHandler.ListMyContacts)

	admin := contact.Group("")
	admin.Use(authMiddleware, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/admin", contactHandler.ListContacts)
		admin.PUT("/:id/respond", contactHandler.RespondContact)
	}
}
