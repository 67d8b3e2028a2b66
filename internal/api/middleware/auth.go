package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	authorizationHeader = "Authorization"
	accessTokenQuery    = "access_token" // Browsers cannot set headers on websocket upgrades
	actorCtx            = "actor"
	claimsCtx           = "claims"
)

// Authenticator resolves an access token to the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.AccessClaims, models.Actor, error)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "kind": services.KindAuthentication})
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader(authorizationHeader)
	if authHeader == "" {
		if token := c.Query(accessTokenQuery); token != "" {
			return token, true
		}
		log.Println("Auth middleware: Authorization header missing")
		abortUnauthorized(c, "Authorization header required")
		return "", false
	}
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
		log.Println("Auth middleware: Invalid Authorization header format")
		abortUnauthorized(c, "Invalid Authorization header format")
		return "", false
	}
	return headerParts[1], true
}

// JWTAuthMiddleware authenticates the request and stores the Actor and token claims in the context.
func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, actor, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if services.Kind(err) == services.KindAuthentication {
				log.Printf("Auth middleware: Rejected token: %v", err)
				abortUnauthorized(c, "Invalid or expired token")
				return
			}
			log.Printf("Auth middleware: Error authenticating token: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate", "kind": services.KindInternal})
			return
		}

		c.Set(actorCtx, actor)
		c.Set(claimsCtx, claims)
		c.Next()
	}
}

// OptionalAuth authenticates the request when it carries a bearer token and lets
// anonymous requests through. A token that is present but invalid is rejected.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	authenticate := JWTAuthMiddleware(auth)
	return func(c *gin.Context) {
		if c.GetHeader(authorizationHeader) == "" && c.Query(accessTokenQuery) == "" {
			c.Next()
			return
		}
		authenticate(c)
	}
}

// RequireRole rejects callers whose role is not listed. Use after JWTAuthMiddleware.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := GetActorFromContext(c)
		if err != nil {
			abortUnauthorized(c, "Unauthorized")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		log.Printf("RequireRole: User %s with role %s denied %s %s", actor.ID, actor.Role, c.Request.Method, c.FullPath())
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role", "kind": services.KindAuthorization})
	}
}

// GetActorFromContext returns the authenticated caller.
func GetActorFromContext(c *gin.Context) (models.Actor, error) {
	v, exists := c.Get(actorCtx)
	if !exists {
		return models.Actor{}, errors.New("actor not found in context")
	}
	actor, ok := v.(models.Actor)
	if !ok {
		return models.Actor{}, errors.New("actor in context is of invalid type")
	}
	return actor, nil
}

func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	actor, err := GetActorFromContext(c)
	if err != nil {
		return uuid.Nil, err
	}
	return actor.ID, nil
}

// GetClaimsFromContext returns the claims of the access token used for the request.
func GetClaimsFromContext(c *gin.Context) (*services.AccessClaims, error) {
	v, exists := c.Get(claimsCtx)
	if !exists {
		return nil, errors.New("claims not found in context")
	}
	claims, ok := v.(*services.AccessClaims)
	if !ok || claims == nil {
		return nil, errors.New("claims in context are of invalid type")
	}
	return claims, nil
}

// SetActor stores an actor in the context. Used by tests that bypass token parsing.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorCtx, actor)
}
