package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"freelance-marketplace/internal/api/middleware"
	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*services.AccessClaims, models.Actor, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Get(1).(models.Actor), args.Error(2)
	}
	return args.Get(0).(*services.AccessClaims), args.Get(1).(models.Actor), args.Error(2)
}

var _ middleware.Authenticator = (*MockAuthenticator)(nil)

func setupRouter(auth middleware.Authenticator, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{middleware.JWTAuthMiddleware(auth)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, err := middleware.GetActorFromContext(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		claims, _ := middleware.GetClaimsFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "jti": claims.ID})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestJWTAuthMiddleware(t *testing.T) {
	actor := models.Actor{ID: uuid.New(), Role: models.RoleClient, Verified: true}
	claims := &services.AccessClaims{Role: actor.Role, RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1", Subject: actor.ID.String()}}

	tests := []struct {
		name       string
		header     string
		query      string
		setup      func(m *MockAuthenticator)
		wantStatus int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", header: "Token abc", wantStatus: http.StatusUnauthorized},
		{
			name:   "valid token",
			header: "Bearer good",
			setup: func(m *MockAuthenticator) {
				m.On("Authenticate", mock.Anything, "good").Return(claims, actor, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "query token for websocket clients",
			query: "?access_token=good",
			setup: func(m *MockAuthenticator) {
				m.On("Authenticate", mock.Anything, "good").Return(claims, actor, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "rejected token",
			header: "Bearer bad",
			setup: func(m *MockAuthenticator) {
				m.On("Authenticate", mock.Anything, "bad").Return(nil, models.Actor{}, fmt.Errorf("%w: expired", services.ErrUnauthorized))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "session store failure",
			header: "Bearer good",
			setup: func(m *MockAuthenticator) {
				m.On("Authenticate", mock.Anything, "good").Return(nil, models.Actor{}, fmt.Errorf("redis down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(MockAuthenticator)
			if tt.setup != nil {
				tt.setup(auth)
			}
			router := setupRouter(auth)

			req := httptest.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), actor.ID.String())
				assert.Contains(t, w.Body.String(), "jti-1")
			}
			auth.AssertExpectations(t)
		})
	}
}

func TestRequireRole(t *testing.T) {
	admin := models.Actor{ID: uuid.New(), Role: models.RoleAdmin, Verified: true}
	client := models.Actor{ID: uuid.New(), Role: models.RoleClient, Verified: true}
	claims := &services.AccessClaims{}

	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, "admin").Return(claims, admin, nil)
	auth.On("Authenticate", mock.Anything, "client").Return(claims, client, nil)
	router := setupRouter(auth, middleware.RequireRole(models.RoleAdmin))

	for token, want := range map[string]int{"admin": http.StatusOK, "client": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, token)
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestOptionalAuth(t *testing.T) {
	actor := models.Actor{ID: uuid.New(), Role: models.RoleFreelancer}
	claims := &services.AccessClaims{Role: actor.Role, RegisteredClaims: jwt.RegisteredClaims{ID: "jti-2", Subject: actor.ID.String()}}
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, "good").Return(claims, actor, nil)
	auth.On("Authenticate", mock.Anything, "bad").Return(nil, models.Actor{}, fmt.Errorf("%w: bad", services.ErrUnauthorized))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/public", middleware.OptionalAuth(auth), func(c *gin.Context) {
		if a, err := middleware.GetActorFromContext(c); err == nil {
			c.String(http.StatusOK, a.ID.String())
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := serve("")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = serve("Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, actor.ID.String(), w.Body.String())

	w = serve("Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
