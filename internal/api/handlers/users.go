package handlers

import (
	"log"
	"net/http"

	"freelance-marketplace/internal/api/middleware"
	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthHandler holds dependencies for account and session operations.
type AuthHandler struct {
	service   services.UserService
	validator *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: validate,
	}
}

// Register godoc
// @Summary      Register a new account
// @Description  Creates a client or freelancer account. Admin accounts cannot be self-registered.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user body      dto.RegisterRequest true  "Account details"
// @Success      201 {object}  dto.UserResponse "Account created"
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Failure      409 {object}  ErrorResponse "Email already registered"
// @Failure      500 {object}  ErrorResponse "Internal Server Error"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Register", err)
		return
	}
	c.JSON(http.StatusCreated, services.MapUserToResponse(user))
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for an access token and a refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body      dto.LoginRequest true  "Email and password"
// @Success      200 {object}  dto.TokenResponse "Logged in"
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Failure      401 {object}  ErrorResponse "Invalid credentials"
// @Failure      500 {object}  ErrorResponse "Internal Server Error"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Login", err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Refresh godoc
// @Summary      Refresh a session
// @Description  Consumes a refresh token and issues a new token pair. Each refresh token works once.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token body      dto.RefreshRequest true  "Refresh token"
// @Success      200 {object}  dto.TokenResponse "New tokens"
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Failure      401 {object}  ErrorResponse "Unknown or expired refresh token"
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Refresh", err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the current access token and deletes the given refresh token.
// @Tags         auth
// @Accept       json
// @Param        token body      dto.LogoutRequest false  "Refresh token to delete"
// @Success      204 "Logged out"
// @Failure      401 {object}  ErrorResponse "Unauthorized"
// @Router       /auth/logout [post]
// @Security     BearerAuth
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, err := middleware.GetClaimsFromContext(c)
	if err != nil {
		log.Printf("Logout: %v", err)
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized", Kind: services.KindAuthentication})
		return
	}

	var req dto.LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}
	req.AccessJTI = claims.ID
	if claims.ExpiresAt != nil {
		req.AccessExpiry = claims.ExpiresAt.Time
	}

	if err := h.service.Logout(c.Request.Context(), &req); err != nil {
		respondError(c, "Logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UserHandler holds dependencies for profile operations.
type UserHandler struct {
	service   services.UserService
	validator *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserService, validate *validator.Validate) *UserHandler {
	return &UserHandler{
		service:   service,
		validator: validate,
	}
}

// GetMyProfile godoc
// @Summary      Get the caller's profile
// @Tags         users
// @Produce      json
// @Success      200 {object}  dto.ProfileResponse
// @Failure      401 {object}  ErrorResponse "Unauthorized"
// @Failure      404 {object}  ErrorResponse "User Not Found"
// @Router       /users/profile [get]
// @Security     BearerAuth
func (h *UserHandler) GetMyProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	profile, err := h.service.GetProfile(c.Request.Context(), &dto.GetUserByIDRequest{ID: actor.ID})
	if err != nil {
		respondError(c, "GetMyProfile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary      Update the caller's profile
// @Description  Updates name, bio and skills. Omitted fields are left unchanged.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        profile body      dto.UpdateProfileRequest true  "Profile fields"
// @Success      200 {object}  dto.UserResponse
// @Failure      400 {object}  ErrorResponse "Invalid input"
// @Failure      401 {object}  ErrorResponse "Unauthorized"
// @Router       /users/profile [put]
// @Security     BearerAuth
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}
	req.Actor = actor

	user, err := h.service.UpdateProfile(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "UpdateProfile", err)
		return
	}
	c.JSON(http.StatusOK, services.MapUserToResponse(user))
}

// GetProfile godoc
// @Summary      Get a public profile
// @Description  Returns a user with their received reviews and average rating.
// @Tags         users
// @Produce      json
// @Param        id path      string true  "User ID" Format(uuid)
// @Success      200 {object}  dto.ProfileResponse
// @Failure      400 {object}  ErrorResponse "Invalid ID format"
// @Failure      404 {object}  ErrorResponse "User Not Found"
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := uuidParam(c, "id", "user")
	if !ok {
		return
	}
	profile, err := h.service.GetProfile(c.Request.Context(), &dto.GetUserByIDRequest{ID: userID})
	if err != nil {
		respondError(c, "GetProfile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
