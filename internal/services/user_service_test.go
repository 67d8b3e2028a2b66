package services_test

import (
	"testing"
	"time"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/session"
	"freelance-marketplace/internal/transport/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(e *env) services.UserService {
	return services.NewUserService(e.store, session.NewMemoryStore(), services.TokenConfig{
		Secret:     "test-secret",
		Issuer:     "freelance-marketplace-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	svc := newUserService(e)

	user, err := svc.Register(e.ctx, &dto.RegisterRequest{Name: "Frank", Email: "  Frank@Example.com ", Password: "password123", Role: models.RoleFreelancer})
	require.NoError(t, err)
	assert.Equal(t, "frank@example.com", user.Email)
	assert.False(t, user.Verified)
	assert.NotEqual(t, "password123", user.PasswordHash)

	_, err = svc.Register(e.ctx, &dto.RegisterRequest{Name: "Frank 2", Email: "FRANK@example.com", Password: "password123", Role: models.RoleClient})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = svc.Register(e.ctx, &dto.RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "password123", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, services.ErrValidation, "admin is not self-service")

	_, err = svc.Login(e.ctx, &dto.LoginRequest{Email: "frank@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Login(e.ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	tokens, err := svc.Login(e.ctx, &dto.LoginRequest{Email: "FRANK@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, user.ID, tokens.User.ID)

	claims, actor, err := svc.Authenticate(e.ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, models.RoleFreelancer, actor.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	e := newEnv(t)
	svc := newUserService(e)

	_, _, err := svc.Authenticate(e.ctx, "not-a-jwt")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	other := services.NewUserService(e.store, session.NewMemoryStore(), services.TokenConfig{
		Secret: "another-secret", Issuer: "freelance-marketplace-test", AccessTTL: time.Minute, RefreshTTL: time.Hour,
	})
	_, err = other.Register(e.ctx, &dto.RegisterRequest{Name: "Cara", Email: "cara@example.com", Password: "password123", Role: models.RoleClient})
	require.NoError(t, err)
	foreign, err := other.Login(e.ctx, &dto.LoginRequest{Email: "cara@example.com", Password: "password123"})
	require.NoError(t, err)

	_, _, err = svc.Authenticate(e.ctx, foreign.AccessToken)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestAuthenticate_ReflectsVerification(t *testing.T) {
	e := newEnv(t)
	svc := newUserService(e)
	admin := e.user(t, "root", models.RoleAdmin, true)

	user, err := svc.Register(e.ctx, &dto.RegisterRequest{Name: "Carol", Email: "carol@example.com", Password: "password123", Role: models.RoleClient})
	require.NoError(t, err)
	tokens, err := svc.Login(e.ctx, &dto.LoginRequest{Email: "carol@example.com", Password: "password123"})
	require.NoError(t, err)

	_, actor, err := svc.Authenticate(e.ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.False(t, actor.Verified)

	_, err = e.admin.VerifyUser(e.ctx, &dto.VerifyUserRequest{Actor: admin, UserID: user.ID})
	require.NoError(t, err)

	_, actor, err = svc.Authenticate(e.ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.True(t, actor.Verified)
}

func TestRefreshAndLogout(t *testing.T) {
	e := newEnv(t)
	svc := newUserService(e)
	_, err := svc.Register(e.ctx, &dto.RegisterRequest{Name: "Carol", Email: "carol@example.com", Password: "password123", Role: models.RoleClient})
	require.NoError(t, err)
	tokens, err := svc.Login(e.ctx, &dto.LoginRequest{Email: "carol@example.com", Password: "password123"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(e.ctx, &dto.RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	_, err = svc.Refresh(e.ctx, &dto.RefreshRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, services.ErrUnauthorized, "refresh tokens are single use")

	claims, _, err := svc.Authenticate(e.ctx, rotated.AccessToken)
	require.NoError(t, err)

	err = svc.Logout(e.ctx, &dto.LogoutRequest{RefreshToken: rotated.RefreshToken, AccessJTI: claims.ID, AccessExpiry: claims.ExpiresAt.Time})
	require.NoError(t, err)

	_, _, err = svc.Authenticate(e.ctx, rotated.AccessToken)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	_, err = svc.Refresh(e.ctx, &dto.RefreshRequest{RefreshToken: rotated.RefreshToken})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestEnsureAdmin(t *testing.T) {
	e := newEnv(t)
	svc := newUserService(e)

	require.NoError(t, svc.EnsureAdmin(e.ctx, "Root", "root@example.com", "admin-password"))
	require.NoError(t, svc.EnsureAdmin(e.ctx, "Root", "ROOT@example.com", "admin-password"))

	tokens, err := svc.Login(e.ctx, &dto.LoginRequest{Email: "root@example.com", Password: "admin-password"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, tokens.User.Role)
	assert.True(t, tokens.User.Verified)

	assert.NoError(t, svc.EnsureAdmin(e.ctx, "", "", ""), "no bootstrap admin configured")
}

func TestProfile(t *testing.T) {
	e := newEnv(t)
	svc := newUserService(e)
	client := e.user(t, "carol", models.RoleClient, true)
	freelancer := e.user(t, "frank", models.RoleFreelancer, true)
	job := e.completed(t, client, freelancer, 100)
	_, err := e.reviews.AddReview(e.ctx, &dto.AddReviewRequest{Actor: client, JobID: job.ID, RevieweeID: freelancer.ID, Rating: 4})
	require.NoError(t, err)

	bio := "Go developer"
	updated, err := svc.UpdateProfile(e.ctx, &dto.UpdateProfileRequest{Actor: freelancer, Bio: &bio, Skills: []string{" go ", "", "sql"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, updated.Skills)

	profile, err := svc.GetProfile(e.ctx, &dto.GetUserByIDRequest{ID: freelancer.ID})
	require.NoError(t, err)
	assert.Equal(t, "Go developer", profile.User.Bio)
	assert.Len(t, profile.Reviews, 1)
	assert.Equal(t, 4.0, profile.AverageRating)
	assert.False(t, profile.ReviewsUnavailable)
}
