package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"freelance-marketplace/internal/models"
	"freelance-marketplace/internal/storage"
	"freelance-marketplace/internal/transport/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig controls token signing and lifetimes.
type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type userService struct {
	store    storage.Store
	sessions SessionStore
	tokens   TokenConfig
	now      func() time.Time
}

// NewUserService creates a new instance of UserService.
func NewUserService(store storage.Store, sessions SessionStore, tokens TokenConfig) UserService {
	return &userService{
		store:    store,
		sessions: sessions,
		tokens:   tokens,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	if req.Role != models.RoleClient && req.Role != models.RoleFreelancer {
		return nil, fmt.Errorf("%w: role must be client or freelancer", ErrValidation)
	}
	if blank(req.Name) || blank(req.Email) || len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: name, email and a password of at least 8 characters are required", ErrValidation)
	}
	return s.createUser(ctx, req.Name, req.Email, req.Password, req.Role, false)
}

func (s *userService) createUser(ctx context.Context, name, email, password string, role models.UserRole, verified bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("UserService: Error hashing password: %v", err)
		return nil, fmt.Errorf("internal error hashing password: %w", err)
	}

	user, err := s.store.Users().Create(ctx, &models.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		Role:         role,
		Verified:     verified,
		Skills:       []string{},
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		log.Printf("UserService: Error creating user: %v", err)
		return nil, fmt.Errorf("internal error creating user: %w", err)
	}
	log.Printf("UserService: Registered %s account %s", user.Role, user.ID)
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator when no account uses the email yet.
func (s *userService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if blank(email) || blank(password) {
		return nil
	}
	_, err := s.store.Users().GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return mapRepoError(err, "looking up bootstrap admin")
	}
	_, err = s.createUser(ctx, name, email, password, models.RoleAdmin, true)
	return err
}

func (s *userService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.store.Users().GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("Login attempt failed for email %s: user not found", req.Email)
			return nil, ErrInvalidCredentials
		}
		log.Printf("Error fetching user by email %s during login: %v", req.Email, err)
		return nil, fmt.Errorf("internal error during login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Printf("Login attempt failed for email %s: invalid password", req.Email)
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.tokens.AccessTTL)
	claims := &AccessClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    s.tokens.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(s.tokens.Secret))
	if err != nil {
		log.Printf("Error generating JWT token for user %s: %v", user.Email, err)
		return nil, fmt.Errorf("failed to generate login token: %w", err)
	}

	refreshToken := uuid.NewString()
	if err := s.sessions.SaveRefresh(ctx, refreshToken, user.ID, s.tokens.RefreshTTL); err != nil {
		log.Printf("Error storing refresh token for user %s: %v", user.ID, err)
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         MapUserToResponse(user),
	}, nil
}

// Refresh rotates the refresh token: the presented one is consumed.
func (s *userService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	userID, err := s.sessions.ConsumeRefresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: refresh token is invalid or expired", ErrUnauthorized)
		}
		return nil, fmt.Errorf("internal error reading session: %w", err)
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", ErrUnauthorized)
		}
		return nil, mapRepoError(err, "loading user for refresh")
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	if req.RefreshToken != "" {
		if err := s.sessions.DeleteRefresh(ctx, req.RefreshToken); err != nil {
			return fmt.Errorf("internal error deleting session: %w", err)
		}
	}
	if req.AccessJTI != "" {
		ttl := req.AccessExpiry.Sub(s.now())
		if ttl > 0 {
			if err := s.sessions.RevokeAccess(ctx, req.AccessJTI, ttl); err != nil {
				return fmt.Errorf("internal error revoking token: %w", err)
			}
		}
	}
	log.Printf("UserService: Session closed (jti %s)", req.AccessJTI)
	return nil
}

// Authenticate validates an access token and resolves the caller from the user store,
// so role and verification changes apply to tokens already issued.
func (s *userService) Authenticate(ctx context.Context, tokenString string) (*AccessClaims, models.Actor, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.tokens.Secret), nil
	}, jwt.WithIssuer(s.tokens.Issuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, models.Actor{}, fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}

	revoked, err := s.sessions.IsAccessRevoked(ctx, claims.ID)
	if err != nil {
		log.Printf("Authenticate: Error checking revocation for %s: %v", claims.ID, err)
		return nil, models.Actor{}, fmt.Errorf("internal error checking session: %w", err)
	}
	if revoked {
		return nil, models.Actor{}, fmt.Errorf("%w: token has been revoked", ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, models.Actor{}, fmt.Errorf("%w: malformed subject", ErrUnauthorized)
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, models.Actor{}, fmt.Errorf("%w: account no longer exists", ErrUnauthorized)
		}
		return nil, models.Actor{}, mapRepoError(err, "resolving token subject")
	}
	return claims, user.Actor(), nil
}

func (s *userService) GetByID(ctx context.Context, req *dto.GetUserByIDRequest) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, req.ID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching user %s", req.ID))
	}
	return user, nil
}

// GetProfile returns the user with their reviews. A failing review lookup degrades
// to an empty list flagged as unavailable.
func (s *userService) GetProfile(ctx context.Context, req *dto.GetUserByIDRequest) (*dto.ProfileResponse, error) {
	user, err := s.GetByID(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProfileResponse{User: MapUserToResponse(user), Reviews: []dto.ReviewResponse{}}
	reviews, err := s.store.Reviews().ListByReviewee(ctx, user.ID)
	if err != nil {
		log.Printf("GetProfile: Reviews unavailable for user %s: %v", user.ID, err)
		resp.ReviewsUnavailable = true
		return resp, nil
	}
	for i := range reviews {
		resp.Reviews = append(resp.Reviews, MapReviewToResponse(&reviews[i]))
	}
	resp.AverageRating = averageRating(reviews)
	return resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, req.Actor.ID)
	if err != nil {
		return nil, mapRepoError(err, "fetching profile")
	}
	if req.Name != nil {
		if blank(*req.Name) {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.Skills != nil {
		skills := make([]string, 0, len(req.Skills))
		for _, sk := range req.Skills {
			if sk = strings.TrimSpace(sk); sk != "" {
				skills = append(skills, sk)
			}
		}
		user.Skills = skills
	}
	updated, err := s.store.Users().Update(ctx, user)
	if err != nil {
		return nil, mapRepoError(err, "updating profile")
	}
	return updated, nil
}
