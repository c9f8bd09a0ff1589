package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gkhcrm/gkhcrm/internal/domain"
	"github.com/gkhcrm/gkhcrm/internal/security"
	"golang.org/x/crypto/bcrypt"
)

// ErrAdminOnly is returned when a non-administrator tries to log in to the
// admin panel.
var ErrAdminOnly = errors.New("access denied: admin only")

// LoginResult carries a signed admin session token and its owner.
type LoginResult struct {
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int64        `json:"expiresIn"`
	User        *domain.User `json:"user"`
}

// AuthService handles admin panel authentication
type AuthService struct {
	userRepo   domain.UserRepository
	jwtManager *security.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo domain.UserRepository, jwtManager *security.JWTManager) *AuthService {
	return &AuthService{userRepo: userRepo, jwtManager: jwtManager}
}

// Login authenticates an administrator and returns an access token.
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	if user.Role != domain.RoleAdmin {
		return nil, ErrAdminOnly
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresIn:   s.jwtManager.AccessTokenTTL(),
		User:        user,
	}, nil
}
