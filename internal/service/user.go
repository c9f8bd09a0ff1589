package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gkhcrm/gkhcrm/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles user registration and lookup
type UserService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetOrCreate returns the user registered under the given Telegram identity,
// creating it on first contact. The operation is the idempotency point of the
// whole registration flow: calling it twice with the same telegramID yields
// the same user.
func (s *UserService) GetOrCreate(ctx context.Context, telegramID, name string) (*domain.User, error) {
	if telegramID == "" {
		return nil, errors.New("telegramId is required")
	}

	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if name == "" {
		short := telegramID
		if len(short) > 5 {
			short = short[:5]
		}
		name = "User_" + short
	}

	// Telegram users never log in with a password; the initial credential is
	// a hash of the Telegram identity, replaceable from the admin panel.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(telegramID), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	tgID := telegramID
	user = &domain.User{
		ID:           uuid.New(),
		TelegramID:   &tgID,
		Name:         name,
		Email:        telegramID + "@telegram.ru",
		Role:         domain.RoleUser,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
