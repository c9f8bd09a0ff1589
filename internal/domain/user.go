package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Role defines what a user is allowed to do.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents an end user of the ticketing system. Telegram users are
// registered lazily the first time the bot sees them; web users may have no
// Telegram identity at all.
type User struct {
	ID           uuid.UUID `json:"id"`
	TelegramID   *string   `json:"telegramId,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserUpsert is the payload of POST /api/users. The operation is idempotent:
// repeated calls with the same telegramId return the same user.
type UserUpsert struct {
	TelegramID string `json:"telegramId" validate:"required,max=64"`
	Name       string `json:"name" validate:"max=255"`
}

// UserLogin represents admin panel login credentials
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
