package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

// Repository port untuk persistence user
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByEmail returns ErrNotFound when no account uses the address.
	GetByEmail(ctx context.Context, email string) (*User, error)
}
