package auth

import (
	"context"
	"errors"
)

var (
	ErrEmailTaken   = errors.New("email already exists")
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository defines the data-access contract.
// Service depends ONLY on this interface.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
}
