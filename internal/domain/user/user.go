package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrMobileTaken is returned when signing up with a registered mobile.
	ErrMobileTaken = errors.New("mobile number already registered")
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrHasOrders is returned when deleting an account that placed orders.
	ErrHasOrders = errors.New("account has orders")
)

// User is a shopper account keyed by a normalized ten-digit mobile number.
type User struct {
	ID           int64
	Mobile       string
	Name         string
	Email        string
	Gender       string
	DOB          *time.Time
	PasswordHash string
	CreatedAt    time.Time
}

// Admin is an admin console account.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
}

// Repository persists users and admins.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByMobile(ctx context.Context, mobile string) (*User, error)
	Update(ctx context.Context, u *User) error
	DeleteByMobile(ctx context.Context, mobile string) error
	GetAdmin(ctx context.Context, username string) (*Admin, error)
}
