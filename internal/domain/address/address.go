// Package address manages the shopper address book.
package address

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when an address id does not exist.
	ErrNotFound = errors.New("address not found")
	// ErrLimitReached is returned when a user already has the maximum number of addresses.
	ErrLimitReached = errors.New("address limit reached")
	// ErrInUse is returned when editing or deleting an address that a pending order ships to.
	ErrInUse = errors.New("address is used by a pending order")
)

// Address is a structured delivery address owned by one user.
type Address struct {
	ID          int64
	UserID      int64
	FullAddress string
	Locality    string
	City        string
	State       string
	Pincode     string
	Landmark    string
	CreatedAt   time.Time
}

// Repository persists addresses.
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]Address, error)
	Get(ctx context.Context, id int64) (*Address, error)
	// Create inserts a unless the user already owns limit addresses, in
	// which case it returns ErrLimitReached.
	Create(ctx context.Context, a *Address, limit int) error
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, id int64) error
	HasPendingOrders(ctx context.Context, id int64) (bool, error)
}
