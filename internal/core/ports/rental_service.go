package ports

import (
	"context"
	"time"
)

// CreateRentalInput carries all data needed to lease a number.
// Price is the site-local price charged to the account, in credits.
type CreateRentalInput struct {
	AccountID string
	Service   string
	Price     float64
}

// RentalResult is returned after a successful lease.
type RentalResult struct {
	RentalID     string
	PhoneNumber  string
	Service      string
	PriceCharged float64
	NewBalance   float64
	ExpiresAt    time.Time
}

// RentalView is the list representation of a rental, with lazy expiry
// already applied.
type RentalView struct {
	RentalID     string
	PhoneNumber  string
	Service      string
	Status       string
	PriceCharged float64
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// RentalService defines the rent-a-number use cases.
type RentalService interface {
	CreateRental(ctx context.Context, input CreateRentalInput) (*RentalResult, error)
	ListRentals(ctx context.Context, accountID string) ([]RentalView, error)
}
