package ports

import (
	"context"

	"github.com/smsrent/rental-system/internal/core/domain"
)

// RentalRepository defines persistence for leased numbers. Rentals are
// created by the ledger store (atomically with their funding debit) and only
// transition status afterwards; they are never deleted.
type RentalRepository interface {
	// ListByAccount returns the account's rentals newest first, capped at limit.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.Rental, error)

	// FindByProviderID retrieves a rental by its upstream activation id.
	// The accountID filter enforces ownership: a rental owned by another
	// account is reported as not found, never leaked.
	FindByProviderID(ctx context.Context, accountID, providerID string) (*domain.Rental, error)

	// TransitionStatus atomically moves a rental from one status to another.
	// The from-status filter makes concurrent terminal transitions safe:
	// only one writer matches, the rest see applied=false.
	TransitionStatus(ctx context.Context, providerID string, from, to domain.RentalStatus) (applied bool, err error)
}

// MessageRepository defines persistence for received SMS codes.
// No uniqueness constraint is enforced at write time; duplicates sharing a
// code are collapsed at read time.
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	// ListByRental returns messages for a rental newest first.
	ListByRental(ctx context.Context, providerID string) ([]*domain.Message, error)
}
