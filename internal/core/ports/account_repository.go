package ports

import (
	"context"

	"github.com/smsrent/rental-system/internal/core/domain"
)

// AccountRepository defines persistence for account identity, profile, and
// moderation state. It deliberately exposes no balance-writing operation:
// balance mutations go through LedgerStore only.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// List returns accounts newest first, optionally filtered by a
	// case-insensitive search over email and name parts.
	List(ctx context.Context, search string, limit int) ([]*domain.Account, error)
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (*domain.Account, error)
}
