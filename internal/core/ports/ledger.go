package ports

import (
	"context"
	"time"

	"github.com/smsrent/rental-system/internal/core/domain"
)

// ApplyDeltaInput describes one atomic balance mutation. Delta is signed and
// must be consistent with Kind (see domain.TransactionKind.SignValid).
// When Rental is non-nil the rental document is created in the same atomic
// unit as the debit, and the transaction is tagged with its provider id.
type ApplyDeltaInput struct {
	AccountID   string
	Delta       float64
	Kind        domain.TransactionKind
	Description string
	Meta        *domain.TransactionMeta
	Rental      *domain.Rental
}

// LedgerStore is the only component permitted to write an account's balance.
// ApplyDelta executes read → validate → write balance → append transaction
// as a single atomic unit keyed by the account document; for debit kinds the
// sufficient-balance check is re-validated inside that unit.
type LedgerStore interface {
	ApplyDelta(ctx context.Context, in ApplyDeltaInput) (*domain.Transaction, error)

	// ListTransactions returns ledger entries newest first, optionally
	// filtered to one account. limit caps the result size.
	ListTransactions(ctx context.Context, accountID string, limit int) ([]*domain.Transaction, error)

	// Stats aggregates the figures shown on the admin dashboard.
	Stats(ctx context.Context, since time.Time) (*AdminStats, error)
}

// AdminStats is the admin dashboard aggregate view.
type AdminStats struct {
	TotalAccounts      int64
	ActiveAccounts     int64
	CirculatingCredits float64
	RecentTransactions int64
}
