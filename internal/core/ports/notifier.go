package ports

import (
	"context"

	"github.com/smsrent/rental-system/internal/core/domain"
)

// Notifier fans out balance and transaction changes to the affected
// account's connected clients. The channel is best-effort only: methods
// return nothing and implementations swallow (and log) failures, so a
// notification problem can never fail a committed ledger mutation.
type Notifier interface {
	BalanceChanged(ctx context.Context, accountID string, balance float64)
	TransactionCreated(ctx context.Context, tx *domain.Transaction)
}
