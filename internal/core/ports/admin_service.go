package ports

import (
	"context"
	"time"

	"github.com/smsrent/rental-system/internal/core/domain"
)

// AdjustBalanceInput is one administrative balance mutation.
// Amount is signed: positive adds credits, negative deducts.
type AdjustBalanceInput struct {
	ActorID  string
	TargetID string
	Amount   float64
	Note     string
}

// BulkAdjustInput applies the same signed amount to many targets.
type BulkAdjustInput struct {
	ActorID   string
	TargetIDs []string
	Amount    float64
	Note      string
}

// BulkFailure identifies one target that could not be adjusted and why.
type BulkFailure struct {
	AccountID string
	Reason    string
}

// BulkAdjustResult reports partial success explicitly: each target is
// processed independently and one failure never rolls back the others.
type BulkAdjustResult struct {
	Succeeded []string
	Failed    []BulkFailure
}

// ProviderBalance is the upstream account balance with a low-funds flag.
type ProviderBalance struct {
	Balance   float64
	Low       bool
	FetchedAt time.Time
}

// AdminService defines the admin console operations.
type AdminService interface {
	AdjustBalance(ctx context.Context, input AdjustBalanceInput) (*domain.Transaction, error)
	AdjustBalanceBulk(ctx context.Context, input BulkAdjustInput) (*BulkAdjustResult, error)
	ListAccounts(ctx context.Context, search string, limit int) ([]*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	UpdateAccountStatus(ctx context.Context, id string, status domain.AccountStatus) (*domain.Account, error)
	ListTransactions(ctx context.Context, accountID string, limit int) ([]*domain.Transaction, error)
	Stats(ctx context.Context) (*AdminStats, error)
	ProviderBalance(ctx context.Context) (*ProviderBalance, error)
}
