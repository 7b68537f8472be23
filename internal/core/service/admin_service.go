package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/smsrent/rental-system/internal/core/domain"
	"github.com/smsrent/rental-system/internal/core/ports"
)

const (
	// lowProviderBalance is the upstream balance under which the admin
	// dashboard flags the provider account for a top-up.
	lowProviderBalance = 50

	statsWindow = 24 * time.Hour
)

// ProviderBalanceCache caches the upstream balance so the dashboard does not
// hammer the provider. Misses are non-fatal.
type ProviderBalanceCache interface {
	Get(ctx context.Context) (float64, time.Time, bool)
	Set(ctx context.Context, balance float64, fetchedAt time.Time) error
}

// AdminService implements the admin console: balance adjustments (single and
// bulk), account moderation, ledger browsing, and dashboard aggregates.
type AdminService struct {
	accounts ports.AccountRepository
	ledger   ports.LedgerStore
	provider ports.ProviderGateway
	notifier ports.Notifier
	cache    ProviderBalanceCache
	logger   zerolog.Logger
}

func NewAdminService(
	accounts ports.AccountRepository,
	ledger ports.LedgerStore,
	provider ports.ProviderGateway,
	notifier ports.Notifier,
	cache ProviderBalanceCache,
	logger zerolog.Logger,
) *AdminService {
	return &AdminService{
		accounts: accounts,
		ledger:   ledger,
		provider: provider,
		notifier: notifier,
		cache:    cache,
		logger:   logger,
	}
}

// AdjustBalance applies one administrative balance change. The delta is
// signed; admin adjustments may drive a balance negative (debt model).
func (s *AdminService) AdjustBalance(ctx context.Context, input ports.AdjustBalanceInput) (*domain.Transaction, error) {
	return s.adjust(ctx, input.ActorID, input.TargetID, input.Amount, input.Note, false)
}

// AdjustBalanceBulk applies the same adjustment independently per target.
// One target's failure never aborts or rolls back the others; the result
// reports partial success explicitly.
func (s *AdminService) AdjustBalanceBulk(ctx context.Context, input ports.BulkAdjustInput) (*ports.BulkAdjustResult, error) {
	result := &ports.BulkAdjustResult{}
	for _, targetID := range input.TargetIDs {
		if _, err := s.adjust(ctx, input.ActorID, targetID, input.Amount, input.Note, true); err != nil {
			result.Failed = append(result.Failed, ports.BulkFailure{
				AccountID: targetID,
				Reason:    err.Error(),
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, targetID)
	}
	s.logger.Info().
		Str("admin_id", input.ActorID).
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Float64("amount", input.Amount).
		Msg("bulk adjustment processed")
	return result, nil
}

func (s *AdminService) adjust(ctx context.Context, actorID, targetID string, amount float64, note string, bulk bool) (*domain.Transaction, error) {
	description := "Admin added credits"
	if amount < 0 {
		description = "Admin deducted credits"
	}

	tx, err := s.ledger.ApplyDelta(ctx, ports.ApplyDeltaInput{
		AccountID:   targetID,
		Delta:       amount,
		Kind:        domain.KindAdminAdjustment,
		Description: description,
		Meta: &domain.TransactionMeta{
			AdminID: actorID,
			Note:    note,
			Bulk:    bulk,
		},
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BalanceChanged(ctx, targetID, tx.BalanceAfter)
	s.notifier.TransactionCreated(ctx, tx)

	s.logger.Info().
		Str("admin_id", actorID).
		Str("account_id", targetID).
		Float64("amount", amount).
		Float64("balance_after", tx.BalanceAfter).
		Msg("balance adjusted")
	return tx, nil
}

func (s *AdminService) ListAccounts(ctx context.Context, search string, limit int) ([]*domain.Account, error) {
	return s.accounts.List(ctx, search, limit)
}

func (s *AdminService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

func (s *AdminService) UpdateAccountStatus(ctx context.Context, id string, status domain.AccountStatus) (*domain.Account, error) {
	account, err := s.accounts.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("account_id", id).Str("status", string(status)).Msg("account status changed")
	return account, nil
}

func (s *AdminService) ListTransactions(ctx context.Context, accountID string, limit int) ([]*domain.Transaction, error) {
	return s.ledger.ListTransactions(ctx, accountID, limit)
}

func (s *AdminService) Stats(ctx context.Context) (*ports.AdminStats, error) {
	return s.ledger.Stats(ctx, time.Now().UTC().Add(-statsWindow))
}

// ProviderBalance reads the upstream balance, serving a cached value when
// fresh enough. A BAD_KEY upstream surfaces as a configuration error.
func (s *AdminService) ProviderBalance(ctx context.Context) (*ports.ProviderBalance, error) {
	if s.cache != nil {
		if balance, fetchedAt, ok := s.cache.Get(ctx); ok {
			return &ports.ProviderBalance{
				Balance:   balance,
				Low:       balance < lowProviderBalance,
				FetchedAt: fetchedAt,
			}, nil
		}
	}

	balance, err := s.provider.GetBalance(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if s.cache != nil {
		if err := s.cache.Set(ctx, balance, now); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache provider balance")
		}
	}
	return &ports.ProviderBalance{
		Balance:   balance,
		Low:       balance < lowProviderBalance,
		FetchedAt: now,
	}, nil
}
