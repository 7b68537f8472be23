package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/smsrent/rental-system/internal/api/metrics"
	"github.com/smsrent/rental-system/internal/core/domain"
	"github.com/smsrent/rental-system/internal/core/ports"
)

const rentalListLimit = 50

// RentalService orchestrates leasing a number: balance fast-reject, upstream
// reservation, then an atomic debit + rental creation through the ledger.
type RentalService struct {
	accounts ports.AccountRepository
	ledger   ports.LedgerStore
	rentals  ports.RentalRepository
	provider ports.ProviderGateway
	notifier ports.Notifier
	logger   zerolog.Logger
}

func NewRentalService(
	accounts ports.AccountRepository,
	ledger ports.LedgerStore,
	rentals ports.RentalRepository,
	provider ports.ProviderGateway,
	notifier ports.Notifier,
	logger zerolog.Logger,
) *RentalService {
	return &RentalService{
		accounts: accounts,
		ledger:   ledger,
		rentals:  rentals,
		provider: provider,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateRental leases a number for the account.
//
// The balance fast-reject in step 1 and the debit in step 3 are not one
// atomic unit with the upstream call between them; the ledger re-validates
// sufficient balance inside the debit transaction, so a balance change in
// that window fails the whole creation rather than overdrawing.
func (s *RentalService) CreateRental(ctx context.Context, input ports.CreateRentalInput) (*ports.RentalResult, error) {
	// 1. Fast-reject before spending an upstream reservation.
	account, err := s.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.CanRent() {
		metrics.RentalErrorsTotal.WithLabelValues("account_not_active").Inc()
		return nil, domain.ErrAccountNotActive
	}
	if account.Credits < input.Price {
		metrics.RentalErrorsTotal.WithLabelValues("insufficient_balance").Inc()
		return nil, &domain.InsufficientBalanceError{
			Balance:   account.Credits,
			Required:  input.Price,
			Shortfall: input.Price - account.Credits,
		}
	}

	// 2. Reserve upstream. Site prices are in credits (1 credit = 1 cent
	// upstream), so the max acceptable upstream price is price/100.
	result, err := s.provider.ReserveNumber(ctx, input.Service, input.Price/100)
	if err != nil {
		metrics.RentalErrorsTotal.WithLabelValues("upstream_transport").Inc()
		s.logger.Error().Err(err).Str("service", input.Service).Msg("reserve number failed")
		return nil, &domain.UpstreamError{Op: "getNumber", Err: err}
	}
	if result.Outcome != ports.ReserveOK {
		return nil, s.mapReserveFailure(result)
	}

	// 3. Debit and create the rental in one atomic unit. The ledger
	// re-checks the balance; a concurrent change surfaces here.
	now := time.Now().UTC()
	rental := &domain.Rental{
		AccountID:    input.AccountID,
		ProviderID:   result.RentalID,
		PhoneNumber:  result.PhoneNumber,
		Service:      input.Service,
		Status:       domain.RentalActive,
		PriceCharged: input.Price,
		APIPricePaid: result.PricePaid,
		CreatedAt:    now,
		ExpiresAt:    now.Add(domain.RentalTTL),
		UpdatedAt:    now,
	}
	tx, err := s.ledger.ApplyDelta(ctx, ports.ApplyDeltaInput{
		AccountID:   input.AccountID,
		Delta:       -input.Price,
		Kind:        domain.KindDebit,
		Description: fmt.Sprintf("Rented number for %s", input.Service),
		Rental:      rental,
	})
	if err != nil {
		// The upstream reservation is already made and now unpaid; there
		// is no automated recovery path, so record a reconciliation item.
		metrics.ReservationsLeakedTotal.Inc()
		s.logger.Error().Err(err).
			Str("account_id", input.AccountID).
			Str("provider_rental_id", result.RentalID).
			Str("phone_number", result.PhoneNumber).
			Msg("debit failed after upstream reservation; reservation leaked, manual reconciliation required")

		var insufficient *domain.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			metrics.RentalErrorsTotal.WithLabelValues("insufficient_at_commit").Inc()
			return nil, fmt.Errorf("%w: short %.2f", domain.ErrInsufficientAtCommit, insufficient.Shortfall)
		}
		metrics.RentalErrorsTotal.WithLabelValues("debit_failed").Inc()
		return nil, err
	}

	// 4. Best-effort push; the authoritative balance is always readable
	// from the ledger.
	s.notifier.BalanceChanged(ctx, input.AccountID, tx.BalanceAfter)
	s.notifier.TransactionCreated(ctx, tx)

	metrics.RentalsCreatedTotal.WithLabelValues(input.Service).Inc()
	s.logger.Info().
		Str("account_id", input.AccountID).
		Str("provider_rental_id", result.RentalID).
		Str("service", input.Service).
		Float64("price", input.Price).
		Msg("rental created")

	return &ports.RentalResult{
		RentalID:     result.RentalID,
		PhoneNumber:  result.PhoneNumber,
		Service:      input.Service,
		PriceCharged: input.Price,
		NewBalance:   tx.BalanceAfter,
		ExpiresAt:    rental.ExpiresAt,
	}, nil
}

// ListRentals returns the account's rentals newest first, with the lazy
// expiry rule applied: an active rental past its deadline is reported (and
// persisted) as expired, since no background job enforces expiry.
func (s *RentalService) ListRentals(ctx context.Context, accountID string) ([]ports.RentalView, error) {
	rentals, err := s.rentals.ListByAccount(ctx, accountID, rentalListLimit)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	views := make([]ports.RentalView, 0, len(rentals))
	for _, r := range rentals {
		if r.ExpiredBy(now) {
			if _, err := s.rentals.TransitionStatus(ctx, r.ProviderID, domain.RentalActive, domain.RentalExpired); err != nil {
				s.logger.Warn().Err(err).Str("provider_rental_id", r.ProviderID).Msg("failed to persist lazy expiry")
			}
			r.Status = domain.RentalExpired
		}
		views = append(views, ports.RentalView{
			RentalID:     r.ProviderID,
			PhoneNumber:  r.PhoneNumber,
			Service:      r.Service,
			Status:       string(r.Status),
			PriceCharged: r.PriceCharged,
			CreatedAt:    r.CreatedAt,
			ExpiresAt:    r.ExpiresAt,
		})
	}
	return views, nil
}

// mapReserveFailure converts a non-success reserve outcome into the caller's
// error taxonomy. Unrecognized payloads keep the raw text for diagnosis.
func (s *RentalService) mapReserveFailure(result *ports.ReserveResult) error {
	switch result.Outcome {
	case ports.ReserveNoNumbers, ports.ReserveOutOfFunds, ports.ReserveMaxPriceExceeded:
		metrics.RentalErrorsTotal.WithLabelValues(string(result.Outcome)).Inc()
		return domain.ErrServiceUnavailable
	case ports.ReserveTooManyRentals:
		metrics.RentalErrorsTotal.WithLabelValues("rate_limited").Inc()
		return domain.ErrRateLimited
	case ports.ReserveBadService:
		metrics.RentalErrorsTotal.WithLabelValues("bad_service").Inc()
		return domain.ErrBadService
	case ports.ReserveBadKey:
		metrics.RentalErrorsTotal.WithLabelValues("bad_key").Inc()
		s.logger.Error().Msg("upstream rejected API key; operator attention required")
		return domain.ErrProviderConfig
	default:
		metrics.RentalErrorsTotal.WithLabelValues("upstream_unknown").Inc()
		s.logger.Error().Str("raw", result.Raw).Msg("unrecognized upstream reserve response")
		return &domain.UpstreamError{Op: "getNumber", Raw: result.Raw}
	}
}
