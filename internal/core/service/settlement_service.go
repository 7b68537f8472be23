package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/smsrent/rental-system/internal/api/metrics"
	"github.com/smsrent/rental-system/internal/core/domain"
	"github.com/smsrent/rental-system/internal/core/ports"
)

// SettlementService resolves rental outcomes against the upstream provider.
// It is invoked repeatedly by the client until a terminal state is reached;
// there is no server-side long-poll.
type SettlementService struct {
	rentals  ports.RentalRepository
	messages ports.MessageRepository
	provider ports.ProviderGateway
	logger   zerolog.Logger

	// now is swappable for expiry tests.
	now func() time.Time
}

func NewSettlementService(
	rentals ports.RentalRepository,
	messages ports.MessageRepository,
	provider ports.ProviderGateway,
	logger zerolog.Logger,
) *SettlementService {
	return &SettlementService{
		rentals:  rentals,
		messages: messages,
		provider: provider,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Poll checks one rental for settlement.
func (s *SettlementService) Poll(ctx context.Context, accountID, rentalID string) (*ports.PollResult, error) {
	// 1. Ownership check: a rental owned by someone else is not found.
	rental, err := s.rentals.FindByProviderID(ctx, accountID, rentalID)
	if err != nil {
		return nil, err
	}

	// 2. Terminal rentals are a no-op returning the stored outcome.
	if rental.Status.Terminal() {
		return s.storedOutcome(ctx, rental)
	}

	// 3. Lazy expiry beats another upstream round-trip.
	if rental.ExpiredBy(s.now()) {
		if _, err := s.rentals.TransitionStatus(ctx, rental.ProviderID, domain.RentalActive, domain.RentalExpired); err != nil {
			return nil, err
		}
		metrics.PollResultsTotal.WithLabelValues(ports.PollExpired).Inc()
		return &ports.PollResult{Status: ports.PollExpired}, nil
	}

	// 4. Ask upstream.
	status, err := s.provider.GetStatus(ctx, rentalID)
	if err != nil {
		metrics.PollResultsTotal.WithLabelValues("error").Inc()
		return nil, &domain.UpstreamError{Op: "getStatus", Err: err}
	}

	switch status.Outcome {
	case ports.StatusCode:
		return s.settleCompleted(ctx, rental, status)

	case ports.StatusWaiting:
		metrics.PollResultsTotal.WithLabelValues(ports.PollWaiting).Inc()
		return &ports.PollResult{Status: ports.PollWaiting}, nil

	case ports.StatusCancelled:
		if _, err := s.rentals.TransitionStatus(ctx, rental.ProviderID, domain.RentalActive, domain.RentalCancelled); err != nil {
			return nil, err
		}
		metrics.PollResultsTotal.WithLabelValues(ports.PollCancelled).Inc()
		s.logger.Info().Str("provider_rental_id", rentalID).Msg("rental cancelled upstream")
		return &ports.PollResult{Status: ports.PollCancelled}, nil

	default:
		// Not-found or unparseable upstream: report, mutate nothing,
		// let the caller retry.
		metrics.PollResultsTotal.WithLabelValues("error").Inc()
		s.logger.Warn().
			Str("provider_rental_id", rentalID).
			Str("raw", status.Raw).
			Msg("upstream reported unknown rental state")
		return nil, &domain.UpstreamError{Op: "getStatus", Raw: status.Raw}
	}
}

// settleCompleted stores the delivered code and marks the rental completed.
// The status-guarded transition makes concurrent polls safe: only one writer
// applies the transition, and duplicate Messages are collapsed at read time.
func (s *SettlementService) settleCompleted(ctx context.Context, rental *domain.Rental, status *ports.StatusResult) (*ports.PollResult, error) {
	now := s.now()
	msg := &domain.Message{
		RentalID:   rental.ProviderID,
		AccountID:  rental.AccountID,
		Code:       status.Code,
		Text:       status.Text,
		ReceivedAt: now,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}
	if _, err := s.rentals.TransitionStatus(ctx, rental.ProviderID, domain.RentalActive, domain.RentalCompleted); err != nil {
		return nil, err
	}

	metrics.PollResultsTotal.WithLabelValues(ports.PollCompleted).Inc()
	s.logger.Info().
		Str("provider_rental_id", rental.ProviderID).
		Str("account_id", rental.AccountID).
		Msg("code received, rental completed")

	return &ports.PollResult{
		Status:     ports.PollCompleted,
		Code:       status.Code,
		Text:       status.Text,
		ReceivedAt: now,
	}, nil
}

// storedOutcome replays a terminal rental's result without touching upstream
// or creating anything new.
func (s *SettlementService) storedOutcome(ctx context.Context, rental *domain.Rental) (*ports.PollResult, error) {
	switch rental.Status {
	case domain.RentalCompleted:
		msgs, err := s.messages.ListByRental(ctx, rental.ProviderID)
		if err != nil {
			return nil, err
		}
		res := &ports.PollResult{Status: ports.PollCompleted}
		if len(msgs) > 0 {
			res.Code = msgs[0].Code
			res.Text = msgs[0].Text
			res.ReceivedAt = msgs[0].ReceivedAt
		}
		return res, nil
	case domain.RentalCancelled:
		return &ports.PollResult{Status: ports.PollCancelled}, nil
	default:
		return &ports.PollResult{Status: ports.PollExpired}, nil
	}
}

// ListMessages returns the rental's messages newest first, deduplicated by
// code (most recent per code wins). Ownership is enforced the same way as
// polling.
func (s *SettlementService) ListMessages(ctx context.Context, accountID, rentalID string) ([]ports.MessageView, error) {
	if _, err := s.rentals.FindByProviderID(ctx, accountID, rentalID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	unique := domain.DedupMessages(msgs)
	views := make([]ports.MessageView, 0, len(unique))
	for _, m := range unique {
		views = append(views, ports.MessageView{
			ID:         m.ID,
			Code:       m.Code,
			Text:       m.Text,
			ReceivedAt: m.ReceivedAt,
		})
	}
	return views, nil
}
