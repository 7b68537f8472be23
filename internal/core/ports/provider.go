package ports

import "context"

// ReserveOutcome tags the parsed result of a reserve-number call.
type ReserveOutcome string

const (
	ReserveOK               ReserveOutcome = "ok"
	ReserveNoNumbers        ReserveOutcome = "no_numbers"
	ReserveOutOfFunds       ReserveOutcome = "no_money"
	ReserveMaxPriceExceeded ReserveOutcome = "max_price_exceeded"
	ReserveTooManyRentals   ReserveOutcome = "too_many_active_rentals"
	ReserveBadService       ReserveOutcome = "bad_service"
	ReserveBadKey           ReserveOutcome = "bad_key"
	ReserveUnknown          ReserveOutcome = "unknown"
)

// ReserveResult is the tagged-variant result of reserving a number.
// Raw preserves the upstream payload for diagnosis on unknown outcomes.
type ReserveResult struct {
	Outcome     ReserveOutcome
	RentalID    string
	PhoneNumber string
	// PricePaid is the upstream price taken from the response side channel,
	// recorded for audit; the account is always charged the site price.
	PricePaid float64
	Raw       string
}

// StatusOutcome tags the parsed result of a status poll.
type StatusOutcome string

const (
	StatusCode      StatusOutcome = "code"
	StatusWaiting   StatusOutcome = "waiting"
	StatusCancelled StatusOutcome = "cancelled"
	StatusNotFound  StatusOutcome = "not_found"
	StatusUnknown   StatusOutcome = "unknown"
)

// StatusResult is the tagged-variant result of polling a rental upstream.
type StatusResult struct {
	Outcome StatusOutcome
	Code    string
	// Text is the full message body carried in the response side channel.
	Text string
	Raw  string
}

// ProviderGateway is the thin client to the upstream SMS-rental API.
// Methods return an error only for transport failures (including timeouts);
// every recognized wire token is expressed through the result's outcome tag.
type ProviderGateway interface {
	ReserveNumber(ctx context.Context, service string, maxPrice float64) (*ReserveResult, error)
	GetStatus(ctx context.Context, rentalID string) (*StatusResult, error)
	GetBalance(ctx context.Context) (float64, error)
}
