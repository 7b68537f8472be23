package ports

import (
	"context"
	"time"
)

// Poll statuses reported to the caller. "waiting" is the designed substitute
// for blocking on the upstream provider: the client simply re-polls.
const (
	PollCompleted = "completed"
	PollWaiting   = "waiting"
	PollCancelled = "cancelled"
	PollExpired   = "expired"
)

// PollResult reports the settlement state of one rental. Code/Text/ReceivedAt
// are set only when Status is PollCompleted.
type PollResult struct {
	Status     string
	Code       string
	Text       string
	ReceivedAt time.Time
}

// MessageView is one received SMS, deduplicated by code at read time.
type MessageView struct {
	ID         string
	Code       string
	Text       string
	ReceivedAt time.Time
}

// SettlementService resolves a rental's outcome against the upstream
// provider and serves its received messages.
type SettlementService interface {
	// Poll checks the rental's upstream status, applying any resulting
	// transition. Polling a rental already in a terminal state is a no-op
	// returning the stored outcome.
	Poll(ctx context.Context, accountID, rentalID string) (*PollResult, error)
	ListMessages(ctx context.Context, accountID, rentalID string) ([]MessageView, error)
}
