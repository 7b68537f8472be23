package domain

import "time"

// RentalTTL is how long a leased number stays active before it expires.
const RentalTTL = 20 * time.Minute

// RentalStatus represents the lifecycle state of a leased number.
type RentalStatus string

const (
	RentalActive    RentalStatus = "active"
	RentalCompleted RentalStatus = "completed"
	RentalCancelled RentalStatus = "cancelled"
	RentalExpired   RentalStatus = "expired"
)

// validTransitions defines the allowed state machine transitions.
// All terminal states are reached from active only; expired is applied
// lazily at read time since no background job enforces it.
var validTransitions = map[RentalStatus][]RentalStatus{
	RentalActive: {RentalCompleted, RentalCancelled, RentalExpired},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s RentalStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Rental is one leased phone number tied to a verification attempt.
// ProviderID is the upstream activation identifier and is what clients
// reference in the API. Rentals are never deleted; they are the audit trail.
type Rental struct {
	ID            string       `json:"id" bson:"_id,omitempty"`
	AccountID     string       `json:"account_id" bson:"account_id"`
	ProviderID    string       `json:"provider_id" bson:"provider_id"`
	PhoneNumber   string       `json:"phone_number" bson:"phone_number"`
	Service       string       `json:"service" bson:"service"`
	Status        RentalStatus `json:"status" bson:"status"`
	PriceCharged  float64      `json:"price_charged" bson:"price_charged"`
	APIPricePaid  float64      `json:"api_price_paid,omitempty" bson:"api_price_paid,omitempty"`
	TransactionID string       `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	ExpiresAt     time.Time    `json:"expires_at" bson:"expires_at"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at"`
}

// ExpiredBy reports whether the rental should be treated as expired at now.
func (r *Rental) ExpiredBy(now time.Time) bool {
	return r.Status == RentalActive && now.After(r.ExpiresAt)
}
