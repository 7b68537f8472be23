package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// AccountStatus is the moderation state of an account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountBanned    AccountStatus = "banned"
)

// ValidAccountStatus reports whether s is one of the known moderation states.
func ValidAccountStatus(s AccountStatus) bool {
	switch s {
	case AccountActive, AccountSuspended, AccountBanned:
		return true
	}
	return false
}

// Account is a registered user's ledger identity and profile.
// Credits is mutated exclusively through the ledger store's ApplyDelta;
// no other component writes the balance field.
type Account struct {
	ID           string        `json:"id" bson:"_id,omitempty"`
	Email        string        `json:"email" bson:"email"`
	FirstName    string        `json:"first_name" bson:"first_name"`
	LastName     string        `json:"last_name" bson:"last_name"`
	Phone        string        `json:"phone,omitempty" bson:"phone,omitempty"`
	PasswordHash string        `json:"-" bson:"password_hash"`
	Credits      float64       `json:"credits" bson:"credits"`
	Role         string        `json:"role" bson:"role"`
	Status       AccountStatus `json:"status" bson:"status"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// CanRent reports whether the account is allowed to lease numbers.
// Suspended and banned accounts keep read access to their history only.
func (a *Account) CanRent() bool {
	return a.Status == AccountActive
}
