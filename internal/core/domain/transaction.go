package domain

import "time"

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	KindCredit          TransactionKind = "credit"
	KindDebit           TransactionKind = "debit"
	KindRefund          TransactionKind = "refund"
	KindAdminAdjustment TransactionKind = "admin_adjustment"
)

// SignValid reports whether a signed delta is consistent with the kind:
// credits and refunds add funds, debits remove them, admin adjustments may
// go either way but never zero.
func (k TransactionKind) SignValid(delta float64) bool {
	switch k {
	case KindCredit, KindRefund:
		return delta > 0
	case KindDebit:
		return delta < 0
	case KindAdminAdjustment:
		return delta != 0
	}
	return false
}

// TransactionMeta carries administrative context for adjustment entries.
type TransactionMeta struct {
	AdminID string `json:"admin_id,omitempty" bson:"admin_id,omitempty"`
	Note    string `json:"note,omitempty" bson:"note,omitempty"`
	Bulk    bool   `json:"bulk,omitempty" bson:"bulk,omitempty"`
}

// Transaction is an immutable ledger entry recording one balance change.
// Amount is the unsigned magnitude; the kind carries the direction.
// Invariant: BalanceAfter == BalanceBefore ± Amount consistent with Kind,
// and BalanceAfter equals the account balance at commit time.
type Transaction struct {
	ID            string           `json:"id" bson:"_id,omitempty"`
	AccountID     string           `json:"account_id" bson:"account_id"`
	Kind          TransactionKind  `json:"type" bson:"type"`
	Amount        float64          `json:"amount" bson:"amount"`
	BalanceBefore float64          `json:"balance_before" bson:"balance_before"`
	BalanceAfter  float64          `json:"balance_after" bson:"balance_after"`
	Description   string           `json:"description" bson:"description"`
	Meta          *TransactionMeta `json:"metadata,omitempty" bson:"metadata,omitempty"`
	RentalID      string           `json:"rental_id,omitempty" bson:"rental_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at" bson:"created_at"`
}
