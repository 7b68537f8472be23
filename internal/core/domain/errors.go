package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrAccountNotActive   = errors.New("account is suspended or banned")

	ErrRentalNotFound       = errors.New("rental not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrBalanceConflict      = errors.New("concurrent balance update")
	ErrInvalidDelta         = errors.New("delta sign inconsistent with transaction kind")
	ErrInsufficientAtCommit = errors.New("insufficient balance at commit")

	// Upstream provider outcomes mapped for the caller.
	ErrServiceUnavailable = errors.New("service temporarily unavailable upstream")
	ErrRateLimited        = errors.New("too many active rentals")
	ErrBadService         = errors.New("invalid service code")
	ErrProviderConfig     = errors.New("upstream credentials misconfigured")
)

// InsufficientBalanceError is returned when a debit would drive the balance
// below zero. Shortfall is how much is missing.
type InsufficientBalanceError struct {
	Balance   float64
	Required  float64
	Shortfall float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %.2f, need %.2f (short %.2f)",
		e.Balance, e.Required, e.Shortfall)
}

// UpstreamError wraps an unparseable or unmapped upstream response.
// Raw preserves the payload for operator diagnosis.
type UpstreamError struct {
	Op  string
	Raw string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("upstream %s: unrecognized response %q", e.Op, e.Raw)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
