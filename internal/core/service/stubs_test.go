package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smsrent/rental-system/internal/core/domain"
	"github.com/smsrent/rental-system/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory store implementing AccountRepository, LedgerStore,
// RentalRepository and MessageRepository, mirroring the Mongo behavior.
// ---------------------------------------------------------------------------

type memStore struct {
	accounts map[string]*domain.Account
	txs      []*domain.Transaction
	rentals  map[string]*domain.Rental // keyed by provider id
	messages []*domain.Message

	applyErr error // if set, ApplyDelta fails with this error
	seq      int
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]*domain.Account),
		rentals:  make(map[string]*domain.Rental),
	}
}

func (m *memStore) addAccount(id string, credits float64) *domain.Account {
	acc := &domain.Account{
		ID:      id,
		Email:   id + "@example.com",
		Credits: credits,
		Role:    domain.RoleUser,
		Status:  domain.AccountActive,
	}
	m.accounts[id] = acc
	return acc
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s_%d", prefix, m.seq)
}

// --- AccountRepository ---

func (m *memStore) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == account.Email {
			return nil, domain.ErrAccountExists
		}
	}
	clone := *account
	if clone.ID == "" {
		clone.ID = m.nextID("acc")
	}
	m.accounts[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memStore) List(_ context.Context, search string, limit int) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, a := range m.accounts {
		if search != "" && !strings.Contains(strings.ToLower(a.Email), strings.ToLower(search)) {
			continue
		}
		clone := *a
		out = append(out, &clone)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status domain.AccountStatus) (*domain.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Status = status
	clone := *a
	return &clone, nil
}

// --- LedgerStore ---

func (m *memStore) ApplyDelta(_ context.Context, in ports.ApplyDeltaInput) (*domain.Transaction, error) {
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	if !in.Kind.SignValid(in.Delta) {
		return nil, domain.ErrInvalidDelta
	}
	a, ok := m.accounts[in.AccountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	before := a.Credits
	after := before + in.Delta
	if in.Kind == domain.KindDebit && after < 0 {
		return nil, &domain.InsufficientBalanceError{
			Balance:   before,
			Required:  -in.Delta,
			Shortfall: -after,
		}
	}
	a.Credits = after

	amount := in.Delta
	if amount < 0 {
		amount = -amount
	}
	tx := &domain.Transaction{
		ID:            m.nextID("tx"),
		AccountID:     in.AccountID,
		Kind:          in.Kind,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   in.Description,
		Meta:          in.Meta,
		CreatedAt:     time.Now().UTC(),
	}
	if in.Rental != nil {
		rental := *in.Rental
		rental.ID = m.nextID("rnt")
		rental.TransactionID = tx.ID
		tx.RentalID = rental.ProviderID
		m.rentals[rental.ProviderID] = &rental
	}
	m.txs = append(m.txs, tx)
	return tx, nil
}

func (m *memStore) ListTransactions(_ context.Context, accountID string, limit int) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for i := len(m.txs) - 1; i >= 0; i-- {
		tx := m.txs[i]
		if accountID != "" && tx.AccountID != accountID {
			continue
		}
		out = append(out, tx)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) Stats(_ context.Context, since time.Time) (*ports.AdminStats, error) {
	stats := &ports.AdminStats{}
	for _, a := range m.accounts {
		stats.TotalAccounts++
		if a.Status == domain.AccountActive {
			stats.ActiveAccounts++
		}
		stats.CirculatingCredits += a.Credits
	}
	for _, tx := range m.txs {
		if tx.CreatedAt.After(since) {
			stats.RecentTransactions++
		}
	}
	return stats, nil
}

// --- RentalRepository ---

func (m *memStore) ListByAccount(_ context.Context, accountID string, limit int) ([]*domain.Rental, error) {
	var out []*domain.Rental
	for _, r := range m.rentals {
		if r.AccountID != accountID {
			continue
		}
		clone := *r
		out = append(out, &clone)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) FindByProviderID(_ context.Context, accountID, providerID string) (*domain.Rental, error) {
	r, ok := m.rentals[providerID]
	if !ok || r.AccountID != accountID {
		return nil, domain.ErrRentalNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *memStore) TransitionStatus(_ context.Context, providerID string, from, to domain.RentalStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, domain.ErrInvalidTransition
	}
	r, ok := m.rentals[providerID]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

// --- MessageRepository ---

func (m *memStore) Insert(_ context.Context, msg *domain.Message) error {
	clone := *msg
	clone.ID = m.nextID("msg")
	m.messages = append(m.messages, &clone)
	return nil
}

func (m *memStore) ListByRental(_ context.Context, providerID string) ([]*domain.Message, error) {
	var out []*domain.Message
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].RentalID == providerID {
			out = append(out, m.messages[i])
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Provider gateway stub
// ---------------------------------------------------------------------------

type stubProvider struct {
	reserveResult *ports.ReserveResult
	reserveErr    error
	statusResult  *ports.StatusResult
	statusErr     error
	balance       float64
	balanceErr    error

	reserveCalls int
	statusCalls  int
}

func (p *stubProvider) ReserveNumber(_ context.Context, _ string, _ float64) (*ports.ReserveResult, error) {
	p.reserveCalls++
	if p.reserveErr != nil {
		return nil, p.reserveErr
	}
	return p.reserveResult, nil
}

func (p *stubProvider) GetStatus(_ context.Context, _ string) (*ports.StatusResult, error) {
	p.statusCalls++
	if p.statusErr != nil {
		return nil, p.statusErr
	}
	return p.statusResult, nil
}

func (p *stubProvider) GetBalance(_ context.Context) (float64, error) {
	if p.balanceErr != nil {
		return 0, p.balanceErr
	}
	return p.balance, nil
}

// ---------------------------------------------------------------------------
// Recording notifier (no-throw contract)
// ---------------------------------------------------------------------------

type recordingNotifier struct {
	balanceEvents int
	txEvents      int
}

func (n *recordingNotifier) BalanceChanged(_ context.Context, _ string, _ float64) {
	n.balanceEvents++
}

func (n *recordingNotifier) TransactionCreated(_ context.Context, _ *domain.Transaction) {
	n.txEvents++
}
