package service

import (
	"context"
	"errors"
	"testing"

	"github.com/smsrent/rental-system/internal/core/domain"
	"github.com/smsrent/rental-system/internal/core/ports"
)

func newRentalService(store *memStore, provider *stubProvider) (*RentalService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	svc := NewRentalService(store, store, store, provider, notifier, discardLogger)
	return svc, notifier
}

func reserveOK(rentalID, phone string) *ports.ReserveResult {
	return &ports.ReserveResult{
		Outcome:     ports.ReserveOK,
		RentalID:    rentalID,
		PhoneNumber: phone,
		PricePaid:   2.5,
	}
}

func TestCreateRental_Success(t *testing.T) {
	store := newMemStore()
	store.addAccount("acc_1", 500)
	provider := &stubProvider{reserveResult: reserveOK("RID1", "+8801234567")}
	svc, notifier := newRentalService(store, provider)

	result, err := svc.CreateRental(context.Background(), ports.CreateRentalInput{
		AccountID: "acc_1", Service: "wa", Price: 300,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RentalID != "RID1" || result.PhoneNumber != "+8801234567" {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.NewBalance != 200 {
		t.Errorf("expected balance 200, got %.2f", result.NewBalance)
	}
	if result.ExpiresAt.Sub(store.rentals["RID1"].CreatedAt) != domain.RentalTTL {
		t.Errorf("expiry not %v after creation", domain.RentalTTL)
	}

	// One debit transaction with the correct before/after pair.
	if len(store.txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(store.txs))
	}
	tx := store.txs[0]
	if tx.Kind != domain.KindDebit || tx.Amount != 300 {
		t.Errorf("unexpected transaction: %+v", tx)
	}
	if tx.BalanceBefore != 500 || tx.BalanceAfter != 200 {
		t.Errorf("expected 500->200, got %.2f->%.2f", tx.BalanceBefore, tx.BalanceAfter)
	}
	if tx.RentalID != "RID1" {
		t.Errorf("transaction not tagged with rental id: %q", tx.RentalID)
	}

	// Rental row created together with the debit.
	rental := store.rentals["RID1"]
	if rental == nil {
		t.Fatal("rental row missing")
	}
	if rental.Status != domain.RentalActive {
		t.Errorf("expected active, got %s", rental.Status)
	}
	if rental.PriceCharged != 300 || rental.APIPricePaid != 2.5 {
		t.Errorf("unexpected prices: %+v", rental)
	}

	if notifier.balanceEvents != 1 || notifier.txEvents != 1 {
		t.Errorf("expected one balance and one transaction event, got %d/%d",
			notifier.balanceEvents, notifier.txEvents)
	}
}

func TestCreateRental_InsufficientBalance_FastReject(t *testing.T) {
	store := newMemStore()
	store.addAccount("acc_1", 500)
	provider := &stubProvider{reserveResult: reserveOK("RID1", "+1")}
	svc, _ := newRentalService(store, provider)

	_, err := svc.CreateRental(context.Background(), ports.CreateRentalInput{
		AccountID: "acc_1", Service: "wa", Price: 700,
	})

	var insufficient *domain.InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if insufficient.Shortfall != 200 {
		t.Errorf("expected shortfall 200, got %.2f", insufficient.Shortfall)
	}
	// No external call, no rental, no transaction.
	if provider.reserveCalls != 0 {
		t.Error("upstream must not be called on fast-reject")
	}
	if len(store.txs) != 0 || len(store.rentals) != 0 {
		t.Error("no rental or transaction may be created")
	}
	if store.accounts["acc_1"].Credits != 500 {
		t.Errorf("balance must be untouched, got %.2f", store.accounts["acc_1"].Credits)
	}
}

func TestCreateRental_UpstreamFailures_NeverDebit(t *testing.T) {
	cases := []struct {
		outcome ports.ReserveOutcome
		wantErr error
	}{
		{ports.ReserveNoNumbers, domain.ErrServiceUnavailable},
		{ports.ReserveOutOfFunds, domain.ErrServiceUnavailable},
		{ports.ReserveMaxPriceExceeded, domain.ErrServiceUnavailable},
		{ports.ReserveTooManyRentals, domain.ErrRateLimited},
		{ports.ReserveBadService, domain.ErrBadService},
		{ports.ReserveBadKey, domain.ErrProviderConfig},
	}
	for _, tc := range cases {
		t.Run(string(tc.outcome), func(t *testing.T) {
			store := newMemStore()
			store.addAccount("acc_1", 500)
			provider := &stubProvider{reserveResult: &ports.ReserveResult{Outcome: tc.outcome}}
			svc, _ := newRentalService(store, provider)

			_, err := svc.CreateRental(context.Background(), ports.CreateRentalInput{
				AccountID: "acc_1", Service: "wa", Price: 300,
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if store.accounts["acc_1"].Credits != 500 {
				t.Errorf("balance must be untouched, got %.2f", store.accounts["acc_1"].Credits)
			}
			if len(store.txs) != 0 || len(store.rentals) != 0 {
				t.Error("no rental or transaction may be created on upstream failure")
			}
		})
	}
}

func TestCreateRental_UnknownUpstreamResponse_PreservesRaw(t *testing.T) {
	store := newMemStore()
	store.addAccount("acc_1", 500)
	provider := &stubProvider{reserveResult: &ports.ReserveResult{
		Outcome: ports.ReserveUnknown,
		Raw:     "WRONG_MAX_PRICE:0.50",
	}}
	svc, _ := newRentalService(store, provider)

	_, err := svc.CreateRental(context.Background(), ports.CreateRentalInput{
		AccountID: "acc_1", Service: "wa", Price: 300,
	})

	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Raw != "WRONG_MAX_PRICE:0.50" {
		t.Errorf("raw payload not preserved: %q", upstream.Raw)
	}
	if len(store.txs) != 0 {
		t.Error("no debit on unknown upstream response")
	}
}

func TestCreateRental_TransportError_NoDebit(t *testing.T) {
	store := newMemStore()
	store.addAccount("acc_1", 500)
	provider := &stubProvider{reserveErr: errors.New("context deadline exceeded")}
	svc, _ := newRentalService(store, provider)

	_, err := svc.CreateRental(context.Background(), ports.CreateRentalInput{
		AccountID: "acc_1", Service: "wa", Price: 300,
	})

	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError on timeout, got %v", err)
	}
	if len(store.txs) != 0 || store.accounts["acc_1"].Credits != 500 {
		t.Error("timeout must not debit the account")
	}
}

func TestCreateRental_DebitFailsAfterReservation(t *testing.T) {
	store := newMemStore()
	store.addAccount("acc_1", 500)
	store.applyErr = errors.New("write conflict")
	provider := &stubProvider{reserveResult: reserveOK("RID9", "+1")}
	svc, notifier := newRentalService(store, provider)

	_, err := svc.CreateRental(context.Background(), ports.CreateRentalInput{
		AccountID: "acc_1", Service: "wa", Price: 300,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if provider.reserveCalls != 1 {
		t.Error("reservation should have been attempted")
	}
	if notifier.balanceEvents != 0 {
		t.Error("no notification on failed debit")
	}
}

func TestCreateRental_BalanceChangedBetweenCheckAndCommit(t *testing.T) {
	// The fast-reject passes, then the ledger's re-check inside the atomic
	// unit fails (concurrent admin deduction in the window).
	store := newMemStore()
	store.addAccount("acc_1", 500)
	provider := &stubProvider{reserveResult: reserveOK("RID3", "+1")}
	svc, _ := newRentalService(store, provider)
	store.applyErr = &domain.InsufficientBalanceError{Balance: 100, Required: 300, Shortfall: 200}

	_, err := svc.CreateRental(context.Background(), ports.CreateRentalInput{
		AccountID: "acc_1", Service: "wa", Price: 300,
	})
	if !errors.Is(err, domain.ErrInsufficientAtCommit) {
		t.Fatalf("expected ErrInsufficientAtCommit, got %v", err)
	}
	if provider.reserveCalls != 1 {
		t.Error("race is only reachable after the reservation succeeded")
	}
}

func TestCreateRental_SuspendedAccount(t *testing.T) {
	store := newMemStore()
	acc := store.addAccount("acc_1", 500)
	acc.Status = domain.AccountSuspended
	provider := &stubProvider{reserveResult: reserveOK("RID1", "+1")}
	svc, _ := newRentalService(store, provider)

	_, err := svc.CreateRental(context.Background(), ports.CreateRentalInput{
		AccountID: "acc_1", Service: "wa", Price: 100,
	})
	if !errors.Is(err, domain.ErrAccountNotActive) {
		t.Fatalf("expected ErrAccountNotActive, got %v", err)
	}
	if provider.reserveCalls != 0 {
		t.Error("suspended account must not reach upstream")
	}
}

func TestCreateRental_AccountMissing(t *testing.T) {
	store := newMemStore()
	provider := &stubProvider{reserveResult: reserveOK("RID1", "+1")}
	svc, _ := newRentalService(store, provider)

	_, err := svc.CreateRental(context.Background(), ports.CreateRentalInput{
		AccountID: "ghost", Service: "wa", Price: 100,
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestListRentals_OwnershipIsolation(t *testing.T) {
	store := newMemStore()
	store.addAccount("acc_a", 1000)
	store.addAccount("acc_b", 1000)
	provider := &stubProvider{reserveResult: reserveOK("RID_A", "+1")}
	svc, _ := newRentalService(store, provider)

	if _, err := svc.CreateRental(context.Background(), ports.CreateRentalInput{
		AccountID: "acc_a", Service: "wa", Price: 100,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	views, err := svc.ListRentals(context.Background(), "acc_b")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("account B must not see account A's rentals, got %d", len(views))
	}
}

func TestListRentals_LazyExpiry(t *testing.T) {
	store := newMemStore()
	store.addAccount("acc_1", 1000)
	provider := &stubProvider{reserveResult: reserveOK("RID1", "+1")}
	svc, _ := newRentalService(store, provider)

	if _, err := svc.CreateRental(context.Background(), ports.CreateRentalInput{
		AccountID: "acc_1", Service: "wa", Price: 100,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Age the rental past its deadline.
	store.rentals["RID1"].ExpiresAt = store.rentals["RID1"].CreatedAt.Add(-domain.RentalTTL)

	views, err := svc.ListRentals(context.Background(), "acc_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 rental, got %d", len(views))
	}
	if views[0].Status != string(domain.RentalExpired) {
		t.Errorf("expected expired at read time, got %s", views[0].Status)
	}
	if store.rentals["RID1"].Status != domain.RentalExpired {
		t.Error("lazy expiry must be persisted")
	}
}

func TestApplyDelta_BalanceEqualsSumOfDeltas(t *testing.T) {
	store := newMemStore()
	store.addAccount("acc_1", 100)

	deltas := []struct {
		delta float64
		kind  domain.TransactionKind
	}{
		{+50, domain.KindCredit},
		{-30, domain.KindDebit},
		{+10, domain.KindRefund},
		{-120, domain.KindAdminAdjustment},
	}
	sum := 0.0
	for _, d := range deltas {
		if _, err := store.ApplyDelta(context.Background(), ports.ApplyDeltaInput{
			AccountID: "acc_1", Delta: d.delta, Kind: d.kind, Description: "t",
		}); err != nil {
			t.Fatalf("apply %v: %v", d, err)
		}
		sum += d.delta
	}

	if got := store.accounts["acc_1"].Credits; got != 100+sum {
		t.Errorf("final balance %.2f, want %.2f", got, 100+sum)
	}
	if len(store.txs) != len(deltas) {
		t.Errorf("expected %d transactions, got %d", len(deltas), len(store.txs))
	}
	for _, tx := range store.txs {
		diff := tx.BalanceAfter - tx.BalanceBefore
		switch tx.Kind {
		case domain.KindCredit, domain.KindRefund:
			if diff != tx.Amount {
				t.Errorf("%s: diff %.2f != amount %.2f", tx.Kind, diff, tx.Amount)
			}
		case domain.KindDebit:
			if diff != -tx.Amount {
				t.Errorf("debit: diff %.2f != -amount %.2f", diff, tx.Amount)
			}
		}
	}
}
