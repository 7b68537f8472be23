package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/smsrent/rental-system/internal/core/domain"
)

type stubAccounts struct {
	accounts map[string]*domain.Account
}

func (s *stubAccounts) Create(_ context.Context, _ *domain.Account) (*domain.Account, error) {
	return nil, nil
}

func (s *stubAccounts) FindByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

func (s *stubAccounts) FindByEmail(_ context.Context, _ string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (s *stubAccounts) List(_ context.Context, _ string, _ int) ([]*domain.Account, error) {
	return nil, nil
}

func (s *stubAccounts) UpdateStatus(_ context.Context, _ string, _ domain.AccountStatus) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func runAdminOnly(t *testing.T, repo *stubAccounts, accountID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if accountID != "" {
		c.Set("account_id", accountID)
	}

	handler := AdminOnly(repo)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAdminOnly_Allows(t *testing.T) {
	repo := &stubAccounts{accounts: map[string]*domain.Account{
		"adm_1": {ID: "adm_1", Role: domain.RoleAdmin, Status: domain.AccountActive},
	}}
	rec := runAdminOnly(t, repo, "adm_1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminOnly_RejectsUserRole(t *testing.T) {
	repo := &stubAccounts{accounts: map[string]*domain.Account{
		"acc_1": {ID: "acc_1", Role: domain.RoleUser, Status: domain.AccountActive},
	}}
	rec := runAdminOnly(t, repo, "acc_1")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAdminOnly_RejectsSuspendedAdmin(t *testing.T) {
	repo := &stubAccounts{accounts: map[string]*domain.Account{
		"adm_1": {ID: "adm_1", Role: domain.RoleAdmin, Status: domain.AccountSuspended},
	}}
	rec := runAdminOnly(t, repo, "adm_1")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAdminOnly_MissingClaims(t *testing.T) {
	repo := &stubAccounts{accounts: map[string]*domain.Account{}}
	rec := runAdminOnly(t, repo, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
