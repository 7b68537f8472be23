package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/smsrent/rental-system/internal/core/domain"
)

func render(t *testing.T, err error) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec.Code, body
}

func TestErrorHandler_InsufficientBalanceCarriesShortfall(t *testing.T) {
	code, body := render(t, &domain.InsufficientBalanceError{
		Balance:   100,
		Required:  300,
		Shortfall: 200,
	})
	if code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", code)
	}
	if body.Shortfall != 200 {
		t.Errorf("shortfall = %v, want 200", body.Shortfall)
	}
}

func TestErrorHandler_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"account exists", domain.ErrAccountExists, http.StatusConflict},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"account not active", domain.ErrAccountNotActive, http.StatusForbidden},
		{"rental not found", domain.ErrRentalNotFound, http.StatusNotFound},
		{"invalid transition", domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"insufficient at commit", domain.ErrInsufficientAtCommit, http.StatusConflict},
		{"service unavailable", domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests},
		{"bad service", domain.ErrBadService, http.StatusBadRequest},
		{"provider config", domain.ErrProviderConfig, http.StatusInternalServerError},
		{"upstream", &domain.UpstreamError{Op: "getNumber", Raw: "GARBAGE"}, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := render(t, tc.err)
			if code != tc.want {
				t.Fatalf("status = %d, want %d", code, tc.want)
			}
			if body.Error == "" {
				t.Error("error envelope missing message")
			}
		})
	}
}

func TestErrorHandler_WrappedErrorsStillMap(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), domain.ErrRentalNotFound)
	code, _ := render(t, wrapped)
	if code != http.StatusNotFound {
		t.Fatalf("wrapped sentinel must still map, got %d", code)
	}
}

func TestErrorHandler_EchoErrorsPassThrough(t *testing.T) {
	code, body := render(t, echo.NewHTTPError(http.StatusTeapot, "short and stout"))
	if code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", code)
	}
	if body.Error != "short and stout" {
		t.Errorf("unexpected message %q", body.Error)
	}
}

func TestErrorHandler_UnexpectedErrorsHideDetails(t *testing.T) {
	_, body := render(t, errors.New("mongo: connection reset at 10.0.0.5"))
	if body.Error != "internal server error" {
		t.Errorf("internal details leaked: %q", body.Error)
	}
}
