package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/smsrent/rental-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
// Shortfall is present only on insufficient-balance rejections.
type errorResponse struct {
	Error     string  `json:"error"`
	Shortfall float64 `json:"shortfall,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// A debit that would overdraw the account: 402 with the shortfall so the
	// client can prompt for the exact top-up.
	var insufficient *domain.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		return http.StatusPaymentRequired, errorResponse{
			Error:     "insufficient balance",
			Shortfall: insufficient.Shortfall,
		}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, errorResponse{Error: "account not found"}
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, errorResponse{Error: "account already exists"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrAccountNotActive):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrRentalNotFound):
		return http.StatusNotFound, errorResponse{Error: "rental not found"}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrInsufficientAtCommit):
		return http.StatusConflict, errorResponse{Error: "balance changed during rental creation, please retry"}
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Error: "no numbers available right now, try again later"}
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, errorResponse{Error: "too many active rentals"}
	case errors.Is(err, domain.ErrBadService):
		return http.StatusBadRequest, errorResponse{Error: "invalid service code"}
	case errors.Is(err, domain.ErrProviderConfig):
		log.Error().Err(err).Msg("upstream credentials misconfigured")
		return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
	}

	// Unrecognized upstream payloads: the raw body stays in the logs, the
	// client gets a plain 502.
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		log.Error().
			Err(err).
			Str("op", upstream.Op).
			Str("raw", upstream.Raw).
			Msg("upstream provider error")
		return http.StatusBadGateway, errorResponse{Error: "upstream provider error"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
