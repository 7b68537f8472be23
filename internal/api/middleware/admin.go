package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smsrent/rental-system/internal/core/domain"
	"github.com/smsrent/rental-system/internal/core/ports"
)

// AdminOnly authorizes admin routes against the stored account, not the token
// claim: the account is re-loaded and must carry role "admin" right now, so a
// demotion takes effect before the token expires.
func AdminOnly(accounts ports.AccountRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accountID, _ := c.Get("account_id").(string)
			if accountID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			account, err := accounts.FindByID(c.Request().Context(), accountID)
			if err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			if account.Role != domain.RoleAdmin || account.Status != domain.AccountActive {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}

			return next(c)
		}
	}
}
