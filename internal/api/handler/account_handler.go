package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smsrent/rental-system/internal/core/ports"
)

type AccountHandler struct {
	accounts ports.AccountRepository
}

func NewAccountHandler(accounts ports.AccountRepository) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type balanceResponse struct {
	Credits float64 `json:"credits"`
}

// Balance handles GET /v1/balance. The ledger-maintained balance on the
// account document is authoritative.
func (h *AccountHandler) Balance(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.FindByID(c.Request().Context(), accountID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, balanceResponse{Credits: account.Credits})
}
