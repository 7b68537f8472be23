package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smsrent/rental-system/internal/core/domain"
	"github.com/smsrent/rental-system/internal/core/ports"
)

const defaultListLimit = 100

type AdminHandler struct {
	adminService ports.AdminService
}

func NewAdminHandler(adminService ports.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

type adjustCreditsRequest struct {
	// Amount is signed: positive credits, negative deducts. Zero is invalid.
	Amount float64 `json:"amount" validate:"required"`
	Note   string  `json:"note"`
}

type bulkCreditsRequest struct {
	AccountIDs []string `json:"account_ids" validate:"required,min=1"`
	Amount     float64  `json:"amount" validate:"required"`
	Note       string   `json:"note"`
}

type bulkCreditsResponse struct {
	Succeeded []string            `json:"succeeded"`
	Failed    []ports.BulkFailure `json:"failed"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended banned"`
}

type statsResponse struct {
	TotalAccounts      int64   `json:"total_accounts"`
	ActiveAccounts     int64   `json:"active_accounts"`
	CirculatingCredits float64 `json:"circulating_credits"`
	RecentTransactions int64   `json:"recent_transactions"`
}

type providerBalanceResponse struct {
	Balance   float64 `json:"balance"`
	Low       bool    `json:"low"`
	FetchedAt string  `json:"fetched_at"`
}

// AdjustCredits handles POST /v1/admin/accounts/:id/credits.
func (h *AdminHandler) AdjustCredits(c echo.Context) error {
	actorID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	var req adjustCreditsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tx, err := h.adminService.AdjustBalance(c.Request().Context(), ports.AdjustBalanceInput{
		ActorID:  actorID,
		TargetID: c.Param("id"),
		Amount:   req.Amount,
		Note:     req.Note,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tx)
}

// BulkAdjustCredits handles POST /v1/admin/accounts/bulk-credits.
// Targets are processed independently; the response reports partial success.
func (h *AdminHandler) BulkAdjustCredits(c echo.Context) error {
	actorID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	var req bulkCreditsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.adminService.AdjustBalanceBulk(c.Request().Context(), ports.BulkAdjustInput{
		ActorID:   actorID,
		TargetIDs: req.AccountIDs,
		Amount:    req.Amount,
		Note:      req.Note,
	})
	if err != nil {
		return err
	}

	resp := bulkCreditsResponse{Succeeded: result.Succeeded, Failed: result.Failed}
	if resp.Succeeded == nil {
		resp.Succeeded = []string{}
	}
	if resp.Failed == nil {
		resp.Failed = []ports.BulkFailure{}
	}
	return c.JSON(http.StatusOK, resp)
}

// ListAccounts handles GET /v1/admin/accounts?search=&limit=.
func (h *AdminHandler) ListAccounts(c echo.Context) error {
	accounts, err := h.adminService.ListAccounts(c.Request().Context(),
		c.QueryParam("search"), queryLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accounts)
}

// GetAccount handles GET /v1/admin/accounts/:id.
func (h *AdminHandler) GetAccount(c echo.Context) error {
	account, err := h.adminService.GetAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// UpdateAccountStatus handles PATCH /v1/admin/accounts/:id.
func (h *AdminHandler) UpdateAccountStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.adminService.UpdateAccountStatus(c.Request().Context(),
		c.Param("id"), domain.AccountStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// ListTransactions handles GET /v1/admin/transactions?account_id=&limit=.
func (h *AdminHandler) ListTransactions(c echo.Context) error {
	txs, err := h.adminService.ListTransactions(c.Request().Context(),
		c.QueryParam("account_id"), queryLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txs)
}

// Stats handles GET /v1/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.adminService.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{
		TotalAccounts:      stats.TotalAccounts,
		ActiveAccounts:     stats.ActiveAccounts,
		CirculatingCredits: stats.CirculatingCredits,
		RecentTransactions: stats.RecentTransactions,
	})
}

// ProviderBalance handles GET /v1/admin/provider-balance.
func (h *AdminHandler) ProviderBalance(c echo.Context) error {
	pb, err := h.adminService.ProviderBalance(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, providerBalanceResponse{
		Balance:   pb.Balance,
		Low:       pb.Low,
		FetchedAt: pb.FetchedAt.UTC().Format(time.RFC3339),
	})
}

func queryLimit(c echo.Context) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}
