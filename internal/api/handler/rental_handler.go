package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smsrent/rental-system/internal/core/ports"
)

type RentalHandler struct {
	rentalService     ports.RentalService
	settlementService ports.SettlementService
}

func NewRentalHandler(rentalService ports.RentalService, settlementService ports.SettlementService) *RentalHandler {
	return &RentalHandler{
		rentalService:     rentalService,
		settlementService: settlementService,
	}
}

type createRentalRequest struct {
	Service string  `json:"service" validate:"required"`
	Price   float64 `json:"price" validate:"required,gt=0"`
}

type rentalResponse struct {
	RentalID     string    `json:"rental_id"`
	PhoneNumber  string    `json:"phone_number"`
	Service      string    `json:"service"`
	PriceCharged float64   `json:"price_charged"`
	NewBalance   float64   `json:"new_balance"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type rentalListItem struct {
	RentalID     string    `json:"rental_id"`
	PhoneNumber  string    `json:"phone_number"`
	Service      string    `json:"service"`
	Status       string    `json:"status"`
	PriceCharged float64   `json:"price_charged"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type pollResponse struct {
	Status     string     `json:"status"`
	Code       string     `json:"code,omitempty"`
	Text       string     `json:"text,omitempty"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// Create handles POST /v1/rentals.
func (h *RentalHandler) Create(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	var req createRentalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.rentalService.CreateRental(c.Request().Context(), ports.CreateRentalInput{
		AccountID: accountID,
		Service:   req.Service,
		Price:     req.Price,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, rentalResponse{
		RentalID:     result.RentalID,
		PhoneNumber:  result.PhoneNumber,
		Service:      result.Service,
		PriceCharged: result.PriceCharged,
		NewBalance:   result.NewBalance,
		ExpiresAt:    result.ExpiresAt,
	})
}

// List handles GET /v1/rentals.
func (h *RentalHandler) List(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	views, err := h.rentalService.ListRentals(c.Request().Context(), accountID)
	if err != nil {
		return err
	}

	items := make([]rentalListItem, 0, len(views))
	for _, v := range views {
		items = append(items, rentalListItem{
			RentalID:     v.RentalID,
			PhoneNumber:  v.PhoneNumber,
			Service:      v.Service,
			Status:       v.Status,
			PriceCharged: v.PriceCharged,
			CreatedAt:    v.CreatedAt,
			ExpiresAt:    v.ExpiresAt,
		})
	}
	return c.JSON(http.StatusOK, items)
}

// Poll handles GET /v1/rentals/:id/poll.
func (h *RentalHandler) Poll(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	result, err := h.settlementService.Poll(c.Request().Context(), accountID, c.Param("id"))
	if err != nil {
		return err
	}

	resp := pollResponse{
		Status: result.Status,
		Code:   result.Code,
		Text:   result.Text,
	}
	if !result.ReceivedAt.IsZero() {
		resp.ReceivedAt = &result.ReceivedAt
	}
	return c.JSON(http.StatusOK, resp)
}

// Messages handles GET /v1/rentals/:id/messages.
func (h *RentalHandler) Messages(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	views, err := h.settlementService.ListMessages(c.Request().Context(), accountID, c.Param("id"))
	if err != nil {
		return err
	}

	items := make([]messageResponse, 0, len(views))
	for _, v := range views {
		items = append(items, messageResponse{
			ID:         v.ID,
			Code:       v.Code,
			Text:       v.Text,
			ReceivedAt: v.ReceivedAt,
		})
	}
	return c.JSON(http.StatusOK, items)
}
