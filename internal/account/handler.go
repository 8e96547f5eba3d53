package account

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Account numbers are externally assigned 10-digit strings.
var accountNumberPattern = regexp.MustCompile(`^\d{10}$`)

// ValidNumber reports whether the account number has the expected format.
func ValidNumber(number string) bool {
	return accountNumberPattern.MatchString(number)
}

// Handler exposes account HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	AccountNumber string `json:"account_number"`
}

type accountResponse struct {
	AccountNumber      string          `json:"account_number"`
	Balance            decimal.Decimal `json:"balance"`
	DailyWithdrawLimit decimal.Decimal `json:"daily_withdraw_limit"`
	DailyTransferLimit decimal.Decimal `json:"daily_transfer_limit"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
}

func toResponse(acc Account) accountResponse {
	return accountResponse{
		AccountNumber:      acc.Number,
		Balance:            acc.Balance,
		DailyWithdrawLimit: acc.DailyWithdrawLimit,
		DailyTransferLimit: acc.DailyTransferLimit,
		Status:             string(acc.Status),
		CreatedAt:          acc.CreatedAt,
	}
}

// Create opens a new account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if !ValidNumber(req.AccountNumber) {
		return fiber.NewError(http.StatusBadRequest, "account number must be 10 digits")
	}

	acc, err := h.service.Open(c.UserContext(), req.AccountNumber)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return fiber.NewError(http.StatusConflict, "account number already exists")
		}
		return fiber.NewError(http.StatusInternalServerError, "failed to open account")
	}
	return c.Status(http.StatusCreated).JSON(toResponse(acc))
}

// Get returns account details.
func (h *Handler) Get(c *fiber.Ctx) error {
	number := c.Params("number")
	acc, err := h.service.Get(c.UserContext(), number)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "account not found")
		}
		return fiber.NewError(http.StatusInternalServerError, "failed to load account")
	}
	return c.Status(http.StatusOK).JSON(toResponse(acc))
}

// Delete deactivates an account with a zero balance.
func (h *Handler) Delete(c *fiber.Ctx) error {
	number := c.Params("number")
	if err := h.service.Close(c.UserContext(), number); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "account not found")
		case errors.Is(err, ErrBalanceRemaining):
			return fiber.NewError(http.StatusConflict, "account balance must be zero to close")
		default:
			return fiber.NewError(http.StatusInternalServerError, "failed to close account")
		}
	}
	return c.SendStatus(http.StatusNoContent)
}
