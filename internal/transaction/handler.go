package transaction

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/sango-bank/sango_bank/internal/account"
	"github.com/sango-bank/sango_bank/internal/lock"
)

// Handler exposes transaction HTTP endpoints.
type Handler struct {
	engine   *Engine
	accounts account.Repository
}

// NewHandler builds a transaction HTTP handler.
func NewHandler(engine *Engine, accounts account.Repository) *Handler {
	return &Handler{engine: engine, accounts: accounts}
}

type moveRequest struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
}

type transferRequest struct {
	FromAccountNumber string          `json:"from_account_number"`
	ToAccountNumber   string          `json:"to_account_number"`
	Amount            decimal.Decimal `json:"amount"`
}

type transactionResponse struct {
	TransactionID string          `json:"transaction_id"`
	FromAccount   string          `json:"from_account,omitempty"`
	ToAccount     string          `json:"to_account,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toResponse(txn Transaction) transactionResponse {
	return transactionResponse{
		TransactionID: txn.ID,
		FromAccount:   txn.FromAccount,
		ToAccount:     txn.ToAccount,
		Amount:        txn.Amount,
		Fee:           txn.Fee,
		Type:          string(txn.Type),
		Status:        string(txn.Status),
		CreatedAt:     txn.CreatedAt,
	}
}

// Deposit credits an account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if !account.ValidNumber(req.AccountNumber) {
		return fiber.NewError(http.StatusBadRequest, "account number must be 10 digits")
	}

	txn, err := h.engine.Deposit(c.UserContext(), req.AccountNumber, req.Amount)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(txn))
}

// Withdraw debits an account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if !account.ValidNumber(req.AccountNumber) {
		return fiber.NewError(http.StatusBadRequest, "account number must be 10 digits")
	}

	txn, err := h.engine.Withdraw(c.UserContext(), req.AccountNumber, req.Amount)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(txn))
}

// Transfer moves funds between two accounts.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if !account.ValidNumber(req.FromAccountNumber) || !account.ValidNumber(req.ToAccountNumber) {
		return fiber.NewError(http.StatusBadRequest, "account numbers must be 10 digits")
	}

	txn, err := h.engine.Transfer(c.UserContext(), req.FromAccountNumber, req.ToAccountNumber, req.Amount)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(txn))
}

type historyResponse struct {
	AccountNumber string                `json:"account_number"`
	Transactions  []transactionResponse `json:"transactions"`
	TotalPages    int                   `json:"total_pages"`
	TotalElements int64                 `json:"total_elements"`
	HasNext       bool                  `json:"has_next"`
}

// History lists an account's transactions, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	number := c.Params("number")
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 20)

	if _, err := h.accounts.Get(c.UserContext(), number); err != nil {
		return mapError(err)
	}

	result, err := h.engine.History(c.UserContext(), number, page, size)
	if err != nil {
		return mapError(err)
	}

	items := make([]transactionResponse, 0, len(result.Transactions))
	for _, txn := range result.Transactions {
		items = append(items, toResponse(txn))
	}
	return c.Status(http.StatusOK).JSON(historyResponse{
		AccountNumber: number,
		Transactions:  items,
		TotalPages:    result.TotalPages,
		TotalElements: result.TotalElements,
		HasNext:       result.HasNext,
	})
}

// mapError translates engine errors into stable HTTP responses. Unexpected
// failures surface as an opaque 500.
func mapError(err error) error {
	switch {
	case errors.Is(err, account.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "account not found")
	case errors.Is(err, account.ErrNotActive):
		return fiber.NewError(http.StatusBadRequest, "account not active")
	case errors.Is(err, ErrInsufficientBalance):
		return fiber.NewError(http.StatusBadRequest, "insufficient balance")
	case errors.Is(err, ErrDailyLimitExceeded):
		return fiber.NewError(http.StatusBadRequest, "daily limit exceeded")
	case errors.Is(err, ErrInvalidTransaction):
		return fiber.NewError(http.StatusBadRequest, "invalid transaction")
	case errors.Is(err, lock.ErrAcquireTimeout), errors.Is(err, lock.ErrAcquireInterrupted):
		return fiber.NewError(http.StatusConflict, "account busy, please retry")
	default:
		return fiber.NewError(http.StatusInternalServerError, "system error")
	}
}
