package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sango-bank/sango_bank/internal/transaction"
)

// RegisterTransactionRoutes wires the money movement endpoints.
func RegisterTransactionRoutes(router fiber.Router, h *transaction.Handler) {
	router.Post("/transactions/deposit", h.Deposit)
	router.Post("/transactions/withdraw", h.Withdraw)
	router.Post("/transactions/transfer", h.Transfer)
}
