package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sango-bank/sango_bank/internal/account"
	"github.com/sango-bank/sango_bank/internal/transaction"
)

// RegisterAccountRoutes wires account lifecycle and history endpoints.
func RegisterAccountRoutes(router fiber.Router, h *account.Handler, txh *transaction.Handler) {
	router.Post("/accounts", h.Create)
	router.Get("/accounts/:number", h.Get)
	router.Delete("/accounts/:number", h.Delete)
	router.Get("/accounts/:number/transactions", txh.History)
}
