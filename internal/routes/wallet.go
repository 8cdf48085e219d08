package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rentiva/walletsync/internal/wallet"
)

// RegisterWalletRoutes wires the wallet store endpoints. Only the top-up
// action is idempotency-guarded: it is the one call that opens a payment
// session with the external provider.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, idem fiber.Handler) {
	r.Get("/wallet", h.Snapshot)
	r.Post("/wallet/refresh", h.Refresh)
	r.Post("/wallet/topup", idem, h.Topup)
	r.Get("/wallet/transactions", h.Transactions)
}
