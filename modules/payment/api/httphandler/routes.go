package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/payments")

	r.Get("/pricing", h.GetPricing)
	r.Get("/networks", h.GetNetworks)
	r.Get("/treasury", h.GetTreasury)
	r.Get("/subscriptions/:accountId", h.GetSubscription)
	r.Post("/verify", h.VerifyPayment)
	r.Post("/check-transaction", h.CheckTransaction)
	return nil
}
