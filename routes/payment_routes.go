package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prasetyadi/edu_registration/handlers"
	"github.com/prasetyadi/edu_registration/middleware"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Students upload proof against their own payment; no login needed,
	// the payment id acts as the capability.
	api.Post("/payments/:paymentId/proof", handlers.RecordProofOfPayment)

	payments := api.Group("/payments", middleware.Protected(), middleware.StaffRequired())
	payments.Get("/:paymentId", handlers.GetPayment)
	payments.Post("/:paymentId/invoice", handlers.IssueInstallmentInvoice)
	payments.Patch("/:paymentId/status", handlers.UpdatePaymentStatus)

	manual := api.Group("/registrations", middleware.Protected(), middleware.StaffRequired())
	manual.Post("/:registrationId/manual-payment", handlers.RecordManualPayment)
}
