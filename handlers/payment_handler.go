package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prasetyadi/edu_registration/ledger"
	"github.com/prasetyadi/edu_registration/services"
)

// Ledger is the engine every payment mutation goes through. main wires
// it up before the routes are registered.
var Ledger *ledger.Engine

func InitLedger(engine *ledger.Engine) {
	Ledger = engine
}

// ledgerError translates the engine's typed failures into HTTP status
// codes. Business-rule violations carry their message to the caller;
// infrastructure failures stay opaque.
func ledgerError(c *fiber.Ctx, err error) error {
	if ledger.IsValidationError(err) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	if errors.Is(err, ledger.ErrPaymentNotFound) || errors.Is(err, ledger.ErrRegistrationNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
}

type IssueInvoiceRequest struct {
	Ordinal int    `json:"ordinal" validate:"required,min=1"`
	Amount  string `json:"amount" validate:"required"`
	DueDate string `json:"due_date" validate:"required,datetime=2006-01-02"`
	Notes   string `json:"notes"`
}

func IssueInstallmentInvoice(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var req IssueInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid due date format, expected YYYY-MM-DD"})
	}

	result, err := Ledger.IssueInstallmentInvoice(paymentID, req.Ordinal, req.Amount, dueDate, req.Notes, actorID(c))
	if err != nil {
		return ledgerError(c, err)
	}

	go services.GenerateInvoiceDocument(result.Payment, result.Installment)

	return c.JSON(fiber.Map{
		"status":              result.Payment.Status,
		"invoice_number":      result.InvoiceNumber,
		"installment":         result.Installment,
		"notification_queued": result.NotificationQueued,
	})
}

type UpdateStatusRequest struct {
	Status           string `json:"status" validate:"required"`
	AmountPaidDelta  string `json:"amount_paid_delta"`
	Notes            string `json:"notes"`
	IsManual         bool   `json:"is_manual"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
}

func UpdatePaymentStatus(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := Ledger.UpdateStatus(ledger.StatusUpdateInput{
		PaymentID:        paymentID,
		RequestedStatus:  req.Status,
		AmountPaidDelta:  req.AmountPaidDelta,
		Notes:            req.Notes,
		ActorID:          actorID(c),
		IsManual:         req.IsManual,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		return ledgerError(c, err)
	}

	if result.Installment != nil && result.Installment.ReceiptNumber != nil {
		go services.GenerateReceiptDocument(result.Payment, *result.Installment)
	}

	return c.JSON(fiber.Map{
		"status":              result.Status,
		"amount_paid":         result.AmountPaid,
		"receipt_number":      result.ReceiptNumber,
		"notification_queued": result.NotificationQueued,
	})
}

type ManualPaymentRequest struct {
	Amount    string `json:"amount" validate:"required"`
	Method    string `json:"method" validate:"required,oneof=bank_transfer cash other"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

func RecordManualPayment(c *fiber.Ctx) error {
	registrationID, err := uuid.Parse(c.Params("registrationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid registration ID format"})
	}

	var req ManualPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := Ledger.RecordManualPayment(ledger.ManualPaymentInput{
		RegistrationID: registrationID,
		Amount:         req.Amount,
		Method:         req.Method,
		Reference:      req.Reference,
		Notes:          req.Notes,
		ActorID:        actorID(c),
	})
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{
		"payment_id":          result.Payment.ID,
		"status":              result.Status,
		"amount_paid":         result.AmountPaid,
		"invoice_number":      result.Payment.InvoiceNumber,
		"receipt_number":      result.ReceiptNumber,
		"notification_queued": result.NotificationQueued,
	})
}

type ProofRequest struct {
	ProofURL string `json:"proof_url" validate:"required,url"`
}

func RecordProofOfPayment(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var req ProofRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	entry, err := Ledger.RecordProofOfPayment(paymentID, req.ProofURL)
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{"installment": entry})
}

func GetPayment(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	detail, err := Ledger.GetPaymentWithHistory(paymentID)
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(fiber.Map{
		"payment":                detail.Payment,
		"history":                detail.History,
		"installment_count":      detail.InstallmentCount,
		"remaining_installments": detail.RemainingInstallments,
		"overdue":                detail.Overdue,
	})
}
