package ledger

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/prasetyadi/edu_registration/models"
	"github.com/prasetyadi/edu_registration/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Notifier delivers an email after a mutation has committed. A send
// failure is logged and reported, never propagated: it must not undo a
// committed financial state change.
type Notifier interface {
	Send(to, subject, htmlBody string) error
}

// PaymentEvent is broadcast to connected admin dashboards after commit.
type PaymentEvent struct {
	PaymentID      uuid.UUID `json:"payment_id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	Event          string    `json:"event"`
	Status         string    `json:"status"`
	AmountPaid     string    `json:"amount_paid"`
}

type EventPublisher interface {
	PublishPaymentEvent(event PaymentEvent)
}

// Engine owns every mutation of a payment. Each operation runs inside a
// single transaction: load the locked payment row, validate, update the
// installment rows and amounts, generate document numbers, append the
// audit record, commit. Side effects (email, websocket) fire only after
// the commit.
type Engine struct {
	db       *gorm.DB
	notifier Notifier
	events   EventPublisher
}

func NewEngine(db *gorm.DB, notifier Notifier, events EventPublisher) *Engine {
	return &Engine{db: db, notifier: notifier, events: events}
}

type InvoiceResult struct {
	Payment            models.Payment
	Installment        models.PaymentInstallment
	InvoiceNumber      string
	NotificationQueued bool
}

type StatusUpdateResult struct {
	Payment            models.Payment
	Status             models.PaymentStatus
	AmountPaid         decimal.Decimal
	ReceiptNumber      *string
	Installment        *models.PaymentInstallment
	NotificationQueued bool

	// noop marks an idempotent replay: nothing was written, so no
	// post-commit side effects fire either.
	noop bool
}

type StatusUpdateInput struct {
	PaymentID        uuid.UUID
	RequestedStatus  string
	AmountPaidDelta  interface{}
	Notes            string
	ActorID          string
	IsManual         bool
	PaymentMethod    string
	PaymentReference string
}

type ManualPaymentInput struct {
	RegistrationID uuid.UUID
	Amount         interface{}
	Method         string
	Reference      string
	Notes          string
	ActorID        string
}

type PaymentDetail struct {
	Payment               models.Payment
	History               []models.PaymentHistory
	InstallmentCount      int
	RemainingInstallments int
	Overdue               bool
}

// IssueInstallmentInvoice opens the next installment for collection: it
// records the configured amount and due date on the installment row,
// assigns the payment's invoice number on first call, and stamps the
// payment's active installment and top-level due date. It does not move
// the status; only a verified payment does that.
func (e *Engine) IssueInstallmentInvoice(paymentID uuid.UUID, ordinal int, amount interface{}, dueDate time.Time, notes, actorID string) (*InvoiceResult, error) {
	var result InvoiceResult
	err := e.db.Transaction(func(tx *gorm.DB) error {
		p, err := e.loadPaymentForUpdate(tx, paymentID)
		if err != nil {
			return err
		}
		plan := p.Registration.Program.InstallmentPlan

		if p.Status.Kind == models.StatusPaid || p.Status.Kind == models.StatusCancelled {
			return NewValidationError("payment is %s, no further invoices can be issued", p.Status)
		}
		expected := 1
		if p.Status.IsInstallment() {
			expected = p.Status.Ordinal + 1
		}
		if ordinal != expected {
			return NewValidationError("expected next installment is %d, got %d", expected, ordinal)
		}
		if plan > 0 && ordinal > plan {
			return NewValidationError("installment %d exceeds the plan of %d installments", ordinal, plan)
		}
		if dueDate.IsZero() {
			return NewValidationError("due date is required")
		}
		if dueDate.Before(startOfToday()) {
			return NewValidationError("due date %s is in the past", dueDate.Format("2006-01-02"))
		}

		amt := ParseAmount(amount, decimal.Zero)
		if !amt.IsPositive() {
			return NewValidationError("invoice amount must be positive")
		}
		remaining := p.TotalAmount.Sub(p.AmountPaid)
		if amt.GreaterThan(remaining) {
			return NewValidationError("amount %s exceeds remaining balance %s", amt, remaining)
		}

		now := time.Now()
		if p.InvoiceNumber == nil {
			number, err := NextInvoiceNumber(tx, now)
			if err != nil {
				return err
			}
			p.InvoiceNumber = &number
		}

		entry, err := ensureInstallment(tx, p.ID, ordinal)
		if err != nil {
			return err
		}
		invoiced := models.InstallmentStatusInvoiced
		upd := InstallmentUpdate{Amount: &amt, DueDate: &dueDate, InvoicedAt: &now, Status: &invoiced}
		if notes != "" {
			upd.Notes = &notes
		}
		if err := mergeInstallment(tx, entry, upd); err != nil {
			return err
		}

		oldStatus, oldPaid := p.Status, p.AmountPaid
		p.CurrentInstallment = ordinal
		p.DueDate = &dueDate
		appendNote(p, notes)
		if err := tx.Save(p).Error; err != nil {
			return err
		}

		note := notes
		if note == "" {
			note = fmt.Sprintf("invoice issued for installment %d", ordinal)
		}
		if err := appendHistory(tx, p, oldStatus, oldPaid, decimal.Zero, note, actorID); err != nil {
			return err
		}

		result = InvoiceResult{Payment: *p, Installment: *entry, InvoiceNumber: *p.InvoiceNumber}
		return nil
	})
	if err != nil {
		return nil, err
	}

	student := result.Payment.Registration.Student
	installmentAmount := ResolveInstallmentAmount(&result.Payment, &result.Installment, nil,
		result.Payment.Registration.Program.InstallmentPlan, result.Installment.Ordinal)
	result.NotificationQueued = e.notify(student.Email,
		fmt.Sprintf("Invoice %s - Installment %d", result.InvoiceNumber, result.Installment.Ordinal),
		fmt.Sprintf("<h1>Invoice Issued</h1><p>Installment %d of %s is due on %s. Invoice number: %s.</p>",
			result.Installment.Ordinal, utils.FormatRupiah(installmentAmount),
			result.Installment.DueDate.Format("2 January 2006"), result.InvoiceNumber))
	e.publish("invoice_issued", &result.Payment)
	return &result, nil
}

// RecordProofOfPayment attaches the stored proof reference to the active
// installment and resets its verification fields so an admin has to look
// at it again.
func (e *Engine) RecordProofOfPayment(paymentID uuid.UUID, proofRef string) (*models.PaymentInstallment, error) {
	if proofRef == "" {
		return nil, NewValidationError("proof reference is required")
	}
	var entry *models.PaymentInstallment
	var payment models.Payment
	err := e.db.Transaction(func(tx *gorm.DB) error {
		p, err := e.loadPaymentForUpdate(tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status.Kind == models.StatusPaid || p.Status.Kind == models.StatusCancelled {
			return NewValidationError("payment is %s, proof can no longer be submitted", p.Status)
		}
		if p.CurrentInstallment == 0 {
			return NewValidationError("no active installment to attach proof to")
		}

		entry, err = ensureInstallment(tx, p.ID, p.CurrentInstallment)
		if err != nil {
			return err
		}
		now := time.Now()
		waiting := models.InstallmentStatusWaitingVerification
		upd := InstallmentUpdate{
			ProofURL:          &proofRef,
			ProofUploadedAt:   &now,
			Status:            &waiting,
			ClearVerification: true,
		}
		if err := mergeInstallment(tx, entry, upd); err != nil {
			return err
		}

		note := fmt.Sprintf("proof of payment uploaded for installment %d", p.CurrentInstallment)
		if err := appendHistory(tx, p, p.Status, p.AmountPaid, decimal.Zero, note, ""); err != nil {
			return err
		}
		payment = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.publish("proof_uploaded", &payment)
	return entry, nil
}

// UpdateStatus validates and applies a requested transition together with
// an optional paid-amount delta. When the cumulative paid amount reaches
// the total owed the status is forced to paid regardless of what was
// requested, and the receipt number is assigned exactly once.
func (e *Engine) UpdateStatus(input StatusUpdateInput) (*StatusUpdateResult, error) {
	var result StatusUpdateResult
	err := e.db.Transaction(func(tx *gorm.DB) error {
		p, err := e.loadPaymentForUpdate(tx, input.PaymentID)
		if err != nil {
			return err
		}
		plan := p.Registration.Program.InstallmentPlan
		requested, err := models.ParsePaymentStatus(input.RequestedStatus, plan)
		if err != nil {
			return NewValidationError("invalid requested status: %v", err)
		}
		return e.applyStatusUpdate(tx, p, requested, input, &result)
	})
	if err != nil {
		return nil, err
	}
	e.finishStatusUpdate(&result)
	return &result, nil
}

// RecordManualPayment records an out-of-band payment (bank transfer,
// cash) for a registration, creating the pending payment row first when
// none exists yet. Invoice and receipt numbers are assigned as needed.
func (e *Engine) RecordManualPayment(input ManualPaymentInput) (*StatusUpdateResult, error) {
	var result StatusUpdateResult
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var reg models.Registration
		err := tx.Preload("Student").Preload("Program").First(&reg, "id = ?", input.RegistrationID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistrationNotFound
		}
		if err != nil {
			return err
		}

		p, err := e.findOrCreatePayment(tx, &reg)
		if err != nil {
			return err
		}

		if p.InvoiceNumber == nil {
			number, err := NextInvoiceNumber(tx, time.Now())
			if err != nil {
				return err
			}
			p.InvoiceNumber = &number
		}

		plan := reg.Program.InstallmentPlan
		next := 1
		if p.Status.IsInstallment() {
			next = p.Status.Ordinal + 1
		}
		var requested models.PaymentStatus
		if plan > 0 && next > plan {
			requested = models.Paid
		} else {
			requested, err = models.Installment(next, plan)
			if err != nil {
				return NewValidationError("%v", err)
			}
		}

		statusInput := StatusUpdateInput{
			PaymentID:        p.ID,
			AmountPaidDelta:  input.Amount,
			Notes:            input.Notes,
			ActorID:          input.ActorID,
			IsManual:         true,
			PaymentMethod:    input.Method,
			PaymentReference: input.Reference,
		}
		return e.applyStatusUpdate(tx, p, requested, statusInput, &result)
	})
	if err != nil {
		return nil, err
	}
	e.finishStatusUpdate(&result)
	return &result, nil
}

// GetPaymentWithHistory returns the payment, its ordered audit trail and
// the derived installment counts. Read-only, no transaction needed.
func (e *Engine) GetPaymentWithHistory(paymentID uuid.UUID) (*PaymentDetail, error) {
	var p models.Payment
	err := e.db.
		Preload("Registration.Student").
		Preload("Registration.Program").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") }).
		First(&p, "id = ?", paymentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	history, err := LoadHistory(e.db, p.ID)
	if err != nil {
		return nil, err
	}

	plan := p.Registration.Program.InstallmentPlan
	settled := 0
	switch {
	case p.Status.IsInstallment():
		settled = p.Status.Ordinal
	case p.Status.Kind == models.StatusPaid:
		settled = plan
	}
	remaining := plan - settled
	if remaining < 0 {
		remaining = 0
	}

	return &PaymentDetail{
		Payment:               p,
		History:               history,
		InstallmentCount:      plan,
		RemainingInstallments: remaining,
		Overdue:               IsOverdue(&p, time.Now()),
	}, nil
}

// IsOverdue derives the informational overdue flag: the active
// installment's resolved due date has passed and it is not paid yet. It
// is never stored as a status.
func IsOverdue(p *models.Payment, now time.Time) bool {
	if p.Status.Kind == models.StatusPaid || p.Status.Kind == models.StatusCancelled {
		return false
	}
	if p.CurrentInstallment == 0 {
		return false
	}
	entry := findInstallment(p.Installments, p.CurrentInstallment)
	if entry != nil && entry.Status == models.InstallmentStatusPaid {
		return false
	}
	due := ResolveInstallmentDueDate(p, entry, p.CurrentInstallment)
	if due == nil {
		return false
	}
	return due.Before(now)
}

func (e *Engine) applyStatusUpdate(tx *gorm.DB, p *models.Payment, requested models.PaymentStatus, input StatusUpdateInput, result *StatusUpdateResult) error {
	plan := p.Registration.Program.InstallmentPlan

	delta := ParseAmount(input.AmountPaidDelta, decimal.Zero)
	if delta.IsNegative() {
		return NewValidationError("amount delta cannot be negative")
	}
	if requested.Kind == models.StatusCancelled && delta.IsPositive() {
		return NewValidationError("cannot record an amount while cancelling")
	}

	newPaid := p.AmountPaid.Add(delta)
	if newPaid.GreaterThan(p.TotalAmount) {
		return NewValidationError("amount paid %s would exceed total %s",
			utils.FormatRupiah(newPaid), utils.FormatRupiah(p.TotalAmount))
	}

	// Full payoff overrides whatever transition was requested.
	override := newPaid.GreaterThanOrEqual(p.TotalAmount) &&
		p.Status.Kind != models.StatusCancelled &&
		requested.Kind != models.StatusCancelled
	final := requested
	if override {
		final = models.Paid
	} else if err := checkTransition(p.Status, requested, plan, installmentPaidCheck(tx, p.ID)); err != nil {
		return err
	}

	if final.Equal(p.Status) && delta.IsZero() {
		// Idempotent no-op: nothing changes, nothing is audited.
		result.Payment = *p
		result.Status = p.Status
		result.AmountPaid = p.AmountPaid
		result.ReceiptNumber = p.ReceiptNumber
		result.noop = true
		return nil
	}

	now := time.Now()
	oldStatus, oldPaid := p.Status, p.AmountPaid
	p.AmountPaid = newPaid
	p.Status = final

	if final.Kind == models.StatusPaid && p.ReceiptNumber == nil {
		number, err := NextReceiptNumber(tx, now)
		if err != nil {
			return err
		}
		p.ReceiptNumber = &number
	}

	settled := 0
	if delta.IsPositive() {
		switch {
		case requested.IsInstallment():
			settled = requested.Ordinal
		case p.CurrentInstallment > 0:
			settled = p.CurrentInstallment
		}
	}
	if settled > 0 {
		entry, err := ensureInstallment(tx, p.ID, settled)
		if err != nil {
			return err
		}
		paidAmount := delta
		if entry.PaidAmount != nil {
			paidAmount = entry.PaidAmount.Add(delta)
		}
		actor := actorOrSystem(input.ActorID)
		paid := models.InstallmentStatusPaid
		upd := InstallmentUpdate{
			PaidAmount: &paidAmount,
			PaidAt:     &now,
			Status:     &paid,
			VerifiedBy: &actor,
			VerifiedAt: &now,
		}
		if entry.ReceiptNumber == nil {
			if final.Kind == models.StatusPaid && p.ReceiptNumber != nil {
				// The payoff receipt covers the final installment.
				upd.ReceiptNumber = p.ReceiptNumber
			} else {
				number, err := NextReceiptNumber(tx, now)
				if err != nil {
					return err
				}
				upd.ReceiptNumber = &number
			}
			upd.ReceiptGeneratedAt = &now
		}
		if err := mergeInstallment(tx, entry, upd); err != nil {
			return err
		}
		settledEntry := *entry
		result.Installment = &settledEntry
		if requested.IsInstallment() && p.CurrentInstallment < requested.Ordinal {
			p.CurrentInstallment = requested.Ordinal
		}
	}

	if final.Kind == models.StatusPaid {
		p.CurrentInstallment = 0
		p.DueDate = nil
	}
	if input.IsManual {
		if input.PaymentMethod != "" {
			p.PaymentMethod = &input.PaymentMethod
		}
		if input.PaymentReference != "" {
			p.PaymentReference = &input.PaymentReference
		}
	}
	if delta.IsPositive() {
		actor := actorOrSystem(input.ActorID)
		p.VerifiedBy = &actor
		p.VerifiedAt = &now
	}
	appendNote(p, input.Notes)

	if err := tx.Save(p).Error; err != nil {
		return err
	}
	if err := appendHistory(tx, p, oldStatus, oldPaid, delta, input.Notes, input.ActorID); err != nil {
		return err
	}

	result.Payment = *p
	result.Status = p.Status
	result.AmountPaid = p.AmountPaid
	result.ReceiptNumber = p.ReceiptNumber
	return nil
}

func (e *Engine) findOrCreatePayment(tx *gorm.DB, reg *models.Registration) (*models.Payment, error) {
	var existing models.Payment
	err := lockForUpdate(tx).
		Where("registration_id = ? AND status <> ?", reg.ID, models.Cancelled.String()).
		First(&existing).Error
	if err == nil {
		existing.Registration = *reg
		if err := tx.Where("payment_id = ?", existing.ID).Order("ordinal ASC").Find(&existing.Installments).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := models.Payment{
		RegistrationID: reg.ID,
		TotalAmount:    reg.Program.TrainingCost,
		AmountPaid:     decimal.Zero,
		Status:         models.Pending,
	}
	if err := tx.Create(&p).Error; err != nil {
		return nil, err
	}
	p.Registration = *reg
	return &p, nil
}

func (e *Engine) loadPaymentForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	q := tx.
		Preload("Registration.Student").
		Preload("Registration.Program").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("ordinal ASC") })
	err := lockForUpdate(q).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (e *Engine) finishStatusUpdate(result *StatusUpdateResult) {
	if result.noop {
		return
	}
	student := result.Payment.Registration.Student
	switch result.Status.Kind {
	case models.StatusPaid:
		receipt := ""
		if result.ReceiptNumber != nil {
			receipt = *result.ReceiptNumber
		}
		result.NotificationQueued = e.notify(student.Email,
			"Payment Complete",
			fmt.Sprintf("<h1>Lunas!</h1><p>Your program fee of %s is fully paid. Receipt number: %s.</p>",
				utils.FormatRupiah(result.Payment.TotalAmount), receipt))
	case models.StatusInstallment:
		result.NotificationQueued = e.notify(student.Email,
			fmt.Sprintf("Installment %d Received", result.Status.Ordinal),
			fmt.Sprintf("<h1>Payment Received</h1><p>We have recorded your payment. Total paid so far: %s of %s.</p>",
				utils.FormatRupiah(result.AmountPaid), utils.FormatRupiah(result.Payment.TotalAmount)))
	}
	e.publish("status_updated", &result.Payment)
}

func (e *Engine) notify(to, subject, htmlBody string) bool {
	if e.notifier == nil || to == "" {
		return false
	}
	go func() {
		if err := e.notifier.Send(to, subject, htmlBody); err != nil {
			log.Printf("🔥 Failed to send payment email to %s: %v", to, err)
		}
	}()
	return true
}

func (e *Engine) publish(event string, p *models.Payment) {
	if e.events == nil {
		return
	}
	e.events.PublishPaymentEvent(PaymentEvent{
		PaymentID:      p.ID,
		RegistrationID: p.RegistrationID,
		Event:          event,
		Status:         p.Status.String(),
		AmountPaid:     p.AmountPaid.String(),
	})
}

func actorOrSystem(actorID string) string {
	if actorID == "" {
		return systemActor
	}
	return actorID
}

func appendNote(p *models.Payment, note string) {
	if note == "" {
		return
	}
	if p.Notes == "" {
		p.Notes = note
		return
	}
	p.Notes = p.Notes + "\n" + note
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
