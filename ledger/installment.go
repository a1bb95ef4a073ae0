package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/prasetyadi/edu_registration/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InstallmentUpdate carries fields to merge onto an installment row.
// Nil fields leave the stored value untouched, so callers update only
// what they mean to update.
type InstallmentUpdate struct {
	Amount             *decimal.Decimal
	DueDate            *time.Time
	PaidAmount         *decimal.Decimal
	PaidAt             *time.Time
	ProofURL           *string
	ProofUploadedAt    *time.Time
	ReceiptNumber      *string
	ReceiptGeneratedAt *time.Time
	VerifiedBy         *string
	VerifiedAt         *time.Time
	Notes              *string
	InvoicedAt         *time.Time
	Status             *string

	// ClearVerification nulls the verifier fields, used when a fresh
	// proof of payment supersedes an earlier verification.
	ClearVerification bool
}

func findInstallment(entries []models.PaymentInstallment, ordinal int) *models.PaymentInstallment {
	for i := range entries {
		if entries[i].Ordinal == ordinal {
			return &entries[i]
		}
	}
	return nil
}

// ensureInstallment returns the row for (payment, ordinal), creating an
// empty one if it does not exist yet. Other ordinals are never touched.
func ensureInstallment(tx *gorm.DB, paymentID uuid.UUID, ordinal int) (*models.PaymentInstallment, error) {
	var entry models.PaymentInstallment
	err := tx.Where(models.PaymentInstallment{PaymentID: paymentID, Ordinal: ordinal}).
		Attrs(models.PaymentInstallment{Status: models.InstallmentStatusInvoiced}).
		FirstOrCreate(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// mergeInstallment shallow-merges upd over the stored row. The configured
// amount is immutable once set: later invoices may only fill it in, never
// change it.
func mergeInstallment(tx *gorm.DB, entry *models.PaymentInstallment, upd InstallmentUpdate) error {
	fields := map[string]interface{}{}

	if upd.Amount != nil && entry.Amount == nil {
		fields["amount"] = *upd.Amount
		entry.Amount = upd.Amount
	}
	if upd.DueDate != nil {
		fields["due_date"] = *upd.DueDate
		entry.DueDate = upd.DueDate
	}
	if upd.PaidAmount != nil {
		fields["paid_amount"] = *upd.PaidAmount
		entry.PaidAmount = upd.PaidAmount
	}
	if upd.PaidAt != nil {
		fields["paid_at"] = *upd.PaidAt
		entry.PaidAt = upd.PaidAt
	}
	if upd.ProofURL != nil {
		fields["proof_url"] = *upd.ProofURL
		entry.ProofURL = upd.ProofURL
	}
	if upd.ProofUploadedAt != nil {
		fields["proof_uploaded_at"] = *upd.ProofUploadedAt
		entry.ProofUploadedAt = upd.ProofUploadedAt
	}
	if upd.ReceiptNumber != nil {
		fields["receipt_number"] = *upd.ReceiptNumber
		entry.ReceiptNumber = upd.ReceiptNumber
	}
	if upd.ReceiptGeneratedAt != nil {
		fields["receipt_generated_at"] = *upd.ReceiptGeneratedAt
		entry.ReceiptGeneratedAt = upd.ReceiptGeneratedAt
	}
	if upd.VerifiedBy != nil {
		fields["verified_by"] = *upd.VerifiedBy
		entry.VerifiedBy = upd.VerifiedBy
	}
	if upd.VerifiedAt != nil {
		fields["verified_at"] = *upd.VerifiedAt
		entry.VerifiedAt = upd.VerifiedAt
	}
	if upd.Notes != nil {
		fields["notes"] = *upd.Notes
		entry.Notes = upd.Notes
	}
	if upd.InvoicedAt != nil {
		fields["invoiced_at"] = *upd.InvoicedAt
		entry.InvoicedAt = upd.InvoicedAt
	}
	if upd.Status != nil {
		fields["status"] = *upd.Status
		entry.Status = *upd.Status
	}
	if upd.ClearVerification {
		fields["verified_by"] = nil
		fields["verified_at"] = nil
		entry.VerifiedBy = nil
		entry.VerifiedAt = nil
	}

	if len(fields) == 0 {
		return nil
	}
	return tx.Model(entry).Updates(fields).Error
}

// ResolveInstallmentAmount is the single source of truth for "how much is
// installment n". Priority: the configured amount on the row, then the
// most recent positive history delta recorded against that installment's
// status, then an even split of the total across the plan. Invoice and
// receipt rendering and the overdue check all call this.
func ResolveInstallmentAmount(p *models.Payment, entry *models.PaymentInstallment, histories []models.PaymentHistory, plan, ordinal int) decimal.Decimal {
	if entry != nil && entry.Amount != nil {
		return *entry.Amount
	}
	target := models.PaymentStatus{Kind: models.StatusInstallment, Ordinal: ordinal}
	for i := len(histories) - 1; i >= 0; i-- {
		h := histories[i]
		if h.NewStatus.Equal(target) && h.DeltaAmount.IsPositive() {
			return h.DeltaAmount
		}
	}
	if plan <= 0 {
		plan = 1
	}
	return p.TotalAmount.Div(decimal.NewFromInt(int64(plan))).Round(2)
}

// ResolveInstallmentDueDate returns the row's own due date, falling back
// to the payment's top-level due date only for the currently active
// ordinal. Other installments never inherit it.
func ResolveInstallmentDueDate(p *models.Payment, entry *models.PaymentInstallment, ordinal int) *time.Time {
	if entry != nil && entry.DueDate != nil {
		return entry.DueDate
	}
	if ordinal == p.CurrentInstallment {
		return p.DueDate
	}
	return nil
}
