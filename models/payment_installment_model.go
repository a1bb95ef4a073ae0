package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InstallmentStatusInvoiced            = "invoiced"
	InstallmentStatusWaitingVerification = "waiting_verification"
	InstallmentStatusPaid                = "paid"
)

// PaymentInstallment is one row per installment ordinal. The composite
// unique index is what guarantees a payment never grows two entries for
// the same ordinal, even under concurrent updates.
type PaymentInstallment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_payment_ordinal" json:"payment_id"`
	Ordinal   int       `gorm:"not null;uniqueIndex:idx_payment_ordinal" json:"ordinal"`

	Amount  *decimal.Decimal `gorm:"type:numeric(14,2)" json:"amount"`
	DueDate *time.Time       `json:"due_date"`

	PaidAmount *decimal.Decimal `gorm:"type:numeric(14,2)" json:"paid_amount"`
	PaidAt     *time.Time       `json:"paid_at"`

	ProofURL        *string    `gorm:"size:255" json:"proof_url"`
	ProofUploadedAt *time.Time `json:"proof_uploaded_at"`

	ReceiptNumber      *string    `gorm:"size:64" json:"receipt_number"`
	ReceiptGeneratedAt *time.Time `json:"receipt_generated_at"`

	VerifiedBy *string    `gorm:"size:255" json:"verified_by"`
	VerifiedAt *time.Time `json:"verified_at"`

	Notes      *string    `gorm:"type:text" json:"notes"`
	InvoicedAt *time.Time `json:"invoiced_at"`

	Status string `gorm:"size:30;not null;default:'invoiced'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *PaymentInstallment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
