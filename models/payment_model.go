package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Payment struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RegistrationID uuid.UUID `gorm:"type:uuid;not null;index" json:"registration_id"`

	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	AmountPaid  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"amount_paid"`

	Status PaymentStatus `gorm:"type:varchar(30);not null;default:'pending'" json:"status"`

	// Ordinal of the installment currently being collected, 0 when none.
	CurrentInstallment int        `gorm:"not null;default:0" json:"current_installment"`
	DueDate            *time.Time `json:"due_date"`

	InvoiceNumber *string `gorm:"size:64;unique" json:"invoice_number"`
	ReceiptNumber *string `gorm:"size:64;unique" json:"receipt_number"`

	PaymentMethod    *string `gorm:"size:30" json:"payment_method"`
	PaymentReference *string `gorm:"size:120" json:"payment_reference"`

	Notes string `gorm:"type:text" json:"notes"`

	VerifiedBy *string    `gorm:"size:255" json:"verified_by"`
	VerifiedAt *time.Time `json:"verified_at"`

	Registration Registration         `gorm:"foreignkey:RegistrationID" json:"registration,omitempty"`
	Installments []PaymentInstallment `gorm:"foreignkey:PaymentID" json:"installments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
