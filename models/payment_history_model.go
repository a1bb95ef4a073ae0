package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentHistory is append-only. Rows are never updated or deleted; the
// status validator reads them to prove an installment was actually paid.
type PaymentHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID uuid.UUID `gorm:"type:uuid;not null;index" json:"payment_id"`

	OldStatus PaymentStatus `gorm:"type:varchar(30);not null" json:"old_status"`
	NewStatus PaymentStatus `gorm:"type:varchar(30);not null" json:"new_status"`

	OldAmountPaid decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"old_amount_paid"`
	NewAmountPaid decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"new_amount_paid"`
	DeltaAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"delta_amount"`

	Note    string `gorm:"type:text" json:"note"`
	ActorID string `gorm:"size:255;not null" json:"actor_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (h *PaymentHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
