package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Program is a catalog entry. TrainingCost is the full fee a registration
// owes; InstallmentPlan is how many installments the fee is split into.
type Program struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name            string          `gorm:"size:255;not null;unique" json:"name"`
	TrainingCost    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"training_cost"`
	InstallmentPlan int             `gorm:"not null;default:1" json:"installment_plan"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Program) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
