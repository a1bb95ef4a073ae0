package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Registration struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null" json:"student_id"`
	ProgramID uuid.UUID `gorm:"type:uuid;not null" json:"program_id"`
	Status    string    `gorm:"size:20;not null;default:'registered'" json:"status"`

	Student Student `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Program Program `gorm:"foreignkey:ProgramID" json:"program,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Registration) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
