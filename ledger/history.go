package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/prasetyadi/edu_registration/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const systemActor = "system"

// appendHistory writes one immutable audit record for a mutation that is
// about to commit. There is deliberately no update or delete counterpart
// anywhere in this package.
func appendHistory(tx *gorm.DB, p *models.Payment, oldStatus models.PaymentStatus, oldPaid, delta decimal.Decimal, note, actorID string) error {
	if actorID == "" {
		actorID = systemActor
	}
	if note == "" {
		note = fmt.Sprintf("status changed from %s to %s", oldStatus, p.Status)
	}
	record := models.PaymentHistory{
		PaymentID:     p.ID,
		OldStatus:     oldStatus,
		NewStatus:     p.Status,
		OldAmountPaid: oldPaid,
		NewAmountPaid: p.AmountPaid,
		DeltaAmount:   delta,
		Note:          note,
		ActorID:       actorID,
	}
	return tx.Create(&record).Error
}

// LoadHistory returns the full audit trail, oldest first.
func LoadHistory(db *gorm.DB, paymentID uuid.UUID) ([]models.PaymentHistory, error) {
	var histories []models.PaymentHistory
	err := db.Where("payment_id = ?", paymentID).
		Order("created_at ASC, id ASC").
		Find(&histories).Error
	return histories, err
}

// installmentPaidCheck builds the evidence lookup the status validator
// uses: an installment counts as paid only if a positive-amount history
// record exists for it.
func installmentPaidCheck(tx *gorm.DB, paymentID uuid.UUID) historyCheck {
	return func(ordinal int) (bool, error) {
		status := models.PaymentStatus{Kind: models.StatusInstallment, Ordinal: ordinal}
		var count int64
		err := tx.Model(&models.PaymentHistory{}).
			Where("payment_id = ? AND new_status = ? AND delta_amount > ?", paymentID, status.String(), 0).
			Count(&count).Error
		if err != nil {
			return false, err
		}
		return count > 0, nil
	}
}
