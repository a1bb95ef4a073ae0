package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/prasetyadi/edu_registration/database"
	"github.com/prasetyadi/edu_registration/ledger"
	"github.com/prasetyadi/edu_registration/models"
	"github.com/prasetyadi/edu_registration/notifications"
	"github.com/prasetyadi/edu_registration/utils"
)

// CheckOverdueInstallments emails students whose active installment has
// passed its resolved due date. Overdue is informational only; the job
// never writes to the payment row.
func CheckOverdueInstallments(mailer *notifications.EmailService) {
	log.Println("Running job: CheckOverdueInstallments...")

	var payments []models.Payment
	err := database.DB.
		Preload("Registration.Student").
		Preload("Registration.Program").
		Preload("Installments").
		Where("status NOT IN ? AND current_installment > 0", []string{"paid", "cancelled"}).
		Find(&payments).Error
	if err != nil {
		log.Printf("Error checking for overdue installments: %v", err)
		return
	}

	now := time.Now()
	for _, p := range payments {
		if !ledger.IsOverdue(&p, now) {
			continue
		}

		student := p.Registration.Student
		plan := p.Registration.Program.InstallmentPlan
		ordinal := p.CurrentInstallment

		var entry *models.PaymentInstallment
		for i := range p.Installments {
			if p.Installments[i].Ordinal == ordinal {
				entry = &p.Installments[i]
				break
			}
		}

		histories, err := ledger.LoadHistory(database.DB, p.ID)
		if err != nil {
			log.Printf("Error loading history for payment %s: %v", p.ID, err)
			continue
		}
		amount := ledger.ResolveInstallmentAmount(&p, entry, histories, plan, ordinal)
		due := ledger.ResolveInstallmentDueDate(&p, entry, ordinal)
		if due == nil {
			continue
		}

		log.Printf("Sending overdue reminder for payment %s, installment %d", p.ID, ordinal)
		emailSubject := fmt.Sprintf("Payment Reminder: Installment %d is Overdue", ordinal)
		emailBody := fmt.Sprintf(
			"<h1>Payment Reminder</h1><p>Installment %d of %s for %s was due on %s. Please settle it as soon as possible.</p>",
			ordinal, utils.FormatRupiah(amount), p.Registration.Program.Name, due.Format("2 January 2006"),
		)
		if err := mailer.Send(student.Email, emailSubject, emailBody); err != nil {
			log.Printf("🔥 Failed to send overdue reminder to %s: %v", student.Email, err)
		}
	}
}
