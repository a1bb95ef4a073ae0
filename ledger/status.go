package ledger

import (
	"github.com/prasetyadi/edu_registration/models"
)

// historyCheck reports whether a positive-amount history record exists
// for the given installment ordinal. The audit trail is the evidence
// that an installment was actually paid, not the status field alone.
type historyCheck func(ordinal int) (bool, error)

// checkTransition enforces the legal status progression:
//
//	pending -> installment_1 -> installment_2 -> ... -> installment_N -> paid
//
// with cancelled reachable from anywhere and same-state transitions
// treated as idempotent no-ops. It runs strictly before any mutation;
// the engine's full-payment override is applied by the caller and takes
// precedence over this nominal result.
func checkTransition(current, requested models.PaymentStatus, plan int, paid historyCheck) error {
	if current.Equal(requested) {
		return nil
	}
	if requested.Kind == models.StatusCancelled {
		return nil
	}
	if current.Kind == models.StatusCancelled {
		return NewValidationError("payment is cancelled and can no longer change status")
	}
	if current.Kind == models.StatusPaid {
		return NewValidationError("payment is already fully paid")
	}

	switch requested.Kind {
	case models.StatusInstallment:
		expected := 1
		if current.IsInstallment() {
			expected = current.Ordinal + 1
		}
		if requested.Ordinal != expected {
			return NewValidationError("invalid transition from %s to %s: expected next installment is %d",
				current, requested, expected)
		}
		if plan > 0 && requested.Ordinal > plan {
			return NewValidationError("installment %d exceeds the plan of %d installments", requested.Ordinal, plan)
		}
		if current.IsInstallment() {
			ok, err := paid(current.Ordinal)
			if err != nil {
				return err
			}
			if !ok {
				return NewValidationError("cicilan %d belum dibayar", current.Ordinal)
			}
		}
		return nil

	case models.StatusPaid:
		if !current.IsInstallment() {
			return NewValidationError("invalid transition from %s to paid: no installment has been settled", current)
		}
		if plan > 0 && current.Ordinal < plan {
			return NewValidationError("masih ada %d cicilan yang belum dibayar", plan-current.Ordinal)
		}
		ok, err := paid(current.Ordinal)
		if err != nil {
			return err
		}
		if !ok {
			return NewValidationError("cicilan %d belum dibayar", current.Ordinal)
		}
		return nil

	case models.StatusPending:
		return NewValidationError("invalid transition from %s back to pending", current)
	}

	return NewValidationError("invalid transition from %s to %s", current, requested)
}
