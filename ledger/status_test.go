package ledger

import (
	"testing"

	"github.com/prasetyadi/edu_registration/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allPaid(int) (bool, error)  { return true, nil }
func nonePaid(int) (bool, error) { return false, nil }

func installment(t *testing.T, ordinal, plan int) models.PaymentStatus {
	t.Helper()
	s, err := models.Installment(ordinal, plan)
	require.NoError(t, err)
	return s
}

func TestCheckTransition(t *testing.T) {
	const plan = 4

	tests := []struct {
		name      string
		current   models.PaymentStatus
		requested models.PaymentStatus
		paid      historyCheck
		wantErr   string
	}{
		{"pending to first installment", models.Pending, installment(t, 1, plan), nonePaid, ""},
		{"pending skips ahead", models.Pending, installment(t, 2, plan), nonePaid, "expected next installment is 1"},
		{"next installment after paid one", installment(t, 1, plan), installment(t, 2, plan), allPaid, ""},
		{"next installment without payment", installment(t, 1, plan), installment(t, 2, plan), nonePaid, "cicilan 1 belum dibayar"},
		{"skipping an installment", installment(t, 1, plan), installment(t, 3, plan), allPaid, "expected next installment is 2"},
		{"going backwards", installment(t, 3, plan), installment(t, 2, plan), allPaid, "expected next installment is 4"},
		{"final installment to paid", installment(t, 4, plan), models.Paid, allPaid, ""},
		{"paid too early", installment(t, 2, plan), models.Paid, allPaid, "masih ada 2 cicilan yang belum dibayar"},
		{"paid with unsettled final installment", installment(t, 4, plan), models.Paid, nonePaid, "cicilan 4 belum dibayar"},
		{"pending straight to paid", models.Pending, models.Paid, allPaid, "no installment has been settled"},
		{"cancel from pending", models.Pending, models.Cancelled, nonePaid, ""},
		{"cancel mid-plan", installment(t, 2, plan), models.Cancelled, nonePaid, ""},
		{"cancel when paid", models.Paid, models.Cancelled, allPaid, ""},
		{"cancelled is terminal", models.Cancelled, installment(t, 1, plan), allPaid, "cancelled"},
		{"paid is terminal", models.Paid, installment(t, 1, plan), allPaid, "already fully paid"},
		{"back to pending", installment(t, 1, plan), models.Pending, allPaid, "back to pending"},
		{"same state is a no-op", installment(t, 2, plan), installment(t, 2, plan), nonePaid, ""},
		{"cancelled to cancelled is a no-op", models.Cancelled, models.Cancelled, nonePaid, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTransition(tt.current, tt.requested, plan, tt.paid)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "expected a validation error, got %T", err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckTransitionSingleInstallmentPlan(t *testing.T) {
	// A plan of 1 is the lump-sum case: one installment, then paid.
	err := checkTransition(models.Pending, installment(t, 1, 1), 1, nonePaid)
	assert.NoError(t, err)

	err = checkTransition(installment(t, 1, 1), models.Paid, 1, allPaid)
	assert.NoError(t, err)
}
