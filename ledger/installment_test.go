package ledger

import (
	"testing"
	"time"

	"github.com/prasetyadi/edu_registration/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResolveInstallmentAmount(t *testing.T) {
	p := &models.Payment{TotalAmount: decimal.NewFromInt(4000000)}
	plan := 4

	t.Run("configured amount wins", func(t *testing.T) {
		amt := decimal.NewFromInt(1250000)
		entry := &models.PaymentInstallment{Ordinal: 2, Amount: &amt}
		histories := []models.PaymentHistory{
			{NewStatus: installment(t, 2, plan), DeltaAmount: decimal.NewFromInt(999)},
		}
		got := ResolveInstallmentAmount(p, entry, histories, plan, 2)
		assert.True(t, got.Equal(amt))
	})

	t.Run("latest positive history delta", func(t *testing.T) {
		histories := []models.PaymentHistory{
			{NewStatus: installment(t, 2, plan), DeltaAmount: decimal.NewFromInt(900000)},
			{NewStatus: installment(t, 3, plan), DeltaAmount: decimal.NewFromInt(500000)},
			{NewStatus: installment(t, 2, plan), DeltaAmount: decimal.NewFromInt(1100000)},
			{NewStatus: installment(t, 2, plan), DeltaAmount: decimal.Zero},
		}
		got := ResolveInstallmentAmount(p, nil, histories, plan, 2)
		assert.True(t, got.Equal(decimal.NewFromInt(1100000)), "got %s", got)
	})

	t.Run("even split fallback", func(t *testing.T) {
		got := ResolveInstallmentAmount(p, nil, nil, plan, 1)
		assert.True(t, got.Equal(decimal.NewFromInt(1000000)), "got %s", got)
	})

	t.Run("uneven split rounds to cents", func(t *testing.T) {
		odd := &models.Payment{TotalAmount: decimal.NewFromInt(1000000)}
		got := ResolveInstallmentAmount(odd, nil, nil, 3, 1)
		want, _ := decimal.NewFromString("333333.33")
		assert.True(t, got.Equal(want), "got %s", got)
	})

	t.Run("zero plan treated as lump sum", func(t *testing.T) {
		got := ResolveInstallmentAmount(p, nil, nil, 0, 1)
		assert.True(t, got.Equal(p.TotalAmount))
	})
}

func TestResolveInstallmentDueDate(t *testing.T) {
	topLevel := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	own := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	p := &models.Payment{CurrentInstallment: 2, DueDate: &topLevel}

	t.Run("row due date wins", func(t *testing.T) {
		entry := &models.PaymentInstallment{Ordinal: 2, DueDate: &own}
		got := ResolveInstallmentDueDate(p, entry, 2)
		assert.NotNil(t, got)
		assert.True(t, got.Equal(own))
	})

	t.Run("active ordinal inherits payment due date", func(t *testing.T) {
		got := ResolveInstallmentDueDate(p, nil, 2)
		assert.NotNil(t, got)
		assert.True(t, got.Equal(topLevel))
	})

	t.Run("other ordinals never inherit", func(t *testing.T) {
		assert.Nil(t, ResolveInstallmentDueDate(p, nil, 3))
		assert.Nil(t, ResolveInstallmentDueDate(p, &models.PaymentInstallment{Ordinal: 1}, 1))
	})
}
