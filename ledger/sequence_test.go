package ledger

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prasetyadi/edu_registration/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRomanMonth(t *testing.T) {
	assert.Equal(t, "I", RomanMonth(time.January))
	assert.Equal(t, "IX", RomanMonth(time.September))
	assert.Equal(t, "XII", RomanMonth(time.December))
}

func TestFormatDocumentNumbers(t *testing.T) {
	at := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "31-B/INV/EDU/IX/2026", FormatInvoiceNumber(31, at))
	assert.Equal(t, "21/KW/EDU/IX/2026", FormatReceiptNumber(21, at))
}

func TestNextInvoiceNumberStartsAtFloor(t *testing.T) {
	db := openTestDB(t)
	at := time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC)

	first, err := NextInvoiceNumber(db, at)
	require.NoError(t, err)
	assert.Equal(t, "31-B/INV/EDU/II/2026", first)

	second, err := NextInvoiceNumber(db, at)
	require.NoError(t, err)
	assert.Equal(t, "32-B/INV/EDU/II/2026", second)
}

func TestNextReceiptNumberStartsAtFloor(t *testing.T) {
	db := openTestDB(t)
	at := time.Date(2026, time.June, 3, 0, 0, 0, 0, time.UTC)

	first, err := NextReceiptNumber(db, at)
	require.NoError(t, err)
	assert.Equal(t, "21/KW/EDU/VI/2026", first)
}

func TestInvoiceCounterSeedsFromExistingNumbers(t *testing.T) {
	db := openTestDB(t)
	reg := seedRegistration(t, db, 4000000, 4)
	p := seedPayment(t, db, reg)

	legacy := "40-B/INV/EDU/IX/2025"
	require.NoError(t, db.Model(&p).Update("invoice_number", legacy).Error)

	next, err := NextInvoiceNumber(db, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "41-B/INV/EDU/I/2026", next)
}

func TestReceiptCounterSeedsFromInstallmentReceipts(t *testing.T) {
	db := openTestDB(t)
	reg := seedRegistration(t, db, 4000000, 4)
	p := seedPayment(t, db, reg)

	legacy := "25/KW/EDU/XI/2025"
	amt := decimal.NewFromInt(1000000)
	entry := models.PaymentInstallment{
		PaymentID:     p.ID,
		Ordinal:       1,
		Amount:        &amt,
		ReceiptNumber: &legacy,
		Status:        models.InstallmentStatusPaid,
	}
	require.NoError(t, db.Create(&entry).Error)

	next, err := NextReceiptNumber(db, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "26/KW/EDU/III/2026", next)
}

func TestSequencesAreStrictlyIncreasing(t *testing.T) {
	db := openTestDB(t)
	at := time.Now()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		n, err := NextInvoiceNumber(db, at)
		require.NoError(t, err)
		require.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
}

func TestSequencesNeverCollideUnderConcurrency(t *testing.T) {
	db := openTestDB(t)
	at := time.Now()

	const workers = 8
	numbers := make(chan string, workers)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var n string
			err := retrySqliteBusy(func() error {
				return db.Transaction(func(tx *gorm.DB) error {
					var err error
					n, err = NextInvoiceNumber(tx, at)
					return err
				})
			})
			if err != nil {
				errs <- err
				return
			}
			numbers <- n
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]bool{}
	for n := range numbers {
		require.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
}

// retrySqliteBusy works around sqlite's single-writer lock; postgres
// serializes the same transactions on the counter's row lock instead.
func retrySqliteBusy(op func() error) error {
	var err error
	for attempt := 0; attempt < 100; attempt++ {
		err = op()
		if err == nil || !strings.Contains(err.Error(), "locked") {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}
	return err
}

func TestMaxSequencePrefix(t *testing.T) {
	numbers := []string{
		"31-B/INV/EDU/IX/2026",
		"45-B/INV/EDU/X/2026",
		"7-B/INV/EDU/I/2025",
		"INV-no-prefix",
		"",
	}
	assert.Equal(t, int64(45), maxSequencePrefix(numbers, "-"))
	assert.Equal(t, int64(0), maxSequencePrefix(nil, "-"))
	assert.Equal(t, int64(21), maxSequencePrefix([]string{fmt.Sprintf("%d/KW/EDU/IX/2026", 21)}, "/"))
}
