package ledger

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	config "github.com/prasetyadi/edu_registration/configs"
	"github.com/prasetyadi/edu_registration/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SeriesInvoice = "invoice"
	SeriesReceipt = "receipt"

	// Floors sit above every legacy hand-written number so the two
	// ranges can never collide.
	invoiceFloor int64 = 31
	receiptFloor int64 = 21
)

var romanMonths = [12]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}

// RomanMonth encodes a calendar month as I..XII, the namespace component
// used inside formatted document numbers.
func RomanMonth(m time.Month) string {
	return romanMonths[m-1]
}

func orgCode() string {
	return config.ConfigWithDefault("DOCUMENT_ORG_CODE", "EDU")
}

// FormatInvoiceNumber renders e.g. "31-B/INV/EDU/IX/2026". Month and year
// are those of the generation moment, not of the underlying transaction.
func FormatInvoiceNumber(seq int64, at time.Time) string {
	return fmt.Sprintf("%d-B/INV/%s/%s/%d", seq, orgCode(), RomanMonth(at.Month()), at.Year())
}

// FormatReceiptNumber renders e.g. "21/KW/EDU/IX/2026".
func FormatReceiptNumber(seq int64, at time.Time) string {
	return fmt.Sprintf("%d/KW/%s/%s/%d", seq, orgCode(), RomanMonth(at.Month()), at.Year())
}

// NextInvoiceNumber must be called inside the transaction that persists
// the payment, so the counter increment commits or rolls back with it.
func NextInvoiceNumber(tx *gorm.DB, at time.Time) (string, error) {
	seq, err := nextSequence(tx, SeriesInvoice, invoiceFloor, scanMaxInvoice)
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(seq, at), nil
}

func NextReceiptNumber(tx *gorm.DB, at time.Time) (string, error) {
	seq, err := nextSequence(tx, SeriesReceipt, receiptFloor, scanMaxReceipt)
	if err != nil {
		return "", err
	}
	return FormatReceiptNumber(seq, at), nil
}

// nextSequence reads the per-series counter under a row lock and bumps
// it. The first call seeds the counter from a scan of the numbers already
// persisted (floored at the configured minimum), which reproduces the
// legacy scan-for-max behavior without its read-then-write race. The
// unique indexes on the formatted number columns are the backstop.
func nextSequence(tx *gorm.DB, series string, floor int64, scan func(*gorm.DB) (int64, error)) (int64, error) {
	var counter models.DocumentCounter
	err := lockForUpdate(tx).Where("series = ?", series).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seed := floor - 1
		if max, scanErr := scan(tx); scanErr != nil {
			log.Printf("🔥 Failed to scan existing %s numbers, seeding counter at floor: %v", series, scanErr)
		} else if max > seed {
			seed = max
		}
		counter = models.DocumentCounter{Series: series, Value: seed}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	counter.Value++
	if err := tx.Save(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}

// lockForUpdate takes a row-level lock on postgres. sqlite, used by the
// test suite, serializes writers at the database level and rejects the
// FOR UPDATE syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func scanMaxInvoice(tx *gorm.DB) (int64, error) {
	var numbers []string
	err := tx.Model(&models.Payment{}).
		Where("invoice_number LIKE ?", "%/INV/%").
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return 0, err
	}
	return maxSequencePrefix(numbers, "-"), nil
}

func scanMaxReceipt(tx *gorm.DB) (int64, error) {
	var numbers []string
	err := tx.Model(&models.Payment{}).
		Where("receipt_number LIKE ?", "%/KW/%").
		Pluck("receipt_number", &numbers).Error
	if err != nil {
		return 0, err
	}
	var installmentNumbers []string
	err = tx.Model(&models.PaymentInstallment{}).
		Where("receipt_number LIKE ?", "%/KW/%").
		Pluck("receipt_number", &installmentNumbers).Error
	if err != nil {
		return 0, err
	}
	return maxSequencePrefix(append(numbers, installmentNumbers...), "/"), nil
}

// maxSequencePrefix extracts the numeric prefix before the series
// separator from each formatted number and returns the largest.
func maxSequencePrefix(numbers []string, sep string) int64 {
	var max int64
	for _, n := range numbers {
		head, _, found := strings.Cut(n, sep)
		if !found {
			continue
		}
		v, err := strconv.ParseInt(head, 10, 64)
		if err != nil {
			continue
		}
		if v > max {
			max = v
		}
	}
	return max
}
