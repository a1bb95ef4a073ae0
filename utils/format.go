package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatRupiah renders an amount the way it appears on printed invoices:
// "Rp 1.234.567" with dot thousands separators and a comma before any
// fractional part ("Rp 2.500,50").
func FormatRupiah(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	abs := amount.Abs()

	intPart := abs.Floor()
	fracPart := abs.Sub(intPart)

	digits := intPart.String()
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := "Rp " + strings.Join(groups, ".")
	if !fracPart.IsZero() {
		cents := fracPart.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		out += "," + pad2(cents)
	}
	if negative {
		out = "-" + out
	}
	return out
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + decimal.NewFromInt(n).String()
	}
	return decimal.NewFromInt(n).String()
}
