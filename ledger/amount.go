package ledger

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountJunk     = regexp.MustCompile(`[^0-9,.\-]`)
	fractionSuffix = regexp.MustCompile(`^(.*)[.,](\d{1,2})$`)
	nonDigit       = regexp.MustCompile(`[^0-9]`)
)

// ParseAmount normalizes whatever an admin typed into a form field into a
// decimal. Accepts "Rp 1.234.567", "2.500,50", "1,234,567.89", plain
// numbers, or already-parsed decimals. Returns fallback when no digits
// are present. Every monetary comparison in the engine goes through this
// one function so "is total paid >= total owed" never drifts between
// representations.
func ParseAmount(value interface{}, fallback decimal.Decimal) decimal.Decimal {
	switch v := value.(type) {
	case nil:
		return fallback
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v == nil {
			return fallback
		}
		return *v
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		return parseAmountString(v, fallback)
	case *string:
		if v == nil {
			return fallback
		}
		return parseAmountString(*v, fallback)
	}
	return parseAmountString(fmt.Sprint(value), fallback)
}

func parseAmountString(raw string, fallback decimal.Decimal) decimal.Decimal {
	filtered := amountJunk.ReplaceAllString(raw, "")
	if !strings.ContainsAny(filtered, "0123456789") {
		return fallback
	}

	intPart := filtered
	fracPart := ""
	if m := fractionSuffix.FindStringSubmatch(filtered); m != nil {
		intPart, fracPart = m[1], m[2]
	}

	negative := strings.HasPrefix(filtered, "-")
	digits := nonDigit.ReplaceAllString(intPart, "")

	magnitude := decimal.Zero
	if digits != "" {
		parsed, err := decimal.NewFromString(digits)
		if err != nil {
			return fallback
		}
		magnitude = parsed
	}
	if fracPart != "" {
		frac, err := decimal.NewFromString("0." + fracPart)
		if err != nil {
			return fallback
		}
		magnitude = magnitude.Add(frac)
	}
	if negative {
		return magnitude.Neg()
	}
	return magnitude
}
