package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

type PaymentStatusKind int

const (
	StatusPending PaymentStatusKind = iota
	StatusInstallment
	StatusPaid
	StatusCancelled
)

// PaymentStatus is a tagged variant over the legacy string column. The
// installment variant carries its ordinal so nothing downstream has to
// split "installment_3" by hand.
type PaymentStatus struct {
	Kind    PaymentStatusKind
	Ordinal int
}

var (
	Pending   = PaymentStatus{Kind: StatusPending}
	Paid      = PaymentStatus{Kind: StatusPaid}
	Cancelled = PaymentStatus{Kind: StatusCancelled}
)

const installmentPrefix = "installment_"

// Installment builds the installment_n status. Ordinal must fit the
// plan's installment count; plan 0 skips the upper-bound check for
// contexts where the plan is not loaded yet.
func Installment(ordinal, plan int) (PaymentStatus, error) {
	if ordinal < 1 {
		return PaymentStatus{}, fmt.Errorf("installment ordinal must be at least 1, got %d", ordinal)
	}
	if plan > 0 && ordinal > plan {
		return PaymentStatus{}, fmt.Errorf("installment ordinal %d exceeds plan of %d installments", ordinal, plan)
	}
	return PaymentStatus{Kind: StatusInstallment, Ordinal: ordinal}, nil
}

func ParsePaymentStatus(s string, plan int) (PaymentStatus, error) {
	switch s {
	case "pending":
		return Pending, nil
	case "paid":
		return Paid, nil
	case "cancelled":
		return Cancelled, nil
	}
	if rest, ok := strings.CutPrefix(s, installmentPrefix); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return PaymentStatus{}, fmt.Errorf("invalid installment status %q", s)
		}
		return Installment(n, plan)
	}
	return PaymentStatus{}, fmt.Errorf("unknown payment status %q", s)
}

func (s PaymentStatus) String() string {
	switch s.Kind {
	case StatusPending:
		return "pending"
	case StatusInstallment:
		return installmentPrefix + strconv.Itoa(s.Ordinal)
	case StatusPaid:
		return "paid"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

func (s PaymentStatus) IsInstallment() bool {
	return s.Kind == StatusInstallment
}

func (s PaymentStatus) Equal(other PaymentStatus) bool {
	return s.Kind == other.Kind && s.Ordinal == other.Ordinal
}

// Value stores the legacy string form so existing rows keep working.
func (s PaymentStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentStatus", value)
	}
	parsed, err := ParsePaymentStatus(raw, 0)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	parsed, err := ParsePaymentStatus(raw, 0)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
