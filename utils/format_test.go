package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "Rp 0"},
		{"500", "Rp 500"},
		{"2500", "Rp 2.500"},
		{"1234567", "Rp 1.234.567"},
		{"4000000", "Rp 4.000.000"},
		{"2500.5", "Rp 2.500,50"},
		{"1234567.89", "Rp 1.234.567,89"},
		{"333333.33", "Rp 333.333,33"},
		{"-1234.5", "-Rp 1.234,50"},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.input)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, FormatRupiah(d), "formatting %s", tt.input)
	}
}
