package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentStatus(t *testing.T) {
	tests := []struct {
		input string
		want  PaymentStatus
	}{
		{"pending", Pending},
		{"paid", Paid},
		{"cancelled", Cancelled},
		{"installment_1", PaymentStatus{Kind: StatusInstallment, Ordinal: 1}},
		{"installment_12", PaymentStatus{Kind: StatusInstallment, Ordinal: 12}},
	}
	for _, tt := range tests {
		got, err := ParsePaymentStatus(tt.input, 0)
		require.NoError(t, err, tt.input)
		assert.True(t, got.Equal(tt.want), "parsing %q", tt.input)
		assert.Equal(t, tt.input, got.String())
	}
}

func TestParsePaymentStatusRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "unknown", "installment_", "installment_abc", "installment_0", "INSTALLMENT_1"} {
		_, err := ParsePaymentStatus(input, 0)
		assert.Error(t, err, "input %q", input)
	}

	// Plan bound applies when the plan is known.
	_, err := ParsePaymentStatus("installment_5", 4)
	assert.Error(t, err)
	_, err = ParsePaymentStatus("installment_5", 0)
	assert.NoError(t, err)
}

func TestInstallmentBounds(t *testing.T) {
	_, err := Installment(0, 4)
	assert.Error(t, err)
	_, err = Installment(-1, 4)
	assert.Error(t, err)
	_, err = Installment(5, 4)
	assert.Error(t, err)

	s, err := Installment(4, 4)
	require.NoError(t, err)
	assert.Equal(t, "installment_4", s.String())
	assert.True(t, s.IsInstallment())
}

func TestPaymentStatusScanAndValue(t *testing.T) {
	var s PaymentStatus
	require.NoError(t, s.Scan("installment_3"))
	assert.Equal(t, StatusInstallment, s.Kind)
	assert.Equal(t, 3, s.Ordinal)

	require.NoError(t, s.Scan([]byte("cancelled")))
	assert.True(t, s.Equal(Cancelled))

	assert.Error(t, s.Scan(42))
	assert.Error(t, s.Scan("not_a_status"))

	v, err := Installment(2, 0)
	require.NoError(t, err)
	dv, err := v.Value()
	require.NoError(t, err)
	assert.Equal(t, "installment_2", dv)
}

func TestPaymentStatusJSON(t *testing.T) {
	s, err := Installment(2, 4)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `"installment_2"`, string(data))

	var back PaymentStatus
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(s))

	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &back))
}
