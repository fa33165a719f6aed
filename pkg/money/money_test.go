package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   int64
	}{
		{"whole shillings", "500", 50000},
		{"cents", "1234.56", 123456},
		{"rounds to nearest cent", "0.005", 1},
		{"negative", "-50.99", -5099},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := KESFromDecimal(decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.want, m.Amount())
			assert.Equal(t, KES, m.Currency())
		})
	}
}

func TestNewFromDecimal_UnknownCurrency(t *testing.T) {
	m := NewFromDecimal(decimal.NewFromInt(1), "XXX-not-real")
	assert.Equal(t, KES, m.Currency())
	assert.Equal(t, int64(100), m.Amount())
}

func TestNewFromString(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1,234.56", 123456, false},
		{"KSh 50.00", 5000, false},
		{" KES 2,000 ", 200000, false},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := NewFromString(tt.input, KES)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestArithmetic(t *testing.T) {
	a := New(10000, KES)
	b := New(2550, KES)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(12550), sum.Amount())

	diff, err := b.Subtract(a)
	require.NoError(t, err)
	assert.Equal(t, int64(-7450), diff.Amount())
	assert.True(t, diff.IsNegative())

	_, err = a.Add(New(100, "USD"))
	assert.Error(t, err)

	var empty *Money
	got, err := empty.Add(a)
	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.True(t, empty.IsZero())
}

func TestString(t *testing.T) {
	assert.Equal(t, "1234.50", New(123450, KES).String())
	assert.Equal(t, "0.00", (*Money)(nil).String())
}

func TestDisplay(t *testing.T) {
	assert.Contains(t, New(123456, KES).Display(), "1,234.56")
	assert.Contains(t, (*Money)(nil).Display(), "0.00")
}

func TestPercentageOf(t *testing.T) {
	part := New(2500, KES)
	total := New(10000, KES)

	assert.True(t, decimal.NewFromInt(25).Equal(part.PercentageOf(total)))
	assert.True(t, decimal.RequireFromString("33.33").Equal(New(1, KES).PercentageOf(New(3, KES))))
	assert.True(t, part.PercentageOf(Zero(KES)).IsZero())
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(New(5000, KES))
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "50.00", out["amount"])
	assert.Equal(t, KES, out["currency"])
	assert.NotEmpty(t, out["display"])
}
