package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedStatement_Record(t *testing.T) {
	totals := newCategoryTotals()
	totals.add(CategoryBetting, decimal.RequireFromString("500"))
	totals.add(CategoryIncoming, decimal.RequireFromString("1234.5"))

	stmt := &ParsedStatement{
		Transactions: []Transaction{
			{DateToken: "01/02/24", Description: "sportpesa bet", Amount: amt("500"), Category: CategoryBetting},
			{DateToken: "02/02/24", Category: CategoryOther},
		},
		Categorized:   totals,
		TotalIncoming: totals.Get(CategoryIncoming),
		TotalOutgoing: totals.Outgoing(),
		Period:        &Period{Start: date(2024, 2, 1), End: date(2024, 2, 29)},
		Hint:          &Hint{Payload: "QR"},
	}

	rec := stmt.Record()

	require.Len(t, rec.Transactions, 2)
	require.NotNil(t, rec.Transactions[0].Amount)
	assert.Equal(t, "500.00", *rec.Transactions[0].Amount)
	assert.Equal(t, "betting", rec.Transactions[0].Category)
	assert.Nil(t, rec.Transactions[1].Amount)

	assert.Equal(t, "1234.50", rec.TotalIncoming)
	assert.Equal(t, "500.00", rec.TotalOutgoing)
	assert.Len(t, rec.Categorized, len(Categories))
	assert.Equal(t, "0.00", rec.Categorized["airtime"])

	require.NotNil(t, rec.PeriodStart)
	assert.Equal(t, "2024-02-01", *rec.PeriodStart)
	assert.Equal(t, "2024-02-29", *rec.PeriodEnd)
	require.NotNil(t, rec.Hint)
	assert.Equal(t, "QR", *rec.Hint)
}

func TestParsedStatement_RecordWithoutPeriod(t *testing.T) {
	stmt := &ParsedStatement{Categorized: newCategoryTotals()}

	rec := stmt.Record()

	assert.NotNil(t, rec.Transactions)
	assert.Nil(t, rec.PeriodStart)
	assert.Nil(t, rec.PeriodEnd)
	assert.Nil(t, rec.Hint)
	assert.Equal(t, "0.00", rec.TotalOutgoing)
}
