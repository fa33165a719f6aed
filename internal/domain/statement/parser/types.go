// Package parser turns M-Pesa PDF statements into categorized spend totals.
//
// A parse runs six stages in strict order: decryption, text extraction, an optional
// structured hint (QR payload on the first page), statement period extraction,
// transaction segmentation and keyword categorization. Only the first two can fail
// the parse; the rest degrade to absent fields.
package parser

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed, mutually exclusive spend buckets.
type Category string

const (
	CategoryBetting         Category = "betting"
	CategoryAirtime         Category = "airtime"
	CategoryFuliza          Category = "fuliza"
	CategoryBars            Category = "bars"
	CategoryTillWithdrawals Category = "till_withdrawals"
	CategoryOther           Category = "other"
	CategoryIncoming        Category = "incoming"
	CategoryMshwariSavings  Category = "mshwari_savings"
)

// Categories lists every bucket in display order.
var Categories = []Category{
	CategoryBetting,
	CategoryAirtime,
	CategoryFuliza,
	CategoryBars,
	CategoryTillWithdrawals,
	CategoryOther,
	CategoryIncoming,
	CategoryMshwariSavings,
}

// OutgoingCategories are the buckets summed into TotalOutgoing.
var OutgoingCategories = []Category{
	CategoryBetting,
	CategoryAirtime,
	CategoryFuliza,
	CategoryBars,
	CategoryTillWithdrawals,
	CategoryOther,
}

// Transaction is a record recovered from statement text, bounded by consecutive date tokens.
type Transaction struct {
	DateToken   string           // raw date-like token, not validated as a calendar date
	Amount      *decimal.Decimal // nil when no amount line followed the date
	Description string           // lowercased; empty when none was found
	Category    Category         // set by categorization
}

// AmountOrZero returns the amount, treating a missing amount as zero.
func (t Transaction) AmountOrZero() decimal.Decimal {
	if t.Amount == nil {
		return decimal.Zero
	}
	return *t.Amount
}

// CategoryTotals accumulates amounts per bucket.
type CategoryTotals map[Category]decimal.Decimal

func newCategoryTotals() CategoryTotals {
	totals := make(CategoryTotals, len(Categories))
	for _, c := range Categories {
		totals[c] = decimal.Zero
	}
	return totals
}

// Get returns the total for a bucket, zero when absent.
func (c CategoryTotals) Get(category Category) decimal.Decimal {
	if v, ok := c[category]; ok {
		return v
	}
	return decimal.Zero
}

// Outgoing sums the spend buckets.
func (c CategoryTotals) Outgoing() decimal.Decimal {
	sum := decimal.Zero
	for _, cat := range OutgoingCategories {
		sum = sum.Add(c.Get(cat))
	}
	return sum
}

func (c CategoryTotals) add(category Category, amount decimal.Decimal) {
	c[category] = c.Get(category).Add(amount)
}

// Period is the statement date range found in the header text.
type Period struct {
	Start time.Time
	End   time.Time
}

// Hint is the raw payload of a machine-readable code found on the first page.
// It is advisory and never feeds totals or the period.
type Hint struct {
	Payload string
}

// ParsedStatement is the result of a successful parse. It is not mutated after Parse returns.
type ParsedStatement struct {
	Transactions  []Transaction
	Categorized   CategoryTotals
	TotalIncoming decimal.Decimal
	TotalOutgoing decimal.Decimal
	Period        *Period // nil when no header range matched
	Hint          *Hint   // nil when the hint stage was skipped or found nothing
}
