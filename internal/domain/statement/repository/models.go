package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
)

// Statement is one parsed M-Pesa statement upload.
type Statement struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	FileID          uuid.UUID
	FileName        string
	UploadedAt      time.Time
	PeriodMonths    int
	TotalIncoming   decimal.Decimal
	TotalOutgoing   decimal.Decimal
	BettingSpent    decimal.Decimal
	AirtimeSpent    decimal.Decimal
	FulizaSpent     decimal.Decimal
	BarsSpent       decimal.Decimal
	TillWithdrawals decimal.Decimal
	OtherSpent      decimal.Decimal
	MshwariSavings  decimal.Decimal
	PeriodStart     *time.Time
	PeriodEnd       *time.Time
	ParsedData      parser.StatementRecord
	FilePurgedAt    *time.Time
}

// CategoryTotal returns the stored bucket total for a category.
func (s *Statement) CategoryTotal(c parser.Category) decimal.Decimal {
	switch c {
	case parser.CategoryBetting:
		return s.BettingSpent
	case parser.CategoryAirtime:
		return s.AirtimeSpent
	case parser.CategoryFuliza:
		return s.FulizaSpent
	case parser.CategoryBars:
		return s.BarsSpent
	case parser.CategoryTillWithdrawals:
		return s.TillWithdrawals
	case parser.CategoryOther:
		return s.OtherSpent
	case parser.CategoryIncoming:
		return s.TotalIncoming
	case parser.CategoryMshwariSavings:
		return s.MshwariSavings
	}
	return decimal.Zero
}

// NewStatement builds the record persisted for a successful parse.
func NewStatement(userID, fileID uuid.UUID, fileName string, uploadedAt time.Time, parsed *parser.ParsedStatement) *Statement {
	st := &Statement{
		ID:              uuid.New(),
		UserID:          userID,
		FileID:          fileID,
		FileName:        fileName,
		UploadedAt:      uploadedAt,
		PeriodMonths:    1,
		TotalIncoming:   parsed.TotalIncoming,
		TotalOutgoing:   parsed.TotalOutgoing,
		BettingSpent:    parsed.Categorized.Get(parser.CategoryBetting),
		AirtimeSpent:    parsed.Categorized.Get(parser.CategoryAirtime),
		FulizaSpent:     parsed.Categorized.Get(parser.CategoryFuliza),
		BarsSpent:       parsed.Categorized.Get(parser.CategoryBars),
		TillWithdrawals: parsed.Categorized.Get(parser.CategoryTillWithdrawals),
		OtherSpent:      parsed.Categorized.Get(parser.CategoryOther),
		MshwariSavings:  parsed.Categorized.Get(parser.CategoryMshwariSavings),
		ParsedData:      parsed.Record(),
	}

	if parsed.Period != nil {
		start, end := parsed.Period.Start, parsed.Period.End
		st.PeriodStart = &start
		st.PeriodEnd = &end
		st.PeriodMonths = PeriodMonths(start, end)
	}

	return st
}

// PeriodMonths counts the calendar months a range touches, at least one.
func PeriodMonths(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
	if months < 1 {
		return 1
	}
	return months
}
