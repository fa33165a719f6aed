package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/repository"
	"github.com/FACorreiaa/pesa-insights/pkg/money"
)

// CategoryShare is one spend bucket of the latest statement.
type CategoryShare struct {
	Category parser.Category
	Amount   *money.Money
	Percent  decimal.Decimal // share of total outgoing, 0 when nothing was spent
}

// Insights summarizes the user's latest statement.
type Insights struct {
	Statement      *repository.Statement // nil when the user has no statements
	TotalIncoming  *money.Money
	TotalOutgoing  *money.Money
	NetAmount      *money.Money
	MshwariSavings *money.Money
	Breakdown      []CategoryShare
}

// Insights returns totals and the spend breakdown of the latest statement. A user
// without statements gets zero values.
func (s *StatementService) Insights(ctx context.Context, userID uuid.UUID) (*Insights, error) {
	latest, err := s.repo.Latest(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return emptyInsights(), nil
	}
	if err != nil {
		return nil, err
	}

	incoming := money.KESFromDecimal(latest.TotalIncoming)
	outgoing := money.KESFromDecimal(latest.TotalOutgoing)
	net, err := incoming.Subtract(outgoing)
	if err != nil {
		return nil, err
	}

	out := &Insights{
		Statement:      latest,
		TotalIncoming:  incoming,
		TotalOutgoing:  outgoing,
		NetAmount:      net,
		MshwariSavings: money.KESFromDecimal(latest.MshwariSavings),
		Breakdown:      make([]CategoryShare, 0, len(parser.OutgoingCategories)),
	}
	for _, c := range parser.OutgoingCategories {
		amount := money.KESFromDecimal(latest.CategoryTotal(c))
		out.Breakdown = append(out.Breakdown, CategoryShare{
			Category: c,
			Amount:   amount,
			Percent:  amount.PercentageOf(outgoing),
		})
	}
	return out, nil
}

func emptyInsights() *Insights {
	out := &Insights{
		TotalIncoming:  money.Zero(money.KES),
		TotalOutgoing:  money.Zero(money.KES),
		NetAmount:      money.Zero(money.KES),
		MshwariSavings: money.Zero(money.KES),
		Breakdown:      make([]CategoryShare, 0, len(parser.OutgoingCategories)),
	}
	for _, c := range parser.OutgoingCategories {
		out.Breakdown = append(out.Breakdown, CategoryShare{
			Category: c,
			Amount:   money.Zero(money.KES),
			Percent:  decimal.Zero,
		})
	}
	return out
}
