package parser

import "time"

// DateLayout is the textual form used for every date in a StatementRecord.
const DateLayout = "2006-01-02"

// StatementRecord is the storage-safe form of a ParsedStatement: every decimal is a
// fixed two-decimal string and every date is YYYY-MM-DD.
type StatementRecord struct {
	Transactions  []TransactionRecord `json:"transactions"`
	Categorized   map[string]string   `json:"categorized"`
	TotalIncoming string              `json:"total_incoming"`
	TotalOutgoing string              `json:"total_outgoing"`
	PeriodStart   *string             `json:"period_start,omitempty"`
	PeriodEnd     *string             `json:"period_end,omitempty"`
	Hint          *string             `json:"hint,omitempty"`
}

// TransactionRecord is the storage-safe form of a Transaction.
type TransactionRecord struct {
	Date        string  `json:"date"`
	Description string  `json:"description,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Category    string  `json:"category"`
}

// Record converts the statement for persistence.
func (s *ParsedStatement) Record() StatementRecord {
	rec := StatementRecord{
		Transactions:  make([]TransactionRecord, 0, len(s.Transactions)),
		Categorized:   make(map[string]string, len(Categories)),
		TotalIncoming: s.TotalIncoming.StringFixed(2),
		TotalOutgoing: s.TotalOutgoing.StringFixed(2),
	}

	for _, tx := range s.Transactions {
		tr := TransactionRecord{
			Date:        tx.DateToken,
			Description: tx.Description,
			Category:    string(tx.Category),
		}
		if tx.Amount != nil {
			amount := tx.Amount.StringFixed(2)
			tr.Amount = &amount
		}
		rec.Transactions = append(rec.Transactions, tr)
	}

	for _, c := range Categories {
		rec.Categorized[string(c)] = s.Categorized.Get(c).StringFixed(2)
	}

	if s.Period != nil {
		rec.PeriodStart = formatDate(s.Period.Start)
		rec.PeriodEnd = formatDate(s.Period.End)
	}
	if s.Hint != nil {
		payload := s.Hint.Payload
		rec.Hint = &payload
	}

	return rec
}

func formatDate(t time.Time) *string {
	s := t.Format(DateLayout)
	return &s
}
