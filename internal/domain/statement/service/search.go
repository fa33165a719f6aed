package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
)

// SearchTransactions returns the statement's transactions whose description
// fuzzily contains query, closest matches first. An empty query returns every
// transaction in document order.
func (s *StatementService) SearchTransactions(ctx context.Context, userID, id uuid.UUID, query string) ([]parser.TransactionRecord, error) {
	st, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	txs := st.ParsedData.Transactions
	query = strings.TrimSpace(query)
	if query == "" {
		return txs, nil
	}

	type ranked struct {
		tx   parser.TransactionRecord
		rank int
	}
	matches := make([]ranked, 0)
	for _, tx := range txs {
		rank := fuzzy.RankMatchNormalizedFold(query, tx.Description)
		if rank < 0 {
			continue
		}
		matches = append(matches, ranked{tx: tx, rank: rank})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].rank < matches[j].rank
	})

	out := make([]parser.TransactionRecord, len(matches))
	for i, m := range matches {
		out[i] = m.tx
	}
	return out, nil
}
