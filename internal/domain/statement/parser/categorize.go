package parser

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"
)

// Keyword groups, matched as substrings of the lowercased description.
var (
	mshwariKeywords         = []string{"m-shwari", "mshwari", "m shwari"}
	depositKeywords         = []string{"deposit"}
	withdrawKeywords        = []string{"withdraw"}
	fulizaRepaymentKeywords = []string{"fuliza loan repayment", "fuliza repayment", "od loan repayment", "overdraft repayment", "repayment of fuliza"}
	fulizaDrawKeywords      = []string{"fuliza", "overdraft of credit", "over draw", "overdraw", "od loan"}
	fulizaDrawConfirmations = []string{"overdraft of credit", "over draw"}
	bettingKeywords         = []string{"bet", "sportpesa", "betway", "betika", "odds", "gaming", "odibets", "mozzart"}
	airtimeKeywords         = []string{"airtime", "top up", "bundle"}
	barKeywords             = []string{"bar", "pub", "club", "restaurant", "hotel", "lounge"}
	tillKeywords            = []string{"till", "paybill", "pay bill", "buy goods", "merchant payment"}
)

// keywordSet is an Aho-Corasick matcher over one keyword group.
type keywordSet struct {
	matcher *ahocorasick.Matcher
}

func newKeywordSet(keywords []string) keywordSet {
	return keywordSet{matcher: ahocorasick.NewStringMatcher(keywords)}
}

// in reports whether any keyword occurs in s. Safe for concurrent use.
func (k keywordSet) in(s string) bool {
	return len(k.matcher.MatchThreadSafe([]byte(s))) > 0
}

// Classifier assigns transactions to buckets using a fixed precedence of keyword groups.
type Classifier struct {
	mshwari            keywordSet
	deposit            keywordSet
	withdraw           keywordSet
	fulizaRepayment    keywordSet
	fulizaDraw         keywordSet
	fulizaConfirmation keywordSet
	betting            keywordSet
	airtime            keywordSet
	bars               keywordSet
	till               keywordSet
}

// NewClassifier builds the keyword matchers. A Classifier is immutable and can be shared.
func NewClassifier() *Classifier {
	return &Classifier{
		mshwari:            newKeywordSet(mshwariKeywords),
		deposit:            newKeywordSet(depositKeywords),
		withdraw:           newKeywordSet(withdrawKeywords),
		fulizaRepayment:    newKeywordSet(fulizaRepaymentKeywords),
		fulizaDraw:         newKeywordSet(fulizaDrawKeywords),
		fulizaConfirmation: newKeywordSet(fulizaDrawConfirmations),
		betting:            newKeywordSet(bettingKeywords),
		airtime:            newKeywordSet(airtimeKeywords),
		bars:               newKeywordSet(barKeywords),
		till:               newKeywordSet(tillKeywords),
	}
}

// Classify returns the single bucket for a description and its absolute amount.
// The first matching rule wins.
func (c *Classifier) Classify(description string, amount decimal.Decimal) Category {
	desc := strings.ToLower(description)

	switch {
	case c.mshwari.in(desc) && c.deposit.in(desc):
		return CategoryMshwariSavings
	case c.mshwari.in(desc) && c.withdraw.in(desc):
		return CategoryIncoming
	case c.fulizaRepayment.in(desc):
		return CategoryFuliza
	case c.isFulizaDraw(desc):
		return CategoryFuliza
	case c.betting.in(desc):
		return CategoryBetting
	case c.airtime.in(desc):
		return CategoryAirtime
	case c.bars.in(desc):
		return CategoryBars
	case c.till.in(desc):
		return CategoryTillWithdrawals
	case amount.IsPositive():
		return CategoryIncoming
	default:
		return CategoryOther
	}
}

// isFulizaDraw separates genuine overdraft draws from descriptions that only
// mention Fuliza in passing.
func (c *Classifier) isFulizaDraw(desc string) bool {
	return c.fulizaDraw.in(desc) &&
		!strings.Contains(desc, "repayment") &&
		c.fulizaConfirmation.in(desc)
}

// Categorize classifies every transaction in place and returns the bucket totals.
// Incoming only accumulates positive amounts; every other bucket accumulates the
// absolute amount.
func (c *Classifier) Categorize(txs []Transaction) CategoryTotals {
	totals := newCategoryTotals()
	for i := range txs {
		amount := txs[i].AmountOrZero().Abs()
		category := c.Classify(txs[i].Description, amount)
		txs[i].Category = category

		if category == CategoryIncoming && !amount.IsPositive() {
			continue
		}
		totals.add(category, amount)
	}
	return totals
}
