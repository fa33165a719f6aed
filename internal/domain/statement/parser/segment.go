package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	dateTokenRe   = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	amountTokenRe = regexp.MustCompile(`[\d,]+\.\d{2}`)
	amountOnlyRe  = regexp.MustCompile(`^[\d,]+\.\d{2}$`)
)

type scanState int

const (
	awaitingDate scanState = iota
	inCandidate
)

// scanner groups statement lines into transactions. A date token closes the open
// transaction and opens the next one.
type scanner struct {
	state   scanState
	current Transaction
	out     []Transaction
}

// Feed consumes one line of statement text.
func (s *scanner) Feed(line string) {
	rest := line
	if loc := dateTokenRe.FindStringIndex(line); loc != nil {
		s.emit()
		s.current = Transaction{DateToken: line[loc[0]:loc[1]]}
		s.state = inCandidate
		rest = line[:loc[0]] + line[loc[1]:]
	}

	if s.state != inCandidate {
		return
	}

	if s.current.Amount == nil {
		s.current.Amount = lastAmount(rest)
	}

	if s.current.Description == "" {
		desc := strings.TrimSpace(rest)
		if desc != "" && !amountOnlyRe.MatchString(desc) {
			s.current.Description = strings.ToLower(desc)
		}
	}
}

// Finish emits the open transaction, if any, and returns everything collected.
func (s *scanner) Finish() []Transaction {
	s.emit()
	return s.out
}

func (s *scanner) emit() {
	if s.state != inCandidate {
		return
	}
	s.out = append(s.out, s.current)
	s.current = Transaction{}
	s.state = awaitingDate
}

// lastAmount returns the last two-decimal number on the line. Layouts print the
// running balance before the transaction amount.
func lastAmount(line string) *decimal.Decimal {
	matches := amountTokenRe.FindAllString(strings.ReplaceAll(line, ",", ""), -1)
	if len(matches) == 0 {
		return nil
	}
	d, err := decimal.NewFromString(matches[len(matches)-1])
	if err != nil {
		return nil
	}
	return &d
}

func segment(text string) []Transaction {
	var s scanner
	for _, line := range strings.Split(text, "\n") {
		s.Feed(line)
	}
	return s.Finish()
}
