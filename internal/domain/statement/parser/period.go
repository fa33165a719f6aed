package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	namedDate   = `\d{1,2}\s+[a-z]{3,9}\.?,?\s+\d{4}`
	numericDate = `\d{1,2}[/.-]\d{1,2}[/.-]\d{4}`
	isoDate     = `\d{4}-\d{2}-\d{2}`
	rangeSep    = `\s*(?:-|–|to)\s*`
)

// periodPatterns are tried in order; the first one whose dates parse wins.
var periodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)statement\s+period\s*:?\s*(` + anyDate() + `)` + rangeSep + `(` + anyDate() + `)`),
	regexp.MustCompile(`(?i)(` + namedDate + `)` + rangeSep + `(` + namedDate + `)`),
	regexp.MustCompile(`(?i)(` + numericDate + `)` + rangeSep + `(` + numericDate + `)`),
}

func anyDate() string {
	return `(?:` + isoDate + `|` + namedDate + `|` + numericDate + `)`
}

// Day-first, as printed on Kenyan statements.
var periodDateLayouts = []string{
	"2006-01-02",
	"2 Jan 2006",
	"2 January 2006",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
}

// extractPeriod searches the statement text for its date range.
func extractPeriod(text string) *Period {
	for _, re := range periodPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		start, err := parsePeriodDate(m[1])
		if err != nil {
			continue
		}
		end, err := parsePeriodDate(m[2])
		if err != nil {
			continue
		}
		if end.Before(start) {
			continue
		}
		return &Period{Start: start, End: end}
	}
	return nil
}

// parsePeriodDate accepts month names in any case, with an optional trailing
// dot or comma, and numeric day-first dates.
func parsePeriodDate(s string) (time.Time, error) {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.NewReplacer(".,", "", ", ", " ", ". ", " ").Replace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range periodDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %s", s)
}
