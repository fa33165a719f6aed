package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtractPeriod(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "named months",
			text:      "MPESA FULL STATEMENT\n1 Jan 2024 - 31 Mar 2024\n",
			wantStart: date(2024, time.January, 1),
			wantEnd:   date(2024, time.March, 31),
		},
		{
			name:      "full month names in upper case",
			text:      "01 JANUARY 2024 - 29 FEBRUARY 2024",
			wantStart: date(2024, time.January, 1),
			wantEnd:   date(2024, time.February, 29),
		},
		{
			name:      "numeric day first",
			text:      "Period 01/02/2024 - 28/02/2024",
			wantStart: date(2024, time.February, 1),
			wantEnd:   date(2024, time.February, 28),
		},
		{
			name:      "labeled with iso dates",
			text:      "Statement Period: 2024-04-01 to 2024-04-30",
			wantStart: date(2024, time.April, 1),
			wantEnd:   date(2024, time.April, 30),
		},
		{
			name:      "labeled beats a later named range",
			text:      "1 Jan 2023 - 31 Jan 2023\nstatement period: 01/05/2024 - 31/05/2024",
			wantStart: date(2024, time.May, 1),
			wantEnd:   date(2024, time.May, 31),
		},
		{
			name:      "month abbreviation with dot",
			text:      "3 Sep. 2024 - 2 Oct. 2024",
			wantStart: date(2024, time.September, 3),
			wantEnd:   date(2024, time.October, 2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := extractPeriod(tt.text)
			require.NotNil(t, p)
			assert.Equal(t, tt.wantStart, p.Start)
			assert.Equal(t, tt.wantEnd, p.End)
		})
	}
}

func TestExtractPeriod_Absent(t *testing.T) {
	t.Run("no range", func(t *testing.T) {
		assert.Nil(t, extractPeriod("01/02/24\nSPORTPESA BET\n500.00"))
	})

	t.Run("unparseable dates fall through to the next pattern", func(t *testing.T) {
		p := extractPeriod("32 Foo 2024 - 33 Bar 2024\n01/06/2024 - 30/06/2024")
		require.NotNil(t, p)
		assert.Equal(t, date(2024, time.June, 1), p.Start)
	})

	t.Run("reversed range is rejected", func(t *testing.T) {
		assert.Nil(t, extractPeriod("31 Mar 2024 - 1 Jan 2024"))
	})
}

func TestParsePeriodDate(t *testing.T) {
	got, err := parsePeriodDate("  5   apr,  2024 ")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.April, 5), got)

	_, err = parsePeriodDate("")
	assert.Error(t, err)

	_, err = parsePeriodDate("31/02/2024")
	assert.Error(t, err)
}
