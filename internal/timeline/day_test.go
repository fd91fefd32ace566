package timeline

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayRangeIsInclusiveAndContiguous(t *testing.T) {
	loc := time.UTC
	start := time.Date(2024, 4, 5, 13, 0, 0, 0, loc)
	end := time.Date(2024, 4, 9, 2, 0, 0, 0, loc)

	days := DayRange(start, end, loc)

	assert.Equal(t, []Day{"2024-04-05", "2024-04-06", "2024-04-07", "2024-04-08", "2024-04-09"}, days)
}

func TestDayRangeCrossesYearBoundary(t *testing.T) {
	loc := time.UTC
	start := time.Date(2023, 12, 30, 0, 0, 0, 0, loc)
	end := time.Date(2024, 1, 2, 23, 59, 59, 0, loc)

	days := DayRange(start, end, loc)

	require.Len(t, days, 4)
	assert.Equal(t, Day("2023-12-30"), days[0])
	assert.Equal(t, Day("2023-12-31"), days[1])
	assert.Equal(t, Day("2024-01-01"), days[2])
	assert.Equal(t, Day("2024-01-02"), days[3])
}

func TestDayRangeCountsAcrossManyStarts(t *testing.T) {
	loc := time.UTC
	base := time.Date(2023, 11, 1, 8, 0, 0, 0, loc)
	for offset := 0; offset < 90; offset += 7 {
		for span := 0; span < 70; span += 9 {
			start := base.AddDate(0, 0, offset)
			end := start.AddDate(0, 0, span)

			days := DayRange(start, end, loc)

			require.Len(t, days, span+1, "start=%s span=%d", start, span)
			seen := make(map[Day]bool, len(days))
			for i, d := range days {
				require.False(t, seen[d], "duplicate day %s", d)
				seen[d] = true
				if i > 0 {
					next, err := days[i-1].AddDays(1)
					require.NoError(t, err)
					require.Equal(t, next, d)
				}
			}
		}
	}
}

func TestDayRangeEmptyWhenEndBeforeStart(t *testing.T) {
	loc := time.UTC
	start := time.Date(2024, 4, 9, 0, 0, 0, 0, loc)
	end := time.Date(2024, 4, 8, 23, 0, 0, 0, loc)

	assert.Empty(t, DayRange(start, end, loc))
}

func TestDayRangeSameDayYieldsOneKey(t *testing.T) {
	loc := time.UTC
	start := time.Date(2024, 4, 9, 1, 0, 0, 0, loc)
	end := time.Date(2024, 4, 9, 22, 0, 0, 0, loc)

	assert.Equal(t, []Day{"2024-04-09"}, DayRange(start, end, loc))
}

func TestDayRangeAcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	// Clocks go back on 2024-04-07 in Sydney.
	start := time.Date(2024, 4, 5, 0, 0, 0, 0, loc)
	end := time.Date(2024, 4, 9, 23, 59, 59, 0, loc)

	days := DayRange(start, end, loc)

	assert.Equal(t, []Day{"2024-04-05", "2024-04-06", "2024-04-07", "2024-04-08", "2024-04-09"}, days)
}

func TestDayOfUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("AEST", 10*60*60)
	instant := time.Date(2024, 4, 8, 20, 30, 0, 0, time.UTC)

	assert.Equal(t, Day("2024-04-09"), DayOf(instant, loc))
	assert.Equal(t, Day("2024-04-08"), DayOf(instant, time.UTC))
}

func TestDayStartAndEnd(t *testing.T) {
	loc := time.FixedZone("AEST", 10*60*60)
	d := Day("2024-04-09")

	assert.Equal(t, time.Date(2024, 4, 9, 0, 0, 0, 0, loc), d.Start(loc))
	assert.Equal(t, time.Date(2024, 4, 9, 23, 59, 59, 999999999, loc), d.End(loc))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, Day("2024-02-29"), d)

	_, err = ParseDay("2023-02-29")
	assert.Error(t, err)
}

func TestDayRangeReturnsForFiveDigitYears(t *testing.T) {
	loc := time.UTC
	start := time.Date(10000, 1, 1, 0, 0, 0, 0, loc)
	end := time.Date(10000, 1, 3, 12, 0, 0, 0, loc)

	done := make(chan []Day, 1)
	go func() { done <- DayRange(start, end, loc) }()

	select {
	case days := <-done:
		assert.Equal(t, []Day{"10000-01-01", "10000-01-02", "10000-01-03"}, days)
	case <-time.After(2 * time.Second):
		t.Fatal("DayRange did not return for a year-10000 range")
	}
}

func TestDayRangeAcrossYear9999(t *testing.T) {
	loc := time.UTC
	start := time.Date(9999, 12, 30, 0, 0, 0, 0, loc)
	end := time.Date(10000, 1, 1, 0, 0, 0, 0, loc)

	assert.Equal(t, []Day{"9999-12-30", "9999-12-31", "10000-01-01"}, DayRange(start, end, loc))
}

func TestAddDaysReportsUnparseableAndOutOfRangeKeys(t *testing.T) {
	_, err := Day("10000-01-01").AddDays(1)
	assert.Error(t, err)

	_, err = Day("9999-12-31").AddDays(1)
	assert.ErrorIs(t, err, ErrDayOutOfRange)

	_, err = Day("0000-01-01").AddDays(-1)
	assert.ErrorIs(t, err, ErrDayOutOfRange)

	d, err := Day("2024-02-28").AddDays(2)
	require.NoError(t, err)
	assert.Equal(t, Day("2024-03-01"), d)
}

func TestDayEndOfLastRepresentableDay(t *testing.T) {
	assert.Equal(t, time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC), Day("9999-12-31").End(time.UTC))
}
