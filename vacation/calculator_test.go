package vacation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicoding/vacation-tracker/calendar"
	"github.com/alicoding/vacation-tracker/vacation"
)

// Week anchors for 2026: Jan 5 is a Monday, Jan 10/11 the following weekend.
func date(day int) calendar.Date {
	return calendar.NewDate(2026, time.January, day)
}

func mustDays(t *testing.T, start, end calendar.Date, holidays calendar.Set, half bool) decimal.Decimal {
	t.Helper()
	got, err := vacation.BusinessDays(start, end, holidays, half)
	require.NoError(t, err)
	return got
}

func TestBusinessDays_FullWeekNoHolidays(t *testing.T) {
	// Mon Jan 5 .. Fri Jan 9: five weekdays, nothing excluded.
	got := mustDays(t, date(5), date(9), nil, false)
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "got %s", got)
}

func TestBusinessDays_WeekdayOnlyRangeEqualsInclusiveCount(t *testing.T) {
	// Tue..Thu contains no weekend and no holidays, so the result is the
	// inclusive day count.
	got := mustDays(t, date(6), date(8), calendar.NewSet(), false)
	assert.True(t, got.Equal(decimal.NewFromInt(3)), "got %s", got)
}

func TestBusinessDays_AllWeekendRanges(t *testing.T) {
	cases := []struct {
		name       string
		start, end calendar.Date
	}{
		{"single saturday", date(10), date(10)},
		{"single sunday", date(11), date(11)},
		{"saturday to sunday", date(10), date(11)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustDays(t, tc.start, tc.end, nil, false)
			assert.True(t, got.IsZero(), "got %s", got)
		})
	}
}

func TestBusinessDays_RangeSpanningWeekend(t *testing.T) {
	// Fri Jan 9 .. Mon Jan 12: Sat and Sun do not count.
	got := mustDays(t, date(9), date(12), nil, false)
	assert.True(t, got.Equal(decimal.NewFromInt(2)), "got %s", got)
}

func TestBusinessDays_HolidayInsideRangeExcluded(t *testing.T) {
	// Wed Jan 7 is a holiday inside Mon..Fri.
	holidays := calendar.NewSet(date(7))
	got := mustDays(t, date(5), date(9), holidays, false)
	assert.True(t, got.Equal(decimal.NewFromInt(4)), "got %s", got)
}

func TestBusinessDays_HalfDay(t *testing.T) {
	half := decimal.New(5, -1)

	t.Run("single weekday is exactly half", func(t *testing.T) {
		got := mustDays(t, date(5), date(5), nil, true)
		assert.True(t, got.Equal(half), "got %s", got)
	})

	t.Run("single weekend day stays zero", func(t *testing.T) {
		// Nothing was consumed, so there is nothing to halve.
		got := mustDays(t, date(10), date(10), nil, true)
		assert.True(t, got.IsZero(), "got %s", got)
	})

	t.Run("single holiday stays zero", func(t *testing.T) {
		got := mustDays(t, date(5), date(5), calendar.NewSet(date(5)), true)
		assert.True(t, got.IsZero(), "got %s", got)
	})

	t.Run("multi-day range subtracts half", func(t *testing.T) {
		got := mustDays(t, date(5), date(9), nil, true)
		assert.True(t, got.Equal(decimal.NewFromFloat(4.5)), "got %s", got)
	})

	t.Run("multi-day range with zero working days clamps at zero", func(t *testing.T) {
		// Sat..Sun raw count is 0; subtracting 0.5 must not go negative.
		got := mustDays(t, date(10), date(11), nil, true)
		assert.True(t, got.IsZero(), "got %s", got)
	})
}

func TestBusinessDays_InvalidRange(t *testing.T) {
	_, err := vacation.BusinessDays(date(9), date(5), nil, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, vacation.ErrInvalidRange))

	var rangeErr *vacation.InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "2026-01-09", rangeErr.Start.String())
}

func TestBusinessDays_ZeroDatesRejected(t *testing.T) {
	_, err := vacation.BusinessDays(calendar.Date{}, date(5), nil, false)
	assert.True(t, errors.Is(err, vacation.ErrInvalidRange))

	_, err = vacation.BusinessDays(date(5), calendar.Date{}, nil, false)
	assert.True(t, errors.Is(err, vacation.ErrInvalidRange))
}

func TestBusinessDays_Idempotent(t *testing.T) {
	holidays := calendar.NewSet(date(6))
	first := mustDays(t, date(5), date(16), holidays, true)
	second := mustDays(t, date(5), date(16), holidays, true)
	assert.True(t, first.Equal(second))
}

func TestBookingBusinessDays(t *testing.T) {
	b := vacation.Booking{Start: date(5), End: date(9), HalfDay: false}
	got, err := vacation.BookingBusinessDays(b, nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "got %s", got)
}
