package vacation

import (
	"github.com/shopspring/decimal"

	"github.com/alicoding/vacation-tracker/calendar"
)

// halfDay is the 0.5-day amount used by half-day adjustments.
var halfDay = decimal.New(5, -1)

// BusinessDays returns the number of working days consumed by the inclusive
// range [start, end]. A day counts iff it is a weekday (Mon-Fri) and not in
// holidays. The result is always non-negative, in increments of 0.5.
//
// Half-day handling when half is set:
//   - single-day range whose day counts: exactly 0.5
//   - single-day range on a weekend/holiday: 0 (no working day was consumed,
//     so there is nothing to halve)
//   - multi-day range: raw count minus 0.5, clamped at zero
//
// An inverted or incomplete range returns ErrInvalidRange; this function
// never silently returns zero for bad input.
func BusinessDays(start, end calendar.Date, holidays calendar.Set, half bool) (decimal.Decimal, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return decimal.Zero, &InvalidRangeError{Start: start, End: end}
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		if !d.IsWeekend() && !holidays.Contains(d) {
			count++
		}
	}

	if half {
		if start.Equal(end) {
			if count == 0 {
				return decimal.Zero, nil
			}
			return halfDay, nil
		}
		result := decimal.NewFromInt(int64(count)).Sub(halfDay)
		if result.IsNegative() {
			return decimal.Zero, nil
		}
		return result, nil
	}

	return decimal.NewFromInt(int64(count)), nil
}

// BookingBusinessDays computes the working-day cost of a booking.
func BookingBusinessDays(b Booking, holidays calendar.Set) (decimal.Decimal, error) {
	return BusinessDays(b.Start, b.End, holidays, b.HalfDay)
}
