package vacation

import (
	"github.com/shopspring/decimal"

	"github.com/alicoding/vacation-tracker/calendar"
)

// Stats is the aggregate vacation balance for one user. It is derived state:
// recompute it whenever the booking list, holiday list, or allowance changes.
type Stats struct {
	Total     decimal.Decimal `json:"total"`
	Used      decimal.Decimal `json:"used"`
	Remaining decimal.Decimal `json:"remaining"`

	// Skipped counts bookings dropped from the sum because their date range
	// was invalid. Callers should log when this is non-zero; the aggregation
	// itself never aborts on a bad booking.
	Skipped int `json:"-"`
}

// CalculateStats sums working-day consumption across bookings against a total
// allowance.
//
// Degradation rules:
//   - a negative allowance is a data-entry anomaly upstream and clamps the
//     whole result to zeros rather than erroring,
//   - nil bookings or nil holidays mean "nothing loaded yet" and yield
//     {used: 0, remaining: allowance, total: allowance},
//   - a booking with an invalid range is skipped and counted in Skipped.
//
// Day counting delegates to BusinessDays so this path can never drift from
// the single-booking calculation.
func CalculateStats(allowance decimal.Decimal, bookings []Booking, holidays []calendar.Holiday) Stats {
	if allowance.IsNegative() {
		return Stats{}
	}
	if bookings == nil || holidays == nil {
		return Stats{Total: allowance, Remaining: allowance}
	}

	// One shared lookup set across all bookings.
	set := calendar.SetFromHolidays(holidays)

	used := decimal.Zero
	skipped := 0
	for _, b := range bookings {
		days, err := BookingBusinessDays(b, set)
		if err != nil {
			skipped++
			continue
		}
		used = used.Add(days)
	}

	remaining := allowance.Sub(used)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return Stats{
		Total:     allowance,
		Used:      used,
		Remaining: remaining,
		Skipped:   skipped,
	}
}
