package vacation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alicoding/vacation-tracker/calendar"
)

// Enriched is a booking decorated with adjacency metadata for list and
// detail views.
type Enriched struct {
	Booking

	// TotalDaysOff is the inclusive calendar-day span of the booking.
	TotalDaysOff int `json:"total_days_off"`
	// WorkingDaysOff is the working-day cost per BusinessDays.
	WorkingDaysOff decimal.Decimal `json:"working_days_off"`
	// AdjacentHolidays are holidays falling exactly one day before the start
	// or one day after the end.
	AdjacentHolidays []calendar.Holiday `json:"adjacent_holidays,omitempty"`
	WeekendBefore    bool               `json:"weekend_before"`
	WeekendAfter     bool               `json:"weekend_after"`
	LongWeekend      bool               `json:"long_weekend"`
	// ExtendedDaysOff is the contiguous days-off total reachable through the
	// adjacent weekend/holiday block.
	ExtendedDaysOff int    `json:"extended_days_off"`
	Message         string `json:"message,omitempty"`
}

// Enrich computes adjacency metadata for one booking. holidays should already
// be scoped to the booking owner's province. Returns ErrInvalidRange for an
// inverted range.
func Enrich(b Booking, holidays []calendar.Holiday) (Enriched, error) {
	working, err := BookingBusinessDays(b, calendar.SetFromHolidays(holidays))
	if err != nil {
		return Enriched{}, err
	}

	span := b.Span()
	dayBefore := b.Start.AddDays(-1)
	dayAfter := b.End.AddDays(1)

	var adjacent []calendar.Holiday
	for _, h := range holidays {
		if h.Date.Equal(dayBefore) || h.Date.Equal(dayAfter) {
			adjacent = append(adjacent, h)
		}
	}

	weekendBefore := dayBefore.IsWeekend()
	weekendAfter := dayAfter.IsWeekend()
	holidayAdjacent := len(adjacent) > 0

	// Extended-days arithmetic is asymmetric on purpose: a weekend before the
	// start always contributes its full two days (the block is contiguous
	// back through Saturday), while after the end a Saturday opens the whole
	// following weekend (+2) but a Sunday is the last reachable day (+1).
	extended := span
	if wd := dayBefore.Weekday(); wd == time.Saturday || wd == time.Sunday {
		extended += 2
	}
	switch dayAfter.Weekday() {
	case time.Saturday:
		extended += 2
	case time.Sunday:
		extended++
	}
	extended += len(adjacent)

	e := Enriched{
		Booking:          b,
		TotalDaysOff:     span,
		WorkingDaysOff:   working,
		AdjacentHolidays: adjacent,
		WeekendBefore:    weekendBefore,
		WeekendAfter:     weekendAfter,
		LongWeekend:      span <= 2 && (weekendBefore || weekendAfter || holidayAdjacent),
		ExtendedDaysOff:  extended,
	}
	e.Message = enrichMessage(e, weekendBefore || weekendAfter, holidayAdjacent)
	return e, nil
}

// EnrichAll enriches a booking list, skipping bookings with invalid ranges.
// Returns the enriched list and the number skipped.
func EnrichAll(bookings []Booking, holidays []calendar.Holiday) ([]Enriched, int) {
	out := make([]Enriched, 0, len(bookings))
	skipped := 0
	for _, b := range bookings {
		e, err := Enrich(b, holidays)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, e)
	}
	return out, skipped
}

// enrichMessage picks the single message for a booking. Cases are mutually
// exclusive and checked in priority order.
func enrichMessage(e Enriched, weekendAdjacent, holidayAdjacent bool) string {
	switch {
	case weekendAdjacent && holidayAdjacent:
		return fmt.Sprintf("Extended break: %d days off in a row including the adjacent weekend and holidays", e.ExtendedDaysOff)
	case weekendAdjacent:
		return fmt.Sprintf("Long weekend: %d days off in a row", e.ExtendedDaysOff)
	case holidayAdjacent:
		return fmt.Sprintf("Extended break: %d days off in a row thanks to adjacent holidays", e.ExtendedDaysOff)
	case e.TotalDaysOff > 2:
		return fmt.Sprintf("Total time off: %d days (%s working days)", e.TotalDaysOff, e.WorkingDaysOff)
	default:
		return ""
	}
}
