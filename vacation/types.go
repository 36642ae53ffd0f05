/*
Package vacation implements the business-day core of the tracker.

PURPOSE:
  Everything that decides how many allowance days a booking consumes lives
  here, in one place: the business-day calculator, the aggregate statistics
  over a booking list, and the adjacency enrichment (long weekends, holiday
  bridges). Earlier revisions of this product grew four near-identical copies
  of the day-counting loop with drifting half-day rules; every path now goes
  through BusinessDays.

DESIGN PRINCIPLES:
  1. Purity: no I/O, no clocks, no logging. Inputs are fully materialized
     dates and holiday sets; identical inputs always produce identical output.
  2. Precision: day amounts are decimal.Decimal so 0.5-day increments are
     exact (never 4.499999...).
  3. Explicit errors: an inverted range is an error return, never a silent
     zero. Bulk callers decide their own degradation policy.

SEE ALSO:
  - calculator.go: the single day-counting loop
  - stats.go: used/remaining aggregation over a booking list
  - enrich.go: adjacency detection and messaging
*/
package vacation

import (
	"time"

	"github.com/alicoding/vacation-tracker/calendar"
)

// HalfDayPortion says which half of the day a half-day booking covers.
// Only meaningful when the half-day flag is set on a single-day booking.
type HalfDayPortion string

const (
	PortionMorning   HalfDayPortion = "morning"
	PortionAfternoon HalfDayPortion = "afternoon"
)

// Booking is a vacation booking over an inclusive range of calendar dates.
// Start and End are date-only; any time-of-day a client sends is stripped at
// the ingestion boundary.
type Booking struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Start     calendar.Date  `json:"start_date"`
	End       calendar.Date  `json:"end_date"`
	Note      string         `json:"note,omitempty"`
	HalfDay   bool           `json:"half_day"`
	Portion   HalfDayPortion `json:"half_day_portion,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
}

// SingleDay reports whether the booking covers exactly one calendar day.
func (b Booking) SingleDay() bool { return b.Start.Equal(b.End) }

// Span returns the inclusive calendar-day count of the booking, 0 for an
// inverted range.
func (b Booking) Span() int { return calendar.DaysBetween(b.Start, b.End) }

// Validate checks that the booking covers a well-formed date range.
func (b Booking) Validate() error {
	if b.Start.IsZero() || b.End.IsZero() || b.Start.After(b.End) {
		return &InvalidRangeError{Start: b.Start, End: b.End}
	}
	return nil
}
