package vacation

import (
	"errors"
	"fmt"

	"github.com/alicoding/vacation-tracker/calendar"
)

// ErrInvalidRange is returned when a booking's start date is after its end
// date, or either date is missing. Use with errors.Is().
//
// Policy per call site:
//   - single explicit calculations surface this to the user as a validation
//     error (the API maps it to 400),
//   - bulk aggregation (CalculateStats, EnrichAll) skips the offending
//     booking and keeps going.
var ErrInvalidRange = errors.New("invalid date range")

// InvalidRangeError carries the offending range.
type InvalidRangeError struct {
	Start calendar.Date
	End   calendar.Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s after end %s", e.Start, e.End)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }
