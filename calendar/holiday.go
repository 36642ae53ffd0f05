package calendar

// =============================================================================
// HOLIDAY - A designated non-working day
// =============================================================================

// Classification distinguishes statutory holidays from informational ones.
type Classification string

const (
	// ClassBank marks a statutory (bank) holiday: universally non-working.
	ClassBank Classification = "bank"
	// ClassProvincial marks a provincial holiday that may not apply to all
	// employment types.
	ClassProvincial Classification = "provincial"
)

// Holiday is a single designated holiday. Within a dataset a holiday is
// uniquely identified by its (Date, Province) pair.
type Holiday struct {
	ID             string         `json:"id,omitempty"`
	Date           Date           `json:"date"`
	Name           string         `json:"name"`
	Province       string         `json:"province,omitempty"` // empty = national
	Classification Classification `json:"classification"`
}

// National reports whether the holiday applies everywhere.
func (h Holiday) National() bool { return h.Province == "" }

// AppliesTo reports whether the holiday is in effect for the given province.
func (h Holiday) AppliesTo(province string) bool {
	return h.National() || h.Province == province
}

// FilterProvince returns the holidays applicable to a province: national
// entries plus entries scoped to that province, deduplicated by
// (date, province) pair.
func FilterProvince(holidays []Holiday, province string) []Holiday {
	type key struct {
		date     string
		province string
	}
	seen := make(map[key]bool, len(holidays))
	var out []Holiday
	for _, h := range holidays {
		if !h.AppliesTo(province) {
			continue
		}
		k := key{date: h.Date.String(), province: h.Province}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, h)
	}
	return out
}

// =============================================================================
// SET - O(1) date membership across a holiday list
// =============================================================================

// Set is a lookup set of holiday dates. Build it once per calculation batch
// and share it across bookings.
type Set map[Date]struct{}

// NewSet builds a Set from explicit dates.
func NewSet(dates ...Date) Set {
	s := make(Set, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// SetFromHolidays builds a Set from the dates of the given holidays.
// The caller is expected to have already filtered to the relevant province.
func SetFromHolidays(holidays []Holiday) Set {
	s := make(Set, len(holidays))
	for _, h := range holidays {
		s[h.Date] = struct{}{}
	}
	return s
}

// Contains reports whether the date is in the set.
func (s Set) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}
