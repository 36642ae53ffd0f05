package calendar

import "time"

/*
defaults.go - Built-in Canadian holiday definitions

The tracker ships with the Canadian statutory calendar so a fresh install can
compute balances before any external feed has been configured. National (bank)
holidays apply everywhere; provincial entries are scoped to a two-letter
province code and classified as informational.

Rules are generated per year rather than stored as fixed dates because most of
the calendar floats: Good Friday follows Easter, Labour Day is the first Monday
of September, Victoria Day is the Monday preceding May 25, and so on.
*/

// DefaultHolidays returns the built-in holiday dataset for a year: all
// national holidays plus every known provincial entry. Use FilterProvince to
// scope the result to one jurisdiction.
func DefaultHolidays(year int) []Holiday {
	easter := easterSunday(year)

	national := []Holiday{
		{Date: NewDate(year, time.January, 1), Name: "New Year's Day"},
		{Date: easter.AddDays(-2), Name: "Good Friday"},
		{Date: mondayBefore(NewDate(year, time.May, 25)), Name: "Victoria Day"},
		{Date: NewDate(year, time.July, 1), Name: "Canada Day"},
		{Date: nthWeekday(year, time.September, time.Monday, 1), Name: "Labour Day"},
		{Date: NewDate(year, time.September, 30), Name: "National Day for Truth and Reconciliation"},
		{Date: nthWeekday(year, time.October, time.Monday, 2), Name: "Thanksgiving"},
		{Date: NewDate(year, time.December, 25), Name: "Christmas Day"},
		{Date: NewDate(year, time.December, 26), Name: "Boxing Day"},
	}
	for i := range national {
		national[i].Classification = ClassBank
	}

	familyDay := nthWeekday(year, time.February, time.Monday, 3)
	provincial := []Holiday{
		{Date: familyDay, Name: "Family Day", Province: "ON"},
		{Date: familyDay, Name: "Family Day", Province: "AB"},
		{Date: familyDay, Name: "Family Day", Province: "BC"},
		{Date: familyDay, Name: "Family Day", Province: "SK"},
		{Date: familyDay, Name: "Louis Riel Day", Province: "MB"},
		{Date: familyDay, Name: "Islander Day", Province: "PE"},
		{Date: familyDay, Name: "Heritage Day", Province: "NS"},
		{Date: NewDate(year, time.June, 24), Name: "Saint-Jean-Baptiste Day", Province: "QC"},
		{Date: nthWeekday(year, time.August, time.Monday, 1), Name: "Civic Holiday", Province: "ON"},
		{Date: nthWeekday(year, time.August, time.Monday, 1), Name: "Heritage Day", Province: "AB"},
		{Date: nthWeekday(year, time.August, time.Monday, 1), Name: "British Columbia Day", Province: "BC"},
		{Date: NewDate(year, time.November, 11), Name: "Remembrance Day", Province: "BC"},
		{Date: NewDate(year, time.November, 11), Name: "Remembrance Day", Province: "AB"},
		{Date: NewDate(year, time.November, 11), Name: "Remembrance Day", Province: "SK"},
	}
	for i := range provincial {
		provincial[i].Classification = ClassProvincial
	}

	return append(national, provincial...)
}

// ForProvince returns the built-in holidays in effect for one province:
// national entries plus that province's own, deduplicated.
func ForProvince(year int, province string) []Holiday {
	return FilterProvince(DefaultHolidays(year), province)
}

// nthWeekday returns the nth occurrence (1-based) of a weekday in a month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) Date {
	d := NewDate(year, month, 1)
	offset := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDays(offset + (n-1)*7)
}

// mondayBefore returns the Monday strictly before the given date.
func mondayBefore(d Date) Date {
	offset := (int(d.Weekday()) - int(time.Monday) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return d.AddDays(-offset)
}

// easterSunday computes Gregorian Easter using the anonymous algorithm.
func easterSunday(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return NewDate(year, time.Month(month), day)
}
