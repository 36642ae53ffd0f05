/*
dto.go - Data Transfer Objects for API requests and responses

These types decouple the internal domain model from the external API
contract. Amounts cross the wire as float64; internally they are
decimal.Decimal. Dates cross the wire as YYYY-MM-DD strings and are parsed
at this boundary.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alicoding/vacation-tracker/calendar"
	"github.com/alicoding/vacation-tracker/store/sqlite"
	"github.com/alicoding/vacation-tracker/vacation"
)

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email,omitempty"`
	Province  string  `json:"province"`
	Allowance float64 `json:"allowance"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// CreateUserRequest is the request to create or update a user.
type CreateUserRequest struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name"`
	Email     string   `json:"email,omitempty"`
	Province  string   `json:"province,omitempty"`
	Allowance *float64 `json:"allowance,omitempty"`
}

// BookingDTO represents a booking in API responses. WorkingDays is the
// allowance cost computed by the calculator.
type BookingDTO struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Note           string  `json:"note,omitempty"`
	HalfDay        bool    `json:"half_day"`
	HalfDayPortion string  `json:"half_day_portion,omitempty"`
	WorkingDays    float64 `json:"working_days"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

// EnrichedBookingDTO adds adjacency metadata to a booking.
type EnrichedBookingDTO struct {
	BookingDTO
	TotalDaysOff     int          `json:"total_days_off"`
	AdjacentHolidays []HolidayDTO `json:"adjacent_holidays"`
	WeekendBefore    bool         `json:"weekend_before"`
	WeekendAfter     bool         `json:"weekend_after"`
	LongWeekend      bool         `json:"long_weekend"`
	ExtendedDaysOff  int          `json:"extended_days_off"`
	Message          string       `json:"message,omitempty"`
}

// BookingRequest is the request to create or update a booking.
type BookingRequest struct {
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Note           string `json:"note,omitempty"`
	HalfDay        bool   `json:"half_day"`
	HalfDayPortion string `json:"half_day_portion,omitempty"`
}

// StatsDTO is the aggregate balance for a user.
type StatsDTO struct {
	Total     float64 `json:"total"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
}

// HolidayDTO represents a holiday in API responses.
type HolidayDTO struct {
	ID             string `json:"id,omitempty"`
	Date           string `json:"date"`
	Name           string `json:"name"`
	Province       string `json:"province,omitempty"`
	Classification string `json:"classification"`
}

// CreateHolidayRequest is the request to add a holiday.
type CreateHolidayRequest struct {
	Date           string `json:"date"`
	Name           string `json:"name"`
	Province       string `json:"province,omitempty"`
	Classification string `json:"classification,omitempty"`
}

// SeedHolidaysRequest is the request to load the built-in holiday dataset.
type SeedHolidaysRequest struct {
	Year int `json:"year"`
}

// SeedHolidaysResponse reports how many holidays were added.
type SeedHolidaysResponse struct {
	Year     int `json:"year"`
	Inserted int `json:"inserted"`
}

// SyncResponse reports the result of a calendar sync.
type SyncResponse struct {
	Bookings int `json:"bookings"`
	Created  int `json:"created"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toUserDTO(u sqlite.User) UserDTO {
	allowance, _ := u.Allowance.Float64()
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Province:  u.Province,
		Allowance: allowance,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func toBookingDTO(b vacation.Booking, workingDays decimal.Decimal) BookingDTO {
	days, _ := workingDays.Float64()
	dto := BookingDTO{
		ID:             b.ID,
		UserID:         b.UserID,
		StartDate:      b.Start.String(),
		EndDate:        b.End.String(),
		Note:           b.Note,
		HalfDay:        b.HalfDay,
		HalfDayPortion: string(b.Portion),
		WorkingDays:    days,
	}
	if !b.CreatedAt.IsZero() {
		dto.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toEnrichedDTO(e vacation.Enriched) EnrichedBookingDTO {
	adjacent := make([]HolidayDTO, len(e.AdjacentHolidays))
	for i, h := range e.AdjacentHolidays {
		adjacent[i] = toHolidayDTO(h)
	}
	return EnrichedBookingDTO{
		BookingDTO:       toBookingDTO(e.Booking, e.WorkingDaysOff),
		TotalDaysOff:     e.TotalDaysOff,
		AdjacentHolidays: adjacent,
		WeekendBefore:    e.WeekendBefore,
		WeekendAfter:     e.WeekendAfter,
		LongWeekend:      e.LongWeekend,
		ExtendedDaysOff:  e.ExtendedDaysOff,
		Message:          e.Message,
	}
}

func toStatsDTO(s vacation.Stats) StatsDTO {
	total, _ := s.Total.Float64()
	used, _ := s.Used.Float64()
	remaining, _ := s.Remaining.Float64()
	return StatsDTO{Total: total, Used: used, Remaining: remaining}
}

func toHolidayDTO(h calendar.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:             h.ID,
		Date:           h.Date.String(),
		Name:           h.Name,
		Province:       h.Province,
		Classification: string(h.Classification),
	}
}

func toHolidayDTOs(holidays []calendar.Holiday) []HolidayDTO {
	dtos := make([]HolidayDTO, len(holidays))
	for i, h := range holidays {
		dtos[i] = toHolidayDTO(h)
	}
	return dtos
}
