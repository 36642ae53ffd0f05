/*
handlers.go - HTTP API handlers for the vacation tracker

PURPOSE:
  Exposes users, bookings, statistics, and holidays over REST. Handlers do
  HTTP parsing and validation, load records from the store, and delegate all
  day counting to the vacation package.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid dates, inverted ranges
  - 404: Resource not found
  - 409: Duplicate holiday
  - 500: Internal errors
  An inverted booking range on a single calculation is a 400 to the caller;
  in aggregated listings the offending booking is skipped and logged instead.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alicoding/vacation-tracker/calendar"
	"github.com/alicoding/vacation-tracker/store/sqlite"
	"github.com/alicoding/vacation-tracker/vacation"
)

// Syncer pushes a user's bookings to an external calendar.
type Syncer interface {
	SyncBookings(ctx context.Context, userName string, bookings []vacation.Booking) (int, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Logger *zap.Logger

	// Syncer is optional; when nil the sync endpoint reports 503.
	Syncer Syncer

	DefaultProvince  string
	DefaultAllowance decimal.Decimal
}

// NewHandler creates a handler with the given store.
func NewHandler(store *sqlite.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:            store,
		Logger:           logger,
		DefaultProvince:  "ON",
		DefaultAllowance: decimal.NewFromInt(20),
	}
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUser returns a single user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*user))
}

// CreateUser creates or updates a user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	u := sqlite.User{
		ID:        req.ID,
		Name:      req.Name,
		Email:     req.Email,
		Province:  req.Province,
		Allowance: h.DefaultAllowance,
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", time.Now().UnixNano())
	}
	if u.Province == "" {
		u.Province = h.DefaultProvince
	}
	if req.Allowance != nil {
		if *req.Allowance < 0 {
			writeError(w, http.StatusBadRequest, "allowance must not be negative", nil)
			return
		}
		u.Allowance = decimal.NewFromFloat(*req.Allowance)
	}

	if err := h.Store.SaveUser(r.Context(), u); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

// =============================================================================
// BOOKING HANDLERS
// =============================================================================

// ListBookings returns a user's bookings, enriched with adjacency metadata
// when ?enriched=true.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	bookings, err := h.Store.ListBookingsByUser(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bookings", err)
		return
	}

	holidays, err := h.holidaysFor(ctx, user.Province, bookings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load holidays", err)
		return
	}
	set := calendar.SetFromHolidays(holidays)

	if r.URL.Query().Get("enriched") == "true" {
		enriched, skipped := vacation.EnrichAll(bookings, holidays)
		if skipped > 0 {
			h.Logger.Warn("bookings skipped during enrichment",
				zap.String("user_id", user.ID),
				zap.Int("skipped", skipped))
		}
		dtos := make([]EnrichedBookingDTO, len(enriched))
		for i, e := range enriched {
			dtos[i] = toEnrichedDTO(e)
		}
		writeJSON(w, http.StatusOK, dtos)
		return
	}

	dtos := make([]BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		days, err := vacation.BookingBusinessDays(b, set)
		if err != nil {
			h.Logger.Warn("skipping booking with invalid range",
				zap.String("booking_id", b.ID),
				zap.Error(err))
			continue
		}
		dtos = append(dtos, toBookingDTO(b, days))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBooking creates a booking for a user. The response carries the
// working-day cost the booking will consume.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	b, ok := h.decodeBooking(w, r)
	if !ok {
		return
	}
	b.ID = fmt.Sprintf("booking-%d", time.Now().UnixNano())
	b.UserID = user.ID
	b.CreatedAt = time.Now().UTC()

	days, ok := h.costBooking(r.Context(), w, user.Province, b)
	if !ok {
		return
	}

	if err := h.Store.SaveBooking(r.Context(), b); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save booking", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(b, days))
}

// GetBooking returns a single booking with its working-day cost.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.loadBooking(w, r)
	if !ok {
		return
	}

	days, ok := h.costBooking(r.Context(), w, user.Province, *b)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(*b, days))
}

// UpdateBooking replaces a booking's dates, note, and half-day fields.
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	existing, user, ok := h.loadBooking(w, r)
	if !ok {
		return
	}

	b, ok := h.decodeBooking(w, r)
	if !ok {
		return
	}
	b.ID = existing.ID
	b.UserID = existing.UserID
	b.CreatedAt = existing.CreatedAt

	days, ok := h.costBooking(r.Context(), w, user.Province, b)
	if !ok {
		return
	}

	if err := h.Store.SaveBooking(r.Context(), b); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update booking", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b, days))
}

// DeleteBooking removes a booking.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.Store.DeleteBooking(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete booking", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Booking not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STATS HANDLER
// =============================================================================

// GetStats returns the used/remaining/total triple for a user.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	bookings, err := h.Store.ListBookingsByUser(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bookings", err)
		return
	}
	holidays, err := h.holidaysFor(ctx, user.Province, bookings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load holidays", err)
		return
	}

	// Both slices are materialized (possibly empty, never nil) at this point,
	// so the stats path always counts.
	if bookings == nil {
		bookings = []vacation.Booking{}
	}
	if holidays == nil {
		holidays = []calendar.Holiday{}
	}

	stats := vacation.CalculateStats(user.Allowance, bookings, holidays)
	if stats.Skipped > 0 {
		h.Logger.Warn("bookings skipped during stats aggregation",
			zap.String("user_id", user.ID),
			zap.Int("skipped", stats.Skipped))
	}
	writeJSON(w, http.StatusOK, toStatsDTO(stats))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns holidays for a year, optionally scoped to a province.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		if _, err := fmt.Sscanf(y, "%d", &year); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
	}
	province := r.URL.Query().Get("province")

	holidays, err := h.Store.ListHolidays(r.Context(), year, province)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTOs(holidays))
}

// CreateHoliday adds a single holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	classification := calendar.Classification(req.Classification)
	switch classification {
	case "":
		classification = calendar.ClassBank
		if req.Province != "" {
			classification = calendar.ClassProvincial
		}
	case calendar.ClassBank, calendar.ClassProvincial:
	default:
		writeError(w, http.StatusBadRequest, "classification must be bank or provincial", nil)
		return
	}

	holiday := calendar.Holiday{
		ID:             fmt.Sprintf("holiday-%d", time.Now().UnixNano()),
		Date:           date,
		Name:           req.Name,
		Province:       req.Province,
		Classification: classification,
	}

	err = h.Store.SaveHoliday(r.Context(), holiday)
	if errors.Is(err, sqlite.ErrDuplicateHoliday) {
		writeError(w, http.StatusConflict, "Holiday already exists for this date and province", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// SeedHolidays loads the built-in holiday dataset for a year.
func (h *Handler) SeedHolidays(w http.ResponseWriter, r *http.Request) {
	var req SeedHolidaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	year := req.Year
	if year == 0 {
		year = time.Now().Year()
	}

	holidays := calendar.DefaultHolidays(year)
	for i := range holidays {
		holidays[i].ID = fmt.Sprintf("holiday-%d-%s-%s", year, holidays[i].Date, holidays[i].Province)
	}

	inserted, err := h.Store.UpsertHolidays(r.Context(), holidays)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, SeedHolidaysResponse{Year: year, Inserted: inserted})
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.Store.DeleteHoliday(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Holiday not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SYNC HANDLER
// =============================================================================

// SyncUser pushes a user's bookings to the configured external calendar.
func (h *Handler) SyncUser(w http.ResponseWriter, r *http.Request) {
	if h.Syncer == nil {
		writeError(w, http.StatusServiceUnavailable, "Calendar sync is not configured", nil)
		return
	}
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	bookings, err := h.Store.ListBookingsByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bookings", err)
		return
	}

	created, err := h.Syncer.SyncBookings(r.Context(), user.Name, bookings)
	if err != nil {
		h.Logger.Error("calendar sync failed",
			zap.String("user_id", user.ID),
			zap.Error(err))
		writeError(w, http.StatusBadGateway, "Calendar sync failed", err)
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{Bookings: len(bookings), Created: created})
}

// =============================================================================
// HELPERS
// =============================================================================

// loadUser resolves the {id} route param to a user, writing the error
// response itself when that fails.
func (h *Handler) loadUser(w http.ResponseWriter, r *http.Request) (*sqlite.User, bool) {
	id := chi.URLParam(r, "id")
	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return nil, false
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return nil, false
	}
	return user, true
}

// loadBooking resolves the {id} route param to a booking and its owner.
func (h *Handler) loadBooking(w http.ResponseWriter, r *http.Request) (*vacation.Booking, *sqlite.User, bool) {
	id := chi.URLParam(r, "id")
	b, err := h.Store.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get booking", err)
		return nil, nil, false
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "Booking not found", nil)
		return nil, nil, false
	}

	user, err := h.Store.GetUser(r.Context(), b.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return nil, nil, false
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "Booking owner not found", nil)
		return nil, nil, false
	}
	return b, user, true
}

// decodeBooking parses and validates a booking request body.
func (h *Handler) decodeBooking(w http.ResponseWriter, r *http.Request) (vacation.Booking, bool) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return vacation.Booking{}, false
	}

	start, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return vacation.Booking{}, false
	}
	end, err := calendar.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return vacation.Booking{}, false
	}

	portion := vacation.HalfDayPortion(req.HalfDayPortion)
	switch portion {
	case "", vacation.PortionMorning, vacation.PortionAfternoon:
	default:
		writeError(w, http.StatusBadRequest, "half_day_portion must be morning or afternoon", nil)
		return vacation.Booking{}, false
	}
	if portion != "" && !req.HalfDay {
		writeError(w, http.StatusBadRequest, "half_day_portion requires half_day", nil)
		return vacation.Booking{}, false
	}
	if req.HalfDay && portion == "" && start.Equal(end) {
		portion = vacation.PortionMorning
	}

	return vacation.Booking{
		Start:   start,
		End:     end,
		Note:    req.Note,
		HalfDay: req.HalfDay,
		Portion: portion,
	}, true
}

// costBooking computes the booking's working-day cost, mapping an inverted
// range to a 400 response.
func (h *Handler) costBooking(ctx context.Context, w http.ResponseWriter, province string, b vacation.Booking) (decimal.Decimal, bool) {
	holidays, err := h.holidaysFor(ctx, province, []vacation.Booking{b})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load holidays", err)
		return decimal.Zero, false
	}

	days, err := vacation.BookingBusinessDays(b, calendar.SetFromHolidays(holidays))
	if errors.Is(err, vacation.ErrInvalidRange) {
		writeError(w, http.StatusBadRequest, "start_date must not be after end_date", err)
		return decimal.Zero, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to calculate working days", err)
		return decimal.Zero, false
	}
	return days, true
}

// holidaysFor loads the province-scoped holidays for every year the given
// bookings touch.
func (h *Handler) holidaysFor(ctx context.Context, province string, bookings []vacation.Booking) ([]calendar.Holiday, error) {
	years := map[int]bool{time.Now().Year(): true}
	for _, b := range bookings {
		if !b.Start.IsZero() {
			years[b.Start.Year()] = true
		}
		if !b.End.IsZero() {
			years[b.End.Year()] = true
		}
	}

	var holidays []calendar.Holiday
	for year := range years {
		hs, err := h.Store.ListHolidays(ctx, year, province)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, hs...)
	}
	if holidays == nil {
		holidays = []calendar.Holiday{}
	}
	return holidays, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
