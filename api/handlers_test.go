/*
handlers_test.go - HTTP-level tests for the API

Tests drive the full router against an in-memory store, covering the
user/booking/stats/holiday endpoints and their error mapping.
*/
package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alicoding/vacation-tracker/calendar"
	"github.com/alicoding/vacation-tracker/store/sqlite"
	"github.com/alicoding/vacation-tracker/vacation"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, zap.NewNop())
	srv := httptest.NewServer(NewRouter(h, nil))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func seedUser(t *testing.T, store *sqlite.Store, id string) {
	t.Helper()
	require.NoError(t, store.SaveUser(context.Background(), sqlite.User{
		ID:        id,
		Name:      "Ada",
		Province:  "ON",
		Allowance: decimal.NewFromInt(20),
	}))
}

func TestCreateAndGetUser(t *testing.T) {
	srv, _ := newTestServer(t)

	var created UserDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users",
		CreateUserRequest{Name: "Grace", Email: "grace@example.com"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Grace", created.Name)
	assert.Equal(t, "ON", created.Province)
	assert.Equal(t, 20.0, created.Allowance)

	var fetched UserDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/"+created.ID, nil, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestCreateUser_RequiresName(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users", CreateUserRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUser_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateBooking_ReturnsWorkingDayCost(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "u-1")

	// New Year's Day 2026 falls on a Thursday.
	require.NoError(t, store.SaveHoliday(context.Background(), calendar.Holiday{
		ID:             "h-1",
		Date:           calendar.NewDate(2026, time.January, 1),
		Name:           "New Year's Day",
		Classification: calendar.ClassBank,
	}))

	var dto BookingDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u-1/bookings",
		BookingRequest{StartDate: "2025-12-29", EndDate: "2026-01-02"}, &dto)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Mon Dec 29 through Fri Jan 2, minus the Jan 1 holiday.
	assert.Equal(t, 4.0, dto.WorkingDays)
	assert.Equal(t, "u-1", dto.UserID)
	assert.NotEmpty(t, dto.ID)
}

func TestCreateBooking_InvertedRangeIs400(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "u-1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u-1/bookings",
		BookingRequest{StartDate: "2026-01-09", EndDate: "2026-01-05"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateBooking_BadPortion(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "u-1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u-1/bookings",
		BookingRequest{StartDate: "2026-01-05", EndDate: "2026-01-05", HalfDay: true, HalfDayPortion: "evening"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/users/u-1/bookings",
		BookingRequest{StartDate: "2026-01-05", EndDate: "2026-01-05", HalfDayPortion: "morning"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateAndDeleteBooking(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "u-1")

	var created BookingDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u-1/bookings",
		BookingRequest{StartDate: "2026-01-05", EndDate: "2026-01-09"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var updated BookingDTO
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/bookings/"+created.ID,
		BookingRequest{StartDate: "2026-01-05", EndDate: "2026-01-07", Note: "shortened"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 3.0, updated.WorkingDays)
	assert.Equal(t, "shortened", updated.Note)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/bookings/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/bookings/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetStats(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "u-1")
	ctx := context.Background()

	require.NoError(t, store.SaveBooking(ctx, vacation.Booking{
		ID:     "b-1",
		UserID: "u-1",
		Start:  calendar.NewDate(2026, time.January, 5),
		End:    calendar.NewDate(2026, time.January, 9),
	}))
	require.NoError(t, store.SaveBooking(ctx, vacation.Booking{
		ID:      "b-2",
		UserID:  "u-1",
		Start:   calendar.NewDate(2026, time.February, 2),
		End:     calendar.NewDate(2026, time.February, 2),
		HalfDay: true,
		Portion: vacation.PortionAfternoon,
	}))

	var stats StatsDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/u-1/stats", nil, &stats)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 20.0, stats.Total)
	assert.Equal(t, 5.5, stats.Used)
	assert.Equal(t, 14.5, stats.Remaining)
}

func TestGetStats_NoBookings(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "u-1")

	var stats StatsDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/u-1/stats", nil, &stats)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, stats.Used)
	assert.Equal(t, 20.0, stats.Remaining)
}

func TestListBookings_Enriched(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "u-1")

	// Friday booking followed by a weekend.
	require.NoError(t, store.SaveBooking(context.Background(), vacation.Booking{
		ID:     "b-1",
		UserID: "u-1",
		Start:  calendar.NewDate(2026, time.January, 9),
		End:    calendar.NewDate(2026, time.January, 9),
	}))

	var enriched []EnrichedBookingDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/u-1/bookings?enriched=true", nil, &enriched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, enriched, 1)

	assert.True(t, enriched[0].LongWeekend)
	assert.True(t, enriched[0].WeekendAfter)
	assert.Equal(t, 3, enriched[0].ExtendedDaysOff)
	assert.Contains(t, enriched[0].Message, "Long weekend")
}

func TestHolidayLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	var created HolidayDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/holidays",
		CreateHolidayRequest{Date: "2026-07-01", Name: "Canada Day"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, string(calendar.ClassBank), created.Classification)

	// Same date and province again conflicts.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/holidays",
		CreateHolidayRequest{Date: "2026-07-01", Name: "Duplicate Day"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// A provincial entry on the same date is a distinct holiday.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/holidays",
		CreateHolidayRequest{Date: "2026-07-01", Name: "Ontario Day", Province: "ON"}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var listed []HolidayDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/holidays?year=2026", nil, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listed, 2)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/holidays/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCreateHoliday_BadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/holidays",
		CreateHolidayRequest{Date: "July 1st", Name: "Canada Day"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/holidays",
		CreateHolidayRequest{Date: "2026-07-01", Name: "Canada Day", Classification: "lunar"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSeedHolidays(t *testing.T) {
	srv, _ := newTestServer(t)

	var seeded SeedHolidaysResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/holidays/defaults",
		SeedHolidaysRequest{Year: 2026}, &seeded)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2026, seeded.Year)
	assert.Greater(t, seeded.Inserted, 0)

	// Seeding again inserts nothing new.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/holidays/defaults",
		SeedHolidaysRequest{Year: 2026}, &seeded)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, seeded.Inserted)
}

func TestSyncUser_Unconfigured(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "u-1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u-1/sync", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

type fakeSyncer struct {
	bookings int
}

func (f *fakeSyncer) SyncBookings(ctx context.Context, userName string, bookings []vacation.Booking) (int, error) {
	f.bookings = len(bookings)
	return len(bookings), nil
}

func TestSyncUser(t *testing.T) {
	store, err := sqlite.New(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	seedUser(t, store, "u-1")

	require.NoError(t, store.SaveBooking(context.Background(), vacation.Booking{
		ID:     "b-1",
		UserID: "u-1",
		Start:  calendar.NewDate(2026, time.March, 2),
		End:    calendar.NewDate(2026, time.March, 6),
	}))

	syncer := &fakeSyncer{}
	h := NewHandler(store, zap.NewNop())
	h.Syncer = syncer
	srv := httptest.NewServer(NewRouter(h, nil))
	t.Cleanup(srv.Close)

	var synced SyncResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/u-1/sync", nil, &synced)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, synced.Bookings)
	assert.Equal(t, 1, synced.Created)
	assert.Equal(t, 1, syncer.bookings)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	var body map[string]string
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
