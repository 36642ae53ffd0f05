package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

const feedFixture = `[
	{"date":"2026-07-01","localName":"Canada Day","name":"Canada Day","global":true,"counties":null,"types":["Public"]},
	{"date":"2026-08-03","localName":"Civic Holiday","name":"Civic Holiday","global":false,"counties":["CA-ON","CA-NB"],"types":["Public"]},
	{"date":"garbage","localName":"Broken","name":"Broken","global":true}
]`

func TestFeedClient_FetchAndFilter(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/api/v3/PublicHolidays/2026/CA" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(feedFixture))
	}))
	defer srv.Close()

	c := NewFeedClient(srv.URL, "CA", zap.NewNop())
	ctx := context.Background()

	holidays, err := c.Holidays(ctx, 2026)
	if err != nil {
		t.Fatalf("Holidays failed: %v", err)
	}
	// 1 global + 2 county expansions; the garbage date is skipped.
	if len(holidays) != 3 {
		t.Fatalf("expected 3 holidays, got %d: %+v", len(holidays), holidays)
	}

	on, err := c.HolidaysForProvince(ctx, 2026, "ON")
	if err != nil {
		t.Fatalf("HolidaysForProvince failed: %v", err)
	}
	if len(on) != 2 {
		t.Fatalf("expected Canada Day + Civic Holiday for ON, got %d", len(on))
	}
	for _, h := range on {
		if h.Province == "NB" {
			t.Errorf("NB entry leaked into ON result")
		}
	}

	// Second call for the same year must come from cache.
	if _, err := c.Holidays(ctx, 2026); err != nil {
		t.Fatalf("cached Holidays failed: %v", err)
	}
	if requests != 1 {
		t.Errorf("expected 1 upstream request, got %d", requests)
	}
}

func TestFeedClient_FallsBackToBuiltins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewFeedClient(srv.URL, "CA", zap.NewNop())
	holidays, err := c.Holidays(context.Background(), 2026)
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(holidays) != len(DefaultHolidays(2026)) {
		t.Errorf("fallback should return the built-in dataset")
	}
}

func TestTrimCountry(t *testing.T) {
	if got := trimCountry("CA-ON", "CA"); got != "ON" {
		t.Errorf("got %q", got)
	}
	if got := trimCountry("ON", "CA"); got != "ON" {
		t.Errorf("unprefixed code should pass through, got %q", got)
	}
}
