package gcal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/alicoding/vacation-tracker/vacation"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// bookingIDProperty is the private extended property used to recognize
// events this tracker created, so re-syncing never duplicates them.
const bookingIDProperty = "vacationBookingId"

// Client is an authenticated Google Calendar client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	calendarID string
	logger     *zap.Logger
}

// NewClient builds a calendar client from an authenticated token.
// Refreshed tokens are persisted as a side effect of use.
func NewClient(ctx context.Context, tok *oauth2.Token, cfg *oauth2.Config, creds Credentials, calendarID string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	ts := cfg.TokenSource(ctx, tok)
	return &Client{
		httpClient: oauth2.NewClient(ctx, &savingTokenSource{ts: ts, creds: creds}),
		baseURL:    defaultBaseURL,
		calendarID: calendarID,
		logger:     logger,
	}
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts    oauth2.TokenSource
	creds Credentials
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort save; ignore errors.
	_ = saveToken(s.creds, tok)
	return tok, nil
}

// event is the subset of the Calendar API event resource this client uses.
type event struct {
	ID          string    `json:"id,omitempty"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       eventDate `json:"start"`
	End         eventDate `json:"end"`
	Extended    *extended `json:"extendedProperties,omitempty"`
}

type eventDate struct {
	Date string `json:"date"` // YYYY-MM-DD, all-day
}

type extended struct {
	Private map[string]string `json:"private"`
}

type eventList struct {
	Items []event `json:"items"`
}

// SyncBookings pushes bookings as all-day events. Bookings already present
// (matched by booking ID) are left alone. Returns how many events were
// created.
func (c *Client) SyncBookings(ctx context.Context, userName string, bookings []vacation.Booking) (int, error) {
	created := 0
	for _, b := range bookings {
		exists, err := c.bookingEventExists(ctx, b.ID)
		if err != nil {
			return created, fmt.Errorf("checking event for booking %s: %w", b.ID, err)
		}
		if exists {
			continue
		}
		if err := c.insertBookingEvent(ctx, userName, b); err != nil {
			return created, fmt.Errorf("creating event for booking %s: %w", b.ID, err)
		}
		created++
	}
	c.logger.Info("calendar sync complete",
		zap.Int("bookings", len(bookings)),
		zap.Int("created", created))
	return created, nil
}

func (c *Client) bookingEventExists(ctx context.Context, bookingID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events?privateExtendedProperty=%s",
		c.baseURL,
		url.PathEscape(c.calendarID),
		url.QueryEscape(bookingIDProperty+"="+bookingID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("calendar API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return false, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("calendar API error %d: %s", resp.StatusCode, body)
	}

	var list eventList
	if err := json.Unmarshal(body, &list); err != nil {
		return false, fmt.Errorf("decoding event list: %w", err)
	}
	return len(list.Items) > 0, nil
}

func (c *Client) insertBookingEvent(ctx context.Context, userName string, b vacation.Booking) error {
	summary := "Vacation"
	if userName != "" {
		summary = fmt.Sprintf("Vacation: %s", userName)
	}
	if b.HalfDay && b.SingleDay() {
		summary += fmt.Sprintf(" (half day, %s)", b.Portion)
	}

	ev := event{
		Summary:     summary,
		Description: b.Note,
		Start:       eventDate{Date: b.Start.String()},
		// The Calendar API treats the all-day end date as exclusive.
		End:      eventDate{Date: b.End.AddDays(1).String()},
		Extended: &extended{Private: map[string]string{bookingIDProperty: b.ID}},
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(c.calendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calendar API error %d: %s", resp.StatusCode, body)
	}

	c.logger.Debug("event created",
		zap.String("booking_id", b.ID),
		zap.String("start", b.Start.String()),
		zap.String("end", b.End.String()))
	return nil
}
