/*
Package sqlite provides the SQLite-backed persistence layer for the vacation
tracker.

PURPOSE:
  Stores users (with their vacation allowance and province), vacation
  bookings, and the holiday dataset. The calculation core never touches this
  package; callers load records here, then hand fully materialized slices to
  the vacation package.

DATE HANDLING:
  All calendar dates are stored as YYYY-MM-DD strings and re-parsed through
  calendar.ParseDate on the way out. Timestamps (created_at) are RFC 3339.
  This is the ingestion boundary where the date-only rule is enforced.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode. In production with
  PostgreSQL, database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/vacations.db", logger)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - vacation: the calculation core consuming these records
  - api: the HTTP layer wiring store reads into calculations
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alicoding/vacation-tracker/calendar"
	"github.com/alicoding/vacation-tracker/vacation"
)

// ErrDuplicateHoliday is returned when inserting a holiday whose
// (date, province) pair already exists.
var ErrDuplicateHoliday = errors.New("holiday already exists for this date and province")

// User is a tracked employee with an annual vacation allowance.
type User struct {
	ID        string
	Name      string
	Email     string
	Province  string
	Allowance decimal.Decimal
	CreatedAt time.Time
}

// Store implements persistence on SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.RWMutex
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("database ready", zap.String("path", path))
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		province TEXT NOT NULL DEFAULT '',
		allowance TEXT NOT NULL DEFAULT '20',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		note TEXT,
		half_day INTEGER NOT NULL DEFAULT 0,
		half_day_portion TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_user
		ON bookings(user_id, start_date);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		province TEXT NOT NULL DEFAULT '',
		classification TEXT NOT NULL
	);

	-- A holiday is identified by its (date, province) pair.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_date_province
		ON holidays(date, province);

	CREATE INDEX IF NOT EXISTS idx_holidays_date
		ON holidays(date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

// SaveUser inserts or updates a user.
func (s *Store) SaveUser(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO users (id, name, email, province, allowance, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			province = excluded.province,
			allowance = excluded.allowance
	`
	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.Province,
		u.Allowance.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetUser retrieves a user by ID. Returns (nil, nil) when not found.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u User
	var allowance, createdAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, province, allowance, created_at FROM users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Province, &allowance, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u.Allowance, err = decimal.NewFromString(allowance)
	if err != nil {
		return nil, fmt.Errorf("corrupt allowance for user %s: %w", id, err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

// ListUsers returns all users ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, province, allowance, created_at FROM users ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var allowance, createdAt string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Province, &allowance, &createdAt); err != nil {
			return nil, err
		}
		u.Allowance, err = decimal.NewFromString(allowance)
		if err != nil {
			return nil, fmt.Errorf("corrupt allowance for user %s: %w", u.ID, err)
		}
		u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser removes a user and, via cascade, their bookings.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	return err
}

// =============================================================================
// BOOKINGS
// =============================================================================

// SaveBooking inserts or updates a booking.
func (s *Store) SaveBooking(ctx context.Context, b vacation.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO bookings (id, user_id, start_date, end_date, note, half_day, half_day_portion, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			note = excluded.note,
			half_day = excluded.half_day,
			half_day_portion = excluded.half_day_portion
	`
	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.UserID,
		b.Start.String(), b.End.String(),
		b.Note, boolToInt(b.HalfDay), string(b.Portion),
		createdAt.Format(time.RFC3339),
	)
	return err
}

// GetBooking retrieves a booking by ID. Returns (nil, nil) when not found.
func (s *Store) GetBooking(ctx context.Context, id string) (*vacation.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings, err := s.queryBookings(ctx,
		"SELECT id, user_id, start_date, end_date, note, half_day, half_day_portion, created_at FROM bookings WHERE id = ?",
		id,
	)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}
	return &bookings[0], nil
}

// ListBookingsByUser returns a user's bookings ordered by start date.
func (s *Store) ListBookingsByUser(ctx context.Context, userID string) ([]vacation.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryBookings(ctx,
		"SELECT id, user_id, start_date, end_date, note, half_day, half_day_portion, created_at FROM bookings WHERE user_id = ? ORDER BY start_date",
		userID,
	)
}

// DeleteBooking removes a booking. Reports whether a row was deleted.
func (s *Store) DeleteBooking(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]vacation.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []vacation.Booking
	for rows.Next() {
		var b vacation.Booking
		var start, end, createdAt string
		var note, portion sql.NullString
		var halfDay int

		if err := rows.Scan(&b.ID, &b.UserID, &start, &end, &note, &halfDay, &portion, &createdAt); err != nil {
			return nil, err
		}

		b.Start, err = calendar.ParseDate(start)
		if err != nil {
			// A row that cannot be parsed is logged and dropped rather than
			// failing the whole listing; the calculation layer will simply
			// never see it.
			s.logger.Warn("dropping booking with corrupt start date",
				zap.String("booking_id", b.ID),
				zap.String("start_date", start))
			continue
		}
		b.End, err = calendar.ParseDate(end)
		if err != nil {
			s.logger.Warn("dropping booking with corrupt end date",
				zap.String("booking_id", b.ID),
				zap.String("end_date", end))
			continue
		}

		b.Note = note.String
		b.HalfDay = halfDay != 0
		b.Portion = vacation.HalfDayPortion(portion.String)
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// SaveHoliday inserts a holiday. Returns ErrDuplicateHoliday when the
// (date, province) pair is already present.
func (s *Store) SaveHoliday(ctx context.Context, h calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO holidays (id, date, name, province, classification) VALUES (?, ?, ?, ?, ?)",
		h.ID, h.Date.String(), h.Name, h.Province, string(h.Classification),
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateHoliday
	}
	return err
}

// UpsertHolidays inserts a batch, silently keeping existing (date, province)
// entries. Used when seeding the built-in dataset or a feed snapshot.
func (s *Store) UpsertHolidays(ctx context.Context, holidays []calendar.Holiday) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, h := range holidays {
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO holidays (id, date, name, province, classification) VALUES (?, ?, ?, ?, ?)",
			h.ID, h.Date.String(), h.Name, h.Province, string(h.Classification),
		)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListHolidays returns holidays for a year. With a province, the result is
// scoped to national + that province's entries; with an empty province all
// entries are returned.
func (s *Store) ListHolidays(ctx context.Context, year int, province string) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, date, name, province, classification FROM holidays WHERE date >= ? AND date <= ?"
	args := []any{
		fmt.Sprintf("%04d-01-01", year),
		fmt.Sprintf("%04d-12-31", year),
	}
	if province != "" {
		query += " AND (province = '' OR province = ?)"
		args = append(args, province)
	}
	query += " ORDER BY date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		var date, classification string
		if err := rows.Scan(&h.ID, &date, &h.Name, &h.Province, &classification); err != nil {
			return nil, err
		}
		h.Date, err = calendar.ParseDate(date)
		if err != nil {
			s.logger.Warn("dropping holiday with corrupt date",
				zap.String("holiday_id", h.ID),
				zap.String("date", date))
			continue
		}
		h.Classification = calendar.Classification(classification)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// DeleteHoliday removes a holiday. Reports whether a row was deleted.
func (s *Store) DeleteHoliday(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	// mattn/go-sqlite3 exposes typed errors, but matching the message keeps
	// this file free of driver-specific types.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
