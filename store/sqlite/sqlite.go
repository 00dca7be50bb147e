/*
Package sqlite provides the SQLite-backed preference store.

PURPOSE:
  Persists per-user navigation preferences: the view range (the frequency
  code report pages open with), the fiscal year start, and the locale used to
  render period labels. The API turns a stored preference into a configured
  navigation.Navigator.

KEY TABLES:
  preferences: one row per user, upserted on save

VALIDATION:
  Save rejects codes and fiscal starts the engine cannot use, so everything
  read back is known to resolve:
  - view_range must be a known frequency code (or empty for the default)
  - fiscal_year_start must be "MM-DD" (or empty for the calendar year)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block the
  single writer.

USAGE:
  store, err := sqlite.New("./data/periods.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  pref, err := store.GetPreference(ctx, userID)

SEE ALSO:
  - navigation/fiscal.go: ParseFiscalYearStart
  - navigation/format.go: ViewRange
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
	"github.com/warp/period-engine/navigation"
)

// ErrPreferenceNotFound is returned when deleting a preference that does not
// exist.
var ErrPreferenceNotFound = errors.New("preference not found")

// Store persists preferences in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		user_id TEXT PRIMARY KEY,
		view_range TEXT NOT NULL DEFAULT '',
		fiscal_year_start TEXT NOT NULL DEFAULT '',
		locale TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PREFERENCE STORE
// =============================================================================

// Preference is a user's navigation settings. Empty fields mean "use the
// default".
type Preference struct {
	UserID          string
	ViewRange       string
	FiscalYearStart string
	Locale          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Fiscal returns the fiscal calendar the preference describes. An empty or
// unparseable start yields the calendar year.
func (p Preference) Fiscal() navigation.FiscalCalendar {
	if p.FiscalYearStart == "" {
		return navigation.FiscalCalendar{}
	}
	fc, err := navigation.ParseFiscalYearStart(p.FiscalYearStart)
	if err != nil {
		return navigation.FiscalCalendar{}
	}
	return fc
}

// Validate checks that the view range and fiscal year start are usable.
func (p Preference) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return errors.New("user id is required")
	}
	if p.ViewRange != "" {
		if _, err := navigation.ParseFrequency(p.ViewRange); err != nil {
			return err
		}
	}
	if p.FiscalYearStart != "" {
		if _, err := navigation.ParseFiscalYearStart(p.FiscalYearStart); err != nil {
			return err
		}
	}
	return nil
}

// SavePreference inserts or replaces a user's preference.
func (s *Store) SavePreference(ctx context.Context, p Preference) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO preferences (user_id, view_range, fiscal_year_start, locale, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			view_range = excluded.view_range,
			fiscal_year_start = excluded.fiscal_year_start,
			locale = excluded.locale,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		p.UserID, p.ViewRange, p.FiscalYearStart, p.Locale, now, now,
	)
	if err != nil {
		return fmt.Errorf("save preference %s: %w", p.UserID, err)
	}
	return nil
}

// GetPreference retrieves a user's preference. It returns nil, nil when the
// user has none.
func (s *Store) GetPreference(ctx context.Context, userID string) (*Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p Preference
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, view_range, fiscal_year_start, locale, created_at, updated_at FROM preferences WHERE user_id = ?",
		userID,
	).Scan(&p.UserID, &p.ViewRange, &p.FiscalYearStart, &p.Locale, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preference %s: %w", userID, err)
	}

	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// ListPreferences returns all preferences ordered by user id.
func (s *Store) ListPreferences(ctx context.Context) ([]Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, view_range, fiscal_year_start, locale, created_at, updated_at FROM preferences ORDER BY user_id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		var p Preference
		var createdAt, updatedAt string
		if err := rows.Scan(&p.UserID, &p.ViewRange, &p.FiscalYearStart, &p.Locale, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// DeletePreference removes a user's preference.
func (s *Store) DeletePreference(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM preferences WHERE user_id = ?", userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPreferenceNotFound
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM preferences")
	return err
}
