// Package history keeps a local record of successful usage readings so the panel can
// draw a trend of the five-hour window.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/janekbaraniewski/usagebar/internal/core"
	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/lo"
)

const (
	DefaultRetention = 30 * 24 * time.Hour

	// Fixed-width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

type Sample struct {
	ObservedAt       time.Time
	FiveHour         float64
	FiveHourResetsAt *time.Time
	SevenDay         float64
	SevenDayResetsAt *time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("history: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening DB: %w", err)
	}
	if err := configureSQLiteConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: %w", err)
	}

	ctx := context.Background()
	store := NewStore(db)
	if err := store.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := store.Prune(ctx, store.now().Add(-DefaultRetention)); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS usage_samples (
			sample_id INTEGER PRIMARY KEY AUTOINCREMENT,
			account TEXT NOT NULL,
			observed_at TEXT NOT NULL,
			five_hour_utilization REAL NOT NULL,
			five_hour_resets_at TEXT,
			seven_day_utilization REAL NOT NULL,
			seven_day_resets_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_usage_samples_account ON usage_samples(account, sample_id);`,
		`CREATE INDEX IF NOT EXISTS idx_usage_samples_observed_at ON usage_samples(observed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("history: init schema: %w", err)
		}
	}
	return nil
}

// Record stores a Connected state for the account behind sessionKey. Other states are
// ignored.
func (s *Store) Record(ctx context.Context, sessionKey string, state core.State) error {
	if s == nil || s.db == nil || state.Kind != core.StateConnected {
		return nil
	}
	observed := state.RefreshedAt
	if observed.IsZero() {
		observed = s.now()
	}

	five, fiveReset := windowColumns(state.FiveHour)
	seven, sevenReset := windowColumns(state.SevenDay)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_samples (
			account, observed_at,
			five_hour_utilization, five_hour_resets_at,
			seven_day_utilization, seven_day_resets_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		Fingerprint(sessionKey), formatTime(observed),
		five, fiveReset,
		seven, sevenReset,
	)
	if err != nil {
		return fmt.Errorf("history: insert sample: %w", err)
	}
	return nil
}

// Recent returns up to limit samples for the account, oldest first.
func (s *Store) Recent(ctx context.Context, sessionKey string, limit int) ([]Sample, error) {
	if s == nil || s.db == nil || limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT observed_at, five_hour_utilization, five_hour_resets_at,
		       seven_day_utilization, seven_day_resets_at
		FROM (
			SELECT * FROM usage_samples
			WHERE account = ?
			ORDER BY sample_id DESC
			LIMIT ?
		)
		ORDER BY sample_id ASC`, Fingerprint(sessionKey), limit)
	if err != nil {
		return nil, fmt.Errorf("history: query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var (
			observed              string
			sample                Sample
			fiveReset, sevenReset sql.NullString
		)
		if err := rows.Scan(&observed, &sample.FiveHour, &fiveReset, &sample.SevenDay, &sevenReset); err != nil {
			return nil, fmt.Errorf("history: scan sample: %w", err)
		}
		sample.ObservedAt, err = time.Parse(timeLayout, observed)
		if err != nil {
			return nil, fmt.Errorf("history: bad observed_at %q: %w", observed, err)
		}
		sample.FiveHourResetsAt = parseNullTime(fiveReset)
		sample.SevenDayResetsAt = parseNullTime(sevenReset)
		out = append(out, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate samples: %w", err)
	}
	return out, nil
}

// Prune deletes samples observed before cutoff and reports how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM usage_samples WHERE observed_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("history: prune rows affected: %w", err)
	}
	return n, nil
}

// FiveHourSeries extracts the five-hour utilizations, oldest first.
func FiveHourSeries(samples []Sample) []float64 {
	return lo.Map(samples, func(s Sample, _ int) float64 { return s.FiveHour })
}

func windowColumns(w *core.UsageWindow) (float64, sql.NullString) {
	if w == nil {
		return 0, sql.NullString{}
	}
	if w.ResetsAt == nil {
		return w.Utilization, sql.NullString{}
	}
	return w.Utilization, sql.NullString{String: formatTime(*w.ResetsAt), Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(timeLayout, v.String)
	if err != nil {
		return nil
	}
	return &t
}
