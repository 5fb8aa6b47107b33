package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/dettline1/WeatherApp/internal/weather"
)

// driverName is go-sqlite3 with a Unicode-aware lower() registered on
// every connection. SQLite's built-in LOWER only folds ASCII.
const driverName = "sqlite3_history"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("go_lower", strings.ToLower, true)
		},
	})
}

// timestampLayout is fixed width so that lexical order matches time order.
const timestampLayout = "2006-01-02 15:04:05.000000"

const schema = `
CREATE TABLE IF NOT EXISTS weather_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	city TEXT NOT NULL,
	country TEXT,
	temperature REAL,
	feels_like REAL,
	humidity INTEGER,
	wind_speed REAL,
	description TEXT,
	icon TEXT,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_weather_history_timestamp ON weather_history (timestamp DESC, id DESC);
`

// SQLiteStore is the durable history log backed by a local SQLite file.
type SQLiteStore struct {
	db *sql.DB

	// mu orders timestamp assignment with inserts.
	mu     sync.Mutex
	lastTS time.Time
	now    func() time.Time
}

// NewSQLite opens (or creates) the database at path and ensures the schema.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		log.Printf("INFO: could not enable WAL for %s: %v", path, err)
	}

	s := &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Init creates the history table if it does not exist. Safe to call on
// every startup.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return weather.NewError(weather.KindStorageFailure, fmt.Errorf("create schema: %w", err))
	}
	return nil
}

// Append inserts rec and returns it with its ID and timestamp set.
func (s *SQLiteStore) Append(ctx context.Context, rec weather.Record) (weather.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Timestamp.IsZero() {
		ts := s.now()
		if ts.Before(s.lastTS) {
			ts = s.lastTS
		}
		rec.Timestamp = ts
	}
	rec.Timestamp = rec.Timestamp.UTC().Truncate(time.Microsecond)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO weather_history
			(city, country, temperature, feels_like, humidity, wind_speed, description, icon, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.City, rec.Country, rec.Temperature, rec.FeelsLike, rec.Humidity,
		rec.WindSpeed, rec.Description, rec.Icon, rec.Timestamp.Format(timestampLayout),
	)
	if err != nil {
		return weather.Record{}, weather.NewError(weather.KindStorageFailure, fmt.Errorf("insert history: %w", err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return weather.Record{}, weather.NewError(weather.KindStorageFailure, fmt.Errorf("history id: %w", err))
	}
	rec.ID = id
	if rec.Timestamp.After(s.lastTS) {
		s.lastTS = rec.Timestamp
	}
	return rec, nil
}

// Recent returns at most limit records, newest first. Equal timestamps are
// ordered by insertion, later first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]weather.Record, error) {
	if limit < 1 {
		return nil, weather.Errorf(weather.KindInvalidInput, "limit must be at least 1, got %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, city, country, temperature, feels_like, humidity, wind_speed, description, icon, timestamp
		FROM weather_history
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, weather.NewError(weather.KindStorageFailure, fmt.Errorf("query history: %w", err))
	}
	defer rows.Close()

	out := make([]weather.Record, 0, limit)
	for rows.Next() {
		var (
			r                   weather.Record
			country, desc, icon sql.NullString
			temp, feels, wind   sql.NullFloat64
			humidity            sql.NullInt64
			ts                  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.City, &country, &temp, &feels, &humidity, &wind, &desc, &icon, &ts); err != nil {
			return nil, weather.NewError(weather.KindStorageFailure, fmt.Errorf("scan history: %w", err))
		}
		r.Country = country.String
		r.Temperature = temp.Float64
		r.FeelsLike = feels.Float64
		r.Humidity = int(humidity.Int64)
		r.WindSpeed = wind.Float64
		r.Description = desc.String
		r.Icon = icon.String
		if ts.Valid {
			r.Timestamp, err = parseTimestamp(ts.String)
			if err != nil {
				return nil, weather.NewError(weather.KindStorageFailure, err)
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, weather.NewError(weather.KindStorageFailure, fmt.Errorf("iterate history: %w", err))
	}
	return out, nil
}

// StatsForCity counts the records whose city matches case-insensitively.
func (s *SQLiteStore) StatsForCity(ctx context.Context, city string) (weather.CityStats, error) {
	var (
		count int
		last  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(timestamp)
		FROM weather_history
		WHERE go_lower(city) = go_lower(?)`, city).Scan(&count, &last)
	if err != nil {
		return weather.CityStats{}, weather.NewError(weather.KindStorageFailure, fmt.Errorf("city stats: %w", err))
	}

	stats := weather.CityStats{City: city, Count: count}
	if last.Valid {
		ts, err := parseTimestamp(last.String)
		if err != nil {
			return weather.CityStats{}, weather.NewError(weather.KindStorageFailure, err)
		}
		stats.LastQueryTime = &ts
	}
	return stats, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// parseTimestamp accepts our own layout, SQLite's CURRENT_TIMESTAMP format
// and the RFC 3339 form the driver produces for time.Time values.
func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range []string{timestampLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if ts, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized history timestamp %q", v)
}
