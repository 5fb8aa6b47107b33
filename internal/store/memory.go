package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dettline1/WeatherApp/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory history log. It honors the
// same ordering contract as SQLiteStore and loses its content on restart.
type MemoryStore struct {
	mu sync.RWMutex

	records []weather.Record
	nextID  int64
	lastTS  time.Time

	// retention configuration
	maxHistory int // max number of records kept (<= 0 = unlimited)
}

// NewMemoryStore creates a new MemoryStore.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{maxHistory: maxHistory}
}

// Append stores rec, assigning an ID and, when missing, a timestamp.
func (s *MemoryStore) Append(_ context.Context, rec weather.Record) (weather.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Timestamp.IsZero() {
		ts := time.Now().UTC()
		if ts.Before(s.lastTS) {
			ts = s.lastTS
		}
		rec.Timestamp = ts
	}
	if rec.Timestamp.After(s.lastTS) {
		s.lastTS = rec.Timestamp
	}

	s.nextID++
	rec.ID = s.nextID
	s.records = append(s.records, rec)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.records) > s.maxHistory {
		over := len(s.records) - s.maxHistory
		s.records = s.records[over:]
	}
	return rec, nil
}

// Recent returns at most limit records ordered by timestamp descending,
// later inserts first on ties.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]weather.Record, error) {
	if limit < 1 {
		return nil, weather.Errorf(weather.KindInvalidInput, "limit must be at least 1, got %d", limit)
	}

	s.mu.RLock()
	sorted := make([]weather.Record, len(s.records))
	copy(sorted, s.records)
	s.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.After(sorted[j].Timestamp)
		}
		return sorted[i].ID > sorted[j].ID
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// StatsForCity counts records whose city equals city ignoring case.
func (s *MemoryStore) StatsForCity(_ context.Context, city string) (weather.CityStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := weather.CityStats{City: city}
	for _, r := range s.records {
		if !strings.EqualFold(r.City, city) {
			continue
		}
		stats.Count++
		if stats.LastQueryTime == nil || r.Timestamp.After(*stats.LastQueryTime) {
			ts := r.Timestamp
			stats.LastQueryTime = &ts
		}
	}
	return stats, nil
}
