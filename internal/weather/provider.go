package weather

import (
	"context"
)

// Client fetches current conditions for a city from the weather provider.
// Implementations return an *Error for every failure.
type Client interface {
	Fetch(ctx context.Context, city string, lang Language) (Payload, error)
}

// HistoryStore is the append-only lookup log. Both the SQLite and the
// in-memory store satisfy it.
type HistoryStore interface {
	Append(ctx context.Context, rec Record) (Record, error)
	Recent(ctx context.Context, limit int) ([]Record, error)
	StatsForCity(ctx context.Context, city string) (CityStats, error)
}
