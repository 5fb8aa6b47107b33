package weather

import (
	"context"
	"log"
	"strings"

	"go.uber.org/atomic"
)

// Service orchestrates the provider client and the history store.
type Service struct {
	client    Client
	store     HistoryStore
	languages map[Language]struct{}
	fallback  Language

	historyFailures *atomic.Int64
}

// NewService creates a new Service. supported lists the languages the
// provider is queried with; anything else is replaced by fallback.
func NewService(client Client, store HistoryStore, supported []Language, fallback Language) *Service {
	langs := make(map[Language]struct{}, len(supported))
	for _, l := range supported {
		langs[l] = struct{}{}
	}
	return &Service{
		client:          client,
		store:           store,
		languages:       langs,
		fallback:        fallback,
		historyFailures: atomic.NewInt64(0),
	}
}

// Lookup fetches the weather for rawCity and records it in the history.
// A failed history write is logged and counted but does not fail the lookup.
func (s *Service) Lookup(ctx context.Context, rawCity string, lang Language) (Payload, error) {
	city := strings.TrimSpace(rawCity)
	if city == "" {
		return Payload{}, Errorf(KindInvalidInput, "city is empty")
	}

	if _, ok := s.languages[lang]; !ok {
		log.Printf("DEBUG: unsupported language %q, using %q", lang, s.fallback)
		lang = s.fallback
	}

	payload, err := s.client.Fetch(ctx, city, lang)
	if err != nil {
		log.Printf("INFO: lookup for %q failed: %v", city, err)
		return Payload{}, err
	}

	if _, err := s.store.Append(ctx, NewRecord(payload)); err != nil {
		n := s.historyFailures.Inc()
		log.Printf("ERROR: history append for %q failed (%d failures so far): %v", payload.City, n, err)
	}

	return payload, nil
}

// Recent returns at most limit history records, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		return nil, Errorf(KindInvalidInput, "limit must be at least 1, got %d", limit)
	}
	return s.store.Recent(ctx, limit)
}

// StatsForCity returns the case-insensitive lookup statistics for city.
func (s *Service) StatsForCity(ctx context.Context, city string) (CityStats, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return CityStats{}, Errorf(KindInvalidInput, "city is empty")
	}
	return s.store.StatsForCity(ctx, city)
}

// HistoryFailures is the number of history writes that failed since start.
func (s *Service) HistoryFailures() int64 {
	return s.historyFailures.Load()
}
