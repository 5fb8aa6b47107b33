package weather_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/dettline1/WeatherApp/internal/store"
	"github.com/dettline1/WeatherApp/internal/weather"
)

type spyClient struct {
	mu      sync.Mutex
	calls   int
	lastArg weather.Language
	payload weather.Payload
	err     error
}

func (c *spyClient) Fetch(_ context.Context, city string, lang weather.Language) (weather.Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.lastArg = lang
	if c.err != nil {
		return weather.Payload{}, c.err
	}
	p := c.payload
	if p.City == "" {
		p.City = city
	}
	return p, nil
}

type spyStore struct {
	*store.MemoryStore
	appends   []weather.Record
	appendErr error
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryStore: store.NewMemoryStore(0)}
}

func (s *spyStore) Append(ctx context.Context, rec weather.Record) (weather.Record, error) {
	s.appends = append(s.appends, rec)
	if s.appendErr != nil {
		return weather.Record{}, s.appendErr
	}
	return s.MemoryStore.Append(ctx, rec)
}

var samplePayload = weather.Payload{
	City:        "Berlin",
	Country:     "DE",
	Temperature: 12.3,
	FeelsLike:   10.1,
	Humidity:    71,
	WindSpeed:   4.1,
	Description: "Broken clouds",
	Icon:        "04d",
	IconURL:     "https://openweathermap.org/img/wn/04d@2x.png",
}

var langs = []weather.Language{weather.LanguageRussian, weather.LanguageEnglish}

func isOneDecimal(v float64) bool {
	return math.Abs(v*10-math.Round(v*10)) < 1e-9
}

func TestLookupSuccessPersistsExactlyOnce(t *testing.T) {
	client := &spyClient{payload: samplePayload}
	st := newSpyStore()
	svc := weather.NewService(client, st, langs, weather.LanguageRussian)

	got, err := svc.Lookup(context.Background(), "  berlin ", weather.LanguageEnglish)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != samplePayload {
		t.Fatalf("payload = %+v, want %+v", got, samplePayload)
	}
	if !isOneDecimal(got.Temperature) || !isOneDecimal(got.FeelsLike) || !isOneDecimal(got.WindSpeed) {
		t.Errorf("numeric fields not rounded to one decimal: %+v", got)
	}
	if r, _ := utf8.DecodeRuneInString(got.Description); !unicode.IsUpper(r) {
		t.Errorf("description %q does not start upper-case", got.Description)
	}

	if len(st.appends) != 1 {
		t.Fatalf("append calls = %d, want 1", len(st.appends))
	}
	if want := weather.NewRecord(samplePayload); st.appends[0] != want {
		t.Errorf("appended %+v, want %+v", st.appends[0], want)
	}

	recent, err := svc.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 || recent[0].City != "Berlin" || recent[0].Temperature != 12.3 {
		t.Errorf("Recent(1) = %+v", recent)
	}
}

func TestLookupEmptyCityMakesNoNetworkCall(t *testing.T) {
	for _, city := range []string{"", " ", "\t\n", "   "} {
		client := &spyClient{payload: samplePayload}
		st := newSpyStore()
		svc := weather.NewService(client, st, langs, weather.LanguageRussian)

		_, err := svc.Lookup(context.Background(), city, weather.LanguageEnglish)
		if got := weather.KindOf(err); got != weather.KindInvalidInput {
			t.Errorf("city %q: kind = %v, want invalid input", city, got)
		}
		var we *weather.Error
		if !errors.As(err, &we) || we.Code() != "error_input" {
			t.Errorf("city %q: code mismatch for %v", city, err)
		}
		if client.calls != 0 {
			t.Errorf("city %q: client called %d times", city, client.calls)
		}
		if len(st.appends) != 0 {
			t.Errorf("city %q: store appended %d times", city, len(st.appends))
		}
	}
}

func TestLookupProviderErrorsAreNotPersisted(t *testing.T) {
	cases := []struct {
		kind weather.Kind
		code string
	}{
		{weather.KindInvalidCredentials, "error_api_key"},
		{weather.KindNotFound, "error_city_not_found"},
		{weather.KindTransportFailure, "error_connection"},
		{weather.KindUnclassified, "error_general"},
	}

	for _, tc := range cases {
		client := &spyClient{err: weather.Errorf(tc.kind, "stubbed")}
		st := newSpyStore()
		svc := weather.NewService(client, st, langs, weather.LanguageRussian)

		_, err := svc.Lookup(context.Background(), "Berlin", weather.LanguageRussian)
		if got := weather.KindOf(err); got != tc.kind {
			t.Errorf("kind = %v, want %v", got, tc.kind)
		}
		if got := weather.KindOf(err).Code(); got != tc.code {
			t.Errorf("code = %q, want %q", got, tc.code)
		}
		if len(st.appends) != 0 {
			t.Errorf("%v: store appended %d times", tc.kind, len(st.appends))
		}
	}
}

func TestLookupHistoryFailureIsBestEffort(t *testing.T) {
	client := &spyClient{payload: samplePayload}
	st := newSpyStore()
	st.appendErr = weather.Errorf(weather.KindStorageFailure, "disk full")
	svc := weather.NewService(client, st, langs, weather.LanguageRussian)

	got, err := svc.Lookup(context.Background(), "Berlin", weather.LanguageRussian)
	if err != nil {
		t.Fatalf("lookup should succeed when history fails, got %v", err)
	}
	if got.City != "Berlin" {
		t.Errorf("unexpected payload %+v", got)
	}
	if n := svc.HistoryFailures(); n != 1 {
		t.Errorf("HistoryFailures = %d, want 1", n)
	}
}

func TestLookupUnsupportedLanguageFallsBack(t *testing.T) {
	client := &spyClient{payload: samplePayload}
	svc := weather.NewService(client, newSpyStore(), langs, weather.LanguageRussian)

	if _, err := svc.Lookup(context.Background(), "Berlin", weather.Language("de")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.lastArg != weather.LanguageRussian {
		t.Errorf("client got language %q, want %q", client.lastArg, weather.LanguageRussian)
	}
}

func TestStatsForCityIsCaseInsensitive(t *testing.T) {
	client := &spyClient{payload: samplePayload}
	svc := weather.NewService(client, newSpyStore(), langs, weather.LanguageRussian)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Lookup(ctx, "Berlin", weather.LanguageEnglish); err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
	}

	a, err := svc.StatsForCity(ctx, "Berlin")
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.StatsForCity(ctx, "berlin")
	if err != nil {
		t.Fatal(err)
	}
	if a.Count != 3 || b.Count != a.Count {
		t.Errorf("counts differ: %d vs %d", a.Count, b.Count)
	}

	if _, err := svc.StatsForCity(ctx, " "); weather.KindOf(err) != weather.KindInvalidInput {
		t.Errorf("blank city: expected invalid input, got %v", err)
	}
}

func TestRecentRejectsBadLimit(t *testing.T) {
	svc := weather.NewService(&spyClient{}, newSpyStore(), langs, weather.LanguageRussian)
	if _, err := svc.Recent(context.Background(), 0); weather.KindOf(err) != weather.KindInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestKindOfUnknownError(t *testing.T) {
	if got := weather.KindOf(errors.New("boom")); got != weather.KindUnclassified {
		t.Errorf("KindOf(plain error) = %v", got)
	}
	wrapped := errors.Join(errors.New("ctx"), weather.Errorf(weather.KindNotFound, "x"))
	if got := weather.KindOf(wrapped); got != weather.KindNotFound {
		t.Errorf("KindOf(wrapped) = %v", got)
	}
}
