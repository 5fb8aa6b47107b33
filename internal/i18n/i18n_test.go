package i18n

import (
	"testing"

	"github.com/dettline1/WeatherApp/internal/weather"
)

func TestDictionariesShareKeys(t *testing.T) {
	ru, en := For(weather.LanguageRussian), For(weather.LanguageEnglish)
	for k := range ru {
		if _, ok := en[k]; !ok {
			t.Errorf("key %q missing in en", k)
		}
	}
	for k := range en {
		if _, ok := ru[k]; !ok {
			t.Errorf("key %q missing in ru", k)
		}
	}
}

func TestErrorCodesAreTranslated(t *testing.T) {
	kinds := []weather.Kind{
		weather.KindUnclassified,
		weather.KindInvalidInput,
		weather.KindInvalidCredentials,
		weather.KindNotFound,
		weather.KindTransportFailure,
		weather.KindStorageFailure,
	}
	for _, lang := range []weather.Language{weather.LanguageRussian, weather.LanguageEnglish} {
		for _, k := range kinds {
			if got := Text(k.Code(), lang); got == k.Code() {
				t.Errorf("%s: no text for %s", lang, k.Code())
			}
		}
	}
}

func TestTextFallbacks(t *testing.T) {
	if got := Text("app_title", weather.Language("de")); got != "Weather Forecast" {
		t.Errorf("unknown language: got %q", got)
	}
	if got := Text("no_such_key", weather.LanguageRussian); got != "no_such_key" {
		t.Errorf("unknown key: got %q", got)
	}
	if For(weather.Language("de")) != nil {
		t.Error("expected nil dictionary for unknown language")
	}
}

func TestResolve(t *testing.T) {
	r := NewResolver([]weather.Language{weather.LanguageRussian, weather.LanguageEnglish}, weather.LanguageRussian)

	cases := []struct {
		preferred, accept string
		want              weather.Language
	}{
		{"en", "ru-RU", weather.LanguageEnglish},
		{"EN", "", weather.LanguageEnglish},
		{"de", "", weather.LanguageRussian},
		{"", "en-US,en;q=0.9", weather.LanguageEnglish},
		{"", "ru-RU,ru;q=0.9,en;q=0.8", weather.LanguageRussian},
		{"", "fr-FR", weather.LanguageRussian},
		{"", "%%garbage", weather.LanguageRussian},
		{"", "", weather.LanguageRussian},
	}
	for _, tc := range cases {
		if got := r.Resolve(tc.preferred, tc.accept); got != tc.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tc.preferred, tc.accept, got, tc.want)
		}
	}
}

func TestHas(t *testing.T) {
	if !Has(weather.LanguageRussian) || !Has(weather.LanguageEnglish) {
		t.Error("built-in languages should have dictionaries")
	}
	if Has(weather.Language("de")) {
		t.Error("de has no dictionary")
	}
}
