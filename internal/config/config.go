package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/dettline1/WeatherApp/internal/i18n"
	"github.com/dettline1/WeatherApp/internal/weather"
)

var validate = validator.New()

// AppConfig is built once by Load and treated as read-only afterwards.
type AppConfig struct {
	APIKey             string             `validate:"required"`
	BaseURL            string             `validate:"required,url"`
	SupportedLanguages []weather.Language `validate:"required,min=1,dive,required"`
	DefaultLanguage    weather.Language   `validate:"required"`

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	DatabasePath string `validate:"required"`
	HistoryLimit int    `validate:"min=1,max=100"`
	Port         string `validate:"required,numeric"`

	// City autodetection.
	IPInfoURL         string `validate:"required,url"`
	IPInfoToken       string
	GoogleGeocoderKey string

	// Provider key probe; zero disables it.
	ProbeInterval time.Duration `validate:"gte=0"`
	ProbeCity     string        `validate:"required"`
}

// Load reads configuration from the environment (and .env, if present)
// with sensible defaults, then validates it.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.APIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.BaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather")
	cfg.SupportedLanguages = parseLanguages(getenvDefault("SUPPORTED_LANGUAGES", "ru,en"))
	cfg.DefaultLanguage = weather.Language(strings.ToLower(getenvDefault("DEFAULT_LANGUAGE", "ru")))

	timeout, err := getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.DatabasePath = getenvDefault("HISTORY_DB_PATH", "weather_history.db")
	cfg.HistoryLimit = getenvInt("HISTORY_LIMIT", 10)
	cfg.Port = getenvDefault("PORT", "5000")

	cfg.IPInfoURL = getenvDefault("IPINFO_URL", "https://ipinfo.io/json")
	cfg.IPInfoToken = os.Getenv("IPINFO_API_KEY")
	cfg.GoogleGeocoderKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	probe, err := getenvDuration("PROVIDER_PROBE_INTERVAL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.ProbeInterval = probe
	cfg.ProbeCity = getenvDefault("PROVIDER_PROBE_CITY", "London")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints, that every supported language has
// translations and that the default language is one of them.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, l := range c.SupportedLanguages {
		if !i18n.Has(l) {
			return fmt.Errorf("invalid config: SUPPORTED_LANGUAGES contains %q, which has no translations", l)
		}
	}
	if !c.Supports(c.DefaultLanguage) {
		return fmt.Errorf("invalid config: DEFAULT_LANGUAGE %q is not in SUPPORTED_LANGUAGES %v", c.DefaultLanguage, c.SupportedLanguages)
	}
	return nil
}

// Supports reports whether lang is one of the configured languages.
func (c *AppConfig) Supports(lang weather.Language) bool {
	for _, l := range c.SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

func parseLanguages(s string) []weather.Language {
	var out []weather.Language
	seen := make(map[weather.Language]bool)
	for _, part := range strings.Split(s, ",") {
		l := weather.Language(strings.ToLower(strings.TrimSpace(part)))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
