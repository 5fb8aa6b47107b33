package weather

import (
	"time"
)

// Language is a provider/UI locale code such as "ru" or "en".
type Language string

const (
	LanguageRussian Language = "ru"
	LanguageEnglish Language = "en"
)

// Payload is the normalized view of one successful provider response.
type Payload struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	IconURL     string  `json:"icon_url"`
}

// Record is one persisted history entry. Records are never modified after
// they are written.
type Record struct {
	ID          int64     `json:"id"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Timestamp   time.Time `json:"timestamp"` // assigned by the store when zero
}

// NewRecord builds an unsaved history record from a payload.
func NewRecord(p Payload) Record {
	return Record{
		City:        p.City,
		Country:     p.Country,
		Temperature: p.Temperature,
		FeelsLike:   p.FeelsLike,
		Humidity:    p.Humidity,
		WindSpeed:   p.WindSpeed,
		Description: p.Description,
		Icon:        p.Icon,
	}
}

// CityStats summarizes the history of one city.
type CityStats struct {
	City          string     `json:"city"`
	Count         int        `json:"count"`
	LastQueryTime *time.Time `json:"last_query"`
}
