package i18n

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/dettline1/WeatherApp/internal/weather"
)

// Resolver picks the display language for a request from the stored
// preference, then the Accept-Language header, then the default.
type Resolver struct {
	supported []weather.Language
	fallback  weather.Language
	matcher   language.Matcher
}

// NewResolver builds a Resolver. fallback must be one of supported.
func NewResolver(supported []weather.Language, fallback weather.Language) *Resolver {
	// The fallback goes first so that the matcher returns it when nothing
	// matches.
	ordered := []weather.Language{fallback}
	for _, l := range supported {
		if l != fallback {
			ordered = append(ordered, l)
		}
	}

	tags := make([]language.Tag, 0, len(ordered))
	for _, l := range ordered {
		tags = append(tags, language.Make(string(l)))
	}

	return &Resolver{
		supported: ordered,
		fallback:  fallback,
		matcher:   language.NewMatcher(tags),
	}
}

// Supported reports whether lang is a configured language.
func (r *Resolver) Supported(lang weather.Language) bool {
	for _, l := range r.supported {
		if l == lang {
			return true
		}
	}
	return false
}

// Default is the language used when nothing else matches.
func (r *Resolver) Default() weather.Language {
	return r.fallback
}

// Resolve returns the preferred language if it is supported, otherwise the
// best match for acceptLanguage, otherwise the default.
func (r *Resolver) Resolve(preferred, acceptLanguage string) weather.Language {
	if p := weather.Language(strings.ToLower(strings.TrimSpace(preferred))); p != "" && r.Supported(p) {
		return p
	}
	if acceptLanguage == "" {
		return r.fallback
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return r.fallback
	}
	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No {
		return r.fallback
	}
	return r.supported[idx]
}
