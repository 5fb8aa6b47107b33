package httpapi

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/dettline1/WeatherApp/internal/i18n"
	"github.com/dettline1/WeatherApp/internal/weather"
)

const languageCookie = "language"

var validate = validator.New()

// Locator resolves a client IP to a city name.
type Locator interface {
	City(ctx context.Context, ip string) (string, error)
}

// ProbeStatus reports the last provider probe outcome.
type ProbeStatus interface {
	Status() (string, time.Time)
}

// Deps bundles the collaborators the routes need. Locator and Probe may
// be nil.
type Deps struct {
	Service      *weather.Service
	Languages    *i18n.Resolver
	Locator      Locator
	Probe        ProbeStatus
	HistoryLimit int
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	h := &handlers{Deps: d}
	if h.HistoryLimit <= 0 {
		h.HistoryLimit = 10
	}

	app.Get("/health", h.health)

	v1 := app.Group("/api/v1")
	v1.Post("/weather", h.lookup)
	v1.Get("/history", h.history)
	v1.Get("/history/stats", h.cityStats)
	v1.Post("/autodetect", h.autodetect)
	v1.Get("/language/:lang", h.setLanguage)
	v1.Get("/translations", h.translations)
}

// ErrorHandler is the centralized Fiber error handler. Framework errors
// are reported with the generic code so clients never see raw messages.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   weather.KindUnclassified.Code(),
		"message": i18n.Text(weather.KindUnclassified.Code(), weather.LanguageEnglish),
	})
}

type handlers struct {
	Deps
}

type lookupRequest struct {
	City string `json:"city"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Limit int `query:"limit" validate:"min=1,max=100"`
}

// statsQuery holds query parameters for the city stats endpoint.
type statsQuery struct {
	City string `query:"city" validate:"required"`
}

func (h *handlers) language(c *fiber.Ctx) weather.Language {
	return h.Languages.Resolve(c.Cookies(languageCookie), c.Get(fiber.HeaderAcceptLanguage))
}

// fail writes the stable error code and its localized message.
func (h *handlers) fail(c *fiber.Ctx, status int, kind weather.Kind) error {
	code := kind.Code()
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": i18n.Text(code, h.language(c)),
	})
}

func (h *handlers) health(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":           "ok",
		"service":          "weatherapp",
		"history_failures": h.Service.HistoryFailures(),
	}
	if h.Probe != nil {
		status, at := h.Probe.Status()
		resp["provider_status"] = status
		if !at.IsZero() {
			resp["provider_checked_at"] = at.Format(time.RFC3339)
		}
	}
	return c.JSON(resp)
}

func (h *handlers) lookup(c *fiber.Ctx) error {
	var req lookupRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return h.fail(c, fiber.StatusBadRequest, weather.KindInvalidInput)
		}
	}

	payload, err := h.Service.Lookup(c.UserContext(), req.City, h.language(c))
	if err != nil {
		return h.fail(c, fiber.StatusBadRequest, weather.KindOf(err))
	}
	return c.JSON(payload)
}

func (h *handlers) history(c *fiber.Ctx) error {
	q := historyQuery{Limit: h.HistoryLimit}
	if err := c.QueryParser(&q); err != nil {
		return h.fail(c, fiber.StatusBadRequest, weather.KindInvalidInput)
	}
	if err := validate.Struct(q); err != nil {
		return h.fail(c, fiber.StatusBadRequest, weather.KindInvalidInput)
	}

	records, err := h.Service.Recent(c.UserContext(), q.Limit)
	if err != nil {
		log.Printf("ERROR: history query failed: %v", err)
		return h.fail(c, fiber.StatusInternalServerError, weather.KindOf(err))
	}
	return c.JSON(records)
}

func (h *handlers) cityStats(c *fiber.Ctx) error {
	var q statsQuery
	if err := c.QueryParser(&q); err != nil {
		return h.fail(c, fiber.StatusBadRequest, weather.KindInvalidInput)
	}
	q.City = strings.TrimSpace(q.City)
	if err := validate.Struct(q); err != nil {
		return h.fail(c, fiber.StatusBadRequest, weather.KindInvalidInput)
	}

	stats, err := h.Service.StatsForCity(c.UserContext(), q.City)
	if err != nil {
		log.Printf("ERROR: stats for %q failed: %v", q.City, err)
		return h.fail(c, fiber.StatusInternalServerError, weather.KindOf(err))
	}
	return c.JSON(stats)
}

func (h *handlers) autodetect(c *fiber.Ctx) error {
	if h.Locator == nil {
		return h.fail(c, fiber.StatusBadRequest, weather.KindUnclassified)
	}

	city, err := h.Locator.City(c.UserContext(), publicIP(c.IP()))
	if err != nil {
		log.Printf("INFO: autodetect failed: %v", err)
		return h.fail(c, fiber.StatusBadRequest, weather.KindUnclassified)
	}
	return c.JSON(fiber.Map{"city": city})
}

func (h *handlers) setLanguage(c *fiber.Ctx) error {
	lang := weather.Language(strings.ToLower(c.Params("lang")))
	if h.Languages.Supported(lang) {
		c.Cookie(&fiber.Cookie{
			Name:     languageCookie,
			Value:    string(lang),
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	} else {
		lang = h.language(c)
	}
	return c.JSON(fiber.Map{"status": "success", "language": lang})
}

func (h *handlers) translations(c *fiber.Ctx) error {
	lang := h.language(c)
	return c.JSON(fiber.Map{
		"language":     lang,
		"translations": i18n.For(lang),
	})
}

// publicIP returns ip unless it is loopback or private, in which case the
// locator is asked to use the address it sees.
func publicIP(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return ""
	}
	return ip
}
