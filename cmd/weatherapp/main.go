package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/dettline1/WeatherApp/internal/api/http"
	"github.com/dettline1/WeatherApp/internal/config"
	"github.com/dettline1/WeatherApp/internal/geo"
	"github.com/dettline1/WeatherApp/internal/i18n"
	"github.com/dettline1/WeatherApp/internal/scheduler"
	"github.com/dettline1/WeatherApp/internal/store"
	"github.com/dettline1/WeatherApp/internal/weather"
	"github.com/dettline1/WeatherApp/internal/weather/providers"
)

func main() {
	// Load configuration (reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	history, closeHistory, err := openHistory(cfg)
	if err != nil {
		log.Fatalf("failed to open history store: %v", err)
	}
	defer closeHistory()

	client := providers.NewOpenWeatherClient(httpClient, cfg.APIKey, cfg.BaseURL)
	service := weather.NewService(client, history, cfg.SupportedLanguages, cfg.DefaultLanguage)

	// Periodic provider probe; never writes history.
	prober := scheduler.New(client, cfg.ProbeCity, cfg.DefaultLanguage, cfg.ProbeInterval, cfg.HTTPTimeout)
	if err := prober.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer prober.Stop()

	locator := geo.NewLocator(
		&http.Client{Timeout: 5 * time.Second},
		cfg.IPInfoURL,
		cfg.IPInfoToken,
		geo.GoogleReverseGeocoder(cfg.GoogleGeocoderKey),
	)

	app := fiber.New(fiber.Config{
		AppName:               "weatherapp",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Lookups may wait for the full provider timeout.
		WriteTimeout: cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:      service,
		Languages:    i18n.NewResolver(cfg.SupportedLanguages, cfg.DefaultLanguage),
		Locator:      locator,
		Probe:        prober,
		HistoryLimit: cfg.HistoryLimit,
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// openHistory opens the durable store, or an in-memory one when the path
// is ":memory:".
func openHistory(cfg *config.AppConfig) (weather.HistoryStore, func(), error) {
	if cfg.DatabasePath == ":memory:" {
		log.Println("INFO: history is kept in memory and lost on restart")
		return store.NewMemoryStore(0), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := store.NewSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("INFO: history database at %s", cfg.DatabasePath)
	return s, func() {
		if err := s.Close(); err != nil {
			log.Printf("error closing history store: %v", err)
		}
	}, nil
}
