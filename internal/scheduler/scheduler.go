package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/atomic"

	"github.com/dettline1/WeatherApp/internal/weather"
)

// StatusUnknown is reported until the first probe finishes.
const StatusUnknown = "unknown"

// Prober periodically calls the provider with a fixed city to check that
// the API key and the upstream are healthy. Probe results are never written
// to the history.
type Prober struct {
	scheduler *gocron.Scheduler
	client    weather.Client
	city      string
	lang      weather.Language
	interval  time.Duration
	timeout   time.Duration

	status    *atomic.String
	checkedAt *atomic.Int64 // unix nanoseconds, 0 = never
}

// New creates a Prober. A non-positive interval disables scheduling; Probe
// can still be called directly.
func New(client weather.Client, city string, lang weather.Language, interval, timeout time.Duration) *Prober {
	return &Prober{
		scheduler: gocron.NewScheduler(time.UTC),
		client:    client,
		city:      city,
		lang:      lang,
		interval:  interval,
		timeout:   timeout,
		status:    atomic.NewString(StatusUnknown),
		checkedAt: atomic.NewInt64(0),
	}
}

// Start schedules the probe job and starts the underlying scheduler.
func (p *Prober) Start() error {
	if p.interval <= 0 {
		log.Println("INFO: scheduler: provider probe disabled")
		return nil
	}

	_, err := p.scheduler.Every(p.interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		p.Probe(ctx)
	})
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	log.Printf("INFO: scheduler: probing provider every %s", p.interval)
	return nil
}

// Stop stops the scheduler and cancels any future probes.
func (p *Prober) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

// Probe runs one provider check and records its outcome. It returns the
// status string: "ok" or the error code of the failure.
func (p *Prober) Probe(ctx context.Context) string {
	status := "ok"
	if _, err := p.client.Fetch(ctx, p.city, p.lang); err != nil {
		status = weather.KindOf(err).Code()
		log.Printf("ERROR: scheduler: provider probe for %q failed: %v", p.city, err)
	} else {
		log.Printf("INFO: scheduler: provider probe for %q ok", p.city)
	}

	p.status.Store(status)
	p.checkedAt.Store(time.Now().UTC().UnixNano())
	return status
}

// Status returns the last probe status and when it ran. The time is zero
// if no probe has completed.
func (p *Prober) Status() (string, time.Time) {
	ns := p.checkedAt.Load()
	if ns == 0 {
		return p.status.Load(), time.Time{}
	}
	return p.status.Load(), time.Unix(0, ns).UTC()
}
