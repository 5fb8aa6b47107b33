package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dettline1/WeatherApp/internal/weather"
)

type countingClient struct {
	calls atomic.Int32
	err   error
}

func (c *countingClient) Fetch(_ context.Context, city string, _ weather.Language) (weather.Payload, error) {
	c.calls.Add(1)
	if c.err != nil {
		return weather.Payload{}, c.err
	}
	return weather.Payload{City: city}, nil
}

func TestProbeRecordsStatus(t *testing.T) {
	client := &countingClient{}
	p := New(client, "London", weather.LanguageEnglish, 0, time.Second)

	if status, at := p.Status(); status != StatusUnknown || !at.IsZero() {
		t.Fatalf("initial status = %q at %v", status, at)
	}

	if got := p.Probe(context.Background()); got != "ok" {
		t.Errorf("Probe = %q, want ok", got)
	}
	status, at := p.Status()
	if status != "ok" || at.IsZero() {
		t.Errorf("status = %q at %v", status, at)
	}

	client.err = weather.Errorf(weather.KindInvalidCredentials, "bad key")
	if got := p.Probe(context.Background()); got != "error_api_key" {
		t.Errorf("Probe = %q, want error_api_key", got)
	}
}

func TestStartDisabled(t *testing.T) {
	client := &countingClient{}
	p := New(client, "London", weather.LanguageEnglish, 0, time.Second)
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	time.Sleep(50 * time.Millisecond)
	if n := client.calls.Load(); n != 0 {
		t.Errorf("disabled prober made %d calls", n)
	}
}

func TestStartRunsProbe(t *testing.T) {
	client := &countingClient{}
	p := New(client, "London", weather.LanguageEnglish, time.Hour, time.Second)
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	// gocron runs a new job immediately unless told to wait.
	deadline := time.Now().Add(2 * time.Second)
	for client.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if client.calls.Load() == 0 {
		t.Fatal("probe did not run after Start")
	}
}
