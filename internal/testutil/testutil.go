package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"maeto-catalog/internal/db"
)

// OpenMemoryDB returns an in-memory store with the schema applied, it is
// closed when the test ends.
func OpenMemoryDB(t testing.TB) *sql.DB {
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	_, err = database.Exec(db.Schema)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// Clock implements chrono.API with a time that only moves when told to, Sleep
// returns immediately and remembers what was asked for.
type Clock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.slept = append(c.slept, d)
	c.mu.Unlock()
	return ctx.Err()
}

// Slept returns every duration passed to Sleep.
func (c *Clock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

// Telemetry implements telemetry.API by writing to the test log, broken
// components and warnings are also kept for assertions.
type Telemetry struct {
	t        testing.TB
	mu       sync.Mutex
	broken   []string
	warnings []string
}

func NewTelemetry(t testing.TB) *Telemetry {
	return &Telemetry{t: t}
}

func (tel *Telemetry) ReportBroken(id string, params ...any) {
	tel.t.Logf("broken: %s %v", id, params)
	tel.mu.Lock()
	defer tel.mu.Unlock()
	tel.broken = append(tel.broken, id)
}

func (tel *Telemetry) ReportWarning(id string, params ...any) {
	tel.t.Logf("warning: %s %v", id, params)
	tel.mu.Lock()
	defer tel.mu.Unlock()
	tel.warnings = append(tel.warnings, id)
}

func (tel *Telemetry) ReportDebug(msg string, params ...any) {
	tel.t.Logf("debug: %s %v", msg, params)
}

func (tel *Telemetry) ReportCount(id string, count int64) {
	tel.t.Log(fmt.Sprintf("count: %s %d", id, count))
}

func (tel *Telemetry) Broken() []string {
	tel.mu.Lock()
	defer tel.mu.Unlock()
	return append([]string(nil), tel.broken...)
}

func (tel *Telemetry) Warnings() []string {
	tel.mu.Lock()
	defer tel.mu.Unlock()
	return append([]string(nil), tel.warnings...)
}

// CanceledContext returns a context that is already canceled.
func CanceledContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx, cancel
}
