package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
)

// Snapshotter takes a persisted snapshot of every forecast
type Snapshotter interface {
	TakeSnapshot(ctx context.Context, trigger string) (Snapshot, error)
}

// SnapshotScheduler runs forecast snapshots on a cron schedule so later
// actuals can be compared against what was predicted.
type SnapshotScheduler struct {
	svc     Snapshotter
	spec    string
	timeout time.Duration

	// OnSnapshot, when set, receives every successful snapshot
	OnSnapshot func(Snapshot) error

	mu      sync.Mutex
	cron    *rcron.Cron
	entry   rcron.EntryID
	lastRun time.Time
	lastErr error
}

// NewSnapshotScheduler creates a scheduler for a standard five-field cron
// spec or a descriptor such as "@daily".
func NewSnapshotScheduler(svc Snapshotter, spec string) *SnapshotScheduler {
	return &SnapshotScheduler{svc: svc, spec: spec, timeout: 2 * time.Minute}
}

// Start registers the job and starts the cron runner
func (s *SnapshotScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("snapshot: scheduler already started")
	}
	c := rcron.New()
	id, err := c.AddFunc(s.spec, s.Run)
	if err != nil {
		return fmt.Errorf("snapshot: invalid schedule %q: %w", s.spec, err)
	}
	s.cron = c
	s.entry = id
	c.Start()

	log.Printf("[snapshot] scheduled %q, next run %s", s.spec, c.Entry(id).Next.Format(time.RFC3339))
	return nil
}

// Stop halts scheduling and waits for a running snapshot to finish
func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	log.Printf("[snapshot] stopped")
}

// Run takes one snapshot now
func (s *SnapshotScheduler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	snap, err := s.svc.TakeSnapshot(ctx, TriggerSchedule)
	if err == nil && s.OnSnapshot != nil {
		err = s.OnSnapshot(snap)
	}

	s.mu.Lock()
	s.lastRun = start
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		log.Printf("[snapshot] failed: %v", err)
		return
	}
	if snap.SalesError != "" {
		log.Printf("[snapshot] whole-store forecast unavailable: %s", snap.SalesError)
	}
	log.Printf("[snapshot] done in %s: %d categories, %d products",
		time.Since(start).Round(time.Millisecond), len(snap.CategorySales.Results), len(snap.ProductDemand.Results))
}

// LastRun reports when the last snapshot started and how it ended
func (s *SnapshotScheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}
