package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/cartsync/internal/events"
	"github.com/donaldgifford/cartsync/internal/metrics"
)

// ErrWatchdogDisabled is returned for a non-positive watchdog interval.
var ErrWatchdogDisabled = errors.New("watchdog interval must be positive")

// Scheduler periodically asks every widget to re-render its lock state so
// the page converges even when another actor changed the in-flight flag
// without telling anyone.
type Scheduler struct {
	cron   *cron.Cron
	bridge *events.Bridge
	log    *slog.Logger
}

// NewScheduler creates a Scheduler that publishes cart/refresh-lock-state on
// the bridge every interval.
func NewScheduler(bridge *events.Bridge, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, ErrWatchdogDisabled
	}

	c := cron.New()
	s := &Scheduler{
		cron:   c,
		bridge: bridge,
		log:    log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), s.refreshLockState); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins running scheduled refreshes.
func (s *Scheduler) Start() {
	s.log.Info("lock watchdog started")
	s.cron.Start()
}

// Stop stops the scheduler. The returned context is done once a running
// refresh has finished.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("lock watchdog stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) refreshLockState() {
	metrics.WatchdogRunsTotal.Inc()
	s.log.Debug("scheduled lock-state refresh")
	s.bridge.Publish(events.Event{Kind: events.RefreshLockState})
}
