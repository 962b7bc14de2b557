// Package scheduler runs the recurring end-of-day sweep.
package scheduler

import (
	"context"
	"sync"
	"time"
	"widt/internal/providers"
	"widt/internal/structures"

	"github.com/roylee0704/gron"
)

type Interface interface {
	Init()
	Stop()
}

// Scheduler fires the sweep on a fixed interval. The first run is
// aligned to a round clock boundary (minute N past the hour) so hourly
// sweeps land shortly after each hour change instead of drifting with
// process start time.
type Scheduler struct {
	conf    *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	sweeper *Sweeper

	cron  *gron.Cron
	timer *time.Timer
	opsMu sync.Mutex
}

func NewScheduler(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, sweeper *Sweeper) Interface {
	return &Scheduler{
		conf:    conf,
		logger:  logger,
		metrics: metrics,
		sweeper: sweeper,
	}
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.conf.Scheduler.Interval

	delay := s.firstRunDelay(time.Now())
	s.logger.Infof(providers.TypeScheduler, "First sweep in %s, then every %s", delay.Round(time.Second), interval)

	s.timer = time.AfterFunc(delay, func() {
		s.runSweep()
		s.cron.AddFunc(gron.Every(interval), s.runSweep)
		s.cron.Start()
	})
}

// Stop stops scheduling future sweeps. An in-flight sweep finishes.
func (s *Scheduler) Stop() {
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cron != nil {
		s.cron.Stop()
	}
	// Wait for an in-flight sweep before returning so shutdown never
	// races the archive-then-clear step.
	s.opsMu.Lock()
	s.opsMu.Unlock() //nolint:staticcheck // empty critical section is the wait
}

func (s *Scheduler) firstRunDelay(now time.Time) time.Duration {
	if s.conf.DebugChat != "" {
		return 5 * time.Second
	}
	minute := s.conf.Scheduler.FirstRunMinute
	if minute <= 0 {
		minute = 10
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), minute, 0, 0, now.Location())
	if now.Minute() >= minute {
		next = next.Add(time.Hour)
	}
	return next.Sub(now)
}

func (s *Scheduler) runSweep() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	s.logger.Infof(providers.TypeScheduler, "Check and make reports...")

	outcomes := s.sweeper.Run(context.Background())

	triggered, failed := 0, 0
	for _, outcome := range outcomes {
		if outcome.Triggered {
			triggered++
		}
		if outcome.Err != nil {
			failed++
		}
	}
	s.metrics.ObserveSweepDuration(time.Since(start))
	s.logger.Infof(providers.TypeScheduler, "Sweep done in %s: %d triggered, %d failed",
		time.Since(start).Round(time.Millisecond), triggered, failed)
}
