package scheduler

import (
	"context"
	"time"
	"widt/internal/bot"
	"widt/internal/models"
	"widt/internal/providers"
	"widt/internal/report"
	"widt/internal/store"
	"widt/internal/structures"

	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxConcurrent = 4
	defaultOpTimeout     = 30 * time.Second
)

// ChatOutcome is one chat's result from a sweep, aggregated and logged
// by the caller; a failure never stops the rest of the sweep.
type ChatOutcome struct {
	ChatID    string
	Triggered bool
	Err       error
}

// Sweeper walks every chat's metadata once and triggers the report for
// chats whose local end-of-day hour has just arrived.
type Sweeper struct {
	conf     *structures.Config
	meta     *store.MetaRepository
	compiler *report.Compiler
	locks    *bot.ChatLocks
	logger   providers.Logger
	clock    func() time.Time
}

func NewSweeper(conf *structures.Config, meta *store.MetaRepository, compiler *report.Compiler, locks *bot.ChatLocks, logger providers.Logger) *Sweeper {
	return &Sweeper{
		conf:     conf,
		meta:     meta,
		compiler: compiler,
		locks:    locks,
		logger:   logger,
		clock:    time.Now,
	}
}

// Run executes one sweep. Per-chat reports run concurrently with a
// bounded fan-out; one chat never runs twice concurrently because the
// compiler is invoked under the chat's lock.
func (s *Sweeper) Run(ctx context.Context) []ChatOutcome {
	metas, err := s.meta.All(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeScheduler, "Sweep aborted, metadata scan failed: %s", err)
		return nil
	}

	now := s.clock().UTC()
	due := make([]*models.ChatMetadata, 0, len(metas))
	for _, meta := range metas {
		if !meta.Configured() {
			continue
		}
		if s.conf.DebugChat != "" && meta.ChatID != s.conf.DebugChat {
			continue
		}
		if meta.LocalTime(now).Hour() != meta.EndOfDayHour() {
			continue
		}
		due = append(due, meta)
	}
	if len(due) == 0 {
		return nil
	}

	maxConcurrent := s.conf.Scheduler.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	opTimeout := s.conf.Scheduler.OpTimeout
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	skipArchive := s.conf.DebugChat != ""

	outcomes := make([]ChatOutcome, len(due))
	var g errgroup.Group
	g.SetLimit(maxConcurrent)
	for i, meta := range due {
		g.Go(func() error {
			outcome := ChatOutcome{ChatID: meta.ChatID, Triggered: true}
			s.locks.Do(meta.ChatID, func() {
				opCtx, cancel := context.WithTimeout(ctx, opTimeout)
				defer cancel()
				outcome.Err = s.compiler.Run(opCtx, meta, now, skipArchive)
			})
			outcomes[i] = outcome
			return nil
		})
	}
	g.Wait()

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			s.logger.Errorf(providers.TypeScheduler, "Report for chat %s failed: %s", outcome.ChatID, outcome.Err)
		}
	}
	return outcomes
}
