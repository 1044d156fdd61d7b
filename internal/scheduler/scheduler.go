// Package scheduler provides cron-driven background jobs for vagrant. Its
// primary job is the periodic state sync, which saves the full basis scope
// on a schedule so long-running sessions keep the state service current.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// SaveFunc persists the watched scope. Implementations are typically
// Basis.SaveFull bound to the session context.
type SaveFunc func(ctx context.Context) error

// NormalizeCronExpression validates a cron expression for the 6-field
// parser (sec min hour dom month dow). Descriptor expressions such as
// @hourly pass through.
func NormalizeCronExpression(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", fmt.Errorf("empty cron expression")
	}
	if strings.HasPrefix(expr, "@") {
		return expr, nil
	}
	if fields := strings.Fields(expr); len(fields) != 6 {
		return "", fmt.Errorf("invalid cron expression: expected 6 fields, got %d", len(fields))
	}
	return expr, nil
}

// StateSync runs a SaveFunc on a cron schedule. Overlapping runs are
// skipped rather than queued.
type StateSync struct {
	logger *slog.Logger
	save   SaveFunc

	cronScheduler *cron.Cron
	entry         cron.EntryID

	running atomic.Bool
	mu      sync.Mutex
	started bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a StateSync running save on the given 6-field cron schedule.
func New(log *slog.Logger, schedule string, save SaveFunc) (*StateSync, error) {
	if log == nil {
		log = slog.Default()
	}
	if save == nil {
		return nil, fmt.Errorf("save function is required")
	}

	normalized, err := NormalizeCronExpression(schedule)
	if err != nil {
		return nil, err
	}

	s := &StateSync{
		logger: log,
		save:   save,
		cronScheduler: cron.New(
			cron.WithParser(cron.NewParser(
				cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
			)),
		),
	}

	s.entry, err = s.cronScheduler.AddFunc(normalized, s.run)
	if err != nil {
		return nil, fmt.Errorf("scheduling state sync: %w", err)
	}

	return s, nil
}

// Start begins running the schedule. Start is idempotent.
func (s *StateSync) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cronScheduler.Start()
	s.logger.Debug("state sync started")
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *StateSync) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false

	if s.cancel != nil {
		s.cancel()
	}
	// cron.Stop returns a context that is done once running jobs complete.
	<-s.cronScheduler.Stop().Done()
	s.logger.Debug("state sync stopped")
}

// run executes one sync, skipping if a previous run is still in flight.
func (s *StateSync) run() {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("state sync still running, skipping")
		return
	}
	defer s.running.Store(false)

	if err := s.save(s.ctx); err != nil {
		s.logger.Error("state sync failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("state sync completed")
}

// RunOnce executes a single sync immediately, outside the schedule.
func (s *StateSync) RunOnce(ctx context.Context) error {
	return s.save(ctx)
}
