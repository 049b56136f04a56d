package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	applog "utang/internal/log"
)

// SweepFunc runs one full pass; ReportWorker.ProcessAll fits.
type SweepFunc func(ctx context.Context) (int, error)

// Sweeper runs a SweepFunc on startup and then every interval, as a backup
// for messages lost between the API and the worker.
type Sweeper struct {
	sweep    SweepFunc
	interval time.Duration
	logger   *applog.Logger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSweeper(sweep SweepFunc, interval time.Duration, logger *applog.Logger) *Sweeper {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Sweeper{
		sweep:    sweep,
		interval: interval,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// Start begins the sweep loop. Returns an error if already running.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("invalid sweep interval %s", s.interval)
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("sweeper is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	s.logger.InfoContext(ctx, "Report sweeper started", "interval", s.interval)
	return nil
}

// Stop signals the loop and waits for the current pass to finish.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.running = false
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		s.logger.InfoContext(ctx, "Report sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Report sweeper stop timed out")
		return ctx.Err()
	}
}

func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	n, err := s.sweep(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Report sweep failed",
			applog.FieldCount, n,
			applog.FieldError, err)
		return
	}
	s.logger.DebugContext(ctx, "Report sweep finished", applog.FieldCount, n)
}
