package reload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Loader refreshes a snapshot from its backing stores.
type Loader interface {
	Load(ctx context.Context) error
}

// Observer is notified of every reload attempt; nil disables it.
type Observer interface {
	ObserveReload(err error)
}

// Scheduler reloads the price snapshot on a cron schedule. A failed reload
// is logged and the previous snapshot keeps serving.
type Scheduler struct {
	loader   Loader
	observer Observer
	timeout  time.Duration
	cron     *cron.Cron

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

func NewScheduler(loader Loader, observer Observer, timeout time.Duration) (*Scheduler, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is nil")
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Scheduler{
		loader:   loader,
		observer: observer,
		timeout:  timeout,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}, nil
}

// Start schedules reloads with schedule, a standard cron expression or an
// "@every" descriptor. ctx carries the logger and bounds the scheduler life.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if _, err := s.cron.AddFunc(schedule, func() { _ = s.RunOnce(s.ctx) }); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", schedule, err)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.running = true
	zerolog.Ctx(ctx).Info().Str("schedule", schedule).Msg("reload scheduler started")
	return nil
}

// RunOnce performs a single reload.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	err := s.loader.Load(ctx)
	if s.observer != nil {
		s.observer.ObserveReload(err)
	}
	if err != nil {
		logger.Error().Err(err).Msg("snapshot reload failed, keeping previous snapshot")
		return err
	}
	logger.Debug().Dur("elapsed", time.Since(started)).Msg("snapshot reloaded")
	return nil
}

// Stop halts the schedule and waits for a running reload to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.running = false
}
