package callsync

import (
	"context"
	"log/slog"
	"time"
)

// RetryPolicy bounds retries of a failed run with exponential backoff.
// Kept as a value object so backoff math is unit-testable without sleeping.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	out := p
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 3
	}
	if out.BaseDelay <= 0 {
		out.BaseDelay = 5 * time.Second
	}
	if out.MaxDelay <= 0 {
		out.MaxDelay = 5 * time.Minute
	}
	return out
}

// Delay returns the backoff before retry attempt n (1-based: Delay(1) is the
// wait after the first failure). Doubles each attempt, capped at MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	p = p.withDefaults()
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Runner is one sync attempt. Orchestrator.Run satisfies it.
type Runner func(ctx context.Context) (Summary, error)

// Locker serializes scheduled runs across replicas. Acquire reports whether
// the caller got the lock; a held lock turns the tick into a no-op.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Scheduler drives a Runner once at startup (after an initial delay) and
// then on a fixed interval. Ticks never overlap: the next wait starts only
// after the previous run, including its retries, finished. Retry/backoff
// lives here, not in the orchestrator, so the orchestrator stays
// deterministic.
type Scheduler struct {
	name         string
	run          Runner
	interval     time.Duration
	initialDelay time.Duration
	retry        RetryPolicy
	lock         Locker // optional
	lockTTL      time.Duration
	log          *slog.Logger

	// sleep is injectable for tests; returns false when ctx ended.
	sleep func(ctx context.Context, d time.Duration) bool
}

type SchedulerConfig struct {
	Name         string
	Interval     time.Duration
	InitialDelay time.Duration
	Retry        RetryPolicy
	Lock         Locker
	LockTTL      time.Duration
}

func NewScheduler(cfg SchedulerConfig, run Runner, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = interval
	}
	return &Scheduler{
		name:         cfg.Name,
		run:          run,
		interval:     interval,
		initialDelay: cfg.InitialDelay,
		retry:        cfg.Retry.withDefaults(),
		lock:         cfg.Lock,
		lockTTL:      lockTTL,
		log:          log,
		sleep:        sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Start launches the schedule loop in a goroutine. It stops when ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		if !s.sleep(ctx, s.initialDelay) {
			return
		}
		for {
			s.RunOnce(ctx)
			if !s.sleep(ctx, s.interval) {
				return
			}
		}
	}()
}

// RunOnce executes one scheduled cycle: take the lock (when configured),
// run, and retry failures with backoff up to the policy's budget.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx, s.lockKey(), s.lockTTL)
		if err != nil {
			s.log.Warn("sync lock unavailable, proceeding unlocked", "job", s.name, "err", err)
		} else if !ok {
			s.log.Info("sync already running elsewhere, skipping tick", "job", s.name)
			return
		} else {
			defer func() {
				if err := s.lock.Release(context.WithoutCancel(ctx), s.lockKey()); err != nil {
					s.log.Warn("sync lock release failed", "job", s.name, "err", err)
				}
			}()
		}
	}

	for attempt := 1; ; attempt++ {
		_, err := s.run(ctx)
		if err == nil {
			return
		}
		if attempt >= s.retry.MaxAttempts {
			s.log.Error("sync run failed, retry budget exhausted", "job", s.name, "attempts", attempt, "err", err)
			return
		}
		delay := s.retry.Delay(attempt)
		s.log.Warn("sync run failed, backing off", "job", s.name, "attempt", attempt, "delay", delay.String(), "err", err)
		if !s.sleep(ctx, delay) {
			return
		}
	}
}

func (s *Scheduler) lockKey() string { return "sync:lock:" + s.name }
