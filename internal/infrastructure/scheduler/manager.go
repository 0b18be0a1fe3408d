// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager manages all scheduled jobs using gocron v2 on a single
// scheduler instance. The sweeps here are backstops: webhooks and lazy
// reads settle most state transitions before a sweep ever sees them.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	// Track whether the scheduler has been started
	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// It initializes gocron with the business timezone for cron expressions.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterBillingJobs registers payment maintenance jobs:
// - Expire pending payment intents whose checkout window has passed
func (m *SchedulerManager) RegisterBillingJobs(expirePaymentsJob BatchJob) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.processStalePayments(ctx, expirePaymentsJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("billing", "expire"),
		gocron.WithName("payment-expiry"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered billing jobs", "interval", "1h")
	return nil
}

func (m *SchedulerManager) processStalePayments(ctx context.Context, expirePaymentsJob BatchJob) {
	m.logger.Debugw("processing stale payment intents started")

	startTime := biztime.NowUTC()

	expiredCount, err := expirePaymentsJob.Execute(ctx)
	if err != nil {
		// Don't log error if context was cancelled (graceful shutdown)
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("failed to expire stale payment intents",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if expiredCount > 0 {
		m.logger.Infow("stale payment intents expired",
			"count", expiredCount,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("no stale payment intents to expire",
			"duration", time.Since(startTime),
		)
	}
}

// RegisterDepositSweep registers the booking deposit sweep:
// - Release slots held by bookings whose deposit window lapsed unpaid
func (m *SchedulerManager) RegisterDepositSweep(sweepJob BatchJob, intervalMinutes int) error {
	if intervalMinutes <= 0 {
		intervalMinutes = 5
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(time.Duration(intervalMinutes)*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			m.processOverdueDeposits(ctx, sweepJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("booking", "deposit-sweep"),
		gocron.WithName("deposit-sweep"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered deposit sweep", "interval_minutes", intervalMinutes)
	return nil
}

func (m *SchedulerManager) processOverdueDeposits(ctx context.Context, sweepJob BatchJob) {
	m.logger.Debugw("deposit sweep started")

	startTime := biztime.NowUTC()

	releasedCount, err := sweepJob.Execute(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("deposit sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if releasedCount > 0 {
		m.logger.Infow("overdue deposits released",
			"count", releasedCount,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("no overdue deposits to release",
			"duration", time.Since(startTime),
		)
	}
}

// RegisterSubscriptionJobs registers subscription maintenance jobs:
// - Mark subscriptions whose paid period lapsed (data consistency for
//   reports; access checks never depend on this sweep)
func (m *SchedulerManager) RegisterSubscriptionJobs(expireSubscriptionsJob BatchJob) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.processExpiredSubscriptions(ctx, expireSubscriptionsJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("subscription", "expire"),
		gocron.WithName("subscription-expire"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered subscription jobs", "interval", "24h")
	return nil
}

func (m *SchedulerManager) processExpiredSubscriptions(ctx context.Context, expireSubscriptionsJob BatchJob) {
	m.logger.Debugw("processing expired subscriptions task started")

	startTime := biztime.NowUTC()

	expiredCount, err := expireSubscriptionsJob.Execute(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("failed to process expired subscriptions",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if expiredCount > 0 {
		m.logger.Infow("expired subscriptions processed",
			"count", expiredCount,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("no expired subscriptions to process",
			"duration", time.Since(startTime),
		)
	}
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
