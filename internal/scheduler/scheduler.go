package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/models"
)

const lockKey = "progress-engine:sync-sweep"

// Syncer runs one sync pass for a user.
type Syncer interface {
	SyncUser(ctx context.Context, userID uuid.UUID) (*models.SyncResult, error)
}

// UserSource lists users whose last sync is stale or absent.
type UserSource interface {
	ListStaleUserIDs(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
}

// Locker is an optional cross-replica lock so two engine instances do
// not sweep the same batch.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string)
}

// Scheduler periodically sweeps a bounded batch of stale users through
// the sync orchestrator. The clock is injectable and Tick is public so
// tests drive it deterministically instead of waiting on timers.
type Scheduler struct {
	users      UserSource
	syncer     Syncer
	locker     Locker
	interval   time.Duration
	batchSize  int
	staleAfter time.Duration
	now        func() time.Time
}

// New creates a scheduler. locker may be nil for single-instance deployments.
func New(users UserSource, syncer Syncer, locker Locker, interval time.Duration, batchSize int, staleAfter time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 25
	}
	if staleAfter <= 0 {
		staleAfter = 6 * time.Hour
	}

	return &Scheduler{
		users:      users,
		syncer:     syncer,
		locker:     locker,
		interval:   interval,
		batchSize:  batchSize,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Start begins the sweep loop in a goroutine
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	slog.Info("sync scheduler started",
		"interval", s.interval,
		"batch_size", s.batchSize,
		"stale_after", s.staleAfter,
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one sweep: at most batchSize stale users, each synced in
// isolation so one user's total failure cannot affect another's pass.
func (s *Scheduler) Tick(ctx context.Context) {
	if s.locker != nil {
		ok, err := s.locker.AcquireLock(ctx, lockKey, s.interval)
		if err != nil {
			slog.Warn("sweep lock unavailable, proceeding unlocked", "error", err)
		} else if !ok {
			slog.Debug("another replica holds the sweep lock, skipping tick")
			return
		} else {
			defer s.locker.ReleaseLock(ctx, lockKey)
		}
	}

	before := s.now().Add(-s.staleAfter)

	ids, err := s.users.ListStaleUserIDs(ctx, before, s.batchSize)
	if err != nil {
		slog.Error("failed to list stale users", "error", err)
		return
	}

	if len(ids) == 0 {
		slog.Debug("no stale users to sync")
		return
	}

	slog.Info("sweeping stale users", "count", len(ids))

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}

		if _, err := s.syncer.SyncUser(ctx, id); err != nil {
			slog.Error("scheduled sync failed", "user_id", id, "error", err)
			continue
		}
	}
}

// SetNow overrides the clock, for tests.
func (s *Scheduler) SetNow(now func() time.Time) {
	s.now = now
}
