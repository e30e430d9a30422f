package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/badges"
	"github.com/terra-clan/progress-engine/internal/judge"
	"github.com/terra-clan/progress-engine/internal/models"
	"github.com/terra-clan/progress-engine/internal/progress"
	"github.com/terra-clan/progress-engine/internal/storage"
)

// Orchestrator runs one sync pass per user: profile summary, feed
// merge, ledger reconciliation, counter repair, XP, streak and badges.
// The same idempotent routine serves the scheduler sweep, user-initiated
// syncs and the post-registration bootstrap, so concurrent triggers for
// one user are safe by construction.
type Orchestrator struct {
	repo       storage.Repository
	judge      judge.Client
	evaluator  *badges.Evaluator
	catalog    *CatalogResolver
	reconciler *Reconciler
	feedLimit  int
	now        func() time.Time
}

// NewOrchestrator creates a sync orchestrator
func NewOrchestrator(repo storage.Repository, judgeClient judge.Client, evaluator *badges.Evaluator, feedLimit int) *Orchestrator {
	if feedLimit <= 0 {
		feedLimit = 20
	}
	catalog := NewCatalogResolver(repo, judgeClient)
	return &Orchestrator{
		repo:       repo,
		judge:      judgeClient,
		evaluator:  evaluator,
		catalog:    catalog,
		reconciler: NewReconciler(repo, catalog),
		feedLimit:  feedLimit,
		now:        time.Now,
	}
}

// SyncUser runs a full sync pass for the user. The profile phase and
// the submission phase are independently fallible: either can fail
// without undoing the other's effects, and a single bad candidate never
// aborts the rest of the pass.
func (o *Orchestrator) SyncUser(ctx context.Context, userID uuid.UUID) (*models.SyncResult, error) {
	u, err := o.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := o.now()
	result := &models.SyncResult{NewBadges: []string{}}

	// Phase 1: profile summary. Counters only ever move up from a
	// profile fetch; a stale or under-reporting profile is ignored
	// field by field.
	if profile, err := o.judge.Profile(ctx, u.Handle); err != nil {
		slog.Warn("profile fetch failed, continuing pass", "user", u.Handle, "error", err)
	} else {
		u.EasySolved = maxInt(u.EasySolved, profile.EasySolved)
		u.MediumSolved = maxInt(u.MediumSolved, profile.MediumSolved)
		u.HardSolved = maxInt(u.HardSolved, profile.HardSolved)
		u.TotalSolved = maxInt(u.TotalSolved, profile.TotalSolved)
	}

	// Phase 2: feed merge and ledger reconciliation.
	candidates := o.fetchCandidates(ctx, u.Handle)
	for _, cand := range candidates {
		sub, inserted, err := o.reconciler.Reconcile(ctx, u.ID, cand)
		if err != nil {
			slog.Warn("failed to reconcile candidate",
				"user", u.Handle,
				"slug", cand.Slug,
				"error", err,
			)
			continue
		}
		if !inserted {
			continue
		}

		result.NewSubmissions++
		if sub.Accepted() {
			delta := DeltaFor(sub.ProblemDifficulty)
			if err := o.repo.IncrementCounters(ctx, u.ID, delta); err != nil {
				slog.Warn("failed to increment counters", "user", u.Handle, "error", err)
			}
			ApplyDelta(u, delta)
		}
	}

	// Phase 3: fallback recount when the counters look wiped.
	if u.CountersZero() {
		if counts, err := o.repo.CountAcceptedByDifficulty(ctx, u.ID); err != nil {
			slog.Warn("fallback recount failed", "user", u.Handle, "error", err)
		} else if RecountCounters(u, counts) {
			slog.Info("recounted solved counters from ledger",
				"user", u.Handle,
				"total", u.TotalSolved,
			)
		}
	}

	// Phase 4: monotonic XP merge and level.
	if delta, leveledUp := progress.ApplyProfileXP(u); delta > 0 {
		result.XPGained = delta
		result.LeveledUp = leveledUp
		o.appendXP(ctx, u, delta, models.XPReasonProfileSync, map[string]string{
			"total_solved": strconv.Itoa(u.TotalSolved),
		}, now)
	}

	// Phase 5: streak. Evidence comes from the merged candidates and,
	// when the pass reconciled nothing new, from the durable ledger.
	if o.acceptedToday(ctx, u, candidates, now) {
		progress.ApplyStreak(u, now)
	}

	// Phase 6: badges. Grants are side effects only and never fail the pass.
	result.NewBadges = o.grantBadges(ctx, u, now)

	u.LastSyncAt = &now
	if err := o.repo.UpdateUserProgress(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to persist sync result: %w", err)
	}

	slog.Info("sync pass complete",
		"user", u.Handle,
		"new_submissions", result.NewSubmissions,
		"xp_gained", result.XPGained,
		"new_badges", len(result.NewBadges),
	)

	return result, nil
}

// fetchCandidates pulls both feeds, normalizes them and merges the
// result. Either feed may fail independently; the pass continues with
// whatever arrived.
func (o *Orchestrator) fetchCandidates(ctx context.Context, handle string) []Candidate {
	var recent, accepted []Candidate

	if raw, err := o.judge.RecentSubmissions(ctx, handle, o.feedLimit); err != nil {
		slog.Warn("recent feed fetch failed", "user", handle, "error", err)
	} else {
		var dropped int
		recent, dropped = NormalizeAll(raw, FeedRecent)
		if dropped > 0 {
			slog.Debug("dropped malformed feed records", "user", handle, "feed", FeedRecent, "count", dropped)
		}
	}

	if raw, err := o.judge.AcceptedSubmissions(ctx, handle, o.feedLimit); err != nil {
		slog.Warn("accepted feed fetch failed", "user", handle, "error", err)
	} else {
		var dropped int
		accepted, dropped = NormalizeAll(raw, FeedAccepted)
		if dropped > 0 {
			slog.Debug("dropped malformed feed records", "user", handle, "feed", FeedAccepted, "count", dropped)
		}
	}

	return Merge(recent, accepted)
}

// acceptedToday checks both evidence sources for an accepted solve on
// today's local calendar day: the just-merged candidates first, then
// the ledger. The ledger check covers the first sync of the day when
// every candidate was already ledgered by an earlier pass.
func (o *Orchestrator) acceptedToday(ctx context.Context, u *models.User, candidates []Candidate, now time.Time) bool {
	dayStart := progress.DayOf(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	for _, cand := range candidates {
		if cand.Accepted() && !cand.SubmittedAt.Before(dayStart) && cand.SubmittedAt.Before(dayEnd) {
			return true
		}
	}

	ok, err := o.repo.HasAcceptedBetween(ctx, u.ID, dayStart, dayEnd)
	if err != nil {
		slog.Warn("ledger streak evidence check failed", "user", u.Handle, "error", err)
		return false
	}
	return ok
}

func (o *Orchestrator) grantBadges(ctx context.Context, u *models.User, now time.Time) []string {
	snap := badges.Snapshot{
		TotalSolved:   u.TotalSolved,
		CurrentStreak: u.CurrentStreak,
		MaxStreak:     u.MaxStreak,
	}

	if n, err := o.repo.CountCompetitionsJoined(ctx, u.ID); err != nil {
		slog.Warn("failed to count competitions for badges", "user", u.Handle, "error", err)
	} else {
		snap.Contests = n
	}

	if n, err := o.repo.CountDistinctLanguages(ctx, u.ID); err != nil {
		slog.Warn("failed to count languages for badges", "user", u.Handle, "error", err)
	} else {
		snap.Languages = n
	}

	granted := []string{}
	for _, name := range o.evaluator.Evaluate(snap, u.HasBadge) {
		if u.GrantBadge(name, now) {
			granted = append(granted, name)
		}
	}
	return granted
}

// AwardChallenge applies a discrete timed-challenge XP event: the
// per-problem award plus a 25% success bonus, added on top of current XP.
func (o *Orchestrator) AwardChallenge(ctx context.Context, userID uuid.UUID, res progress.ChallengeResult) (*models.SyncResult, error) {
	u, err := o.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := o.now()
	result := &models.SyncResult{NewBadges: []string{}}

	delta := progress.ChallengeXP(res)
	if delta > 0 {
		result.XPGained = delta
		result.LeveledUp = progress.ApplyEventXP(u, delta)
		o.appendXP(ctx, u, delta, models.XPReasonChallenge, map[string]string{
			"success": strconv.FormatBool(res.Success),
		}, now)
	}

	result.NewBadges = o.grantBadges(ctx, u, now)

	if err := o.repo.UpdateUserProgress(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to persist challenge award: %w", err)
	}

	return result, nil
}

func (o *Orchestrator) appendXP(ctx context.Context, u *models.User, delta int64, reason string, meta map[string]string, now time.Time) {
	entry := &models.XPEntry{
		ID:        uuid.New(),
		UserID:    u.ID,
		Delta:     delta,
		Reason:    reason,
		Meta:      meta,
		CreatedAt: now,
	}
	if err := o.repo.AppendXP(ctx, entry); err != nil {
		slog.Warn("failed to append xp log entry", "user", u.Handle, "error", err)
	}
}
