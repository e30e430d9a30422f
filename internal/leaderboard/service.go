package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/cache"
	"github.com/terra-clan/progress-engine/internal/models"
	"github.com/terra-clan/progress-engine/internal/storage"
)

// Service computes competition standings on read. Standings are never
// persisted; a short-TTL cache only bounds how often the same request
// recomputes them.
type Service struct {
	repo     storage.Repository
	cache    *cache.Cache
	cacheTTL time.Duration
}

// NewService creates a leaderboard service. cache may be nil, in which
// case every read recomputes.
func NewService(repo storage.Repository, c *cache.Cache, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Service{repo: repo, cache: c, cacheTTL: cacheTTL}
}

// Standings returns the competition's current leaderboard, consistent
// with the ledger as of read time.
func (s *Service) Standings(ctx context.Context, competitionID uuid.UUID) ([]models.LeaderboardRow, error) {
	cacheKey := fmt.Sprintf("leaderboard:%s", competitionID)

	if s.cache != nil {
		var cached []models.LeaderboardRow
		if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
			slog.Warn("leaderboard cache read failed", "competition", competitionID, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	comp, err := s.repo.GetCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	participants, err := s.repo.ListParticipants(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, len(participants))
	for i, u := range participants {
		userIDs[i] = u.ID
	}

	subs, err := s.repo.ListAcceptedInWindow(ctx, userIDs, comp.ProblemSlugs, comp.StartAt, comp.EndAt)
	if err != nil {
		return nil, err
	}

	rows := Compute(comp, participants, subs)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, rows, s.cacheTTL); err != nil {
			slog.Warn("leaderboard cache write failed", "competition", competitionID, "error", err)
		}
	}

	return rows, nil
}
