package progress

import (
	"testing"

	"github.com/terra-clan/progress-engine/internal/models"
)

func TestProfileXP(t *testing.T) {
	if got := ProfileXP(0, 0, 0); got != 0 {
		t.Errorf("expected 0 XP for zero counters, got %d", got)
	}
	if got := ProfileXP(3, 2, 1); got != 100 {
		t.Errorf("expected 100 XP for 3/2/1, got %d", got)
	}
	if got := ProfileXP(10, 0, 0); got != 100 {
		t.Errorf("expected 100 XP for 10 easy, got %d", got)
	}
}

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp    int64
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{900, 4},
		{-5, 1},
	}

	for _, c := range cases {
		if got := LevelForXP(c.xp); got != c.level {
			t.Errorf("LevelForXP(%d) = %d, expected %d", c.xp, got, c.level)
		}
	}
}

func TestApplyProfileXPMonotonic(t *testing.T) {
	u := &models.User{EasySolved: 3, MediumSolved: 2, HardSolved: 1, Level: 1}

	delta, leveledUp := ApplyProfileXP(u)
	if delta != 100 {
		t.Fatalf("expected delta 100, got %d", delta)
	}
	if !leveledUp {
		t.Error("expected level-up crossing 100 XP")
	}
	if u.XP != 100 || u.Level != 2 {
		t.Errorf("expected xp=100 level=2, got xp=%d level=%d", u.XP, u.Level)
	}

	// Same counters again: no double award.
	delta, leveledUp = ApplyProfileXP(u)
	if delta != 0 || leveledUp {
		t.Errorf("expected no-op on repeat, got delta=%d leveledUp=%v", delta, leveledUp)
	}

	// Counters regress (profile under-reports): XP must not move down.
	u.EasySolved = 1
	u.MediumSolved = 0
	u.HardSolved = 0
	delta, _ = ApplyProfileXP(u)
	if delta != 0 {
		t.Errorf("expected 0 delta on under-reporting profile, got %d", delta)
	}
	if u.XP != 100 {
		t.Errorf("XP regressed to %d", u.XP)
	}
	if u.Level != 2 {
		t.Errorf("level regressed to %d", u.Level)
	}
}

func TestApplyProfileXPLevelMatchesXP(t *testing.T) {
	// A stale stored level is recomputed even when XP does not move.
	u := &models.User{XP: 400, Level: 1}
	ApplyProfileXP(u)
	if u.Level != 3 {
		t.Errorf("expected level recomputed to 3, got %d", u.Level)
	}
}

func TestChallengeXP(t *testing.T) {
	// 2 easy + 1 medium = 40 base, +10 success bonus.
	res := ChallengeResult{Easy: 2, Medium: 1, Success: true}
	if got := ChallengeXP(res); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}

	// No bonus on failure.
	res.Success = false
	if got := ChallengeXP(res); got != 40 {
		t.Errorf("expected 40, got %d", got)
	}

	// Negative counts award nothing.
	if got := ChallengeXP(ChallengeResult{Easy: -1}); got != 0 {
		t.Errorf("expected 0 for negative counts, got %d", got)
	}
}

func TestApplyEventXP(t *testing.T) {
	u := &models.User{XP: 90, Level: 1}

	if leveledUp := ApplyEventXP(u, 20); !leveledUp {
		t.Error("expected level-up from 90 to 110")
	}
	if u.XP != 110 || u.Level != 2 {
		t.Errorf("expected xp=110 level=2, got xp=%d level=%d", u.XP, u.Level)
	}

	if ApplyEventXP(u, 0) || ApplyEventXP(u, -10) {
		t.Error("non-positive deltas must be refused")
	}
	if u.XP != 110 {
		t.Errorf("XP changed by refused delta: %d", u.XP)
	}
}
