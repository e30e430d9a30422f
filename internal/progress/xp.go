package progress

import (
	"math"

	"github.com/terra-clan/progress-engine/internal/models"
)

// Per-difficulty XP awards.
const (
	XPEasy   = 10
	XPMedium = 20
	XPHard   = 30
)

// ProfileXP computes the candidate XP a full-profile sync derives from
// the solved counters.
func ProfileXP(easy, medium, hard int) int64 {
	return int64(easy)*XPEasy + int64(medium)*XPMedium + int64(hard)*XPHard
}

// LevelForXP derives the level from cumulative XP:
// floor(sqrt(xp/100)) + 1. Level is never separately authoritative; it
// must always be recomputable from xp alone.
func LevelForXP(xp int64) int {
	if xp < 0 {
		return 1
	}
	return int(math.Sqrt(float64(xp)/100)) + 1
}

// ApplyProfileXP merges counter-derived XP into the user. XP is
// monotonic: a profile that under-reports leaves it unchanged. Returns
// the gained delta and whether the user leveled up.
func ApplyProfileXP(u *models.User) (int64, bool) {
	candidate := ProfileXP(u.EasySolved, u.MediumSolved, u.HardSolved)
	if candidate <= u.XP {
		// Keep the higher existing value; this is a correction, not an error.
		u.Level = LevelForXP(u.XP)
		return 0, false
	}

	prevLevel := LevelForXP(u.XP)
	delta := candidate - u.XP
	u.XP = candidate
	u.Level = LevelForXP(u.XP)

	return delta, u.Level > prevLevel
}

// ChallengeResult describes a completed timed challenge: solved counts
// per difficulty plus whether the challenge as a whole succeeded.
type ChallengeResult struct {
	Easy    int  `json:"easy"`
	Medium  int  `json:"medium"`
	Hard    int  `json:"hard"`
	Success bool `json:"success"`
}

// ChallengeXP computes the discrete-event XP award: the per-problem base
// plus a 25% success bonus. Never negative.
func ChallengeXP(res ChallengeResult) int64 {
	if res.Easy < 0 || res.Medium < 0 || res.Hard < 0 {
		return 0
	}
	base := ProfileXP(res.Easy, res.Medium, res.Hard)
	if res.Success {
		base += base / 4
	}
	return base
}

// ApplyEventXP adds a discrete XP delta to the user. Negative deltas are
// refused. Returns whether the user leveled up.
func ApplyEventXP(u *models.User, delta int64) bool {
	if delta <= 0 {
		return false
	}

	prevLevel := LevelForXP(u.XP)
	u.XP += delta
	u.Level = LevelForXP(u.XP)

	return u.Level > prevLevel
}
