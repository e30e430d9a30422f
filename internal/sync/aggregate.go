package sync

import (
	"github.com/terra-clan/progress-engine/internal/models"
	"github.com/terra-clan/progress-engine/internal/storage"
)

// DeltaFor maps a newly inserted accepted submission's denormalized
// difficulty onto a counter increment. Unknown difficulty still counts
// toward the total.
func DeltaFor(d models.Difficulty) storage.CounterDelta {
	delta := storage.CounterDelta{Total: 1}
	switch d {
	case models.DifficultyEasy:
		delta.Easy = 1
	case models.DifficultyMedium:
		delta.Medium = 1
	case models.DifficultyHard:
		delta.Hard = 1
	}
	return delta
}

// ApplyDelta mirrors a counter increment onto the in-memory user so the
// rest of the pass (XP, badges) sees the bumped values.
func ApplyDelta(u *models.User, d storage.CounterDelta) {
	u.EasySolved += d.Easy
	u.MediumSolved += d.Medium
	u.HardSolved += d.Hard
	u.TotalSolved += d.Total
}

// RecountCounters repairs a user's counters from grouped ledger counts.
// Every field takes max(old, recomputed), so a repeated recount is
// idempotent and a recount can never decrease a counter. When the
// grouped difficulty counts are all zero but accepted entries exist
// (an all-Unknown ledger), the raw accepted count becomes the floor for
// the total. Reports whether anything changed.
func RecountCounters(u *models.User, counts storage.DifficultyCounts) bool {
	knownTotal := counts.Easy + counts.Medium + counts.Hard
	acceptedTotal := knownTotal + counts.Unknown

	easy := maxInt(u.EasySolved, counts.Easy)
	medium := maxInt(u.MediumSolved, counts.Medium)
	hard := maxInt(u.HardSolved, counts.Hard)
	// The larger of the two candidate floors wins when only some
	// difficulties are known.
	total := maxInt(u.TotalSolved, maxInt(knownTotal, acceptedTotal))

	changed := easy != u.EasySolved || medium != u.MediumSolved ||
		hard != u.HardSolved || total != u.TotalSolved

	u.EasySolved = easy
	u.MediumSolved = medium
	u.HardSolved = hard
	u.TotalSolved = total

	return changed
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
