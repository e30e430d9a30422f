package progress

import (
	"time"

	"github.com/terra-clan/progress-engine/internal/models"
)

// DayOf truncates t to its calendar day in t's own location. Streaks
// run on local calendar days, not UTC.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the calendar-date distance from a to b, each
// taken in its own location. Anchoring both dates in UTC keeps the
// subtraction at exact multiples of 24h, so DST-shortened days and
// stored dates that decode as UTC midnight still count as whole days.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// ApplyStreak advances the streak state machine given accepted evidence
// on today (already truncated to day resolution). A second call on the
// same day is a no-op, so overlapping syncs cannot double-count a day.
// Returns whether any field changed.
func ApplyStreak(u *models.User, today time.Time) bool {
	today = DayOf(today)

	switch {
	case u.LastSolvedDate == nil:
		u.CurrentStreak = 1
	default:
		switch days := DaysBetween(*u.LastSolvedDate, today); {
		case days <= 0:
			// Already counted today.
			return false
		case days == 1:
			u.CurrentStreak++
		default:
			u.CurrentStreak = 1
		}
	}

	if u.CurrentStreak > u.MaxStreak {
		u.MaxStreak = u.CurrentStreak
	}
	u.LastSolvedDate = &today

	return true
}
