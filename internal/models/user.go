package models

import (
	"time"

	"github.com/google/uuid"
)

// User holds identity plus the derived progress state owned by the
// sync pipeline. Counters, xp, level, streaks and badges are mutated
// only by the aggregation engines, never directly from feed data.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Handle         string     `json:"handle"`
	Username       string     `json:"username"`
	EasySolved     int        `json:"easy_solved"`
	MediumSolved   int        `json:"medium_solved"`
	HardSolved     int        `json:"hard_solved"`
	TotalSolved    int        `json:"total_solved"`
	XP             int64      `json:"xp"`
	Level          int        `json:"level"`
	CurrentStreak  int        `json:"current_streak"`
	MaxStreak      int        `json:"max_streak"`
	LastSolvedDate *time.Time `json:"last_solved_date,omitempty"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	Badges         []Badge    `json:"badges"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Badge is one earned milestone. The set on a user is ordered by grant
// time and unique by name.
type Badge struct {
	Name     string    `json:"name"`
	EarnedAt time.Time `json:"earned_at"`
}

// HasBadge reports whether the user already earned the named badge.
func (u *User) HasBadge(name string) bool {
	for _, b := range u.Badges {
		if b.Name == name {
			return true
		}
	}
	return false
}

// GrantBadge appends a badge if it is not already present. Returns true
// when the badge was newly granted.
func (u *User) GrantBadge(name string, at time.Time) bool {
	if u.HasBadge(name) {
		return false
	}
	u.Badges = append(u.Badges, Badge{Name: name, EarnedAt: at})
	return true
}

// CountersZero reports whether all difficulty counters are zero, the
// symptom that triggers a fallback recount from the ledger.
func (u *User) CountersZero() bool {
	return u.EasySolved == 0 && u.MediumSolved == 0 && u.HardSolved == 0
}
