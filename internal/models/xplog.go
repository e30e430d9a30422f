package models

import (
	"time"

	"github.com/google/uuid"
)

// XP log reason tags.
const (
	XPReasonProfileSync = "profile_sync"
	XPReasonChallenge   = "challenge"
)

// XPEntry is an immutable audit record appended every time XP changes.
// It exists for display and audit; the user's xp field stays authoritative.
type XPEntry struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Delta     int64             `json:"delta"`
	Reason    string            `json:"reason"`
	Meta      map[string]string `json:"meta,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// SyncResult is what a completed sync pass reports back to the caller.
type SyncResult struct {
	XPGained       int64    `json:"xp_gained"`
	LeveledUp      bool     `json:"leveled_up"`
	NewBadges      []string `json:"new_badges"`
	NewSubmissions int      `json:"new_submissions"`
}
