package models

import (
	"time"

	"github.com/google/uuid"
)

// StatusAccepted is the canonical accepted status on a ledger entry.
const StatusAccepted = "Accepted"

// Submission is one append-mostly ledger fact. At most one entry exists
// per (user, identity key); the row is immutable after insert except for
// the denormalized difficulty, which freezes the value known at
// observation time.
type Submission struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	ProblemID         uuid.UUID  `json:"problem_id"`
	ProblemSlug       string     `json:"problem_slug"`
	ProblemDifficulty Difficulty `json:"problem_difficulty"`
	IdentityKey       string     `json:"identity_key"`
	ExternalID        string     `json:"external_id,omitempty"`
	Status            string     `json:"status"`
	Language          string     `json:"language,omitempty"`
	Runtime           string     `json:"runtime,omitempty"`
	Memory            string     `json:"memory,omitempty"`
	SubmittedAt       time.Time  `json:"submitted_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Accepted reports whether this entry records an accepted solve.
func (s *Submission) Accepted() bool {
	return s.Status == StatusAccepted
}
