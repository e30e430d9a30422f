package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Difficulty is the canonical difficulty of a catalog problem
type Difficulty string

const (
	DifficultyEasy    Difficulty = "Easy"
	DifficultyMedium  Difficulty = "Medium"
	DifficultyHard    Difficulty = "Hard"
	DifficultyUnknown Difficulty = "Unknown"
)

// ParseDifficulty maps an external difficulty label onto the canonical
// set, falling back to Unknown for anything unrecognized.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "1":
		return DifficultyEasy
	case "medium", "2":
		return DifficultyMedium
	case "hard", "3":
		return DifficultyHard
	default:
		return DifficultyUnknown
	}
}

// Known reports whether the difficulty carries a real value. Enrichment
// never downgrades a known difficulty back to Unknown.
func (d Difficulty) Known() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Problem is a canonical external-problem reference, created lazily the
// first time any submission mentions its slug.
type Problem struct {
	ID         uuid.UUID  `json:"id"`
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Tags       []string   `json:"tags"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
