package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoreWeights holds the per-difficulty point weights for a competition.
type ScoreWeights struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// DefaultWeights is used when a competition is created without explicit weights.
var DefaultWeights = ScoreWeights{Easy: 1, Medium: 2, Hard: 3}

// Competition is a named, time-boxed scoring window over a fixed
// problem-slug set. Leaderboard rows are derived on read, never stored.
type Competition struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	StartAt      time.Time    `json:"start_at"`
	EndAt        time.Time    `json:"end_at"`
	ProblemSlugs []string     `json:"problem_slugs"`
	Weights      ScoreWeights `json:"weights"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Contains reports whether t falls inside the competition window.
func (c *Competition) Contains(t time.Time) bool {
	return !t.Before(c.StartAt) && !t.After(c.EndAt)
}

// HasProblem reports whether slug is part of the competition's set.
func (c *Competition) HasProblem(slug string) bool {
	for _, s := range c.ProblemSlugs {
		if s == slug {
			return true
		}
	}
	return false
}

// LeaderboardRow is one derived standing, recomputed from the ledger on
// every read.
type LeaderboardRow struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	EasySolved  int       `json:"easy_solved"`
	MedSolved   int       `json:"medium_solved"`
	HardSolved  int       `json:"hard_solved"`
	Solved      int       `json:"solved"`
	Points      int       `json:"points"`
	LastSolveAt time.Time `json:"last_solve_at"`
}
