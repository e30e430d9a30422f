package judge

import (
	"context"

	"github.com/terra-clan/progress-engine/internal/models"
)

// RawRecord is one submission record as returned by a feed. The two
// feeds disagree on field names, so records stay loosely typed until the
// normalizer maps them onto the canonical shape.
type RawRecord map[string]any

// Profile is the judge's per-user summary.
type Profile struct {
	TotalSolved    int     `json:"total_solved"`
	EasySolved     int     `json:"easy_solved"`
	MediumSolved   int     `json:"medium_solved"`
	HardSolved     int     `json:"hard_solved"`
	Ranking        int     `json:"ranking"`
	ContestRating  float64 `json:"contest_rating"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// ProblemMeta is the judge's canonical problem metadata used for
// catalog enrichment.
type ProblemMeta struct {
	Difficulty models.Difficulty `json:"difficulty"`
	Tags       []string          `json:"tags"`
}

// Client talks to the external judge. Every call is best-effort and may
// fail independently; callers degrade gracefully rather than retry.
type Client interface {
	Profile(ctx context.Context, handle string) (*Profile, error)
	RecentSubmissions(ctx context.Context, handle string, limit int) ([]RawRecord, error)
	AcceptedSubmissions(ctx context.Context, handle string, limit int) ([]RawRecord, error)
	ProblemMeta(ctx context.Context, slug string) (*ProblemMeta, error)
}
