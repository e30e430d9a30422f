package sync

import (
	"testing"
	"time"

	"github.com/terra-clan/progress-engine/internal/models"
)

func TestMergeDeduplicatesAcrossFeeds(t *testing.T) {
	at := time.Unix(1772496000, 0).UTC()

	recent := []Candidate{
		{ExternalID: "1", Slug: "two-sum", Status: models.StatusAccepted, SubmittedAt: at},
		{ExternalID: "2", Slug: "lru-cache", Status: "Wrong Answer", SubmittedAt: at.Add(time.Minute)},
	}
	accepted := []Candidate{
		{ExternalID: "1", Slug: "two-sum", Status: models.StatusAccepted, SubmittedAt: at},
	}

	merged := Merge(recent, accepted)
	if len(merged) != 2 {
		t.Fatalf("expected 2 candidates after merge, got %d", len(merged))
	}
}

func TestMergeFallbackKeyDeduplicates(t *testing.T) {
	at := time.Unix(1772496000, 0).UTC()

	// Same solve seen in both feeds, neither carrying an external id.
	a := []Candidate{{Slug: "two-sum", Status: models.StatusAccepted, SubmittedAt: at}}
	b := []Candidate{{Slug: "two-sum", Status: models.StatusAccepted, SubmittedAt: at}}

	if merged := Merge(a, b); len(merged) != 1 {
		t.Errorf("expected 1 candidate, got %d", len(merged))
	}
}

func TestMergeAcceptedWins(t *testing.T) {
	at := time.Unix(1772496000, 0).UTC()

	recent := []Candidate{{
		ExternalID:  "1",
		Slug:        "two-sum",
		Status:      "Runtime Error",
		Language:    "go",
		Runtime:     "4 ms",
		SubmittedAt: at,
	}}
	accepted := []Candidate{{
		ExternalID:  "1",
		Slug:        "two-sum",
		Status:      models.StatusAccepted,
		SubmittedAt: at,
	}}

	merged := Merge(recent, accepted)
	if len(merged) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(merged))
	}

	c := merged[0]
	if !c.Accepted() {
		t.Errorf("accepted variant should win, got status %q", c.Status)
	}
	// The winner backfills detail from the loser.
	if c.Runtime != "4 ms" || c.Language != "go" {
		t.Errorf("detail fields not backfilled: %+v", c)
	}
}

func TestMergePrefersRicherVariant(t *testing.T) {
	at := time.Unix(1772496000, 0).UTC()

	sparse := []Candidate{{ExternalID: "1", Slug: "two-sum", Status: models.StatusAccepted, SubmittedAt: at}}
	rich := []Candidate{{
		ExternalID:  "1",
		Slug:        "two-sum",
		Status:      models.StatusAccepted,
		Runtime:     "4 ms",
		Memory:      "6.1 MB",
		SubmittedAt: at,
	}}

	merged := Merge(sparse, rich)
	if merged[0].Runtime != "4 ms" || merged[0].Memory != "6.1 MB" {
		t.Errorf("richer variant should win: %+v", merged[0])
	}
}
