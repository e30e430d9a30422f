package leaderboard

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/models"
)

var windowStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func testCompetition(slugs ...string) *models.Competition {
	return &models.Competition{
		ID:           uuid.New(),
		Name:         "spring-cup",
		StartAt:      windowStart,
		EndAt:        windowStart.AddDate(0, 0, 7),
		ProblemSlugs: slugs,
		Weights:      models.DefaultWeights,
	}
}

func testUser(name string) *models.User {
	return &models.User{ID: uuid.New(), Handle: name, Username: name}
}

func accepted(u *models.User, slug string, d models.Difficulty, at time.Time) *models.Submission {
	return &models.Submission{
		ID:                uuid.New(),
		UserID:            u.ID,
		ProblemSlug:       slug,
		ProblemDifficulty: d,
		Status:            models.StatusAccepted,
		SubmittedAt:       at,
	}
}

func TestComputeScoresAndRanks(t *testing.T) {
	comp := testCompetition("two-sum", "lru-cache", "word-ladder")
	alice := testUser("alice")
	bob := testUser("bob")

	subs := []*models.Submission{
		accepted(alice, "two-sum", models.DifficultyEasy, windowStart.Add(1*time.Hour)),
		accepted(alice, "lru-cache", models.DifficultyMedium, windowStart.Add(2*time.Hour)),
		accepted(bob, "word-ladder", models.DifficultyHard, windowStart.Add(3*time.Hour)),
	}

	rows := Compute(comp, []*models.User{alice, bob}, subs)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// alice: 1+2 = 3 points; bob: 3 points; alice's last solve is earlier.
	if rows[0].Username != "alice" || rows[0].Rank != 1 {
		t.Errorf("expected alice ranked 1, got %s rank %d", rows[0].Username, rows[0].Rank)
	}
	if rows[0].Points != 3 || rows[1].Points != 3 {
		t.Errorf("expected 3 points each, got %d and %d", rows[0].Points, rows[1].Points)
	}
	if rows[1].Username != "bob" || rows[1].Rank != 2 {
		t.Errorf("expected bob ranked 2, got %s rank %d", rows[1].Username, rows[1].Rank)
	}
	if rows[0].Solved != 2 || rows[0].EasySolved != 1 || rows[0].MedSolved != 1 {
		t.Errorf("unexpected alice counts: %+v", rows[0])
	}
}

func TestComputeFirstAcceptanceWins(t *testing.T) {
	comp := testCompetition("two-sum")
	alice := testUser("alice")

	first := windowStart.Add(1 * time.Hour)
	subs := []*models.Submission{
		// Later resubmission arrives first in the slice; the earlier
		// acceptance must still be the scoring one.
		accepted(alice, "two-sum", models.DifficultyEasy, windowStart.Add(5*time.Hour)),
		accepted(alice, "two-sum", models.DifficultyEasy, first),
	}

	rows := Compute(comp, []*models.User{alice}, subs)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Solved != 1 || rows[0].Points != 1 {
		t.Errorf("resubmission scored twice: %+v", rows[0])
	}
	if !rows[0].LastSolveAt.Equal(first) {
		t.Errorf("expected last solve at first acceptance %v, got %v", first, rows[0].LastSolveAt)
	}
}

func TestComputeFiltersOutOfScopeEntries(t *testing.T) {
	comp := testCompetition("two-sum")
	alice := testUser("alice")
	outsider := testUser("mallory")

	subs := []*models.Submission{
		// Outside window.
		accepted(alice, "two-sum", models.DifficultyEasy, windowStart.Add(-time.Hour)),
		// Not in problem set.
		accepted(alice, "word-ladder", models.DifficultyHard, windowStart.Add(time.Hour)),
		// Not a participant.
		accepted(outsider, "two-sum", models.DifficultyEasy, windowStart.Add(time.Hour)),
		// Not accepted.
		{
			ID: uuid.New(), UserID: alice.ID, ProblemSlug: "two-sum",
			ProblemDifficulty: models.DifficultyEasy,
			Status:            "Wrong Answer",
			SubmittedAt:       windowStart.Add(time.Hour),
		},
	}

	rows := Compute(comp, []*models.User{alice}, subs)
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %v", rows)
	}
}

func TestComputeTieBreakByEarlierLastSolve(t *testing.T) {
	comp := testCompetition("a", "b")
	fast := testUser("fast")
	slow := testUser("slow")

	subs := []*models.Submission{
		accepted(slow, "a", models.DifficultyEasy, windowStart.Add(6*time.Hour)),
		accepted(fast, "a", models.DifficultyEasy, windowStart.Add(1*time.Hour)),
	}

	rows := Compute(comp, []*models.User{slow, fast}, subs)
	if rows[0].Username != "fast" {
		t.Errorf("equal points should rank the earlier finisher first, got %s", rows[0].Username)
	}
}

func TestComputeCustomWeights(t *testing.T) {
	comp := testCompetition("a")
	comp.Weights = models.ScoreWeights{Easy: 5, Medium: 7, Hard: 11}
	u := testUser("alice")

	rows := Compute(comp, []*models.User{u}, []*models.Submission{
		accepted(u, "a", models.DifficultyEasy, windowStart.Add(time.Hour)),
	})
	if rows[0].Points != 5 {
		t.Errorf("expected 5 points under custom weights, got %d", rows[0].Points)
	}
}
