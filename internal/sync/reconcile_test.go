package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/judge"
	"github.com/terra-clan/progress-engine/internal/models"
)

func newTestReconciler(repo *fakeRepo, j *fakeJudge) *Reconciler {
	return NewReconciler(repo, NewCatalogResolver(repo, j))
}

func TestReconcileInsertsNewCandidate(t *testing.T) {
	repo := newFakeRepo()
	j := &fakeJudge{meta: map[string]*judge.ProblemMeta{
		"two-sum": {Difficulty: models.DifficultyEasy, Tags: []string{"array", "hash-table"}},
	}}
	rec := newTestReconciler(repo, j)
	userID := uuid.New()

	cand := Candidate{
		ExternalID:  "1",
		Slug:        "two-sum",
		Status:      models.StatusAccepted,
		Language:    "go",
		SubmittedAt: time.Unix(1772496000, 0).UTC(),
	}

	sub, inserted, err := rec.Reconcile(context.Background(), userID, cand)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !inserted {
		t.Fatal("expected insert")
	}
	if sub.ProblemDifficulty != models.DifficultyEasy {
		t.Errorf("difficulty not denormalized from catalog: %s", sub.ProblemDifficulty)
	}
	if sub.IdentityKey != "1" {
		t.Errorf("unexpected identity key %q", sub.IdentityKey)
	}

	// The catalog entry was lazily created and enriched.
	p, _ := repo.GetProblemBySlug(context.Background(), "two-sum")
	if p == nil {
		t.Fatal("catalog entry missing")
	}
	if p.Difficulty != models.DifficultyEasy || len(p.Tags) != 2 {
		t.Errorf("catalog entry not enriched: %+v", p)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	rec := newTestReconciler(repo, &fakeJudge{})
	userID := uuid.New()

	cand := Candidate{Slug: "two-sum", Status: models.StatusAccepted, SubmittedAt: time.Unix(1772496000, 0).UTC()}

	if _, inserted, err := rec.Reconcile(context.Background(), userID, cand); err != nil || !inserted {
		t.Fatalf("first reconcile: inserted=%v err=%v", inserted, err)
	}

	sub, inserted, err := rec.Reconcile(context.Background(), userID, cand)
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if inserted {
		t.Error("duplicate identity key reported as inserted")
	}
	if sub == nil {
		t.Error("existing entry should be returned on the no-op path")
	}
	if len(repo.subs) != 1 {
		t.Errorf("ledger grew to %d entries", len(repo.subs))
	}
}

func TestReconcileSameKeyDifferentUsers(t *testing.T) {
	repo := newFakeRepo()
	rec := newTestReconciler(repo, &fakeJudge{})

	cand := Candidate{Slug: "two-sum", Status: models.StatusAccepted, SubmittedAt: time.Unix(1772496000, 0).UTC()}

	for _, userID := range []uuid.UUID{uuid.New(), uuid.New()} {
		if _, inserted, err := rec.Reconcile(context.Background(), userID, cand); err != nil || !inserted {
			t.Fatalf("reconcile for user %s: inserted=%v err=%v", userID, inserted, err)
		}
	}
	if len(repo.subs) != 2 {
		t.Errorf("identity key scope leaked across users: %d entries", len(repo.subs))
	}
}

func TestReconcileSurvivesEnrichmentFailure(t *testing.T) {
	repo := newFakeRepo()
	// No metadata available for any slug.
	rec := newTestReconciler(repo, &fakeJudge{})
	userID := uuid.New()

	cand := Candidate{Slug: "mystery", Status: models.StatusAccepted, SubmittedAt: time.Unix(1772496000, 0).UTC()}

	sub, inserted, err := rec.Reconcile(context.Background(), userID, cand)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !inserted {
		t.Fatal("expected insert despite enrichment failure")
	}
	if sub.ProblemDifficulty != models.DifficultyUnknown {
		t.Errorf("expected Unknown difficulty, got %s", sub.ProblemDifficulty)
	}
}

func TestReconcileFreezesDifficultyAtObservation(t *testing.T) {
	repo := newFakeRepo()
	j := &fakeJudge{meta: map[string]*judge.ProblemMeta{}}
	rec := newTestReconciler(repo, j)
	userID := uuid.New()

	// First observation: difficulty unknown.
	first := Candidate{Slug: "two-sum", Status: models.StatusAccepted, SubmittedAt: time.Unix(1772496000, 0).UTC()}
	sub, _, err := rec.Reconcile(context.Background(), userID, first)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if sub.ProblemDifficulty != models.DifficultyUnknown {
		t.Fatalf("expected Unknown, got %s", sub.ProblemDifficulty)
	}

	// Catalog later learns the real difficulty.
	j.meta["two-sum"] = &judge.ProblemMeta{Difficulty: models.DifficultyEasy}
	second := Candidate{Slug: "two-sum", Status: models.StatusAccepted, SubmittedAt: time.Unix(1772582400, 0).UTC()}
	newer, _, err := rec.Reconcile(context.Background(), userID, second)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if newer.ProblemDifficulty != models.DifficultyEasy {
		t.Errorf("new entry should carry the enriched difficulty, got %s", newer.ProblemDifficulty)
	}

	// The original ledger entry keeps the value known at its observation.
	old, _ := repo.GetSubmissionByKey(context.Background(), userID, first.IdentityKey())
	if old.ProblemDifficulty != models.DifficultyUnknown {
		t.Errorf("history rewritten: %s", old.ProblemDifficulty)
	}
}
