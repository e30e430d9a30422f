package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/models"
	"github.com/terra-clan/progress-engine/internal/storage"
)

// Reconciler idempotently persists candidates into the submission
// ledger. Candidates within one pass are processed sequentially per
// user; cross-pass races resolve through the unique identity key.
type Reconciler struct {
	repo    storage.Repository
	catalog *CatalogResolver
}

// NewReconciler creates a ledger reconciler
func NewReconciler(repo storage.Repository, catalog *CatalogResolver) *Reconciler {
	return &Reconciler{repo: repo, catalog: catalog}
}

// Reconcile persists one candidate for the user. An already-ledgered
// identity key is a successful no-op. The problem difficulty is
// denormalized at insert time, freezing the value known at observation;
// later catalog enrichment does not rewrite history.
func (r *Reconciler) Reconcile(ctx context.Context, userID uuid.UUID, cand Candidate) (*models.Submission, bool, error) {
	key := cand.IdentityKey()

	existing, err := r.repo.GetSubmissionByKey(ctx, userID, key)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	problem, err := r.catalog.Resolve(ctx, cand)
	if err != nil {
		return nil, false, err
	}

	sub := &models.Submission{
		ID:                uuid.New(),
		UserID:            userID,
		ProblemID:         problem.ID,
		ProblemSlug:       problem.Slug,
		ProblemDifficulty: problem.Difficulty,
		IdentityKey:       key,
		ExternalID:        cand.ExternalID,
		Status:            cand.Status,
		Language:          cand.Language,
		Runtime:           cand.Runtime,
		Memory:            cand.Memory,
		SubmittedAt:       cand.SubmittedAt,
		CreatedAt:         time.Now().UTC(),
	}

	inserted, err := r.repo.InsertSubmission(ctx, sub)
	if err != nil {
		return nil, false, err
	}

	return sub, inserted, nil
}
