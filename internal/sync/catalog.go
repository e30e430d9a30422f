package sync

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/judge"
	"github.com/terra-clan/progress-engine/internal/models"
	"github.com/terra-clan/progress-engine/internal/storage"
)

// CatalogResolver looks up or lazily creates the canonical problem
// record a candidate references, enriching it from the judge when
// metadata is reachable.
type CatalogResolver struct {
	repo  storage.Repository
	judge judge.Client
}

// NewCatalogResolver creates a catalog resolver
func NewCatalogResolver(repo storage.Repository, judgeClient judge.Client) *CatalogResolver {
	return &CatalogResolver{repo: repo, judge: judgeClient}
}

// Resolve returns the catalog entry for the candidate's slug, creating
// it with Unknown difficulty if absent. Enrichment is best-effort: its
// failure never aborts the caller.
func (r *CatalogResolver) Resolve(ctx context.Context, cand Candidate) (*models.Problem, error) {
	p, err := r.repo.GetProblemBySlug(ctx, cand.Slug)
	if err != nil {
		return nil, err
	}

	if p == nil {
		p, err = r.repo.EnsureProblem(ctx, &models.Problem{
			ID:         uuid.New(),
			Slug:       cand.Slug,
			Title:      cand.Title,
			Difficulty: models.DifficultyUnknown,
		})
		if err != nil {
			return nil, err
		}
	}

	if !p.Difficulty.Known() || len(p.Tags) == 0 {
		r.enrich(ctx, p)
	}

	return p, nil
}

// enrich fills in difficulty and tags from the judge. A known
// difficulty is never overwritten with Unknown, and tags are only
// written when they actually differ.
func (r *CatalogResolver) enrich(ctx context.Context, p *models.Problem) {
	meta, err := r.judge.ProblemMeta(ctx, p.Slug)
	if err != nil {
		slog.Debug("problem enrichment skipped", "slug", p.Slug, "error", err)
		return
	}

	changed := false
	if meta.Difficulty.Known() && meta.Difficulty != p.Difficulty {
		p.Difficulty = meta.Difficulty
		changed = true
	}
	if len(meta.Tags) > 0 && !sameTagSet(p.Tags, meta.Tags) {
		p.Tags = meta.Tags
		changed = true
	}

	if !changed {
		return
	}

	if err := r.repo.UpdateProblemMeta(ctx, p); err != nil {
		slog.Warn("failed to persist problem enrichment", "slug", p.Slug, "error", err)
	}
}

// sameTagSet ignores order: the judge does not promise a stable tag
// ordering, and a reorder alone is not worth a write.
func sameTagSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, tag := range a {
		counts[tag]++
	}
	for _, tag := range b {
		if counts[tag] == 0 {
			return false
		}
		counts[tag]--
	}
	return true
}
