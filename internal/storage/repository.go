package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/models"
)

// Sentinel errors surfaced to callers. Conflicts (duplicate identity key,
// duplicate slug, duplicate badge) are never errors at this layer; they
// resolve to no-ops or re-reads.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCompetitionNotFound = errors.New("competition not found")
)

// CounterDelta is an atomic increment applied to a user's solved counters.
type CounterDelta struct {
	Easy   int
	Medium int
	Hard   int
	Total  int
}

// DifficultyCounts is the result of grouping a user's accepted ledger
// entries by denormalized difficulty.
type DifficultyCounts struct {
	Easy    int
	Medium  int
	Hard    int
	Unknown int
}

// Repository defines the persistence operations the sync core requires.
// Every invariant in the core is designed to hold under individually
// atomic single-record writes; no multi-record transaction is assumed.
type Repository interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*models.User, error)
	// UpdateUserProgress persists derived progress state. XP and counters
	// are written through GREATEST so a concurrent pass can never regress
	// them; the stored value is max(existing, submitted).
	UpdateUserProgress(ctx context.Context, u *models.User) error
	IncrementCounters(ctx context.Context, userID uuid.UUID, d CounterDelta) error
	// ListStaleUserIDs returns up to limit users whose last_sync_at is
	// absent or older than before, oldest first.
	ListStaleUserIDs(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)

	// Problems (catalog)
	GetProblemBySlug(ctx context.Context, slug string) (*models.Problem, error)
	// EnsureProblem inserts the problem unless the slug already exists,
	// then returns the canonical record. Slug uniqueness is the conflict
	// arbiter for concurrent lazy creation.
	EnsureProblem(ctx context.Context, p *models.Problem) (*models.Problem, error)
	UpdateProblemMeta(ctx context.Context, p *models.Problem) error

	// Submissions (ledger)
	GetSubmissionByKey(ctx context.Context, userID uuid.UUID, identityKey string) (*models.Submission, error)
	// InsertSubmission appends a ledger entry. A duplicate (user,
	// identity key) is a successful no-op reported as inserted=false.
	InsertSubmission(ctx context.Context, s *models.Submission) (inserted bool, err error)
	CountAcceptedByDifficulty(ctx context.Context, userID uuid.UUID) (DifficultyCounts, error)
	HasAcceptedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (bool, error)
	CountDistinctLanguages(ctx context.Context, userID uuid.UUID) (int, error)
	ListAcceptedInWindow(ctx context.Context, userIDs []uuid.UUID, slugs []string, from, to time.Time) ([]*models.Submission, error)

	// XP log
	AppendXP(ctx context.Context, e *models.XPEntry) error
	ListXP(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.XPEntry, error)

	// Competitions
	CreateCompetition(ctx context.Context, c *models.Competition) error
	GetCompetition(ctx context.Context, id uuid.UUID) (*models.Competition, error)
	AddParticipant(ctx context.Context, competitionID, userID uuid.UUID) error
	ListParticipants(ctx context.Context, competitionID uuid.UUID) ([]*models.User, error)
	CountCompetitionsJoined(ctx context.Context, userID uuid.UUID) (int, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
