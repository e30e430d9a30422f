package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/progress-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Users ---

const userColumns = `id, handle, username, easy_solved, medium_solved, hard_solved, total_solved, xp, level, current_streak, max_streak, last_solved_date, last_sync_at, badges, created_at`

// CreateUser inserts a new user record
func (r *PostgresRepository) CreateUser(ctx context.Context, u *models.User) error {
	badgesJSON, err := json.Marshal(badgesOrEmpty(u.Badges))
	if err != nil {
		return fmt.Errorf("failed to marshal badges: %w", err)
	}

	query := `
		INSERT INTO users (id, handle, username, easy_solved, medium_solved, hard_solved, total_solved, xp, level, current_streak, max_streak, last_solved_date, last_sync_at, badges, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.pool.Exec(ctx, query,
		u.ID.String(),
		u.Handle,
		u.Username,
		u.EasySolved,
		u.MediumSolved,
		u.HardSolved,
		u.TotalSolved,
		u.XP,
		u.Level,
		u.CurrentStreak,
		u.MaxStreak,
		nullTime(u.LastSolvedDate),
		nullTime(u.LastSyncAt),
		badgesJSON,
		u.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID
func (r *PostgresRepository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getUser(ctx, "id", id.String())
}

// GetUserByHandle retrieves a user by external judge handle
func (r *PostgresRepository) GetUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	return r.getUser(ctx, "handle", handle)
}

func (r *PostgresRepository) getUser(ctx context.Context, field, value string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, field)

	u, err := scanUser(r.pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var id string
	var lastSolved, lastSync sql.NullTime
	var badgesJSON []byte

	err := row.Scan(
		&id,
		&u.Handle,
		&u.Username,
		&u.EasySolved,
		&u.MediumSolved,
		&u.HardSolved,
		&u.TotalSolved,
		&u.XP,
		&u.Level,
		&u.CurrentStreak,
		&u.MaxStreak,
		&lastSolved,
		&lastSync,
		&badgesJSON,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}

	if lastSolved.Valid {
		u.LastSolvedDate = &lastSolved.Time
	}
	if lastSync.Valid {
		u.LastSyncAt = &lastSync.Time
	}

	if badgesJSON != nil {
		if err := json.Unmarshal(badgesJSON, &u.Badges); err != nil {
			return nil, fmt.Errorf("failed to unmarshal badges: %w", err)
		}
	}

	return &u, nil
}

// UpdateUserProgress persists derived progress state. Counters, xp,
// level and max_streak are merged through GREATEST so a concurrent sync
// pass reporting stale values can never regress them.
func (r *PostgresRepository) UpdateUserProgress(ctx context.Context, u *models.User) error {
	badgesJSON, err := json.Marshal(badgesOrEmpty(u.Badges))
	if err != nil {
		return fmt.Errorf("failed to marshal badges: %w", err)
	}

	query := `
		UPDATE users
		SET easy_solved = GREATEST(easy_solved, $2),
		    medium_solved = GREATEST(medium_solved, $3),
		    hard_solved = GREATEST(hard_solved, $4),
		    total_solved = GREATEST(total_solved, $5),
		    xp = GREATEST(xp, $6),
		    level = GREATEST(level, $7),
		    current_streak = $8,
		    max_streak = GREATEST(max_streak, $9),
		    last_solved_date = $10,
		    last_sync_at = $11,
		    badges = $12
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		u.ID.String(),
		u.EasySolved,
		u.MediumSolved,
		u.HardSolved,
		u.TotalSolved,
		u.XP,
		u.Level,
		u.CurrentStreak,
		u.MaxStreak,
		nullTime(u.LastSolvedDate),
		nullTime(u.LastSyncAt),
		badgesJSON,
	)

	if err != nil {
		return fmt.Errorf("failed to update user progress: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// IncrementCounters atomically bumps the solved counters
func (r *PostgresRepository) IncrementCounters(ctx context.Context, userID uuid.UUID, d CounterDelta) error {
	query := `
		UPDATE users
		SET easy_solved = easy_solved + $2,
		    medium_solved = medium_solved + $3,
		    hard_solved = hard_solved + $4,
		    total_solved = total_solved + $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID.String(), d.Easy, d.Medium, d.Hard, d.Total)
	if err != nil {
		return fmt.Errorf("failed to increment counters: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ListStaleUserIDs returns users whose last sync is absent or older than before
func (r *PostgresRepository) ListStaleUserIDs(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM users
		WHERE last_sync_at IS NULL OR last_sync_at < $1
		ORDER BY last_sync_at ASC NULLS FIRST
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// --- Problems ---

const problemColumns = `id, slug, title, difficulty, tags, created_at, updated_at`

// GetProblemBySlug retrieves a catalog entry by slug
func (r *PostgresRepository) GetProblemBySlug(ctx context.Context, slug string) (*models.Problem, error) {
	query := fmt.Sprintf(`SELECT %s FROM problems WHERE slug = $1`, problemColumns)

	p, err := scanProblem(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}

	return p, nil
}

func scanProblem(row rowScanner) (*models.Problem, error) {
	var p models.Problem
	var id, difficulty string
	var tagsJSON []byte

	err := row.Scan(&id, &p.Slug, &p.Title, &difficulty, &tagsJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse problem id: %w", err)
	}

	p.Difficulty = models.Difficulty(difficulty)

	if tagsJSON != nil {
		if err := json.Unmarshal(tagsJSON, &p.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}

	return &p, nil
}

// EnsureProblem inserts the problem unless the slug already exists, then
// returns the canonical record. ON CONFLICT DO NOTHING plus a re-read
// arbitrates concurrent lazy creation of the same slug.
func (r *PostgresRepository) EnsureProblem(ctx context.Context, p *models.Problem) (*models.Problem, error) {
	tagsJSON, err := json.Marshal(tagsOrEmpty(p.Tags))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO problems (id, slug, title, difficulty, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (slug) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		p.ID.String(),
		p.Slug,
		p.Title,
		string(p.Difficulty),
		tagsJSON,
		p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure problem: %w", err)
	}

	existing, err := r.GetProblemBySlug(ctx, p.Slug)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("problem disappeared after insert: %s", p.Slug)
	}

	return existing, nil
}

// UpdateProblemMeta updates difficulty and tags after enrichment
func (r *PostgresRepository) UpdateProblemMeta(ctx context.Context, p *models.Problem) error {
	tagsJSON, err := json.Marshal(tagsOrEmpty(p.Tags))
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		UPDATE problems
		SET title = $2, difficulty = $3, tags = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, p.ID.String(), p.Title, string(p.Difficulty), tagsJSON)
	if err != nil {
		return fmt.Errorf("failed to update problem meta: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("problem not found: %s", p.Slug)
	}

	return nil
}

// --- Submissions ---

const submissionColumns = `id, user_id, problem_id, problem_slug, problem_difficulty, identity_key, external_id, status, language, runtime, memory, submitted_at, created_at`

// GetSubmissionByKey retrieves a ledger entry by its identity key
func (r *PostgresRepository) GetSubmissionByKey(ctx context.Context, userID uuid.UUID, identityKey string) (*models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE user_id = $1 AND identity_key = $2`, submissionColumns)

	s, err := scanSubmission(r.pool.QueryRow(ctx, query, userID.String(), identityKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return s, nil
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var s models.Submission
	var id, userID, problemID, difficulty string
	var externalID, language, runtime, memory sql.NullString

	err := row.Scan(
		&id,
		&userID,
		&problemID,
		&s.ProblemSlug,
		&difficulty,
		&s.IdentityKey,
		&externalID,
		&s.Status,
		&language,
		&runtime,
		&memory,
		&s.SubmittedAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse submission id: %w", err)
	}
	if s.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("failed to parse submission user id: %w", err)
	}
	if s.ProblemID, err = uuid.Parse(problemID); err != nil {
		return nil, fmt.Errorf("failed to parse submission problem id: %w", err)
	}

	s.ProblemDifficulty = models.Difficulty(difficulty)
	s.ExternalID = externalID.String
	s.Language = language.String
	s.Runtime = runtime.String
	s.Memory = memory.String

	return &s, nil
}

// InsertSubmission appends a ledger entry. The unique (user_id,
// identity_key) index is the sole serialization point for cross-pass
// races: the losing writer's insert resolves to inserted=false.
func (r *PostgresRepository) InsertSubmission(ctx context.Context, s *models.Submission) (bool, error) {
	query := `
		INSERT INTO submissions (id, user_id, problem_id, problem_slug, problem_difficulty, identity_key, external_id, status, language, runtime, memory, submitted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, identity_key) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query,
		s.ID.String(),
		s.UserID.String(),
		s.ProblemID.String(),
		s.ProblemSlug,
		string(s.ProblemDifficulty),
		s.IdentityKey,
		nullString(s.ExternalID),
		s.Status,
		nullString(s.Language),
		nullString(s.Runtime),
		nullString(s.Memory),
		s.SubmittedAt,
		s.CreatedAt,
	)

	if err != nil {
		return false, fmt.Errorf("failed to insert submission: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// CountAcceptedByDifficulty groups the user's accepted ledger entries by
// their denormalized difficulty
func (r *PostgresRepository) CountAcceptedByDifficulty(ctx context.Context, userID uuid.UUID) (DifficultyCounts, error) {
	query := `
		SELECT problem_difficulty, COUNT(*)
		FROM submissions
		WHERE user_id = $1 AND status = $2
		GROUP BY problem_difficulty
	`

	rows, err := r.pool.Query(ctx, query, userID.String(), models.StatusAccepted)
	if err != nil {
		return DifficultyCounts{}, fmt.Errorf("failed to count accepted submissions: %w", err)
	}
	defer rows.Close()

	var counts DifficultyCounts
	for rows.Next() {
		var difficulty string
		var n int
		if err := rows.Scan(&difficulty, &n); err != nil {
			return DifficultyCounts{}, fmt.Errorf("failed to scan difficulty count: %w", err)
		}

		switch models.Difficulty(difficulty) {
		case models.DifficultyEasy:
			counts.Easy = n
		case models.DifficultyMedium:
			counts.Medium = n
		case models.DifficultyHard:
			counts.Hard = n
		default:
			counts.Unknown += n
		}
	}

	return counts, rows.Err()
}

// HasAcceptedBetween reports whether the user has any accepted ledger
// entry with submitted_at in [from, to)
func (r *PostgresRepository) HasAcceptedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM submissions
			WHERE user_id = $1 AND status = $2 AND submitted_at >= $3 AND submitted_at < $4
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, userID.String(), models.StatusAccepted, from, to).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check accepted submissions: %w", err)
	}

	return exists, nil
}

// CountDistinctLanguages counts the distinct languages in the user's ledger
func (r *PostgresRepository) CountDistinctLanguages(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(DISTINCT language) FROM submissions
		WHERE user_id = $1 AND language IS NOT NULL
	`

	var n int
	if err := r.pool.QueryRow(ctx, query, userID.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count languages: %w", err)
	}

	return n, nil
}

// ListAcceptedInWindow returns accepted ledger entries for the given
// users and slugs inside [from, to], the input to leaderboard computation
func (r *PostgresRepository) ListAcceptedInWindow(ctx context.Context, userIDs []uuid.UUID, slugs []string, from, to time.Time) ([]*models.Submission, error) {
	if len(userIDs) == 0 || len(slugs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}

	query := fmt.Sprintf(`
		SELECT %s FROM submissions
		WHERE user_id = ANY($1)
		  AND problem_slug = ANY($2)
		  AND status = $3
		  AND submitted_at >= $4
		  AND submitted_at <= $5
		ORDER BY submitted_at ASC
	`, submissionColumns)

	rows, err := r.pool.Query(ctx, query, ids, slugs, models.StatusAccepted, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted submissions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, s)
	}

	return subs, rows.Err()
}

// --- XP log ---

// AppendXP appends an immutable XP audit record
func (r *PostgresRepository) AppendXP(ctx context.Context, e *models.XPEntry) error {
	metaJSON, err := json.Marshal(metaOrEmpty(e.Meta))
	if err != nil {
		return fmt.Errorf("failed to marshal xp meta: %w", err)
	}

	query := `
		INSERT INTO xp_log (id, user_id, delta, reason, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.pool.Exec(ctx, query,
		e.ID.String(),
		e.UserID.String(),
		e.Delta,
		e.Reason,
		metaJSON,
		e.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append xp entry: %w", err)
	}

	return nil
}

// ListXP returns a page of the user's XP log, newest first
func (r *PostgresRepository) ListXP(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.XPEntry, error) {
	query := `
		SELECT id, user_id, delta, reason, meta, created_at
		FROM xp_log
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list xp log: %w", err)
	}
	defer rows.Close()

	var entries []*models.XPEntry
	for rows.Next() {
		var e models.XPEntry
		var id, uid string
		var metaJSON []byte

		if err := rows.Scan(&id, &uid, &e.Delta, &e.Reason, &metaJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan xp entry: %w", err)
		}

		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse xp entry id: %w", err)
		}
		if e.UserID, err = uuid.Parse(uid); err != nil {
			return nil, fmt.Errorf("failed to parse xp entry user id: %w", err)
		}

		if metaJSON != nil {
			if err := json.Unmarshal(metaJSON, &e.Meta); err != nil {
				return nil, fmt.Errorf("failed to unmarshal xp meta: %w", err)
			}
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// --- Competitions ---

// CreateCompetition inserts a new competition
func (r *PostgresRepository) CreateCompetition(ctx context.Context, c *models.Competition) error {
	slugsJSON, err := json.Marshal(tagsOrEmpty(c.ProblemSlugs))
	if err != nil {
		return fmt.Errorf("failed to marshal problem slugs: %w", err)
	}

	query := `
		INSERT INTO competitions (id, name, start_at, end_at, problem_slugs, weight_easy, weight_medium, weight_hard, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.pool.Exec(ctx, query,
		c.ID.String(),
		c.Name,
		c.StartAt,
		c.EndAt,
		slugsJSON,
		c.Weights.Easy,
		c.Weights.Medium,
		c.Weights.Hard,
		c.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create competition: %w", err)
	}

	return nil
}

// GetCompetition retrieves a competition by ID
func (r *PostgresRepository) GetCompetition(ctx context.Context, id uuid.UUID) (*models.Competition, error) {
	query := `
		SELECT id, name, start_at, end_at, problem_slugs, weight_easy, weight_medium, weight_hard, created_at
		FROM competitions
		WHERE id = $1
	`

	var c models.Competition
	var rawID string
	var slugsJSON []byte

	err := r.pool.QueryRow(ctx, query, id.String()).Scan(
		&rawID,
		&c.Name,
		&c.StartAt,
		&c.EndAt,
		&slugsJSON,
		&c.Weights.Easy,
		&c.Weights.Medium,
		&c.Weights.Hard,
		&c.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}

	if c.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("failed to parse competition id: %w", err)
	}

	if slugsJSON != nil {
		if err := json.Unmarshal(slugsJSON, &c.ProblemSlugs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal problem slugs: %w", err)
		}
	}

	return &c, nil
}

// AddParticipant joins a user to a competition. Re-joining is a no-op.
func (r *PostgresRepository) AddParticipant(ctx context.Context, competitionID, userID uuid.UUID) error {
	query := `
		INSERT INTO competition_participants (competition_id, user_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (competition_id, user_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, competitionID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}

	return nil
}

// ListParticipants returns the users joined to a competition
func (r *PostgresRepository) ListParticipants(ctx context.Context, competitionID uuid.UUID) ([]*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users u
		JOIN competition_participants cp ON cp.user_id = u.id
		WHERE cp.competition_id = $1
		ORDER BY cp.joined_at ASC
	`, prefixedUserColumns("u"))

	rows, err := r.pool.Query(ctx, query, competitionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// CountCompetitionsJoined counts how many competitions the user has joined
func (r *PostgresRepository) CountCompetitionsJoined(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM competition_participants WHERE user_id = $1`

	var n int
	if err := r.pool.QueryRow(ctx, query, userID.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count competitions: %w", err)
	}

	return n, nil
}

// Helper functions for nullable values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func badgesOrEmpty(b []models.Badge) []models.Badge {
	if b == nil {
		return []models.Badge{}
	}
	return b
}

func tagsOrEmpty(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}

func metaOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func prefixedUserColumns(alias string) string {
	return alias + ".id, " + alias + ".handle, " + alias + ".username, " +
		alias + ".easy_solved, " + alias + ".medium_solved, " + alias + ".hard_solved, " +
		alias + ".total_solved, " + alias + ".xp, " + alias + ".level, " +
		alias + ".current_streak, " + alias + ".max_streak, " + alias + ".last_solved_date, " +
		alias + ".last_sync_at, " + alias + ".badges, " + alias + ".created_at"
}
