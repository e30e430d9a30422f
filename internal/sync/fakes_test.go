package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/judge"
	"github.com/terra-clan/progress-engine/internal/models"
	"github.com/terra-clan/progress-engine/internal/storage"
)

// fakeRepo is an in-memory storage.Repository for pipeline tests.
type fakeRepo struct {
	users        map[uuid.UUID]*models.User
	problems     map[string]*models.Problem
	subs         map[string]*models.Submission
	xp           []*models.XPEntry
	comps        map[uuid.UUID]*models.Competition
	participants map[uuid.UUID][]uuid.UUID

	insertErr    error
	incrementErr error
	metaUpdates  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        make(map[uuid.UUID]*models.User),
		problems:     make(map[string]*models.Problem),
		subs:         make(map[string]*models.Submission),
		comps:        make(map[uuid.UUID]*models.Competition),
		participants: make(map[uuid.UUID][]uuid.UUID),
	}
}

func subKey(userID uuid.UUID, identityKey string) string {
	return userID.String() + "|" + identityKey
}

func (f *fakeRepo) CreateUser(_ context.Context, u *models.User) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetUserByHandle(_ context.Context, handle string) (*models.User, error) {
	for _, u := range f.users {
		if u.Handle == handle {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeRepo) UpdateUserProgress(_ context.Context, u *models.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return storage.ErrUserNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) IncrementCounters(_ context.Context, userID uuid.UUID, d storage.CounterDelta) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	u, ok := f.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.EasySolved += d.Easy
	u.MediumSolved += d.Medium
	u.HardSolved += d.Hard
	u.TotalSolved += d.Total
	return nil
}

func (f *fakeRepo) ListStaleUserIDs(_ context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, u := range f.users {
		if u.LastSyncAt == nil || u.LastSyncAt.Before(before) {
			ids = append(ids, id)
		}
		if len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

func (f *fakeRepo) GetProblemBySlug(_ context.Context, slug string) (*models.Problem, error) {
	p, ok := f.problems[slug]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) EnsureProblem(_ context.Context, p *models.Problem) (*models.Problem, error) {
	if existing, ok := f.problems[p.Slug]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *p
	f.problems[p.Slug] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) UpdateProblemMeta(_ context.Context, p *models.Problem) error {
	f.metaUpdates++
	cp := *p
	f.problems[p.Slug] = &cp
	return nil
}

func (f *fakeRepo) GetSubmissionByKey(_ context.Context, userID uuid.UUID, identityKey string) (*models.Submission, error) {
	s, ok := f.subs[subKey(userID, identityKey)]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) InsertSubmission(_ context.Context, s *models.Submission) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	key := subKey(s.UserID, s.IdentityKey)
	if _, ok := f.subs[key]; ok {
		return false, nil
	}
	cp := *s
	f.subs[key] = &cp
	return true, nil
}

func (f *fakeRepo) CountAcceptedByDifficulty(_ context.Context, userID uuid.UUID) (storage.DifficultyCounts, error) {
	var counts storage.DifficultyCounts
	for _, s := range f.subs {
		if s.UserID != userID || !s.Accepted() {
			continue
		}
		switch s.ProblemDifficulty {
		case models.DifficultyEasy:
			counts.Easy++
		case models.DifficultyMedium:
			counts.Medium++
		case models.DifficultyHard:
			counts.Hard++
		default:
			counts.Unknown++
		}
	}
	return counts, nil
}

func (f *fakeRepo) HasAcceptedBetween(_ context.Context, userID uuid.UUID, from, to time.Time) (bool, error) {
	for _, s := range f.subs {
		if s.UserID == userID && s.Accepted() &&
			!s.SubmittedAt.Before(from) && s.SubmittedAt.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) CountDistinctLanguages(_ context.Context, userID uuid.UUID) (int, error) {
	langs := make(map[string]bool)
	for _, s := range f.subs {
		if s.UserID == userID && s.Language != "" {
			langs[s.Language] = true
		}
	}
	return len(langs), nil
}

func (f *fakeRepo) ListAcceptedInWindow(_ context.Context, userIDs []uuid.UUID, slugs []string, from, to time.Time) ([]*models.Submission, error) {
	users := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		users[id] = true
	}
	inSet := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		inSet[slug] = true
	}

	var out []*models.Submission
	for _, s := range f.subs {
		if !users[s.UserID] || !inSet[s.ProblemSlug] || !s.Accepted() {
			continue
		}
		if s.SubmittedAt.Before(from) || s.SubmittedAt.After(to) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) AppendXP(_ context.Context, e *models.XPEntry) error {
	cp := *e
	f.xp = append(f.xp, &cp)
	return nil
}

func (f *fakeRepo) ListXP(_ context.Context, userID uuid.UUID, limit, offset int) ([]*models.XPEntry, error) {
	var out []*models.XPEntry
	for _, e := range f.xp {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) CreateCompetition(_ context.Context, c *models.Competition) error {
	cp := *c
	f.comps[c.ID] = &cp
	return nil
}

func (f *fakeRepo) GetCompetition(_ context.Context, id uuid.UUID) (*models.Competition, error) {
	c, ok := f.comps[id]
	if !ok {
		return nil, storage.ErrCompetitionNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) AddParticipant(_ context.Context, competitionID, userID uuid.UUID) error {
	for _, id := range f.participants[competitionID] {
		if id == userID {
			return nil
		}
	}
	f.participants[competitionID] = append(f.participants[competitionID], userID)
	return nil
}

func (f *fakeRepo) ListParticipants(_ context.Context, competitionID uuid.UUID) ([]*models.User, error) {
	var out []*models.User
	for _, id := range f.participants[competitionID] {
		if u, ok := f.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountCompetitionsJoined(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, ids := range f.participants {
		for _, id := range ids {
			if id == userID {
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeRepo) Ping(context.Context) error { return nil }
func (f *fakeRepo) Close() error               { return nil }

// fakeJudge is a scripted judge.Client.
type fakeJudge struct {
	profile     *judge.Profile
	profileErr  error
	recent      []judge.RawRecord
	recentErr   error
	accepted    []judge.RawRecord
	acceptedErr error
	meta        map[string]*judge.ProblemMeta
}

var errMetaUnavailable = errors.New("problem metadata unavailable")

func (f *fakeJudge) Profile(context.Context, string) (*judge.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil {
		return &judge.Profile{}, nil
	}
	cp := *f.profile
	return &cp, nil
}

func (f *fakeJudge) RecentSubmissions(context.Context, string, int) ([]judge.RawRecord, error) {
	return f.recent, f.recentErr
}

func (f *fakeJudge) AcceptedSubmissions(context.Context, string, int) ([]judge.RawRecord, error) {
	return f.accepted, f.acceptedErr
}

func (f *fakeJudge) ProblemMeta(_ context.Context, slug string) (*judge.ProblemMeta, error) {
	m, ok := f.meta[slug]
	if !ok {
		return nil, errMetaUnavailable
	}
	cp := *m
	return &cp, nil
}
