package leaderboard

import (
	"sort"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/models"
)

// Compute derives the standings for a competition from in-window
// accepted ledger entries. Per (user, problem) only the earliest
// acceptance scores; resubmissions of a solved problem add nothing.
// Rows sort by points descending; on equal points the user whose last
// qualifying solve happened earlier ranks higher.
func Compute(comp *models.Competition, participants []*models.User, subs []*models.Submission) []models.LeaderboardRow {
	inSet := make(map[uuid.UUID]*models.User, len(participants))
	for _, u := range participants {
		inSet[u.ID] = u
	}

	type solveKey struct {
		user    uuid.UUID
		problem string
	}

	// First acceptance per (user, problem).
	firstSolve := make(map[solveKey]*models.Submission)
	for _, s := range subs {
		if _, ok := inSet[s.UserID]; !ok {
			continue
		}
		if !s.Accepted() || !comp.Contains(s.SubmittedAt) || !comp.HasProblem(s.ProblemSlug) {
			continue
		}

		key := solveKey{user: s.UserID, problem: s.ProblemSlug}
		if prev, ok := firstSolve[key]; !ok || s.SubmittedAt.Before(prev.SubmittedAt) {
			firstSolve[key] = s
		}
	}

	rowsByUser := make(map[uuid.UUID]*models.LeaderboardRow)
	for key, s := range firstSolve {
		row, ok := rowsByUser[key.user]
		if !ok {
			u := inSet[key.user]
			row = &models.LeaderboardRow{UserID: u.ID, Username: u.Username}
			rowsByUser[key.user] = row
		}

		switch s.ProblemDifficulty {
		case models.DifficultyEasy:
			row.EasySolved++
		case models.DifficultyMedium:
			row.MedSolved++
		case models.DifficultyHard:
			row.HardSolved++
		}
		row.Solved++

		if s.SubmittedAt.After(row.LastSolveAt) {
			row.LastSolveAt = s.SubmittedAt
		}
	}

	rows := make([]models.LeaderboardRow, 0, len(rowsByUser))
	for _, row := range rowsByUser {
		row.Points = row.EasySolved*comp.Weights.Easy +
			row.MedSolved*comp.Weights.Medium +
			row.HardSolved*comp.Weights.Hard
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if !rows[i].LastSolveAt.Equal(rows[j].LastSolveAt) {
			return rows[i].LastSolveAt.Before(rows[j].LastSolveAt)
		}
		return rows[i].Username < rows[j].Username
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows
}
