package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/terra-clan/progress-engine/internal/models"
	"github.com/terra-clan/progress-engine/internal/progress"
	"github.com/terra-clan/progress-engine/internal/storage"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// User handlers

type registerRequest struct {
	Handle   string `json:"handle"`
	Username string `json:"username"`
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Handle == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "handle is required")
		return
	}
	if req.Username == "" {
		req.Username = req.Handle
	}

	if existing, err := s.repo.GetUserByHandle(r.Context(), req.Handle); err == nil && existing != nil {
		respondError(w, http.StatusConflict, "conflict", "handle already registered")
		return
	} else if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		slog.Error("failed to check existing handle", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register user")
		return
	}

	u := &models.User{
		ID:        uuid.New(),
		Handle:    req.Handle,
		Username:  req.Username,
		Level:     1,
		Badges:    []models.Badge{},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateUser(r.Context(), u); err != nil {
		slog.Error("failed to create user", "handle", req.Handle, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to register user")
		return
	}

	// Best-effort bootstrap sync; registration succeeds regardless of
	// its outcome. The job context deliberately outlives this request.
	job := s.orchestrator.SyncUserAsync(context.WithoutCancel(r.Context()), u.ID)
	slog.Info("registration bootstrap sync started", "handle", u.Handle, "user_id", job.UserID)

	respondJSON(w, http.StatusCreated, u)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	u, err := s.repo.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		slog.Error("failed to get user", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get user")
		return
	}

	respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleSyncUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	result, err := s.orchestrator.SyncUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		slog.Error("sync failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "sync failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleChallengeResult(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req progress.ChallengeResult
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Easy < 0 || req.Medium < 0 || req.Hard < 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "solved counts must not be negative")
		return
	}

	result, err := s.orchestrator.AwardChallenge(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		slog.Error("challenge award failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "challenge award failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleXPLog(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := s.repo.ListXP(r.Context(), id, limit, offset)
	if err != nil {
		slog.Error("failed to list xp log", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list xp log")
		return
	}

	if entries == nil {
		entries = []*models.XPEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// Competition handlers

type createCompetitionRequest struct {
	Name         string               `json:"name"`
	StartAt      time.Time            `json:"start_at"`
	EndAt        time.Time            `json:"end_at"`
	ProblemSlugs []string             `json:"problem_slugs"`
	Weights      *models.ScoreWeights `json:"weights,omitempty"`
}

func (s *Server) handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req createCompetitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	if len(req.ProblemSlugs) == 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "problem_slugs is required")
		return
	}
	if !req.EndAt.After(req.StartAt) {
		respondError(w, http.StatusBadRequest, "validation_error", "end_at must be after start_at")
		return
	}

	weights := models.DefaultWeights
	if req.Weights != nil {
		weights = *req.Weights
	}

	comp := &models.Competition{
		ID:           uuid.New(),
		Name:         req.Name,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		ProblemSlugs: req.ProblemSlugs,
		Weights:      weights,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateCompetition(r.Context(), comp); err != nil {
		slog.Error("failed to create competition", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create competition")
		return
	}

	respondJSON(w, http.StatusCreated, comp)
}

type joinCompetitionRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

func (s *Server) handleJoinCompetition(w http.ResponseWriter, r *http.Request) {
	compID, ok := idParam(w, r)
	if !ok {
		return
	}

	var req joinCompetitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if _, err := s.repo.GetCompetition(r.Context(), compID); err != nil {
		if errors.Is(err, storage.ErrCompetitionNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "competition not found")
			return
		}
		slog.Error("failed to get competition", "error", err, "id", compID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to join competition")
		return
	}

	if _, err := s.repo.GetUser(r.Context(), req.UserID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		slog.Error("failed to get user", "error", err, "id", req.UserID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to join competition")
		return
	}

	if err := s.repo.AddParticipant(r.Context(), compID, req.UserID); err != nil {
		slog.Error("failed to add participant", "error", err, "competition", compID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to join competition")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	compID, ok := idParam(w, r)
	if !ok {
		return
	}

	rows, err := s.leaderboards.Standings(r.Context(), compID)
	if err != nil {
		if errors.Is(err, storage.ErrCompetitionNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "competition not found")
			return
		}
		slog.Error("failed to compute leaderboard", "error", err, "competition", compID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to compute leaderboard")
		return
	}

	if rows == nil {
		rows = []models.LeaderboardRow{}
	}
	respondJSON(w, http.StatusOK, rows)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return defaultValue
}
